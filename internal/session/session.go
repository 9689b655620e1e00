package session

import (
	"encoding/json"
	"fmt"
)

// UserKey is the fixed bucket key under which the logged-in user is
// serialized.
const UserKey = "user"

// User is the session identity handed to controllers at construction.
// It replaces ambient lookups: whoever builds a controller resolves the
// user once and passes it in.
type User struct {
	Email string `json:"email"`
	Type  string `json:"type"`
}

// Bucket is the minimal key-value surface the session is read from.
type Bucket interface {
	GetItem(key string) (string, bool)
}

// CurrentUser reads and decodes the logged-in user from a session bucket.
func CurrentUser(bucket Bucket) (*User, error) {
	raw, ok := bucket.GetItem(UserKey)
	if !ok {
		return nil, fmt.Errorf("no %q entry in session", UserKey)
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("failed to decode session user: %w", err)
	}
	return &u, nil
}

// MapBucket is an in-memory Bucket, used where no browser storage
// equivalent exists (tests, CLI bootstrap).
type MapBucket map[string]string

func (m MapBucket) GetItem(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}
