package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentUser(t *testing.T) {
	t.Run("decodes the stored user", func(t *testing.T) {
		bucket := MapBucket{UserKey: `{"type":"Employee","email":"employee@test.tld"}`}

		u, err := CurrentUser(bucket)

		require.NoError(t, err)
		assert.Equal(t, "employee@test.tld", u.Email)
		assert.Equal(t, "Employee", u.Type)
	})

	t.Run("fails when no user is stored", func(t *testing.T) {
		_, err := CurrentUser(MapBucket{})
		assert.Error(t, err)
	})

	t.Run("fails on corrupt payload", func(t *testing.T) {
		_, err := CurrentUser(MapBucket{UserKey: "{not json"})
		assert.Error(t, err)
	})
}
