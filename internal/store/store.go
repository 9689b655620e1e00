package store

import (
	"context"
	"io"

	"github.com/billedhq/billed/internal/models"
)

// Store is the remote persistence abstraction shared by the controllers.
// Implementations live in resthttp (the real backend) and localstore
// (offline SQLite).
type Store interface {
	Bills() BillsResource
}

// BillsResource exposes the bills collection.
type BillsResource interface {
	// List returns every bill visible to the authenticated user, in
	// store order.
	List(ctx context.Context) ([]models.Bill, error)

	// Create uploads a receipt and opens a draft bill for it. The
	// returned key addresses the draft in a later Update call.
	Create(ctx context.Context, upload Upload) (*CreateResult, error)

	// Update persists a bill under the key obtained from Create.
	Update(ctx context.Context, bill *models.Bill, selector string) error
}

// Upload is the multipart payload for a receipt upload.
type Upload struct {
	FileName string
	File     io.Reader
	Email    string // uploader, from the session

	// NoContentType disables content-type negotiation so the transport
	// settles the multipart boundary itself.
	NoContentType bool
}

// CreateResult is what the store answers a successful upload with.
type CreateResult struct {
	FileURL string `json:"fileUrl"`
	Key     string `json:"key"`
}
