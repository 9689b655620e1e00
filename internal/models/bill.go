package models

// Bill represents an employee expense-reimbursement record
type Bill struct {
	ID         string `json:"id,omitempty"`  // assigned by the store on creation
	Email      string `json:"email"`         // owner, taken from the session
	Type       string `json:"type"`          // expense category
	Name       string `json:"name"`          // expense label
	Amount     int    `json:"amount"`        // integer currency amount
	Date       string `json:"date"`          // calendar date as entered, e.g. 2023-05-25
	VAT        string `json:"vat,omitempty"` // optional numeric string
	Pct        int    `json:"pct"`           // VAT percentage, policy default when absent
	Commentary string `json:"commentary,omitempty"`
	FileURL    string `json:"fileUrl,omitempty"`  // set after a successful receipt upload
	FileName   string `json:"fileName,omitempty"` // set after a successful receipt upload
	Status     string `json:"status"`             // pending, accepted or refused
}

// Bill status constants. Transitions are server-driven; the client only
// ever creates bills as pending.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRefused  = "refused"
)

// DisplayBill is a bill prepared for rendering: Date holds the short
// localized form (or the raw value when it could not be parsed) and
// Status holds the display label instead of the wire value.
type DisplayBill struct {
	Bill
	RawDate string `json:"-"` // original date string, kept for ordering
}
