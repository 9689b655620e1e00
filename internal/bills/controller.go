package bills

import (
	"context"
	"fmt"
	"sort"

	"github.com/billedhq/billed/internal/format"
	"github.com/billedhq/billed/internal/models"
	"github.com/billedhq/billed/internal/navigation"
	"github.com/billedhq/billed/internal/session"
	"github.com/billedhq/billed/internal/store"
	"go.uber.org/zap"
)

// Modal displays a receipt image in an overlay. Implemented by the web
// layer; showing the same image twice must be harmless.
type Modal interface {
	ShowImage(url string)
}

// Controller owns the bill-list view logic: fetch bills, prepare them
// for display and hand off to the creation view.
type Controller struct {
	store      store.Store // nil when bills are not needed in this context
	onNavigate navigation.Navigator
	user       *session.User
	modal      Modal
	logger     *zap.Logger
}

// Config holds list controller dependencies.
type Config struct {
	Store      store.Store
	OnNavigate navigation.Navigator
	User       *session.User
	Modal      Modal
}

// New creates a bill-list controller.
func New(cfg Config, logger *zap.Logger) *Controller {
	return &Controller{
		store:      cfg.Store,
		onNavigate: cfg.OnNavigate,
		user:       cfg.User,
		modal:      cfg.Modal,
		logger:     logger,
	}
}

// GetBills fetches the user's bills and prepares each record for
// display. Without a store it returns nothing and touches nothing. A
// record whose date cannot be parsed keeps its raw value; the record is
// never dropped. A failure of the list call itself propagates.
func (c *Controller) GetBills(ctx context.Context) ([]models.DisplayBill, error) {
	if c.store == nil {
		return nil, nil
	}

	raw, err := c.store.Bills().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}

	bills := make([]models.DisplayBill, 0, len(raw))
	for _, b := range raw {
		d := models.DisplayBill{Bill: b, RawDate: b.Date}
		if formatted, err := format.Date(b.Date); err != nil {
			// Corrupted date in the store: render it as-is.
			c.logger.Debug("Keeping unparseable bill date",
				zap.String("bill_id", b.ID),
				zap.String("date", b.Date))
		} else {
			d.Date = formatted
		}
		d.Status = format.Status(b.Status)
		bills = append(bills, d)
	}

	c.logger.Debug("Bills fetched", zap.Int("count", len(bills)))
	return bills, nil
}

// HandleClickNewBill routes to the bill creation view.
func (c *Controller) HandleClickNewBill() {
	c.onNavigate(navigation.RouteNewBill)
}

// HandleClickIconEye surfaces the bill's receipt image in the overlay.
func (c *Controller) HandleClickIconEye(fileURL string) {
	if c.modal == nil {
		return
	}
	c.modal.ShowImage(fileURL)
}

// SortAntiChrono orders bills latest-first for rendering. It compares
// the raw stored dates, so the formatted display text comes out in
// reverse chronological order regardless of how it was localized.
func SortAntiChrono(bills []models.DisplayBill) {
	sort.SliceStable(bills, func(i, j int) bool {
		return bills[i].RawDate > bills[j].RawDate
	})
}
