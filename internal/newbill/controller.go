package newbill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/billedhq/billed/internal/models"
	"github.com/billedhq/billed/internal/navigation"
	"github.com/billedhq/billed/internal/session"
	"github.com/billedhq/billed/internal/store"
	"go.uber.org/zap"
)

// FileTypeAlert is shown verbatim when a receipt with a disallowed
// extension is selected.
const FileTypeAlert = "Seuls les fichiers jpg, jpeg, png et gif sont acceptés."

// DefaultPct is the fallback VAT percentage applied when the form field
// is empty, unparsable or zero. The running value comes from config.
const DefaultPct = 20

// ErrUnsupportedFileType reports a receipt rejected by the extension
// gate. The user has already been alerted when this is returned.
var ErrUnsupportedFileType = errors.New("unsupported receipt file type")

var allowedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
}

// State tracks the creation lifecycle of one controller instance.
type State int

const (
	StateEmpty     State = iota // no receipt chosen
	StateUploading              // receipt selected, upload in flight
	StateAttached               // upload succeeded, metadata held
	StateSubmitted              // bill persisted, instance done
)

// Alerter warns the user with a blocking message.
type Alerter interface {
	Alert(message string)
}

// FileInput is the chosen receipt plus control over the picker widget,
// so a rejected selection can be cleared.
type FileInput interface {
	Name() string
	Open() (io.ReadCloser, error)
	Reset()
}

// Form carries the raw field values of the new-bill form. Everything is
// a string; the controller does the parsing.
type Form struct {
	Type       string
	Name       string
	Amount     string
	Date       string
	VAT        string
	Pct        string
	Commentary string
}

// Controller owns the two-phase creation flow: receipt upload, then
// form validation and submission.
type Controller struct {
	store      store.Store
	onNavigate navigation.Navigator
	user       *session.User
	alerter    Alerter
	defaultPct int
	logger     *zap.Logger

	mu       sync.Mutex
	state    State
	version  uint64 // bumped per selection; stale upload results are dropped
	fileURL  string
	fileName string
	billID   string
}

// Config holds creation controller dependencies.
type Config struct {
	Store      store.Store
	OnNavigate navigation.Navigator
	User       *session.User
	Alerter    Alerter
	DefaultPct int // 0 means DefaultPct
}

// New creates a bill creation controller in the Empty state.
func New(cfg Config, logger *zap.Logger) *Controller {
	pct := cfg.DefaultPct
	if pct == 0 {
		pct = DefaultPct
	}
	return &Controller{
		store:      cfg.Store,
		onNavigate: cfg.OnNavigate,
		user:       cfg.User,
		alerter:    cfg.Alerter,
		defaultPct: pct,
		logger:     logger,
	}
}

// HandleChangeFile validates the chosen receipt and uploads it. A file
// outside the allowed extensions alerts the user, clears the picker and
// never reaches the store. A failed upload is logged only; the user can
// simply pick a file again. Selecting a new file while an earlier
// upload is still in flight supersedes it: whichever selection is
// latest wins, regardless of settlement order.
func (c *Controller) HandleChangeFile(ctx context.Context, file FileInput) error {
	if file == nil {
		return nil
	}

	fileName := file.Name()
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if !allowedExtensions[ext] {
		if c.alerter != nil {
			c.alerter.Alert(FileTypeAlert)
		}
		file.Reset()
		return ErrUnsupportedFileType
	}

	if c.store == nil {
		c.logger.Warn("No store configured, receipt not uploaded",
			zap.String("file_name", fileName))
		return nil
	}

	c.mu.Lock()
	c.version++
	version := c.version
	c.state = StateUploading
	c.mu.Unlock()

	content, err := file.Open()
	if err != nil {
		c.settleUpload(version, func() {
			c.state = StateEmpty
		})
		return fmt.Errorf("failed to open receipt file: %w", err)
	}
	defer content.Close()

	result, err := c.store.Bills().Create(ctx, store.Upload{
		FileName:      fileName,
		File:          content,
		Email:         c.user.Email,
		NoContentType: true,
	})

	if err != nil {
		c.logger.Error("Create API call failed", zap.Error(err))
		c.settleUpload(version, func() {
			c.state = StateEmpty
		})
		return nil
	}

	c.settleUpload(version, func() {
		c.billID = result.Key
		c.fileURL = result.FileURL
		c.fileName = fileName
		c.state = StateAttached
	})
	return nil
}

// settleUpload applies fn only when the upload is still the latest
// selection; results of superseded uploads are discarded.
func (c *Controller) settleUpload(version uint64, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if version != c.version {
		c.logger.Debug("Discarding superseded upload result",
			zap.Uint64("version", version),
			zap.Uint64("current", c.version))
		return
	}
	fn()
}

// HandleSubmit validates the form, assembles the bill and persists it.
// Missing required fields abort silently; the native form affordances
// are the only feedback. Navigation to the bill list happens once, only
// after the persist call has settled successfully.
func (c *Controller) HandleSubmit(ctx context.Context, form Form) error {
	amount, _ := strconv.Atoi(strings.TrimSpace(form.Amount))
	if form.Type == "" || form.Name == "" || amount == 0 || form.Date == "" {
		c.logger.Debug("Submission blocked, required fields missing")
		return nil
	}

	pct, err := strconv.Atoi(strings.TrimSpace(form.Pct))
	if err != nil || pct == 0 {
		pct = c.defaultPct
	}

	c.mu.Lock()
	bill := models.Bill{
		Email:      c.user.Email,
		Type:       form.Type,
		Name:       form.Name,
		Amount:     amount,
		Date:       form.Date,
		VAT:        form.VAT,
		Pct:        pct,
		Commentary: form.Commentary,
		FileURL:    c.fileURL,
		FileName:   c.fileName,
		Status:     models.StatusPending,
	}
	selector := c.billID
	c.mu.Unlock()

	if err := c.persistBill(ctx, &bill, selector); err != nil {
		return err
	}

	c.mu.Lock()
	c.state = StateSubmitted
	c.mu.Unlock()

	c.onNavigate(navigation.RouteBills)
	return nil
}

// persistBill writes the assembled bill under the draft key held since
// the upload. Without a store this is a no-op.
func (c *Controller) persistBill(ctx context.Context, bill *models.Bill, selector string) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Bills().Update(ctx, bill, selector); err != nil {
		c.logger.Error("Update API call failed", zap.Error(err))
		return fmt.Errorf("failed to persist bill: %w", err)
	}
	return nil
}

// State reports the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Attachment reports the held upload metadata: draft key, hosted file
// URL and original file name.
func (c *Controller) Attachment() (billID, fileURL, fileName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.billID, c.fileURL, c.fileName
}
