package localstore

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"

	"github.com/billedhq/billed/internal/models"
	"github.com/billedhq/billed/internal/storage"
	"github.com/billedhq/billed/internal/store"
	"github.com/billedhq/billed/pkg/database"
	"go.uber.org/zap"
)

// Store is a SQLite-backed implementation of the store contract for
// offline and development use. Receipts land on local disk, bills in a
// single table; the key returned by Create is the row id.
type Store struct {
	db       *database.DB
	receipts storage.ReceiptStorage
	logger   *zap.Logger
}

// New creates a local store and ensures its schema exists.
func New(db *database.DB, receipts storage.ReceiptStorage, logger *zap.Logger) (*Store, error) {
	s := &Store{
		db:       db,
		receipts: receipts,
		logger:   logger,
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS bills (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		amount INTEGER NOT NULL DEFAULT 0,
		date TEXT NOT NULL DEFAULT '',
		vat TEXT NOT NULL DEFAULT '',
		pct INTEGER NOT NULL DEFAULT 0,
		commentary TEXT NOT NULL DEFAULT '',
		file_url TEXT NOT NULL DEFAULT '',
		file_name TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create bills table: %w", err)
	}
	return nil
}

// Bills returns the bills resource.
func (s *Store) Bills() store.BillsResource {
	return &billsResource{store: s}
}

type billsResource struct {
	store *Store
}

// List returns every stored bill in insertion order.
func (r *billsResource) List(ctx context.Context) ([]models.Bill, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, email, type, name, amount, date, vat, pct,
		       commentary, file_url, file_name, status
		FROM bills ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer rows.Close()

	var bills []models.Bill
	for rows.Next() {
		var b models.Bill
		var id int64
		if err := rows.Scan(&id, &b.Email, &b.Type, &b.Name, &b.Amount,
			&b.Date, &b.VAT, &b.Pct, &b.Commentary,
			&b.FileURL, &b.FileName, &b.Status); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		b.ID = strconv.FormatInt(id, 10)
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return bills, nil
}

// Create stores the receipt file and opens a draft bill row for it.
func (r *billsResource) Create(ctx context.Context, upload store.Upload) (*store.CreateResult, error) {
	content, err := io.ReadAll(upload.File)
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt file: %w", err)
	}

	fileURL, err := r.store.receipts.Save(upload.Email, upload.FileName, content)
	if err != nil {
		return nil, fmt.Errorf("failed to store receipt: %w", err)
	}

	res, err := r.store.db.ExecContext(ctx, `
		INSERT INTO bills (email, file_url, file_name, status)
		VALUES (?, ?, ?, ?)`,
		upload.Email, fileURL, upload.FileName, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to insert draft bill: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve draft bill id: %w", err)
	}

	r.store.logger.Debug("Draft bill created",
		zap.Int64("id", id),
		zap.String("file_name", upload.FileName))

	return &store.CreateResult{
		FileURL: fileURL,
		Key:     strconv.FormatInt(id, 10),
	}, nil
}

// Update persists the full bill under the draft key issued by Create.
func (r *billsResource) Update(ctx context.Context, bill *models.Bill, selector string) error {
	id, err := strconv.ParseInt(selector, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid bill selector %q: %w", selector, err)
	}

	res, err := r.store.db.ExecContext(ctx, `
		UPDATE bills
		SET email = ?, type = ?, name = ?, amount = ?, date = ?,
		    vat = ?, pct = ?, commentary = ?, file_url = ?,
		    file_name = ?, status = ?
		WHERE id = ?`,
		bill.Email, bill.Type, bill.Name, bill.Amount, bill.Date,
		bill.VAT, bill.Pct, bill.Commentary, bill.FileURL,
		bill.FileName, bill.Status, id)
	if err != nil {
		return fmt.Errorf("failed to update bill %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
