package bills

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/billedhq/billed/internal/models"
	"github.com/billedhq/billed/internal/navigation"
	"github.com/billedhq/billed/internal/session"
	"github.com/billedhq/billed/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockStore implements store.Store over a canned bill list.
type MockStore struct {
	resource *MockBillsResource
}

func NewMockStore(bills []models.Bill) *MockStore {
	return &MockStore{resource: &MockBillsResource{bills: bills}}
}

func (m *MockStore) Bills() store.BillsResource { return m.resource }

type MockBillsResource struct {
	mu        sync.Mutex
	bills     []models.Bill
	listErr   error
	listCalls int
}

func (m *MockBillsResource) List(ctx context.Context) ([]models.Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.bills, nil
}

func (m *MockBillsResource) Create(ctx context.Context, upload store.Upload) (*store.CreateResult, error) {
	return nil, fmt.Errorf("not implemented")
}

func (m *MockBillsResource) Update(ctx context.Context, bill *models.Bill, selector string) error {
	return fmt.Errorf("not implemented")
}

// MockModal records overlay invocations.
type MockModal struct {
	mu   sync.Mutex
	urls []string
}

func (m *MockModal) ShowImage(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urls = append(m.urls, url)
}

func testUser() *session.User {
	return &session.User{Email: "employee@test.tld", Type: "Employee"}
}

func TestController_GetBills(t *testing.T) {
	logger := zap.NewNop()

	t.Run("returns nothing without a store", func(t *testing.T) {
		ctrl := New(Config{Store: nil, User: testUser()}, logger)

		got, err := ctrl.GetBills(context.Background())

		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("formats dates and status labels", func(t *testing.T) {
		st := NewMockStore([]models.Bill{
			{ID: "1", Date: "2023-01-01", Status: models.StatusPending},
			{ID: "2", Date: "2023-02-01", Status: models.StatusAccepted},
		})
		ctrl := New(Config{Store: st, User: testUser()}, logger)

		got, err := ctrl.GetBills(context.Background())

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "1 Jan. 23", got[0].Date)
		assert.Equal(t, "En attente", got[0].Status)
		assert.Equal(t, "1 Fév. 23", got[1].Date)
		assert.Equal(t, "Accepté", got[1].Status)
	})

	t.Run("keeps raw date when formatting fails", func(t *testing.T) {
		st := NewMockStore([]models.Bill{
			{ID: "1", Date: "invalid-date", Status: models.StatusPending},
			{ID: "2", Date: "2023-02-01", Status: models.StatusPending},
		})
		ctrl := New(Config{Store: st, User: testUser()}, logger)

		got, err := ctrl.GetBills(context.Background())

		require.NoError(t, err)
		require.Len(t, got, 2, "malformed record must not be dropped")
		assert.Equal(t, "invalid-date", got[0].Date)
		assert.Equal(t, "1 Fév. 23", got[1].Date)
	})

	t.Run("propagates list failure", func(t *testing.T) {
		st := NewMockStore(nil)
		st.resource.listErr = fmt.Errorf("erreur 404")
		ctrl := New(Config{Store: st, User: testUser()}, logger)

		got, err := ctrl.GetBills(context.Background())

		assert.Error(t, err)
		assert.ErrorContains(t, err, "erreur 404")
		assert.Nil(t, got)
	})

	t.Run("preserves store order", func(t *testing.T) {
		st := NewMockStore([]models.Bill{
			{ID: "b", Date: "2022-06-10", Status: models.StatusRefused},
			{ID: "a", Date: "2023-03-03", Status: models.StatusPending},
		})
		ctrl := New(Config{Store: st, User: testUser()}, logger)

		got, err := ctrl.GetBills(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "b", got[0].ID)
		assert.Equal(t, "a", got[1].ID)
	})
}

func TestController_HandleClickNewBill(t *testing.T) {
	var navigated []string
	ctrl := New(Config{
		User:       testUser(),
		OnNavigate: func(path string) { navigated = append(navigated, path) },
	}, zap.NewNop())

	ctrl.HandleClickNewBill()

	assert.Equal(t, []string{navigation.RouteNewBill}, navigated)
}

func TestController_HandleClickIconEye(t *testing.T) {
	modal := &MockModal{}
	ctrl := New(Config{User: testUser(), Modal: modal}, zap.NewNop())

	ctrl.HandleClickIconEye("https://store.test/receipts/1.jpg")
	ctrl.HandleClickIconEye("https://store.test/receipts/1.jpg")

	// Safe to invoke once per render, and repeating is harmless.
	assert.Equal(t, []string{
		"https://store.test/receipts/1.jpg",
		"https://store.test/receipts/1.jpg",
	}, modal.urls)
}

func TestSortAntiChrono(t *testing.T) {
	records := []models.DisplayBill{
		{Bill: models.Bill{ID: "jan", Date: "1 Jan. 23"}, RawDate: "2023-01-01"},
		{Bill: models.Bill{ID: "feb", Date: "1 Fév. 23"}, RawDate: "2023-02-01"},
	}

	SortAntiChrono(records)

	// Latest raw date first, so the February display text leads.
	assert.Equal(t, "1 Fév. 23", records[0].Date)
	assert.Equal(t, "1 Jan. 23", records[1].Date)
}
