package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"evisa/internal/domain"
	"evisa/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) CreateAndMarkPaid(ctx context.Context, p *domain.Payment, app *domain.Application) error {
	args := m.Called(ctx, p, app)
	return args.Error(0)
}

func (m *mockPaymentRepo) ListByApplication(ctx context.Context, applicationID int64) ([]domain.Payment, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

type mockApps struct {
	mock.Mock
}

func (m *mockApps) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type paymentNotifications struct {
	payments []*domain.Payment
}

func (n *paymentNotifications) PaymentReceived(_ *domain.User, _ *domain.Application, p *domain.Payment) {
	n.payments = append(n.payments, p)
}

type fixture struct {
	payments *mockPaymentRepo
	apps     *mockApps
	users    *mockUsers
	notes    *paymentNotifications
	svc      *Service
	now      time.Time
}

func newFixture() *fixture {
	f := &fixture{
		payments: new(mockPaymentRepo),
		apps:     new(mockApps),
		users:    new(mockUsers),
		notes:    &paymentNotifications{},
		now:      time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.payments, f.apps, f.users, f.notes, zap.NewNop())
	f.svc.now = func() time.Time { return f.now }
	f.svc.newTxnID = func() string { return "TXN-TEST" }
	return f
}

func pendingApp() *domain.Application {
	a := domain.NewApplication(7, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	a.ID = 3
	a.BookingNumber = "TH-2026-1234"
	return a
}

var (
	admin   = domain.Caller{UserID: 1, Role: domain.RoleAdmin}
	manager = domain.Caller{UserID: 2, Role: domain.RoleManager}
	owner   = domain.Caller{UserID: 7, Role: domain.RoleUser}
)

func TestRecord_DefaultsAndMarksPaid(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	app := pendingApp()

	f.apps.On("GetByID", ctx, int64(3)).Return(app, nil)
	f.payments.On("CreateAndMarkPaid", ctx, mock.AnythingOfType("*domain.Payment"), app).Return(nil)
	f.users.On("GetByID", ctx, int64(7)).Return(&domain.User{ID: 7, Email: "o@example.com"}, nil)

	p, err := f.svc.Record(ctx, manager, 3, RecordRequest{PaymentMethod: "Credit Card", CardLast4: "4242"})
	require.NoError(t, err)

	assert.True(t, p.Amount.Equal(domain.DefaultPaymentAmount))
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, "TXN-TEST", p.TransactionID)
	assert.Equal(t, domain.TransactionCompleted, p.Status)
	assert.Equal(t, int64(7), p.UserID)

	assert.Equal(t, domain.PaymentPaid, app.PaymentStatus)
	assert.Equal(t, "TXN-TEST", app.PaymentID)
	require.NotNil(t, app.PaymentDate)
	assert.Equal(t, f.now, *app.PaymentDate)
	assert.Equal(t, domain.StatusDraft, app.Status, "payment does not move the application status")

	require.Len(t, f.notes.payments, 1)
	f.payments.AssertExpectations(t)
}

func TestRecord_CustomAmount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	app := pendingApp()
	amount := decimal.RequireFromString("55.50")

	f.apps.On("GetByID", ctx, int64(3)).Return(app, nil)
	f.payments.On("CreateAndMarkPaid", ctx, mock.Anything, app).Return(nil)
	f.users.On("GetByID", ctx, int64(7)).Return(&domain.User{ID: 7}, nil)

	p, err := f.svc.Record(ctx, admin, 3, RecordRequest{PaymentMethod: "PayPal", Amount: &amount, Currency: "eur"})
	require.NoError(t, err)
	assert.Equal(t, "55.50", p.Amount.StringFixed(2))
	assert.Equal(t, "EUR", p.Currency)
	assert.True(t, app.PaymentAmount.Equal(amount))
}

func TestRecord_Rejections(t *testing.T) {
	zero := decimal.Zero
	tests := []struct {
		name    string
		caller  domain.Caller
		req     RecordRequest
		paid    bool
		wantErr error
	}{
		{"owner cannot record", owner, RecordRequest{PaymentMethod: "PayPal"}, false, ErrForbidden},
		{"already paid", admin, RecordRequest{PaymentMethod: "PayPal"}, true, ErrAlreadyPaid},
		{"bad method", admin, RecordRequest{PaymentMethod: "Cash"}, false, ErrInvalidMethod},
		{"zero amount", admin, RecordRequest{PaymentMethod: "PayPal", Amount: &zero}, false, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			app := pendingApp()
			if tt.paid {
				app.PaymentStatus = domain.PaymentPaid
			}
			f.apps.On("GetByID", mock.Anything, int64(3)).Return(app, nil)

			_, err := f.svc.Record(context.Background(), tt.caller, 3, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			f.payments.AssertNotCalled(t, "CreateAndMarkPaid", mock.Anything, mock.Anything, mock.Anything)
			assert.Empty(t, f.notes.payments)
		})
	}
}

func TestRecord_StoreFailureSendsNothing(t *testing.T) {
	f := newFixture()
	app := pendingApp()
	f.apps.On("GetByID", mock.Anything, int64(3)).Return(app, nil)
	f.payments.On("CreateAndMarkPaid", mock.Anything, mock.Anything, app).Return(errors.New("tx aborted"))

	_, err := f.svc.Record(context.Background(), admin, 3, RecordRequest{PaymentMethod: "Stripe"})
	assert.EqualError(t, err, "tx aborted")
	assert.Empty(t, f.notes.payments)
}

func TestRecord_LostRaceIsAlreadyPaid(t *testing.T) {
	f := newFixture()
	app := pendingApp()
	f.apps.On("GetByID", mock.Anything, int64(3)).Return(app, nil)
	f.payments.On("CreateAndMarkPaid", mock.Anything, mock.Anything, app).Return(repository.ErrAlreadyPaid)

	_, err := f.svc.Record(context.Background(), admin, 3, RecordRequest{PaymentMethod: "PayPal"})
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assert.Empty(t, f.notes.payments)
}

func TestList_Access(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.apps.On("GetByID", ctx, int64(3)).Return(pendingApp(), nil)
	f.apps.On("GetByID", ctx, int64(4)).Return(nil, repository.ErrNotFound)
	f.payments.On("ListByApplication", ctx, int64(3)).Return([]domain.Payment{{ID: 1}}, nil)

	for _, c := range []domain.Caller{owner, admin, manager} {
		list, err := f.svc.List(ctx, c, 3)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	}

	_, err := f.svc.List(ctx, domain.Caller{UserID: 99, Role: domain.RoleUser}, 3)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.List(ctx, admin, 4)
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}
