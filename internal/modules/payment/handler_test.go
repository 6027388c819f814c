package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"evisa/internal/domain"
	"evisa/internal/middleware"
	"evisa/internal/pkg/jwt"
	"evisa/internal/pkg/testutil"
	"evisa/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPaymentRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	db := testutil.NewDB(t)
	users := repository.NewUserRepository(db)
	apps := repository.NewApplicationRepository(db)
	payments := repository.NewPaymentRepository(db)
	j := jwt.New("test-secret", time.Hour)
	notes := &paymentNotifications{}

	r := gin.New()
	protected := r.Group("/api")
	protected.Use(middleware.JWTAuth(j))
	NewHandler(NewService(payments, apps, users, notes, zap.NewNop())).RegisterProtectedRoutes(protected)

	mkUser := func(email, passport string, role domain.UserRole) (*domain.User, string) {
		u := &domain.User{FullName: email, Email: email, PasswordHash: "x", Phone: "1", Nationality: "Thai", PassportNumber: passport, Role: role}
		require.NoError(t, users.Create(ctx, u))
		tok, err := j.GenerateToken(u.ID, string(role))
		require.NoError(t, err)
		return u, tok
	}
	ownerUser, ownerTok := mkUser("owner@example.com", "P1", domain.RoleUser)
	_, managerTok := mkUser("manager@example.com", "M1", domain.RoleManager)

	app := domain.NewApplication(ownerUser.ID, time.Now())
	app.BookingNumber = "TH-2026-2222"
	app.FullName, app.Email, app.Phone, app.Nationality, app.PassportNumber = "Owner", ownerUser.Email, "1", "Thai", "P1"
	app.VisaType, app.EntryType, app.Duration, app.PurposeOfVisit, app.SubmittedTo = domain.VisaBusiness, domain.EntryMultiple, "90 days", "Work", "Embassy"
	require.NoError(t, apps.Create(ctx, app))

	do := func(method, path, token string, body any) (int, map[string]any) {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		var env map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
		return w.Code, env
	}
	path := fmt.Sprintf("/api/applications/%d/payments", app.ID)

	code, _ := do(http.MethodPost, path, ownerTok, map[string]any{"payment_method": "PayPal"})
	assert.Equal(t, http.StatusForbidden, code, "applicants cannot record payments")

	code, _ = do(http.MethodPost, path, managerTok, map[string]any{"payment_method": "Cash"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := do(http.MethodPost, path, managerTok, map[string]any{"payment_method": "Bank Transfer", "amount": "40.00"})
	require.Equal(t, http.StatusCreated, code, env)
	txn := env["data"].(map[string]any)["transaction_id"].(string)
	assert.Regexp(t, `^TXN-[0-9A-Z]{26}$`, txn)

	stored, err := apps.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, txn, stored.PaymentID)
	require.Len(t, notes.payments, 1)

	code, _ = do(http.MethodPost, path, managerTok, map[string]any{"payment_method": "Bank Transfer"})
	assert.Equal(t, http.StatusBadRequest, code, "second payment is refused")

	code, env = do(http.MethodGet, path, ownerTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, env["count"])
}
