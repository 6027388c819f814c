package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"evisa/internal/domain"
	"evisa/internal/middleware"
	"evisa/internal/pkg/jwt"
	"evisa/internal/pkg/storage"
	"evisa/internal/pkg/testutil"
	"evisa/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type uploadServer struct {
	router *gin.Engine
	jwt    *jwt.Service
	users  *repository.UserRepository
	apps   *repository.ApplicationRepository
	dir    string
}

func newUploadServer(t *testing.T, maxSize int64) *uploadServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	dir := t.TempDir()
	disk, err := storage.NewDiskStorage(dir, "/uploads")
	require.NoError(t, err)

	users := repository.NewUserRepository(db)
	apps := repository.NewApplicationRepository(db)
	svc := NewService(apps, users, disk, NewStager(disk, maxSize), nil, zap.NewNop())
	j := jwt.New("test-secret", time.Hour)

	r := gin.New()
	protected := r.Group("/api")
	protected.Use(middleware.JWTAuth(j))
	NewHandler(svc).RegisterProtectedRoutes(protected)

	return &uploadServer{router: r, jwt: j, users: users, apps: apps, dir: dir}
}

func (s *uploadServer) user(t *testing.T, email, passport string, role domain.UserRole) (*domain.User, string) {
	t.Helper()
	u := &domain.User{
		FullName:       "User " + email,
		Email:          email,
		PasswordHash:   "x",
		Phone:          "+66 000",
		Nationality:    "Thai",
		DateOfBirth:    time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		PassportNumber: passport,
		Role:           role,
	}
	require.NoError(t, s.users.Create(context.Background(), u))
	token, err := s.jwt.GenerateToken(u.ID, string(u.Role))
	require.NoError(t, err)
	return u, token
}

func (s *uploadServer) application(t *testing.T, owner *domain.User) *domain.Application {
	t.Helper()
	a := domain.NewApplication(owner.ID, time.Now())
	a.BookingNumber = fmt.Sprintf("TH-2026-%04d", 1000+owner.ID)
	a.FullName = owner.FullName
	a.Email = owner.Email
	a.Phone = owner.Phone
	a.DateOfBirth = owner.DateOfBirth
	a.Nationality = owner.Nationality
	a.PassportNumber = owner.PassportNumber
	a.VisaType = domain.VisaTourist
	a.EntryType = domain.EntrySingle
	a.Duration = "30 days"
	a.PurposeOfVisit = "Holiday"
	a.IntendedArrivalDate = time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	a.SubmittedTo = "Royal Thai Embassy"
	require.NoError(t, s.apps.Create(context.Background(), a))
	return a
}

func (s *uploadServer) post(t *testing.T, path, token, field, filename, contentType string, content []byte, extra map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	body, ct := multipartBody(t, field, filename, contentType, content, extra)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func (s *uploadServer) send(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *uploadServer) storedFiles(t *testing.T, folder string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(s.dir, folder))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return entries
}

func TestUploadDocument_AttachDownloadDelete(t *testing.T) {
	s := newUploadServer(t, 0)
	owner, token := s.user(t, "owner@example.com", "P100", domain.RoleUser)
	app := s.application(t, owner)

	w, env := s.post(t, fmt.Sprintf("/api/upload/%d", app.ID), token, "document", "flight.pdf", "application/pdf", pdfBody,
		map[string]string{"documentType": "Flight Booking"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, env["success"])

	data := env["data"].(map[string]any)
	docID := data["id"].(string)
	assert.Equal(t, "Flight Booking", data["document_type"])
	assert.Equal(t, "Uploaded", data["status"])
	assert.Equal(t, "flight.pdf", data["file_name"])

	stored, err := s.apps.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	require.Len(t, stored.Documents, 1)
	assert.Equal(t, docID, stored.Documents[0].ID)

	get := s.send(http.MethodGet, fmt.Sprintf("/api/upload/%d/%s", app.ID, docID), token)
	require.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, "application/pdf", get.Header().Get("Content-Type"))
	body, _ := io.ReadAll(get.Body)
	assert.Equal(t, pdfBody, body)

	del := s.send(http.MethodDelete, fmt.Sprintf("/api/upload/%d/%s", app.ID, docID), token)
	require.Equal(t, http.StatusOK, del.Code, del.Body.String())

	stored, err = s.apps.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Documents)
	assert.Empty(t, s.storedFiles(t, "documents"))

	missing := s.send(http.MethodGet, fmt.Sprintf("/api/upload/%d/%s", app.ID, docID), token)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	again := s.send(http.MethodDelete, fmt.Sprintf("/api/upload/%d/%s", app.ID, docID), token)
	assert.Equal(t, http.StatusNotFound, again.Code, again.Body.String())
}

func TestUploadDocument_DefaultsToOther(t *testing.T) {
	s := newUploadServer(t, 0)
	owner, token := s.user(t, "owner@example.com", "P100", domain.RoleUser)
	app := s.application(t, owner)

	w, env := s.post(t, fmt.Sprintf("/api/upload/%d", app.ID), token, "document", "scan.png", "image/png", pngBody, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Other", env["data"].(map[string]any)["document_type"])
}

func TestUploadDocument_RejectionsLeaveNoFile(t *testing.T) {
	s := newUploadServer(t, 64)
	owner, token := s.user(t, "owner@example.com", "P100", domain.RoleUser)
	_, otherToken := s.user(t, "other@example.com", "P200", domain.RoleUser)
	app := s.application(t, owner)
	path := fmt.Sprintf("/api/upload/%d", app.ID)

	w, _ := s.post(t, path, otherToken, "document", "a.pdf", "application/pdf", pdfBody, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.post(t, path, token, "document", "a.pdf", "application/pdf", pdfBody, map[string]string{"documentType": "Selfie"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.post(t, path, token, "document", "a.txt", "text/plain", []byte("hello"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := s.post(t, path, token, "document", "big.pdf", "application/pdf", bytes.Repeat([]byte("%PDF-1.4"), 20), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "FILE_TOO_LARGE", env["code"])

	// body over the request cap is cut off before the form is parsed
	w, env = s.post(t, path, token, "document", "huge.pdf", "application/pdf", bytes.Repeat([]byte("%PDF-1.4"), formOverhead/4), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "FILE_TOO_LARGE", env["code"])

	w, _ = s.post(t, "/api/upload/9999", token, "document", "a.pdf", "application/pdf", pdfBody, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.post(t, path, token, "wrongField", "a.pdf", "application/pdf", pdfBody, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, s.storedFiles(t, "documents"))

	stored, err := s.apps.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Documents)
}

func TestUploadDocument_StaffAccess(t *testing.T) {
	s := newUploadServer(t, 0)
	owner, _ := s.user(t, "owner@example.com", "P100", domain.RoleUser)
	_, adminToken := s.user(t, "admin@example.com", "A1", domain.RoleAdmin)
	app := s.application(t, owner)

	w, _ := s.post(t, fmt.Sprintf("/api/upload/%d", app.ID), adminToken, "document", "a.pdf", "application/pdf", pdfBody, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestUploadDocument_LockedAfterSubmit(t *testing.T) {
	s := newUploadServer(t, 0)
	owner, token := s.user(t, "owner@example.com", "P100", domain.RoleUser)
	_, adminToken := s.user(t, "admin@example.com", "A1", domain.RoleAdmin)
	app := s.application(t, owner)
	path := fmt.Sprintf("/api/upload/%d", app.ID)

	w, env := s.post(t, path, token, "document", "passport.pdf", "application/pdf", pdfBody, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	docID := env["data"].(map[string]any)["id"].(string)

	ctx := context.Background()
	stored, err := s.apps.GetByID(ctx, app.ID)
	require.NoError(t, err)
	_, err = stored.ChangeStatus(domain.StatusSubmitted, time.Now())
	require.NoError(t, err)
	require.NoError(t, s.apps.Update(ctx, stored))

	w, env = s.post(t, path, token, "document", "late.pdf", "application/pdf", pdfBody, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "INVALID_STATE", env["code"])
	assert.Len(t, s.storedFiles(t, "documents"), 1, "rejected upload is discarded")

	del := s.send(http.MethodDelete, fmt.Sprintf("%s/%s", path, docID), token)
	assert.Equal(t, http.StatusBadRequest, del.Code, del.Body.String())

	get := s.send(http.MethodGet, fmt.Sprintf("%s/%s", path, docID), token)
	assert.Equal(t, http.StatusOK, get.Code, "owners can still download")

	w, _ = s.post(t, path, adminToken, "document", "extra.pdf", "application/pdf", pdfBody, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	del = s.send(http.MethodDelete, fmt.Sprintf("%s/%s", path, docID), adminToken)
	assert.Equal(t, http.StatusOK, del.Code, del.Body.String())

	stored, err = s.apps.GetByID(ctx, app.ID)
	require.NoError(t, err)
	require.Len(t, stored.Documents, 1)
	assert.Equal(t, "extra.pdf", stored.Documents[0].FileName)
}

func TestUploadProfilePhoto_ReplacesOldFile(t *testing.T) {
	s := newUploadServer(t, 0)
	u, token := s.user(t, "owner@example.com", "P100", domain.RoleUser)

	w, env := s.post(t, "/api/upload/profile-photo", token, "photo", "me.png", "image/png", pngBody, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := env["data"].(map[string]any)["photo_path"].(string)
	assert.Equal(t, "/uploads/"+first, env["data"].(map[string]any)["url"])

	w, env = s.post(t, "/api/upload/profile-photo", token, "photo", "me2.png", "image/png", pngBody, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	second := env["data"].(map[string]any)["photo_path"].(string)
	require.NotEqual(t, first, second)

	stored, err := s.users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, second, stored.ProfilePhoto)

	_, err = os.Stat(filepath.Join(s.dir, filepath.FromSlash(first)))
	assert.True(t, os.IsNotExist(err), "previous photo is removed")
	_, err = os.Stat(filepath.Join(s.dir, filepath.FromSlash(second)))
	assert.NoError(t, err)
}

func TestUpload_RequiresAuth(t *testing.T) {
	s := newUploadServer(t, 0)
	req := httptest.NewRequest(http.MethodPost, "/api/upload/profile-photo", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
