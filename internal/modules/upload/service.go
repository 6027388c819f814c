package upload

import (
	"context"
	"errors"
	"io"
	"time"

	"evisa/internal/domain"
	"evisa/internal/pkg/storage"
	"evisa/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApplicationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Application, error)
	Update(ctx context.Context, a *domain.Application) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfilePhoto(ctx context.Context, userID int64, key string) error
}

type UploadRecorder interface {
	DocumentUploaded(docType string, ok bool)
}

type Service struct {
	apps     ApplicationRepository
	users    UserRepository
	store    storage.Storage
	stager   *Stager
	recorder UploadRecorder
	log      *zap.Logger
	now      func() time.Time
}

func NewService(
	apps ApplicationRepository,
	users UserRepository,
	store storage.Storage,
	stager *Stager,
	recorder UploadRecorder,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		apps:     apps,
		users:    users,
		store:    store,
		stager:   stager,
		recorder: recorder,
		log:      log,
		now:      time.Now,
	}
}

func (s *Service) Stager() *Stager { return s.stager }

// discard drops a staged file after a failed operation.
func (s *Service) discard(ctx context.Context, f *StagedFile) {
	if err := s.stager.Discard(ctx, f); err != nil {
		s.log.Warn("staged file cleanup failed", zap.String("key", f.Key), zap.Error(err))
	}
}

func (s *Service) loadForDocuments(ctx context.Context, caller domain.Caller, appID int64) (*domain.Application, error) {
	app, err := s.apps.GetByID(ctx, appID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	if !domain.Can(caller.Role, caller.Owns(app.UserID), domain.ActionManageDocuments) {
		return nil, ErrForbidden
	}
	return app, nil
}

// loadForEdit is loadForDocuments plus the draft lock; only admins bypass it.
func (s *Service) loadForEdit(ctx context.Context, caller domain.Caller, appID int64) (*domain.Application, error) {
	app, err := s.loadForDocuments(ctx, caller, appID)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.StatusDraft && caller.Role != domain.RoleAdmin {
		return nil, ErrNotEditable
	}
	return app, nil
}

// UploadDocument attaches a staged file to an application. The staged file
// is removed on every failure path.
func (s *Service) UploadDocument(ctx context.Context, caller domain.Caller, appID int64, staged *StagedFile, docType string) (doc *domain.Document, err error) {
	if staged == nil {
		return nil, ErrNoFile
	}

	dt := domain.DocOther
	if docType != "" {
		dt = domain.DocumentType(docType)
	}
	defer func() {
		if err != nil {
			s.discard(ctx, staged)
		}
		if s.recorder != nil {
			s.recorder.DocumentUploaded(string(dt), err == nil)
		}
	}()

	app, err := s.loadForEdit(ctx, caller, appID)
	if err != nil {
		return nil, err
	}
	if !dt.IsValid() {
		return nil, ErrInvalidDocumentType
	}

	d := domain.Document{
		ID:           uuid.NewString(),
		DocumentType: dt,
		FileName:     staged.OriginalName,
		FilePath:     staged.Key,
		ContentType:  staged.ContentType,
		Size:         staged.Size,
		UploadedAt:   s.now(),
		Status:       domain.DocumentUploaded,
	}
	app.AttachDocument(d)

	if err := s.apps.Update(ctx, app); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	s.log.Info("document uploaded",
		zap.Int64("application_id", app.ID),
		zap.String("document_id", d.ID),
		zap.String("document_type", string(dt)),
		zap.Int64("size", d.Size),
	)
	return &d, nil
}

// OpenDocument returns the stored file. The caller closes the reader.
func (s *Service) OpenDocument(ctx context.Context, caller domain.Caller, appID int64, docID string) (io.ReadCloser, *domain.Document, error) {
	app, err := s.loadForDocuments(ctx, caller, appID)
	if err != nil {
		return nil, nil, err
	}
	doc, ok := app.FindDocument(docID)
	if !ok {
		return nil, nil, ErrDocumentNotFound
	}

	rc, err := s.store.Open(ctx, doc.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrStoredObjectNotFound
		}
		return nil, nil, err
	}
	return rc, doc, nil
}

func (s *Service) DeleteDocument(ctx context.Context, caller domain.Caller, appID int64, docID string) error {
	app, err := s.loadForEdit(ctx, caller, appID)
	if err != nil {
		return err
	}
	doc, ok := app.FindDocument(docID)
	if !ok {
		return ErrDocumentNotFound
	}

	// storage tolerates an already missing object
	if err := s.store.Delete(ctx, doc.FilePath); err != nil {
		return err
	}

	app.RemoveDocument(docID)
	return s.apps.Update(ctx, app)
}

type ProfilePhoto struct {
	Key string `json:"photo_path"`
	URL string `json:"url,omitempty"`
}

// UploadProfilePhoto replaces the caller's photo and removes the old file.
func (s *Service) UploadProfilePhoto(ctx context.Context, caller domain.Caller, staged *StagedFile) (photo *ProfilePhoto, err error) {
	if staged == nil {
		return nil, ErrNoFile
	}
	defer func() {
		if err != nil {
			s.discard(ctx, staged)
		}
	}()

	user, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.users.UpdateProfilePhoto(ctx, user.ID, staged.Key); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if old := user.ProfilePhoto; old != "" && old != staged.Key {
		if err := s.store.Delete(ctx, old); err != nil {
			s.log.Warn("old profile photo cleanup failed", zap.Int64("user_id", user.ID), zap.String("key", old), zap.Error(err))
		}
	}

	return &ProfilePhoto{Key: staged.Key, URL: s.store.URL(staged.Key)}, nil
}
