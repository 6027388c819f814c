package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"evisa/internal/domain"
	"evisa/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxBookingAttempts = 5

type Service struct {
	apps     ApplicationRepository
	users    UserRepository
	files    FileRemover
	notifier Notifier
	recorder StatusRecorder
	log      *zap.Logger

	now           func() time.Time
	bookingNumber func(time.Time) string
}

func NewService(
	apps ApplicationRepository,
	users UserRepository,
	files FileRemover,
	notifier Notifier,
	recorder StatusRecorder,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		apps:          apps,
		users:         users,
		files:         files,
		notifier:      notifier,
		recorder:      recorder,
		log:           log,
		now:           time.Now,
		bookingNumber: NewBookingNumber,
	}
}

// NewBookingNumber returns "TH-<year>-<4 digits>".
func NewBookingNumber(at time.Time) string {
	return fmt.Sprintf("TH-%d-%d", at.Year(), 1000+rand.IntN(9000))
}

func (s *Service) Create(ctx context.Context, caller domain.Caller, in ApplicationInput) (*domain.Application, error) {
	user, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	now := s.now()
	app := domain.NewApplication(caller.UserID, now)
	in.apply(app)
	fillFromProfile(app, user)

	if err := app.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	for attempt := 1; attempt <= maxBookingAttempts; attempt++ {
		app.ID = 0
		app.BookingNumber = s.bookingNumber(now)

		err := s.apps.Create(ctx, app)
		if err == nil {
			s.log.Info("application created",
				zap.Int64("application_id", app.ID),
				zap.String("booking_number", app.BookingNumber),
				zap.Int64("user_id", caller.UserID),
			)
			return app, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}
		s.log.Warn("booking number collision, retrying",
			zap.String("booking_number", app.BookingNumber),
			zap.Int("attempt", attempt),
		)
	}
	return nil, ErrBookingNumberExhausted
}

func fillFromProfile(a *domain.Application, u *domain.User) {
	if strings.TrimSpace(a.FullName) == "" {
		a.FullName = u.FullName
	}
	if strings.TrimSpace(a.Email) == "" {
		a.Email = u.Email
	}
	if strings.TrimSpace(a.Phone) == "" {
		a.Phone = u.Phone
	}
	if strings.TrimSpace(a.Nationality) == "" {
		a.Nationality = u.Nationality
	}
	if a.DateOfBirth.IsZero() {
		a.DateOfBirth = u.DateOfBirth
	}
	if strings.TrimSpace(a.PassportNumber) == "" {
		a.PassportNumber = u.PassportNumber
	}
}

// load fetches the application and checks that caller may perform action on it.
func (s *Service) load(ctx context.Context, caller domain.Caller, id int64, action domain.Action) (*domain.Application, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !domain.Can(caller.Role, caller.Owns(app.UserID), action) {
		return nil, ErrForbidden
	}
	return app, nil
}

func (s *Service) Get(ctx context.Context, caller domain.Caller, id int64) (*domain.Application, error) {
	return s.load(ctx, caller, id, domain.ActionRead)
}

// GetByBookingNumber is the public lookup. Only the owner's name and email
// are attached.
func (s *Service) GetByBookingNumber(ctx context.Context, number string) (*domain.Application, error) {
	app, err := s.apps.GetByBookingNumber(ctx, number)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	owner, err := s.users.GetByID(ctx, app.UserID)
	switch {
	case err == nil:
		app.Owner = owner.Summary()
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, err
	}
	return app, nil
}

func (s *Service) ListMine(ctx context.Context, caller domain.Caller) ([]domain.Application, error) {
	apps, err := s.apps.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []domain.Application{}
	}
	return apps, nil
}

func (s *Service) Update(ctx context.Context, caller domain.Caller, id int64, in ApplicationInput) (*domain.Application, error) {
	app, err := s.load(ctx, caller, id, domain.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.StatusDraft && caller.Role != domain.RoleAdmin {
		return nil, ErrNotEditable
	}

	in.apply(app)
	if err := app.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.apps.Update(ctx, app); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

func (s *Service) Submit(ctx context.Context, caller domain.Caller, id int64) (*domain.Application, error) {
	app, err := s.load(ctx, caller, id, domain.ActionSubmit)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.StatusDraft {
		return nil, ErrAlreadySubmitted
	}

	now := s.now()
	if _, err := app.ChangeStatus(domain.StatusSubmitted, now); err != nil {
		return nil, err
	}
	app.SubmittedAt = &now

	if err := s.apps.Update(ctx, app); err != nil {
		return nil, err
	}
	s.recordStatus(app.Status)

	if user, err := s.users.GetByID(ctx, app.UserID); err == nil {
		s.notifier.ApplicationSubmitted(user, app)
	} else {
		s.log.Warn("submitted application owner lookup failed", zap.Int64("application_id", app.ID), zap.Error(err))
	}
	return app, nil
}

// Delete removes the application and then, best effort, its document files.
func (s *Service) Delete(ctx context.Context, caller domain.Caller, id int64) error {
	app, err := s.load(ctx, caller, id, domain.ActionDelete)
	if err != nil {
		return err
	}

	if err := s.apps.Delete(ctx, app.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	for _, doc := range app.Documents {
		if err := s.files.Delete(ctx, doc.FilePath); err != nil {
			s.log.Warn("document file cleanup failed",
				zap.Int64("application_id", app.ID),
				zap.String("document_id", doc.ID),
				zap.String("key", doc.FilePath),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *Service) AdminList(ctx context.Context, q ListQuery) (*ListResult, error) {
	q = q.normalize()

	var status domain.ApplicationStatus
	if q.Status != "" {
		status = domain.ApplicationStatus(q.Status)
		if !status.IsValid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, q.Status)
		}
	}

	items, total, err := s.apps.List(ctx, repository.ApplicationFilter{
		Status: status,
		Search: q.Search,
		Page:   q.Page,
		Limit:  q.Limit,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Application{}
	}
	if err := s.attachOwners(ctx, items); err != nil {
		return nil, err
	}

	return &ListResult{
		Items:       items,
		Total:       total,
		TotalPages:  int((total + int64(q.Limit) - 1) / int64(q.Limit)),
		CurrentPage: q.Page,
	}, nil
}

func (s *Service) attachOwners(ctx context.Context, items []domain.Application) error {
	seen := make(map[int64]bool, len(items))
	ids := make([]int64, 0, len(items))
	for _, a := range items {
		if !seen[a.UserID] {
			seen[a.UserID] = true
			ids = append(ids, a.UserID)
		}
	}

	owners, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range items {
		if u, ok := owners[items[i].UserID]; ok {
			items[i].Owner = u.Summary()
		}
	}
	return nil
}

func (s *Service) AdminUpdateStatus(ctx context.Context, caller domain.Caller, id int64, req UpdateStatusRequest) (*domain.Application, error) {
	status := domain.ApplicationStatus(strings.TrimSpace(req.Status))
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q, expected one of %s", ErrValidation, req.Status, statusList())
	}

	app, err := s.load(ctx, caller, id, domain.ActionReview)
	if err != nil {
		return nil, err
	}

	now := s.now()
	changed, err := app.ChangeStatus(status, now)
	if err != nil {
		return nil, err
	}
	if note := strings.TrimSpace(req.Note); note != "" {
		app.AddAdminNote(domain.AdminNote{
			ID:      uuid.NewString(),
			Note:    note,
			AddedBy: caller.UserID,
			AddedAt: now,
		})
	}
	if changed {
		switch status {
		case domain.StatusApproved:
			app.ApprovedAt = &now
		case domain.StatusRejected:
			app.RejectedAt = &now
		}
	}

	if err := s.apps.Update(ctx, app); err != nil {
		return nil, err
	}

	s.log.Info("application status updated",
		zap.Int64("application_id", app.ID),
		zap.String("status", string(app.Status)),
		zap.Bool("changed", changed),
		zap.Int64("by", caller.UserID),
	)

	if changed {
		s.recordStatus(app.Status)
		if user, err := s.users.GetByID(ctx, app.UserID); err == nil {
			s.notifier.StatusChanged(user, app)
		} else {
			s.log.Warn("status change owner lookup failed", zap.Int64("application_id", app.ID), zap.Error(err))
		}
	}
	return app, nil
}

func statusList() string {
	statuses := domain.ApplicationStatuses()
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	g, gctx := errgroup.WithContext(ctx)

	counts := []struct {
		dst    *int64
		status domain.ApplicationStatus
	}{
		{&st.Total, ""},
		{&st.Pending, domain.StatusSubmitted},
		{&st.Processing, domain.StatusProcessing},
		{&st.Approved, domain.StatusApproved},
		{&st.Rejected, domain.StatusRejected},
	}
	for _, c := range counts {
		g.Go(func() error {
			n, err := s.apps.CountByStatus(gctx, c.status)
			if err != nil {
				return err
			}
			*c.dst = n
			return nil
		})
	}
	g.Go(func() error {
		rows, err := s.apps.GroupByStatus(gctx)
		if err != nil {
			return err
		}
		if rows == nil {
			rows = []repository.StatusCount{}
		}
		st.Breakdown = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Service) recordStatus(status domain.ApplicationStatus) {
	if s.recorder != nil {
		s.recorder.StatusChanged(string(status))
	}
}
