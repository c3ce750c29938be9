package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/service/audit"
	"github.com/jwalitptl/dental-api/internal/session"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/security"
)

// Service manages staff accounts and each user's own settings.
type Service struct {
	repo    repository.UserRepository
	hasher  security.PasswordHasher
	tokens  security.Encryptor
	auditor audit.Recorder
	log     *logger.Logger
}

func NewService(repo repository.UserRepository, hasher security.PasswordHasher, tokens security.Encryptor, auditor audit.Recorder, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		hasher:  hasher,
		tokens:  tokens,
		auditor: auditor,
		log:     log,
	}
}

func (s *Service) Profile(ctx context.Context, sess *session.Session) (*model.Profile, error) {
	u, err := s.get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	return u.Profile(), nil
}

// ConnectCalendar stores the user's calendar token encrypted and turns sync on.
func (s *Service) ConnectCalendar(ctx context.Context, sess *session.Session, req *model.ConnectCalendarRequest) (*model.Profile, error) {
	token := strings.TrimSpace(req.AccessToken)
	if token == "" {
		return nil, apperrors.Validation(apperrors.FieldError{Field: "access_token", Message: "is required"})
	}
	if s.tokens == nil {
		return nil, apperrors.Unavailable("calendar integration is not configured", nil)
	}
	sealed, err := security.EncryptString(s.tokens, sess.UserID.String(), token)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.updateCalendar(ctx, sess, sealed, true, "connect")
}

func (s *Service) DisconnectCalendar(ctx context.Context, sess *session.Session) (*model.Profile, error) {
	return s.updateCalendar(ctx, sess, "", false, "disconnect")
}

// SetCalendarSync toggles pushing new bookings. Enabling needs a connected calendar.
func (s *Service) SetCalendarSync(ctx context.Context, sess *session.Session, enabled bool) (*model.Profile, error) {
	u, err := s.get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if enabled && u.GoogleCalendarToken == "" {
		return nil, apperrors.Conflict("connect Google Calendar before enabling sync", nil)
	}
	return s.updateCalendar(ctx, sess, u.GoogleCalendarToken, enabled, "sync")
}

func (s *Service) updateCalendar(ctx context.Context, sess *session.Session, token string, enabled bool, op string) (*model.Profile, error) {
	if err := s.repo.UpdateCalendar(ctx, sess.UserID, token, enabled); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, fmt.Errorf("failed to update calendar settings: %w", err)
	}
	s.auditor.Record(ctx, sess.UserID, model.AuditActionUpdate, model.AuditEntityUser, sess.UserID, &audit.LogOptions{
		Metadata: map[string]interface{}{"calendar": op, "enabled": enabled},
	})
	return s.Profile(ctx, sess)
}

func (s *Service) Create(ctx context.Context, sess *session.Session, req *model.CreateUserRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.Conflict("a user with this email already exists", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return nil, apperrors.Validation(apperrors.FieldError{Field: "password", Message: "is too short"})
		}
		if errors.Is(err, security.ErrPasswordTooLong) {
			return nil, apperrors.Validation(apperrors.FieldError{Field: "password", Message: "is too long"})
		}
		return nil, apperrors.Internal(err)
	}

	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         req.Role,
		Status:       model.UserStatusActive,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.auditor.Record(ctx, sess.UserID, model.AuditActionCreate, model.AuditEntityUser, u.ID, &audit.LogOptions{
		Metadata: map[string]interface{}{"email": u.Email, "role": u.Role},
	})
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error) {
	users, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *Service) Update(ctx context.Context, sess *session.Session, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error) {
	u, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	changes := map[string]interface{}{}
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
		changes["first_name"] = u.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
		changes["last_name"] = u.LastName
	}
	if req.Role != nil {
		u.Role = *req.Role
		changes["role"] = u.Role
	}
	if req.Status != nil {
		if id == sess.UserID && *req.Status != model.UserStatusActive {
			return nil, apperrors.Conflict("you cannot deactivate your own account", nil)
		}
		u.Status = *req.Status
		changes["status"] = u.Status
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	s.auditor.Record(ctx, sess.UserID, model.AuditActionUpdate, model.AuditEntityUser, u.ID, &audit.LogOptions{Changes: changes})
	return u, nil
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}
