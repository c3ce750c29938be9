package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/service/audit"
	"github.com/jwalitptl/dental-api/internal/session"
	"github.com/jwalitptl/dental-api/pkg/auth"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/security"
)

const tokenType = "Bearer"

type Service struct {
	users       repository.UserRepository
	jwt         auth.JWTService
	hasher      security.PasswordHasher
	revocations *session.Revocations
	auditor     audit.Recorder
	log         *logger.Logger
	now         func() time.Time
}

func NewService(
	users repository.UserRepository,
	jwt auth.JWTService,
	hasher security.PasswordHasher,
	revocations *session.Revocations,
	auditor audit.Recorder,
	log *logger.Logger,
) *Service {
	return &Service{
		users:       users,
		jwt:         jwt,
		hasher:      hasher,
		revocations: revocations,
		auditor:     auditor,
		log:         log,
		now:         time.Now,
	}
}

// Login checks the credentials and opens a session. Unknown emails and wrong
// passwords fail the same way.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized(model.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		s.log.Warn("failed sign-in attempt", "user_id", user.ID.String())
		return nil, apperrors.Unauthorized(model.ErrInvalidCredentials)
	}
	if user.Status != model.UserStatusActive {
		return nil, apperrors.Forbidden(model.ErrAccountInactive.Error())
	}

	token, claims, err := s.jwt.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user.ID, req.Password)
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Error(err, "failed to record last login", "user_id", user.ID.String())
	}
	s.auditor.Record(ctx, user.ID, model.AuditActionLogin, model.AuditEntityUser, user.ID, nil)

	return &model.LoginResponse{
		AccessToken: token,
		TokenType:   tokenType,
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        user.Profile(),
	}, nil
}

// rehash upgrades a stored hash to the configured cost. The sign-in goes
// ahead either way.
func (s *Service) rehash(ctx context.Context, userID uuid.UUID, password string) {
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.users.UpdatePassword(ctx, userID, hash)
	}
	if err != nil {
		s.log.Error(err, "failed to upgrade password hash", "user_id", userID.String())
		return
	}
	s.log.Info("password hash upgraded", "user_id", userID.String())
}

// Authenticate resolves a bearer token into the session it was issued for.
func (s *Service) Authenticate(token string) (*session.Session, error) {
	if s.revocations.Revoked(token) {
		return nil, apperrors.Unauthorized(session.ErrNoSession)
	}
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized(auth.ErrInvalidToken)
	}
	sess := &session.Session{
		UserID: userID,
		Email:  claims.Email,
		Role:   claims.Role,
		Token:  token,
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}

// Logout ends the session; the token is refused until it expires.
func (s *Service) Logout(ctx context.Context, sess *session.Session) {
	s.revocations.Revoke(sess, s.now())
	s.auditor.Record(ctx, sess.UserID, model.AuditActionLogout, model.AuditEntityUser, sess.UserID, nil)
}

func (s *Service) ChangePassword(ctx context.Context, sess *session.Session, req *model.ChangePasswordRequest) error {
	user, err := s.users.Get(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("user", err)
		}
		return fmt.Errorf("failed to load user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, req.CurrentPassword); err != nil {
		return apperrors.Validation(apperrors.FieldError{Field: "current_password", Message: "is incorrect"})
	}
	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return apperrors.Validation(apperrors.FieldError{
				Field:   "new_password",
				Message: fmt.Sprintf("must be at least %d characters", security.MinPasswordLen),
			})
		}
		if errors.Is(err, security.ErrPasswordTooLong) {
			return apperrors.Validation(apperrors.FieldError{
				Field:   "new_password",
				Message: fmt.Sprintf("must be at most %d characters", security.MaxPasswordLen),
			})
		}
		return apperrors.Internal(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	s.auditor.Record(ctx, user.ID, model.AuditActionUpdate, model.AuditEntityUser, user.ID, &audit.LogOptions{
		Metadata: map[string]interface{}{"field": "password"},
	})
	return nil
}
