package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/repository/mocks"
	"github.com/jwalitptl/dental-api/internal/service/audit"
	"github.com/jwalitptl/dental-api/internal/session"
	"github.com/jwalitptl/dental-api/pkg/auth"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/security"
)

type recorder struct{ actions []string }

func (r *recorder) Record(_ context.Context, _ uuid.UUID, action, _ string, _ uuid.UUID, _ *audit.LogOptions) {
	r.actions = append(r.actions, action)
}

func setup(t *testing.T) (*Service, *mocks.UserRepository, *recorder, *model.User) {
	t.Helper()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("correct-horse")
	require.NoError(t, err)

	user := &model.User{
		Email:        "dr@example.com",
		PasswordHash: hash,
		Role:         model.UserRoleDoctor,
		Status:       model.UserStatusActive,
	}
	user.ID = uuid.New()

	users := &mocks.UserRepository{}
	rec := &recorder{}
	svc := NewService(users, auth.NewJWTService("secret", "dental-api", time.Hour), hasher,
		session.NewRevocations(time.Minute), rec, logger.Nop())
	return svc, users, rec, user
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, users, rec, user := setup(t)
	ctx := context.Background()
	users.On("GetByEmail", ctx, "dr@example.com").Return(user, nil)
	users.On("UpdateLastLogin", ctx, user.ID, mock.AnythingOfType("time.Time")).Return(nil)

	resp, err := svc.Login(ctx, &model.LoginRequest{Email: " DR@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.Equal(t, []string{model.AuditActionLogin}, rec.actions)

	sess, err := svc.Authenticate(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, sess.UserID)
	assert.Equal(t, model.UserRoleDoctor, sess.Role)

	svc.Logout(ctx, sess)
	_, err = svc.Authenticate(resp.AccessToken)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
}

func TestLoginUpgradesWeakHash(t *testing.T) {
	_, users, _, user := setup(t)
	ctx := context.Background()

	stronger := security.NewBcryptHasher(bcrypt.MinCost + 1)
	svc := NewService(users, auth.NewJWTService("secret", "dental-api", time.Hour), stronger,
		session.NewRevocations(time.Minute), &recorder{}, logger.Nop())

	users.On("GetByEmail", ctx, "dr@example.com").Return(user, nil)
	users.On("UpdateLastLogin", ctx, user.ID, mock.AnythingOfType("time.Time")).Return(nil)
	users.On("UpdatePassword", ctx, user.ID, mock.MatchedBy(func(hash string) bool {
		cost, err := bcrypt.Cost([]byte(hash))
		return err == nil && cost == bcrypt.MinCost+1
	})).Return(nil)

	_, err := svc.Login(ctx, &model.LoginRequest{Email: "dr@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestLoginRejects(t *testing.T) {
	svc, users, _, user := setup(t)
	ctx := context.Background()
	users.On("GetByEmail", ctx, "nobody@example.com").Return(nil, repository.ErrNotFound)
	users.On("GetByEmail", ctx, "dr@example.com").Return(user, nil)

	_, err := svc.Login(ctx, &model.LoginRequest{Email: "nobody@example.com", Password: "whatever1"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))

	_, err = svc.Login(ctx, &model.LoginRequest{Email: "dr@example.com", Password: "wrong-pass"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))

	user.Status = model.UserStatusInactive
	_, err = svc.Login(ctx, &model.LoginRequest{Email: "dr@example.com", Password: "correct-horse"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	svc, _, _, _ := setup(t)
	_, err := svc.Authenticate("not-a-token")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
}

func TestChangePassword(t *testing.T) {
	svc, users, _, user := setup(t)
	ctx := context.Background()
	sess := &session.Session{UserID: user.ID}
	users.On("Get", ctx, user.ID).Return(user, nil)
	users.On("UpdatePassword", ctx, user.ID, mock.AnythingOfType("string")).Return(nil)

	err := svc.ChangePassword(ctx, sess, &model.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "another-pass"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))
	users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)

	require.NoError(t, svc.ChangePassword(ctx, sess, &model.ChangePasswordRequest{CurrentPassword: "correct-horse", NewPassword: "another-pass"}))
	users.AssertCalled(t, "UpdatePassword", ctx, user.ID, mock.AnythingOfType("string"))
}
