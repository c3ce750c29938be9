package user

import (
	"context"
	"testing"

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
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/security"
)

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, uuid.UUID, string, string, uuid.UUID, *audit.LogOptions) {}

func newService(t *testing.T) (*Service, *mocks.UserRepository, security.Encryptor) {
	t.Helper()
	enc, err := security.NewAESEncryptor([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	repo := &mocks.UserRepository{}
	return NewService(repo, security.NewBcryptHasher(bcrypt.MinCost), enc, nopRecorder{}, logger.Nop()), repo, enc
}

func TestConnectCalendarEncryptsToken(t *testing.T) {
	svc, repo, enc := newService(t)
	ctx := context.Background()
	sess := &session.Session{UserID: uuid.New()}

	var stored string
	repo.On("UpdateCalendar", ctx, sess.UserID, mock.AnythingOfType("string"), true).
		Run(func(args mock.Arguments) { stored = args.String(2) }).Return(nil)
	u := &model.User{GoogleCalendarEnabled: true}
	u.ID = sess.UserID
	repo.On("Get", ctx, sess.UserID).Return(u, nil)

	_, err := svc.ConnectCalendar(ctx, sess, &model.ConnectCalendarRequest{AccessToken: "ya29.token"})
	require.NoError(t, err)
	assert.NotEqual(t, "ya29.token", stored)

	plain, err := security.DecryptString(enc, sess.UserID.String(), stored)
	require.NoError(t, err)
	assert.Equal(t, "ya29.token", plain)
}

func TestConnectCalendarWithoutEncryptionKey(t *testing.T) {
	repo := &mocks.UserRepository{}
	svc := NewService(repo, security.NewBcryptHasher(bcrypt.MinCost), nil, nopRecorder{}, logger.Nop())

	_, err := svc.ConnectCalendar(context.Background(), &session.Session{UserID: uuid.New()}, &model.ConnectCalendarRequest{AccessToken: "ya29.token"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnavailable))
	repo.AssertNotCalled(t, "UpdateCalendar", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSetCalendarSyncRequiresConnection(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()
	sess := &session.Session{UserID: uuid.New()}
	u := &model.User{}
	u.ID = sess.UserID
	repo.On("Get", ctx, sess.UserID).Return(u, nil)

	_, err := svc.SetCalendarSync(ctx, sess, true)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))

	repo.On("UpdateCalendar", ctx, sess.UserID, "", false).Return(nil)
	profile, err := svc.SetCalendarSync(ctx, sess, false)
	require.NoError(t, err)
	assert.False(t, profile.GoogleCalendarEnabled)
}

func TestCreateUser(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()
	sess := &session.Session{UserID: uuid.New(), Role: model.UserRoleAdmin}

	repo.On("GetByEmail", ctx, "taken@example.com").Return(&model.User{}, nil)
	_, err := svc.Create(ctx, sess, &model.CreateUserRequest{Email: "taken@example.com", Password: "long-enough"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))

	repo.On("GetByEmail", ctx, "new@example.com").Return(nil, repository.ErrNotFound)
	repo.On("Create", ctx, mock.AnythingOfType("*model.User")).Return(nil)
	u, err := svc.Create(ctx, sess, &model.CreateUserRequest{
		Email: "New@example.com", Password: "long-enough", FirstName: "Eva", LastName: "Ruiz", Role: model.UserRoleStaff,
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, model.UserStatusActive, u.Status)
	assert.NotEqual(t, "long-enough", u.PasswordHash)
}

func TestUpdateUserCannotDeactivateSelf(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()
	sess := &session.Session{UserID: uuid.New()}
	u := &model.User{Status: model.UserStatusActive}
	u.ID = sess.UserID
	repo.On("Get", ctx, sess.UserID).Return(u, nil)

	inactive := model.UserStatusInactive
	_, err := svc.Update(ctx, sess, sess.UserID, &model.UpdateUserRequest{Status: &inactive})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))
}
