package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/warrenposo/cloudmining-backend/internal/lib/jwt"
	"github.com/warrenposo/cloudmining-backend/internal/lib/password"
	"github.com/warrenposo/cloudmining-backend/internal/models"
)

type mockProfileRepository struct {
	mock.Mock
}

func (m *mockProfileRepository) CreateProfile(ctx context.Context, profile models.Profile) (string, error) {
	args := m.Called(ctx, profile)
	return args.String(0), args.Error(1)
}

func (m *mockProfileRepository) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *mockProfileRepository) GetProfile(ctx context.Context, uid string) (*models.Profile, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func newTestService(repo ProfileRepository, adminEmails []string) *AuthService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	return NewAuthService(repo, maker, NewAllowlistPolicy(adminEmails), 100*time.Millisecond, logger)
}

func TestRegister_AssignsRoleAndReferralCode(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		wantRole string
	}{
		{name: "regular user", email: "miner@example.com", wantRole: models.RoleUser},
		{name: "allow-listed admin", email: "boss@example.com", wantRole: models.RoleAdmin},
		{name: "allow-list match is case-insensitive", email: "BOSS@Example.com", wantRole: models.RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockProfileRepository)
			service := newTestService(repo, []string{"boss@example.com"})

			repo.On("CreateProfile", mock.Anything, mock.MatchedBy(func(p models.Profile) bool {
				return p.Role == tt.wantRole &&
					p.Email == tt.email &&
					p.ReferralCode != "" &&
					p.PasswordHash != "secretpass"
			})).Return("uid-1", nil)

			uid, err := service.Register(context.Background(), tt.email, "miner", "secretpass")
			require.NoError(t, err)
			assert.Equal(t, "uid-1", uid)
			repo.AssertExpectations(t)
		})
	}
}

func TestRegister_DefaultAdminAddress(t *testing.T) {
	repo := new(mockProfileRepository)
	service := newTestService(repo, []string{"warrenokumu98@gmail.com"})

	repo.On("CreateProfile", mock.Anything, mock.MatchedBy(func(p models.Profile) bool {
		return p.Role == models.RoleAdmin
	})).Return("uid-1", nil)

	_, err := service.Register(context.Background(), "warrenokumu98@gmail.com", "warren", "secretpass")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestLogin_Success(t *testing.T) {
	repo := new(mockProfileRepository)
	service := newTestService(repo, nil)

	hash, err := password.GetHash("secretpass")
	require.NoError(t, err)

	repo.On("GetProfileByUsername", mock.Anything, "miner").Return(&models.Profile{
		UID:          "uid-1",
		Username:     "miner",
		Email:        "miner@example.com",
		PasswordHash: hash,
		Role:         models.RoleUser,
	}, nil)

	token, role, err := service.Login(context.Background(), "miner", "secretpass")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, role)
	assert.NotEmpty(t, token)

	// Выданный токен проходит валидацию и несёт данные профиля.
	profile, gotRole, ok, err := service.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "miner", profile.Username)
	assert.Equal(t, models.RoleUser, gotRole)
	assert.Equal(t, "uid-1", profile.UID)
	assert.Equal(t, "miner@example.com", profile.Email)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(mockProfileRepository)
	service := newTestService(repo, nil)

	hash, err := password.GetHash("secretpass")
	require.NoError(t, err)

	repo.On("GetProfileByUsername", mock.Anything, "miner").Return(&models.Profile{
		Username:     "miner",
		PasswordHash: hash,
	}, nil)

	_, _, err = service.Login(context.Background(), "miner", "wrongpass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	repo := new(mockProfileRepository)
	service := newTestService(repo, nil)

	repo.On("GetProfileByUsername", mock.Anything, "ghost").Return(nil, errors.New("not found"))

	_, _, err := service.Login(context.Background(), "ghost", "secretpass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateToken_Invalid(t *testing.T) {
	service := newTestService(new(mockProfileRepository), nil)

	_, _, ok, err := service.ValidateToken(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestEnsureProfile_ReturnsExisting(t *testing.T) {
	repo := new(mockProfileRepository)
	service := newTestService(repo, nil)

	existing := &models.Profile{UID: "uid-1", Username: "miner", Role: models.RoleAdmin}
	repo.On("GetProfile", mock.Anything, "uid-1").Return(existing, nil)

	got := service.EnsureProfile(context.Background(), "uid-1", "miner@example.com", "miner")
	assert.Equal(t, existing, got)
	repo.AssertNotCalled(t, "CreateProfile", mock.Anything, mock.Anything)
}

func TestEnsureProfile_SelfHealsOnMissing(t *testing.T) {
	repo := new(mockProfileRepository)
	service := newTestService(repo, []string{"boss@example.com"})

	repo.On("GetProfile", mock.Anything, "uid-1").Return(nil, errors.New("not found"))
	repo.On("CreateProfile", mock.Anything, mock.MatchedBy(func(p models.Profile) bool {
		return p.Username == "miner" && p.Role == models.RoleUser
	})).Return("uid-new", nil)

	got := service.EnsureProfile(context.Background(), "uid-1", "miner@example.com", "miner")
	assert.Equal(t, "uid-new", got.UID)
	assert.Equal(t, models.RoleUser, got.Role)
}

func TestEnsureProfile_FallsBackToUserRoleOnCreateFailure(t *testing.T) {
	repo := new(mockProfileRepository)
	service := newTestService(repo, []string{"boss@example.com"})

	repo.On("GetProfile", mock.Anything, "uid-1").Return(nil, errors.New("timeout"))
	repo.On("CreateProfile", mock.Anything, mock.Anything).Return("", errors.New("insert failed"))

	// Даже для email из списка администраторов неудачное восстановление
	// профиля понижает роль до user.
	got := service.EnsureProfile(context.Background(), "uid-1", "boss@example.com", "boss")
	assert.Equal(t, models.RoleUser, got.Role)
	assert.Empty(t, got.UID)
}
