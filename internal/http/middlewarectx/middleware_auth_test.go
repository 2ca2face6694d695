package middlewarectx_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/warrenposo/cloudmining-backend/internal/http/middlewarectx"
	"github.com/warrenposo/cloudmining-backend/internal/models"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) ValidateToken(ctx context.Context, token string) (*models.Profile, string, bool, error) {
	args := m.Called(ctx, token)
	profile, _ := args.Get(0).(*models.Profile)
	return profile, args.String(1), args.Bool(2), args.Error(3)
}

func (m *AuthServiceMock) EnsureProfile(ctx context.Context, uid, email, username string) *models.Profile {
	args := m.Called(ctx, uid, email, username)
	profile, _ := args.Get(0).(*models.Profile)
	return profile
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestJWTMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     string
		setupMock      func(*AuthServiceMock)
		wantStatusCode int
		wantNextCalled bool
		wantRole       string
		wantUID        string
	}{
		{
			name:       "valid token populates context",
			authHeader: "Bearer good-token",
			setupMock: func(m *AuthServiceMock) {
				m.On("ValidateToken", mock.Anything, "good-token").
					Return(&models.Profile{Username: "warren", Role: models.RoleUser, UID: "uid-1", Email: "warren@example.com"}, models.RoleUser, true, nil).Once()
				m.On("EnsureProfile", mock.Anything, "uid-1", "warren@example.com", "warren").
					Return(&models.Profile{Username: "warren", Role: models.RoleUser, UID: "uid-1"}).Once()
			},
			wantStatusCode: http.StatusOK,
			wantNextCalled: true,
			wantRole:       models.RoleUser,
			wantUID:        "uid-1",
		},
		{
			name:       "stale admin claim takes role from restored profile",
			authHeader: "Bearer stale-token",
			setupMock: func(m *AuthServiceMock) {
				m.On("ValidateToken", mock.Anything, "stale-token").
					Return(&models.Profile{Username: "warren", Role: models.RoleAdmin, UID: "uid-gone", Email: "warren@example.com"}, models.RoleAdmin, true, nil).Once()
				m.On("EnsureProfile", mock.Anything, "uid-gone", "warren@example.com", "warren").
					Return(&models.Profile{Username: "warren", Role: models.RoleUser}).Once()
			},
			wantStatusCode: http.StatusOK,
			wantNextCalled: true,
			wantRole:       models.RoleUser,
			wantUID:        "",
		},
		{
			name:           "missing header",
			authHeader:     "",
			setupMock:      func(_ *AuthServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			authHeader: "Bearer bad-token",
			setupMock: func(m *AuthServiceMock) {
				m.On("ValidateToken", mock.Anything, "bad-token").
					Return(nil, "", false, errors.New("token is expired")).Once()
			},
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthServiceMock)
			tt.setupMock(authMock)

			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				assert.Equal(t, "warren", r.Context().Value(middlewarectx.User))
				assert.Equal(t, tt.wantRole, r.Context().Value(middlewarectx.Role))
				assert.Equal(t, tt.wantUID, r.Context().Value(middlewarectx.UserUID))
			})

			handler := middlewarectx.JWTMiddleware(authMock, newNoopLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantNextCalled, nextCalled)
			authMock.AssertExpectations(t)
		})
	}
}

func TestAdminOnlyMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		role           any
		wantStatusCode int
		wantNextCalled bool
	}{
		{
			name:           "admin passes",
			role:           models.RoleAdmin,
			wantStatusCode: http.StatusOK,
			wantNextCalled: true,
		},
		{
			name:           "user is rejected",
			role:           models.RoleUser,
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "missing role is rejected",
			role:           nil,
			wantStatusCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			})

			handler := middlewarectx.AdminOnlyMiddleware(newNoopLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
			if tt.role != nil {
				ctx := context.WithValue(req.Context(), middlewarectx.Role, tt.role)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantNextCalled, nextCalled)
		})
	}
}
