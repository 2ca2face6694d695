// Package auth содержит логику бизнес-уровня для работы с профилями и
// аутентификацией: регистрация, вход, валидация JWT и самовосстановление
// профиля с ограничением по времени.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/warrenposo/cloudmining-backend/internal/lib/jwt"
	"github.com/warrenposo/cloudmining-backend/internal/lib/password"
	"github.com/warrenposo/cloudmining-backend/internal/lib/referral"
	"github.com/warrenposo/cloudmining-backend/internal/lib/sl"
	"github.com/warrenposo/cloudmining-backend/internal/models"
)

// ErrInvalidCredentials возвращается при неверной паре логин/пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ProfileRepository описывает контракт для работы с профилями в базе данных.
type ProfileRepository interface {
	// CreateProfile сохраняет новый профиль и возвращает его UID.
	CreateProfile(ctx context.Context, profile models.Profile) (string, error)

	// GetProfileByUsername возвращает профиль по имени или ошибку, если не найден.
	GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error)

	// GetProfile возвращает профиль по UID.
	GetProfile(ctx context.Context, uid string) (*models.Profile, error)
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	profiles       ProfileRepository
	jwtMaker       jwt.Maker
	rolePolicy     RolePolicy
	profileTimeout time.Duration
	log            *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
// profileTimeout ограничивает фоновую загрузку профиля: по его истечении
// вызывающий продолжает работу без профиля.
func NewAuthService(profiles ProfileRepository, jwtMaker jwt.Maker, rolePolicy RolePolicy,
	profileTimeout time.Duration, log *slog.Logger) *AuthService {
	return &AuthService{
		profiles:       profiles,
		jwtMaker:       jwtMaker,
		rolePolicy:     rolePolicy,
		profileTimeout: profileTimeout,
		log:            log,
	}
}

// Register создает новый профиль с хэшированием пароля. Роль назначает
// политика: точное совпадение email со списком администраторов даёт admin,
// любой другой email — user. Реферальный код выводится из email.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", err
	}
	profile := models.Profile{
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Role:         s.rolePolicy.RoleFor(email),
		ReferralCode: referral.Code(email),
	}
	return s.profiles.CreateProfile(ctx, profile)
}

// Login проверяет пароль пользователя и генерирует JWT.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (token, role string, err error) {
	profile, err := s.profiles.GetProfileByUsername(ctx, username)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	if err := password.CompareHash(profile.PasswordHash, rawPassword); err != nil {
		return "", "", ErrInvalidCredentials
	}
	token, err = s.jwtMaker.GenerateToken(profile.Username, profile.Role, profile.UID, profile.Email)
	if err != nil {
		return "", "", err
	}
	return token, profile.Role, nil
}

// ValidateToken проверяет JWT и возвращает данные профиля из claims.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*models.Profile, string, bool, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, "", false, err
	}
	profile := &models.Profile{
		Username: claims.Username,
		Role:     claims.Role,
		UID:      claims.UserUID,
		Email:    claims.Email,
	}
	return profile, claims.Role, true, nil
}

// EnsureProfile загружает профиль с ограничением по времени; при таймауте
// или отсутствии записи создаёт профиль по умолчанию (самовосстановление).
// Ошибка здесь никогда не блокирует вход: вызывающий продолжает работу как
// обычный пользователь без прав администратора.
func (s *AuthService) EnsureProfile(ctx context.Context, uid, email, username string) *models.Profile {
	fetchCtx, cancel := context.WithTimeout(ctx, s.profileTimeout)
	defer cancel()

	profile, err := s.profiles.GetProfile(fetchCtx, uid)
	if err == nil {
		return profile
	}
	s.log.Warn("profile fetch failed, creating default", sl.Err(err),
		slog.String("username", username))

	fallback := models.Profile{
		Email:        email,
		Username:     username,
		Role:         s.rolePolicy.RoleFor(email),
		ReferralCode: referral.Code(email),
	}
	newUID, createErr := s.profiles.CreateProfile(ctx, fallback)
	if createErr != nil {
		s.log.Warn("default profile creation failed", sl.Err(createErr))
		fallback.Role = models.RoleUser
		return &fallback
	}
	fallback.UID = newUID
	return &fallback
}
