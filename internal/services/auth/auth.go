// Package auth содержит бизнес-логику регистрации, входа, подтверждения
// почты и восстановления пароля.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kunalverma25/wifi-portal/internal/lib/jwt"
	"github.com/kunalverma25/wifi-portal/internal/lib/otp"
	"github.com/kunalverma25/wifi-portal/internal/lib/password"
	"github.com/kunalverma25/wifi-portal/internal/lib/sl"
	"github.com/kunalverma25/wifi-portal/internal/models"
	"github.com/kunalverma25/wifi-portal/internal/rabbitmq"
	"github.com/kunalverma25/wifi-portal/internal/storage/repository"
)

// Ошибки аутентификации. Текст ErrAccountInactive попадает в тело 401-го
// ответа и служит клиенту маркером принудительного выхода.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCode        = errors.New("invalid or expired code")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	MarkEmailVerified(ctx context.Context, email string) (int, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) (int, error)
}

// Cache описывает хранилище одноразовых кодов и токенов с TTL.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Publisher публикует события для отправки писем.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// Service отвечает за регистрацию, авторизацию и восстановление пароля.
type Service struct {
	users         UserRepository
	cache         Cache
	publisher     Publisher
	jwtMaker      jwt.Maker
	log           *slog.Logger
	otpTTL        time.Duration
	resetTokenTTL time.Duration
}

// New создает новый экземпляр Service.
func New(users UserRepository, cache Cache, publisher Publisher, jwtMaker jwt.Maker, log *slog.Logger, otpTTL, resetTokenTTL time.Duration) *Service {
	return &Service{
		users:         users,
		cache:         cache,
		publisher:     publisher,
		jwtMaker:      jwtMaker,
		log:           log,
		otpTTL:        otpTTL,
		resetTokenTTL: resetTokenTTL,
	}
}

// RegisterRequest входные данные регистрации.
type RegisterRequest struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
}

// Register создает неподтверждённого пользователя со статусом inactive
// и отправляет код подтверждения почты. Роль всегда user: серверный API
// не предоставляет операций смены роли.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (string, error) {
	if _, err := s.users.GetUserByEmail(ctx, req.Email); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return "", err
	}

	user := models.User{
		UID:           uuid.NewString(),
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		PasswordHash:  hashed,
		Role:          models.RoleUser,
		Status:        models.UserStatusInactive,
		EmailVerified: false,
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}

	uid, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return "", err
	}

	if err := s.SendOTP(ctx, req.Email); err != nil {
		// Пользователь уже создан, код можно запросить повторно.
		s.log.Warn("failed to send verification code", sl.Err(err))
	}
	return uid, nil
}

// Login проверяет пароль пользователя и генерирует JWT. Неактивный
// аккаунт получает ErrAccountInactive вместо токена.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if user.Status != models.UserStatusActive {
		return "", nil, ErrAccountInactive
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Profile возвращает актуальный профиль пользователя. Используется
// клиентом для периодической проверки статуса аккаунта.
func (s *Service) Profile(ctx context.Context, uid string) (*models.User, error) {
	return s.users.GetUserByUID(ctx, uid)
}

// SendOTP генерирует код подтверждения почты, сохраняет его с TTL
// и публикует событие отправки письма. Вместе с кодом создаётся
// токен для подтверждения по ссылке.
func (s *Service) SendOTP(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return err
	}
	if err := s.cache.Set("otp:"+email, code, s.otpTTL); err != nil {
		return err
	}

	linkToken, err := otp.GenerateToken()
	if err != nil {
		return err
	}
	if err := s.cache.Set("verify:"+linkToken, email, s.otpTTL); err != nil {
		return err
	}

	event := models.OTPEvent{
		Email:    user.Email,
		FullName: user.FullName(),
		Code:     code,
		Purpose:  "verify",
	}
	if err := s.publisher.Publish(rabbitmq.RoutingKeyOTP, event); err != nil {
		return fmt.Errorf("failed to publish otp event: %w", err)
	}
	return nil
}

// VerifyOTP сверяет код и активирует аккаунт.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) error {
	var stored string
	found, err := s.cache.Get("otp:"+email, &stored)
	if err != nil {
		return err
	}
	if !found || stored != code {
		return ErrInvalidCode
	}

	if _, err := s.users.MarkEmailVerified(ctx, email); err != nil {
		return err
	}
	if err := s.cache.Invalidate("otp:" + email); err != nil {
		s.log.Warn("failed to invalidate otp", sl.Err(err))
	}
	s.log.Info("email verified", slog.String("email", email))
	return nil
}

// VerifyEmailToken подтверждает почту по токену из ссылки в письме.
func (s *Service) VerifyEmailToken(ctx context.Context, token string) error {
	var email string
	found, err := s.cache.Get("verify:"+token, &email)
	if err != nil {
		return err
	}
	if !found {
		return ErrInvalidCode
	}

	if _, err := s.users.MarkEmailVerified(ctx, email); err != nil {
		return err
	}
	if err := s.cache.Invalidate("verify:" + token); err != nil {
		s.log.Warn("failed to invalidate verify token", sl.Err(err))
	}
	return nil
}

// ForgotPassword создает токен сброса пароля и публикует событие
// отправки письма. Отсутствие пользователя не раскрывается вызывающему.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := otp.GenerateToken()
	if err != nil {
		return err
	}
	if err := s.cache.Set("reset:"+token, email, s.resetTokenTTL); err != nil {
		return err
	}

	event := models.OTPEvent{
		Email:    user.Email,
		FullName: user.FullName(),
		Code:     token,
		Purpose:  "reset",
	}
	if err := s.publisher.Publish(rabbitmq.RoutingKeyOTP, event); err != nil {
		return fmt.Errorf("failed to publish reset event: %w", err)
	}
	return nil
}

// ResetPassword потребляет токен сброса и устанавливает новый пароль.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	var email string
	found, err := s.cache.Get("reset:"+token, &email)
	if err != nil {
		return err
	}
	if !found {
		return ErrInvalidCode
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return err
	}
	if _, err := s.users.UpdatePassword(ctx, email, hashed); err != nil {
		return err
	}
	if err := s.cache.Invalidate("reset:" + token); err != nil {
		s.log.Warn("failed to invalidate reset token", sl.Err(err))
	}
	s.log.Info("password reset", slog.String("email", email))
	return nil
}
