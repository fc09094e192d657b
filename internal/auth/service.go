package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saborlabs/cardapio-backend/internal/users"
	pkgauth "github.com/saborlabs/cardapio-backend/pkg/auth"
	"github.com/saborlabs/cardapio-backend/pkg/config"
	"github.com/saborlabs/cardapio-backend/pkg/db"
	"github.com/saborlabs/cardapio-backend/pkg/db/models"
	"github.com/saborlabs/cardapio-backend/pkg/enums"
	pkgerrors "github.com/saborlabs/cardapio-backend/pkg/errors"
	"github.com/saborlabs/cardapio-backend/pkg/redis"
	"github.com/saborlabs/cardapio-backend/pkg/security"
)

type rateLimiter interface {
	IncrWithWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Session is what a successful register/login hands back to the controller.
type Session struct {
	User        *models.User
	AccessToken string
}

// RegisterInput is the signup payload.
type RegisterInput struct {
	Name     string  `json:"name" validate:"required,max=120"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
}

// LoginInput is the credential payload. IP feeds the per-IP rate limit.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	IP       string `json:"-"`
}

// Service handles identity: signup, login and the current-user lookup.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, input LoginInput) (*Session, error)
	Me(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type service struct {
	repo     users.Repository
	limiter  rateLimiter
	jwtCfg   config.JWTConfig
	pwCfg    config.PasswordConfig
	limitCfg config.AuthRateLimitConfig
	now      func() time.Time
}

// NewService wires the auth service. The limiter may be nil in tests to
// disable rate limiting.
func NewService(
	repo users.Repository,
	limiter rateLimiter,
	jwtCfg config.JWTConfig,
	pwCfg config.PasswordConfig,
	limitCfg config.AuthRateLimitConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{
		repo:     repo,
		limiter:  limiter,
		jwtCfg:   jwtCfg,
		pwCfg:    pwCfg,
		limitCfg: limitCfg,
		now:      time.Now,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	email := normalizeEmail(input.Email)
	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "senha inválida")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.Name),
		Phone:        input.Phone,
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	}
	if _, err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "e-mail já cadastrado")
		}
		return nil, err
	}
	return s.startSession(ctx, user)
}

func (s *service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	email := normalizeEmail(input.Email)
	if err := s.checkRateLimits(ctx, email, input.IP); err != nil {
		return nil, err
	}

	invalid := pkgerrors.New(pkgerrors.CodeUnauthorized, "e-mail ou senha incorretos")
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, invalid
	}
	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, invalid
	}

	// Best effort: a failed timestamp write never blocks the login.
	_ = s.repo.UpdateLastLogin(ctx, user.ID, s.now())

	return s.startSession(ctx, user)
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sessão inválida")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sessão inválida")
		}
		return nil, err
	}
	return user, nil
}

func (s *service) startSession(ctx context.Context, user *models.User) (*Session, error) {
	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Role:     user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &Session{User: user, AccessToken: token}, nil
}

func (s *service) checkRateLimits(ctx context.Context, email, ip string) error {
	if s.limiter == nil {
		return nil
	}
	window := s.limitCfg.LoginWindow

	count, err := s.limiter.IncrWithWindow(ctx, redis.RateLimitKey("login_email", email), window)
	if err == nil && s.limitCfg.LoginEmailLimit > 0 && count > int64(s.limitCfg.LoginEmailLimit) {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "muitas tentativas, aguarde um instante")
	}

	if ip != "" {
		count, err = s.limiter.IncrWithWindow(ctx, redis.RateLimitKey("login_ip", ip), window)
		if err == nil && s.limitCfg.LoginIPLimit > 0 && count > int64(s.limitCfg.LoginIPLimit) {
			return pkgerrors.New(pkgerrors.CodeRateLimit, "muitas tentativas, aguarde um instante")
		}
	}
	// A limiter outage fails open: login availability beats the limit.
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
