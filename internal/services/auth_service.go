package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"taskshield/internal/middleware"
	"taskshield/internal/models"
	"taskshield/internal/repositories"
	"taskshield/internal/utils"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 30 * 24 * time.Hour
)

// LoginResult is what a successful authentication hands back to the caller.
type LoginResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// RequestMeta carries transport details recorded with security audit events.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type AuthService interface {
	HashPassword(password string) (string, error)
	Login(ctx context.Context, email, password string, meta RequestMeta) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*LoginResult, error)
	Logout(ctx context.Context, userID uuid.UUID) error
}

type authService struct {
	users    repositories.UserRepository
	audit    AuditService
	emails   EmailService
	telegram *TelegramService
	log      *logrus.Logger
	now      func() time.Time
}

func NewAuthService(
	users repositories.UserRepository,
	audit AuditService,
	emails EmailService,
	telegram *TelegramService,
	log *logrus.Logger,
) AuthService {
	return &authService{
		users:    users,
		audit:    audit,
		emails:   emails,
		telegram: telegram,
		log:      log,
		now:      time.Now,
	}
}

func (s *authService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Login drives the account-lockout state machine: a wrong password counts
// against the user, the fifth consecutive failure locks the account for 30
// minutes, a success resets the counter.
func (s *authService) Login(ctx context.Context, email, password string, meta RequestMeta) (*LoginResult, error) {
	const op = "services.Auth.Login"
	log := s.log.WithField("operation", op)

	email = strings.TrimSpace(email)
	user, err := s.users.GetByEmail(email)
	if err != nil || user == nil {
		log.WithField("email", email).Info("login attempt for unknown email")
		return nil, ErrInvalidCredentials
	}

	now := s.now()

	if !user.Enabled {
		log.WithField("user_id", user.ID).Info("login attempt on disabled account")
		return nil, ErrAccountDisabled
	}

	if !user.IsAccountUsable(now) {
		s.audit.Record(ctx, AuditEvent{
			Actor: user, Action: models.ActionUserLoginFailed,
			ResourceType: "user", ResourceID: &user.ID,
			IPAddress: meta.IPAddress, UserAgent: meta.UserAgent,
			Details: "login rejected: account locked",
		})
		log.WithField("user_id", user.ID).Info("login attempt on locked account")
		return nil, ErrAccountLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, s.handleFailedLogin(ctx, user, now, meta)
	}

	user.ResetFailedLoginAttempts()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.users.Update(user); err != nil {
		return nil, fmt.Errorf("persist login state: %w", err)
	}

	tokens, err := s.issueTokens(user, now)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEvent{
		Actor: user, Action: models.ActionUserLogin,
		ResourceType: "user", ResourceID: &user.ID,
		IPAddress: meta.IPAddress, UserAgent: meta.UserAgent,
	})
	log.WithField("user_id", user.ID).Info("login successful")
	return tokens, nil
}

func (s *authService) handleFailedLogin(ctx context.Context, user *models.User, now time.Time, meta RequestMeta) error {
	const op = "services.Auth.handleFailedLogin"
	log := s.log.WithField("operation", op).WithField("user_id", user.ID)

	user.IncrementFailedLoginAttempts(now)
	user.UpdatedAt = now
	if err := s.users.Update(user); err != nil {
		log.WithError(err).Error("failed to persist failed-login counter")
	}

	s.audit.Record(ctx, AuditEvent{
		Actor: user, Action: models.ActionUserLoginFailed,
		ResourceType: "user", ResourceID: &user.ID,
		IPAddress: meta.IPAddress, UserAgent: meta.UserAgent,
		Details: fmt.Sprintf("failed attempt %d", user.FailedLoginAttempts),
	})

	if user.IsAccountUsable(now) {
		return ErrInvalidCredentials
	}

	// this attempt crossed the threshold
	s.audit.Record(ctx, AuditEvent{
		Actor: user, Action: models.ActionUserLocked,
		ResourceType: "user", ResourceID: &user.ID,
		IPAddress: meta.IPAddress, UserAgent: meta.UserAgent,
		Details: fmt.Sprintf("locked until %s", user.LockedUntil.Format(time.RFC3339)),
	})
	if s.emails != nil {
		if err := s.emails.SendAccountLockedEmail(user.Email, int(models.LockoutDuration.Minutes())); err != nil {
			log.WithError(err).Warn("failed to send lock notification email")
		}
	}
	s.telegram.NotifyAccountLocked(user.Email)
	log.Warn("account locked after repeated failed logins")
	return ErrAccountLocked
}

func (s *authService) issueTokens(user *models.User, now time.Time) (*LoginResult, error) {
	claims := &middleware.Claims{
		UserID: user.ID.String(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(middleware.JWTKey)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := utils.NewRefreshToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.users.UpdateRefresh(user.ID, refresh, now.Add(refreshTokenTTL)); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &LoginResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	const op = "services.Auth.Refresh"
	log := s.log.WithField("operation", op)

	user, err := s.users.GetByRefreshToken(strings.TrimSpace(refreshToken))
	if err != nil || user == nil || user.RefreshToken == nil || user.RefreshExpiresAt == nil || user.RefreshRevoked {
		return nil, ErrInvalidCredentials
	}
	now := s.now()
	if now.After(*user.RefreshExpiresAt) {
		return nil, ErrInvalidCredentials
	}
	if !user.Enabled || !user.IsAccountUsable(now) {
		return nil, ErrAccountLocked
	}

	// rotate refresh
	newToken, err := utils.NewRefreshToken(32)
	if err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}
	rotated, err := s.users.RotateRefresh(*user.RefreshToken, newToken, now.Add(refreshTokenTTL))
	if err != nil || rotated == nil {
		return nil, ErrInvalidCredentials
	}

	claims := &middleware.Claims{
		UserID: rotated.ID.String(),
		Role:   rotated.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(middleware.JWTKey)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	log.WithField("user_id", rotated.ID).Info("refresh token rotated")
	return &LoginResult{User: rotated, AccessToken: access, RefreshToken: newToken}, nil
}

func (s *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.users.ClearRefresh(userID)
}
