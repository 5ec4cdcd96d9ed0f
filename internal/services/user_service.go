package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskshield/internal/models"
	"taskshield/internal/repositories"
)

type UserService interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (*models.User, error)
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, actor *models.User, id uuid.UUID) error
	List(limit, offset int) ([]*models.User, error)
	GetCount() (int, error)
	GetCountByRole(role models.UserRole) (int, error)

	// UnlockAccount is the administrative override for a locked user.
	UnlockAccount(ctx context.Context, actor *models.User, id uuid.UUID) (*models.User, error)
}

type userService struct {
	repo   repositories.UserRepository
	audit  AuditService
	emails EmailService
	auth   AuthService
	log    *logrus.Logger
	now    func() time.Time
}

func NewUserService(
	repo repositories.UserRepository,
	audit AuditService,
	emails EmailService,
	auth AuthService,
	log *logrus.Logger,
) UserService {
	return &userService{
		repo:   repo,
		audit:  audit,
		emails: emails,
		auth:   auth,
		log:    log,
		now:    time.Now,
	}
}

func (s *userService) Register(ctx context.Context, email, password, firstName, lastName string) (*models.User, error) {
	const op = "services.User.Register"
	log := s.log.WithField("operation", op)

	email = strings.TrimSpace(email)
	if strings.TrimSpace(password) == "" {
		return nil, &models.ValidationError{Field: "password", Reason: "cannot be empty"}
	}

	taken, err := s.repo.ExistsByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(email, hash, firstName, lastName, s.now())
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		Actor: user, Action: models.ActionUserCreated,
		ResourceType: "user", ResourceID: &user.ID,
	})

	if s.emails != nil {
		if err := s.emails.SendWelcomeEmail(user.Email, user.FullName()); err != nil {
			// warn but do not fail registration
			log.WithError(err).WithField("email", user.Email).Warn("failed to send welcome email")
		}
	}

	log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

func (s *userService) GetByID(id uuid.UUID) (*models.User, error) {
	return s.repo.GetByID(id)
}

func (s *userService) GetByEmail(email string) (*models.User, error) {
	return s.repo.GetByEmail(email)
}

func (s *userService) Update(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	user.UpdatedAt = s.now()
	if err := s.repo.Update(user); err != nil {
		return err
	}
	s.audit.Record(ctx, AuditEvent{
		Actor: user, Action: models.ActionUserUpdated,
		ResourceType: "user", ResourceID: &user.ID,
	})
	return nil
}

func (s *userService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.audit.Record(ctx, AuditEvent{
		Actor: actor, Action: models.ActionUserDeleted,
		ResourceType: "user", ResourceID: &id,
	})
	return nil
}

func (s *userService) List(limit, offset int) ([]*models.User, error) {
	return s.repo.List(limit, offset)
}

func (s *userService) GetCount() (int, error) {
	return s.repo.GetCount()
}

func (s *userService) GetCountByRole(role models.UserRole) (int, error) {
	return s.repo.GetCountByRole(role)
}

func (s *userService) UnlockAccount(ctx context.Context, actor *models.User, id uuid.UUID) (*models.User, error) {
	const op = "services.User.UnlockAccount"

	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	user.ResetFailedLoginAttempts()
	user.UpdatedAt = s.now()
	if err := s.repo.Update(user); err != nil {
		return nil, fmt.Errorf("persist unlock: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		Actor: actor, Action: models.ActionUserUpdated,
		ResourceType: "user", ResourceID: &user.ID,
		Details: "account unlocked by administrator",
	})
	s.log.WithField("operation", op).WithField("user_id", user.ID).Info("account unlocked")
	return user, nil
}
