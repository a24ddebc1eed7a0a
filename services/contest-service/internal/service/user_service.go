package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"dailyart/services/contest-service/internal/clock"
	"dailyart/services/contest-service/internal/models"
	"dailyart/services/contest-service/internal/repository"
	"dailyart/shared/pkg/helpers"
)

// GeneratedPasswordLength is the length of passwords from GeneratePassword.
const GeneratedPasswordLength = 20

// SessionStore maps opaque tokens to user ids.
type SessionStore interface {
	Create(ctx context.Context, token string, userID uint64, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (uint64, bool, error)
	Delete(ctx context.Context, token string) error
}

// Registration is the signup form.
type Registration struct {
	Email           string `json:"email" validate:"min=4,max=150"`
	Username        string `json:"username" validate:"min=4,max=32"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=Password"`
	Password        string `json:"password" validate:"min=7,max=32"`
}

// Session is an issued login token.
type Session struct {
	Token     string
	User      *models.User
	ExpiresAt time.Time
}

type UserService interface {
	Register(ctx context.Context, reg Registration) (*models.User, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout(ctx context.Context, token string) error
	GetUser(ctx context.Context, id uint64) (*models.User, error)
	GeneratePassword() (string, error)
}

type userService struct {
	users      repository.UserRepository
	sessions   SessionStore
	resolver   *clock.Resolver
	sessionTTL time.Duration
	validator  *helpers.CustomValidator
	ids        *helpers.IDGenerator
	bcryptCost int
}

func NewUserService(users repository.UserRepository, sessions SessionStore, resolver *clock.Resolver, sessionTTL time.Duration) UserService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &userService{
		users:      users,
		sessions:   sessions,
		resolver:   resolver,
		sessionTTL: sessionTTL,
		validator:  helpers.NewCustomValidator(),
		ids:        helpers.NewIDGenerator(),
		bcryptCost: bcrypt.DefaultCost,
	}
}

func (s *userService) Register(ctx context.Context, reg Registration) (*models.User, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Username = strings.TrimSpace(reg.Username)

	existing, err := s.users.GetByEmail(ctx, reg.Email)
	if err != nil {
		return nil, storageErr("check email", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	if err := s.validator.Validate(reg); err != nil {
		return nil, invalidInput(err)
	}

	existing, err = s.users.GetByUsername(ctx, reg.Username)
	if err != nil {
		return nil, storageErr("check username", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &models.User{
		Email:        reg.Email,
		Username:     reg.Username,
		PasswordHash: string(hash),
		CreatedAt:    s.resolver.Now(),
	})
	if errors.Is(err, repository.ErrDuplicateKey) {
		// Lost a race with a concurrent signup; report whichever field collided.
		if u, lookupErr := s.users.GetByEmail(ctx, reg.Email); lookupErr == nil && u != nil {
			return nil, ErrEmailTaken
		}
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, storageErr("create user", err)
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, storageErr("get user", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token := s.ids.GenerateToken()
	if err := s.sessions.Create(ctx, token, user.ID, s.sessionTTL); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &Session{Token: token, User: user, ExpiresAt: s.resolver.Now().Add(s.sessionTTL)}, nil
}

func (s *userService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *userService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("get user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userService) GeneratePassword() (string, error) {
	return s.ids.GenerateCode(GeneratedPasswordLength)
}
