// Package account registers users and signs them in. Users are global; the
// tokens it issues carry identity and role but never a tenant.
package account

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/suteetoe/storefront/internal/apperror"
	"github.com/suteetoe/storefront/internal/model"
	"github.com/suteetoe/storefront/internal/storage"
	"github.com/suteetoe/storefront/internal/validation"
	"github.com/suteetoe/storefront/pkg/jwtutil"
	"github.com/suteetoe/storefront/pkg/logger"
	"github.com/suteetoe/storefront/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterInput is a sign up request. SUPER_ADMIN cannot be self assigned.
type RegisterInput struct {
	Email    string     `json:"email" validate:"required,email,max=255"`
	Password string     `json:"password" validate:"required,min=8,max=72"`
	Name     string     `json:"name" validate:"max=255"`
	Role     model.Role `json:"role" validate:"omitempty,oneof=TENANT_OWNER CUSTOMER"`
}

// LoginInput is a sign in request
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is a successful sign in
type Session struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Service owns the users table
type Service struct {
	db   *gorm.DB
	jwt  *jwtutil.JWTUtil
	cost int
}

// NewService creates the service. cost is the bcrypt cost; zero means bcrypt.DefaultCost.
func NewService(db *gorm.DB, jwt *jwtutil.JWTUtil, cost int) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{db: db, jwt: jwt, cost: cost}
}

// Register creates a user. New accounts are store owners unless they ask to be customers.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	log := logger.FromContext(ctx)

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		prometheus.RecordAuthAttempt("register", "invalid")
		return nil, err
	}
	if in.Role == "" {
		in.Role = model.RoleTenantOwner
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	user := &model.User{
		Email:    in.Email,
		Name:     in.Name,
		Password: string(hash),
		Role:     in.Role,
	}

	done := storage.Track("user_insert")
	err = s.db.WithContext(ctx).Create(user).Error
	done()
	if err != nil {
		if storage.IsUniqueViolation(err) {
			prometheus.RecordAuthAttempt("register", "conflict")
			return nil, apperror.Conflict("email_taken", "email is already registered", err)
		}
		return nil, errors.Wrap(err, "failed to create user")
	}

	prometheus.RecordAuthAttempt("register", "success")
	log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))
	return user, nil
}

// Login checks the credentials and issues a token. Unknown emails and wrong
// passwords fail the same way.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	log := logger.FromContext(ctx)

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(in); err != nil {
		prometheus.RecordAuthAttempt("login", "invalid")
		return nil, err
	}

	var user model.User
	done := storage.Track("user_lookup")
	err := s.db.WithContext(ctx).Where("email = ?", in.Email).First(&user).Error
	done()
	if err != nil {
		if storage.IsNotFound(err) {
			prometheus.RecordAuthAttempt("login", "unknown_user")
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		prometheus.RecordAuthAttempt("login", "bad_password")
		log.Warn("Login with wrong password", zap.String("user_id", user.ID.String()))
		return nil, apperror.ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign token")
	}

	prometheus.RecordAuthAttempt("login", "success")
	log.Info("User logged in", zap.String("user_id", user.ID.String()))
	return &Session{Token: token, User: &user}, nil
}
