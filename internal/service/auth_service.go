package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/opencampus/academ-api/internal/models"
	appErrors "github.com/opencampus/academ-api/pkg/errors"
)

type authAccountRepository interface {
	FindByIdentifier(ctx context.Context, identifier string) (*models.Account, error)
}

type studentEmailReader interface {
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
}

type instructorEmailReader interface {
	FindByEmail(ctx context.Context, email string) (*models.Instructor, error)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	TokenSecret string
	TokenExpiry time.Duration
	Issuer      string
}

// LoginRequest carries the credential pair for a login attempt.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// AuthService authenticates accounts and issues access tokens.
type AuthService struct {
	accounts    authAccountRepository
	students    studentEmailReader
	instructors instructorEmailReader
	validator   *validator.Validate
	logger      *zap.Logger
	config      AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(accounts authAccountRepository, students studentEmailReader, instructors instructorEmailReader, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{accounts: accounts, students: students, instructors: instructors, validator: validate, logger: logger, config: config}
}

// Login checks the credential pair and, on match, resolves the routable
// profile id through the role-specific profile table before issuing a token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	account, err := s.accounts.FindByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	profileID, err := s.resolveProfile(ctx, account)
	if err != nil {
		return nil, err
	}

	token, err := s.generateToken(account, profileID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.logger.Info("login", zap.Int64("account_id", account.ID), zap.String("role", string(account.Role)))

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.TokenExpiry.Seconds()),
		AccountID:   account.ID,
		ProfileID:   profileID,
		Role:        account.Role,
	}, nil
}

func (s *AuthService) resolveProfile(ctx context.Context, account *models.Account) (int64, error) {
	switch account.Role {
	case models.RoleStudent:
		student, err := s.students.FindByEmail(ctx, account.Identifier)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
			}
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
		}
		return student.ID, nil
	case models.RoleInstructor:
		instructor, err := s.instructors.FindByEmail(ctx, account.Identifier)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, appErrors.Clone(appErrors.ErrNotFound, "instructor profile not found")
			}
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor profile")
		}
		return instructor.ID, nil
	default:
		return account.ID, nil
	}
}

func (s *AuthService) generateToken(account *models.Account, profileID int64) (string, error) {
	now := time.Now().UTC()
	claims := &models.JWTClaims{
		AccountID: account.ID,
		ProfileID: profileID,
		Role:      account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.Identifier,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenExpiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.TokenSecret))
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(raw string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}
