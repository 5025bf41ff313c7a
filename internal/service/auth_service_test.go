package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/opencampus/academ-api/internal/models"
	appErrors "github.com/opencampus/academ-api/pkg/errors"
)

type mockAuthAccounts struct {
	account *models.Account
}

func (m *mockAuthAccounts) FindByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	if m.account == nil {
		return nil, sql.ErrNoRows
	}
	return m.account, nil
}

type mockStudentByEmail struct {
	student *models.Student
}

func (m *mockStudentByEmail) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	if m.student == nil {
		return nil, sql.ErrNoRows
	}
	return m.student, nil
}

type mockInstructorByEmail struct {
	instructor *models.Instructor
}

func (m *mockInstructorByEmail) FindByEmail(ctx context.Context, email string) (*models.Instructor, error) {
	if m.instructor == nil {
		return nil, sql.ErrNoRows
	}
	return m.instructor, nil
}

func newAuthFixture(account *models.Account, student *models.Student, instructor *models.Instructor) *AuthService {
	return NewAuthService(
		&mockAuthAccounts{account: account},
		&mockStudentByEmail{student: student},
		&mockInstructorByEmail{instructor: instructor},
		validator.New(), zap.NewNop(),
		AuthConfig{TokenSecret: "secret", TokenExpiry: time.Hour, Issuer: "academ-api"},
	)
}

func TestAuthServiceLoginStudent(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correcthorse"), bcrypt.DefaultCost)
	account := &models.Account{ID: 1, Identifier: "ada@example.com", Username: "ada", PasswordHash: string(hash), Role: models.RoleStudent}
	svc := newAuthFixture(account, &models.Student{ID: 7, Email: "ada@example.com"}, nil)

	res, err := svc.Login(context.Background(), LoginRequest{Identifier: "ada@example.com", Password: "correcthorse"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(7), res.ProfileID)
	assert.Equal(t, models.RoleStudent, res.Role)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.ProfileID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correcthorse"), bcrypt.DefaultCost)
	account := &models.Account{ID: 1, Identifier: "ada@example.com", PasswordHash: string(hash), Role: models.RoleStudent}
	svc := newAuthFixture(account, &models.Student{ID: 7}, nil)

	_, err := svc.Login(context.Background(), LoginRequest{Identifier: "ada@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials))
}

func TestAuthServiceLoginUnknownIdentifier(t *testing.T) {
	svc := newAuthFixture(nil, nil, nil)

	_, err := svc.Login(context.Background(), LoginRequest{Identifier: "ghost@example.com", Password: "whatever"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials))
}

func TestAuthServiceLoginInstructorResolvesProfile(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correcthorse"), bcrypt.DefaultCost)
	account := &models.Account{ID: 2, Identifier: "grace@example.com", PasswordHash: string(hash), Role: models.RoleInstructor}
	svc := newAuthFixture(account, nil, &models.Instructor{ID: 9, Email: "grace@example.com"})

	res, err := svc.Login(context.Background(), LoginRequest{Identifier: "grace@example.com", Password: "correcthorse"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), res.ProfileID)
	assert.Equal(t, models.RoleInstructor, res.Role)
}

func TestAuthServiceValidateTokenRejectsTampered(t *testing.T) {
	svc := newAuthFixture(nil, nil, nil)

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized))
}
