package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/opencampus/academ-api/internal/models"
	appErrors "github.com/opencampus/academ-api/pkg/errors"
)

type mockAccountRepo struct {
	usernameTaken bool
}

func (m *mockAccountRepo) ExistsUsername(ctx context.Context, username string) (bool, error) {
	return m.usernameTaken, nil
}

type mockStudentRepo struct {
	student        *models.Student
	emailTaken     bool
	list           []models.Student
	createErr      error
	updateErr      error
	createdAccount *models.Account
	updatedEmail   string
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	if m.student == nil {
		return nil, sql.ErrNoRows
	}
	return m.student, nil
}

func (m *mockStudentRepo) ExistsEmail(ctx context.Context, email string) (bool, error) {
	return m.emailTaken, nil
}

func (m *mockStudentRepo) List(ctx context.Context) ([]models.Student, error) {
	return m.list, nil
}

func (m *mockStudentRepo) CreateWithAccount(ctx context.Context, student *models.Student, account *models.Account) error {
	if m.createErr != nil {
		return m.createErr
	}
	student.ID = 7
	m.createdAccount = account
	return nil
}

func (m *mockStudentRepo) UpdateWithAccount(ctx context.Context, previousEmail string, student *models.Student, account *models.Account) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updatedEmail = previousEmail
	return nil
}

type mockInstructorRepo struct {
	emailTaken     bool
	list           []models.Instructor
	createErr      error
	createdAccount *models.Account
}

func (m *mockInstructorRepo) ExistsEmail(ctx context.Context, email string) (bool, error) {
	return m.emailTaken, nil
}

func (m *mockInstructorRepo) List(ctx context.Context) ([]models.Instructor, error) {
	return m.list, nil
}

func (m *mockInstructorRepo) CreateWithAccount(ctx context.Context, instructor *models.Instructor, account *models.Account) error {
	if m.createErr != nil {
		return m.createErr
	}
	instructor.ID = 9
	m.createdAccount = account
	return nil
}

func newIdentityFixture(accounts *mockAccountRepo, students *mockStudentRepo, instructors *mockInstructorRepo) *IdentityService {
	return NewIdentityService(accounts, students, instructors, validator.New(), zap.NewNop())
}

func TestIdentityServiceCreateStudent(t *testing.T) {
	students := &mockStudentRepo{}
	svc := newIdentityFixture(&mockAccountRepo{}, students, &mockInstructorRepo{})

	student, err := svc.CreateStudent(context.Background(), CreateStudentRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		Username: "ada", Password: "correcthorse",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), student.ID)

	require.NotNil(t, students.createdAccount)
	assert.NotEqual(t, "correcthorse", students.createdAccount.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(students.createdAccount.PasswordHash), []byte("correcthorse")))
}

func TestIdentityServiceCreateStudentDuplicateUsername(t *testing.T) {
	students := &mockStudentRepo{}
	svc := newIdentityFixture(&mockAccountRepo{usernameTaken: true}, students, &mockInstructorRepo{})

	_, err := svc.CreateStudent(context.Background(), CreateStudentRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		Username: "ada", Password: "correcthorse",
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrDuplicateUsername))
	assert.Nil(t, students.createdAccount)
}

func TestIdentityServiceCreateStudentDuplicateEmail(t *testing.T) {
	students := &mockStudentRepo{emailTaken: true}
	svc := newIdentityFixture(&mockAccountRepo{}, students, &mockInstructorRepo{})

	_, err := svc.CreateStudent(context.Background(), CreateStudentRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		Username: "ada", Password: "correcthorse",
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrDuplicateEmail))
}

func TestIdentityServiceCreateStudentShortPassword(t *testing.T) {
	svc := newIdentityFixture(&mockAccountRepo{}, &mockStudentRepo{}, &mockInstructorRepo{})

	_, err := svc.CreateStudent(context.Background(), CreateStudentRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		Username: "ada", Password: "short",
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestIdentityServiceCreateInstructor(t *testing.T) {
	instructors := &mockInstructorRepo{}
	svc := newIdentityFixture(&mockAccountRepo{}, &mockStudentRepo{}, instructors)

	instructor, err := svc.CreateInstructor(context.Background(), CreateInstructorRequest{
		FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com",
		Username: "grace", Password: "correcthorse",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), instructor.ID)
	require.NotNil(t, instructors.createdAccount)
}

func TestIdentityServiceUpdateStudentMatchesByStoredEmail(t *testing.T) {
	students := &mockStudentRepo{student: &models.Student{ID: 7, Email: "old@example.com"}}
	svc := newIdentityFixture(&mockAccountRepo{}, students, &mockInstructorRepo{})

	student, err := svc.UpdateStudent(context.Background(), 7, UpdateStudentRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "new@example.com",
		Username: "ada", Password: "correcthorse",
	})
	require.NoError(t, err)
	assert.Equal(t, "old@example.com", students.updatedEmail)
	assert.Equal(t, "new@example.com", student.Email)
}

func TestIdentityServiceUpdateStudentMissing(t *testing.T) {
	svc := newIdentityFixture(&mockAccountRepo{}, &mockStudentRepo{}, &mockInstructorRepo{})

	_, err := svc.UpdateStudent(context.Background(), 7, UpdateStudentRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "new@example.com",
		Username: "ada", Password: "correcthorse",
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}
