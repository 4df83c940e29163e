package service

import (
	"context"
	"testing"
	"time"

	"garage-booking/internal/domain"
	"garage-booking/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthService_LoginCustomer(t *testing.T) {
	tokens := security.NewTokenManager("0123456789abcdef0123456789abcdef", "garage-booking", time.Hour)

	t.Run("Success", func(t *testing.T) {
		customers := new(MockCustomerRepo)
		customers.On("GetByEmail", mock.Anything, "ada@example.com").Return(&domain.Customer{
			ID: 3, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
			PasswordHash: hashPassword(t, "s3cret"), IsActive: true,
		}, nil)
		svc := NewAuthService(customers, new(MockStaffRepo), tokens)

		res, err := svc.LoginCustomer(context.Background(), " Ada@Example.com ", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, int64(3), res.UserID)
		assert.Equal(t, "Ada Lovelace", res.Name)

		claims, err := tokens.ValidateToken(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, domain.Actor{ID: 3, Role: domain.RoleCustomer}, claims.Actor())
	})

	t.Run("WrongPassword", func(t *testing.T) {
		customers := new(MockCustomerRepo)
		customers.On("GetByEmail", mock.Anything, "ada@example.com").Return(&domain.Customer{
			ID: 3, PasswordHash: hashPassword(t, "s3cret"), IsActive: true,
		}, nil)
		svc := NewAuthService(customers, new(MockStaffRepo), tokens)

		_, err := svc.LoginCustomer(context.Background(), "ada@example.com", "guess")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		customers := new(MockCustomerRepo)
		customers.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, domain.ErrCustomerNotFound)
		svc := NewAuthService(customers, new(MockStaffRepo), tokens)

		_, err := svc.LoginCustomer(context.Background(), "nobody@example.com", "x")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("Disabled", func(t *testing.T) {
		customers := new(MockCustomerRepo)
		customers.On("GetByEmail", mock.Anything, "ada@example.com").Return(&domain.Customer{
			ID: 3, PasswordHash: hashPassword(t, "s3cret"), IsActive: false,
		}, nil)
		svc := NewAuthService(customers, new(MockStaffRepo), tokens)

		_, err := svc.LoginCustomer(context.Background(), "ada@example.com", "s3cret")
		assert.ErrorIs(t, err, domain.ErrAccountDisabled)
	})
}

func TestAuthService_LoginStaff(t *testing.T) {
	tokens := security.NewTokenManager("0123456789abcdef0123456789abcdef", "garage-booking", time.Hour)

	t.Run("Success", func(t *testing.T) {
		staff := new(MockStaffRepo)
		staff.On("GetByUsername", mock.Anything, "jmanager").Return(&domain.Staff{
			ID: 2, Username: "jmanager", FirstName: "Jo", LastName: "Smith",
			PasswordHash: hashPassword(t, "pa55"), Role: domain.RoleManager, IsActive: true,
		}, nil)
		svc := NewAuthService(new(MockCustomerRepo), staff, tokens)

		res, err := svc.LoginStaff(context.Background(), "jmanager", "pa55")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleManager, res.Role)

		claims, err := tokens.ValidateToken(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleManager, claims.Role)
	})

	t.Run("NotFound", func(t *testing.T) {
		staff := new(MockStaffRepo)
		staff.On("GetByUsername", mock.Anything, "ghost").Return(nil, domain.ErrStaffNotFound)
		svc := NewAuthService(new(MockCustomerRepo), staff, tokens)

		_, err := svc.LoginStaff(context.Background(), "ghost", "x")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}
