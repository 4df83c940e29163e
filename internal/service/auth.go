package service

import (
	"context"
	"errors"
	"strings"

	"garage-booking/internal/domain"
	"garage-booking/internal/logger"
	"garage-booking/internal/repository"
	"garage-booking/internal/security"

	"golang.org/x/crypto/bcrypt"
)

type authService struct {
	customerRepo repository.CustomerRepository
	staffRepo    repository.StaffRepository
	tokens       security.TokenManager
}

func NewAuthService(customerRepo repository.CustomerRepository, staffRepo repository.StaffRepository, tokens security.TokenManager) AuthService {
	return &authService{
		customerRepo: customerRepo,
		staffRepo:    staffRepo,
		tokens:       tokens,
	}
}

func (s *authService) LoginCustomer(ctx context.Context, email, password string) (*LoginResult, error) {
	logger.EnterMethod("authService.LoginCustomer", "email", email)

	customer, err := s.customerRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			err = domain.ErrInvalidCredentials
		}
		logger.ExitMethodWithError("authService.LoginCustomer", err)
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)); err != nil {
		logger.ExitMethodWithError("authService.LoginCustomer", domain.ErrInvalidCredentials)
		return nil, domain.ErrInvalidCredentials
	}
	if !customer.IsActive {
		logger.ExitMethodWithError("authService.LoginCustomer", domain.ErrAccountDisabled)
		return nil, domain.ErrAccountDisabled
	}

	token, err := s.tokens.GenerateAccessToken(customer.ID, customer.Email, domain.RoleCustomer)
	if err != nil {
		logger.ExitMethodWithError("authService.LoginCustomer", err)
		return nil, err
	}

	logger.ExitMethod("authService.LoginCustomer", "customerID", customer.ID)
	return &LoginResult{
		AccessToken: token,
		UserID:      customer.ID,
		Role:        domain.RoleCustomer,
		Name:        customer.FullName(),
	}, nil
}

func (s *authService) LoginStaff(ctx context.Context, username, password string) (*LoginResult, error) {
	logger.EnterMethod("authService.LoginStaff", "username", username)

	staff, err := s.staffRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrStaffNotFound) {
			err = domain.ErrInvalidCredentials
		}
		logger.ExitMethodWithError("authService.LoginStaff", err)
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(password)); err != nil {
		logger.ExitMethodWithError("authService.LoginStaff", domain.ErrInvalidCredentials)
		return nil, domain.ErrInvalidCredentials
	}
	if !staff.IsActive {
		logger.ExitMethodWithError("authService.LoginStaff", domain.ErrAccountDisabled)
		return nil, domain.ErrAccountDisabled
	}

	token, err := s.tokens.GenerateAccessToken(staff.ID, staff.Username, staff.Role)
	if err != nil {
		logger.ExitMethodWithError("authService.LoginStaff", err)
		return nil, err
	}

	logger.ExitMethod("authService.LoginStaff", "staffID", staff.ID, "role", staff.Role)
	return &LoginResult{
		AccessToken: token,
		UserID:      staff.ID,
		Role:        staff.Role,
		Name:        staff.FirstName + " " + staff.LastName,
	}, nil
}
