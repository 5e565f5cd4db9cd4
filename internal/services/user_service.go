package services

import (
	"errors"
	"fmt"
	"strings"

	"aguipuntos_backend/internal/models"
	"aguipuntos_backend/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// --- Data Transfer Objects (DTOs) ---

// CreateUserRequest DTO
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// --- UserService Interface ---

type UserService interface {
	GetUsers() ([]models.User, error)
	CreateUser(req CreateUserRequest) (*models.User, error)
	UpdateUserPassword(id int64, password string) error
	DeleteUser(id int64) error
}

// --- userService Implementation ---

type userService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new instance of UserService.
func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// normalizeRole coerces unknown roles to cashier, the least-privileged one.
func normalizeRole(role string) string {
	if role == models.RoleAdmin || role == models.RoleCashier {
		return role
	}
	return models.RoleCashier
}

func (s *userService) GetUsers() ([]models.User, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return users, nil
}

func (s *userService) CreateUser(req CreateUserRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if len(username) < 3 || len(username) > 30 {
		return nil, fmt.Errorf("%w: usuario inválido (3-30 caracteres)", ErrValidation)
	}
	if len(req.Password) < 4 {
		return nil, fmt.Errorf("%w: contraseña inválida (mínimo 4)", ErrValidation)
	}

	if _, err := s.userRepo.GetByUsername(username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hashed),
		Role:         normalizeRole(strings.TrimSpace(req.Role)),
	}
	if _, err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return user, nil
}

func (s *userService) UpdateUserPassword(id int64, password string) error {
	if id <= 0 {
		return fmt.Errorf("%w: id inválido", ErrValidation)
	}
	if len(password) < 4 {
		return fmt.Errorf("%w: contraseña inválida (mínimo 4)", ErrValidation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	found, err := s.userRepo.UpdatePassword(id, string(hashed))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if !found {
		return ErrUserNotFound
	}
	return nil
}

func (s *userService) DeleteUser(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: id inválido", ErrValidation)
	}
	found, err := s.userRepo.Delete(id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if !found {
		return ErrUserNotFound
	}
	return nil
}
