package services

import (
	"errors"
	"fmt"
	"strings"

	"aguipuntos_backend/internal/models"
	"aguipuntos_backend/internal/repositories"
	"aguipuntos_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// ErrBootstrapForbidden rejects a bootstrap-admin call with a wrong secret.
var ErrBootstrapForbidden = errors.New("bootstrap secret mismatch")

// --- Data Transfer Objects (DTOs) ---

// LoginRequest DTO
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse DTO
type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// BootstrapAdminRequest creates or resets the initial admin account. Guarded
// by a shared secret instead of a session, since it runs before any user
// exists.
type BootstrapAdminRequest struct {
	Secret   string `json:"secret"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
}

// --- AuthService Interface ---

type AuthService interface {
	Login(req LoginRequest) (*LoginResponse, error)
	BootstrapAdmin(req BootstrapAdminRequest) (string, error)
}

// --- authService Implementation ---

type authService struct {
	userRepo        repositories.UserRepository
	bootstrapSecret string
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo repositories.UserRepository, bootstrapSecret string) AuthService {
	return &authService{userRepo: userRepo, bootstrapSecret: bootstrapSecret}
}

// isBcryptHash reports whether the stored credential is a bcrypt hash.
// Accounts imported from the legacy spreadsheet may still hold plaintext
// until their first password change.
func isBcryptHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") ||
		strings.HasPrefix(value, "$2b$") ||
		strings.HasPrefix(value, "$2y$")
}

func (s *authService) Login(req LoginRequest) (*LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: usuario y contraseña requeridos", ErrValidation)
	}

	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	passwordOk := false
	if isBcryptHash(user.PasswordHash) {
		passwordOk = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) == nil
	} else {
		passwordOk = user.PasswordHash == req.Password
	}
	if !passwordOk {
		return nil, ErrInvalidCredentials
	}

	role := user.Role
	if role == "" {
		role = models.RoleAdmin
	}
	token, err := utils.GenerateAccessToken(user.ID, user.Username, role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return &LoginResponse{Token: token, Role: role}, nil
}

// BootstrapAdmin creates the admin account, or resets its password and role
// when the username already exists. Returns the effective username.
func (s *authService) BootstrapAdmin(req BootstrapAdminRequest) (string, error) {
	if s.bootstrapSecret == "" || req.Secret != s.bootstrapSecret {
		return "", ErrBootstrapForbidden
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = "Admin"
	}
	if req.Password == "" {
		return "", fmt.Errorf("%w: password requerido", ErrValidation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	existing, err := s.userRepo.GetByUsername(username)
	switch {
	case err == nil:
		if _, err := s.userRepo.UpdatePasswordAndRole(existing.ID, string(hashed), models.RoleAdmin); err != nil {
			return "", fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
	case errors.Is(err, repositories.ErrNotFound):
		user := &models.User{Username: username, PasswordHash: string(hashed), Role: models.RoleAdmin}
		if _, err := s.userRepo.Create(user); err != nil {
			return "", fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
	default:
		return "", fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return username, nil
}
