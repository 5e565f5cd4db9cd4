package services

import (
	"testing"

	"aguipuntos_backend/internal/models"
	"aguipuntos_backend/internal/repositories"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateUserNormalizesRole(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewUserRepository(db)
	svc := NewUserService(repo)

	user, err := svc.CreateUser(CreateUserRequest{Username: "caja1", Password: "1234", Role: "superuser"})
	require.NoError(t, err)
	require.Equal(t, models.RoleCashier, user.Role)

	admin, err := svc.CreateUser(CreateUserRequest{Username: "jefa", Password: "1234", Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, admin.Role)

	stored, err := repo.GetByUsername("caja1")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("1234")))

	_, err = svc.CreateUser(CreateUserRequest{Username: "caja1", Password: "1234"})
	require.ErrorIs(t, err, ErrUsernameExists)

	_, err = svc.CreateUser(CreateUserRequest{Username: "ab", Password: "1234"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateUser(CreateUserRequest{Username: "caja2", Password: "123"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateUserPasswordAndDelete(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewUserRepository(db)
	svc := NewUserService(repo)

	user, err := svc.CreateUser(CreateUserRequest{Username: "caja1", Password: "1234"})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateUserPassword(user.ID, "nueva"))
	stored, err := repo.GetByUsername("caja1")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("nueva")))

	require.ErrorIs(t, svc.UpdateUserPassword(9999, "nueva"), ErrUserNotFound)

	require.NoError(t, svc.DeleteUser(user.ID))
	require.ErrorIs(t, svc.DeleteUser(user.ID), ErrUserNotFound)

	users, err := svc.GetUsers()
	require.NoError(t, err)
	require.Empty(t, users)
}
