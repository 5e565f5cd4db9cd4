package models

// Staff roles. Cashiers can operate the points flows; admins additionally
// manage users, prizes, voids and reports.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// User is a staff account.
type User struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username" binding:"required"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         string `json:"role" db:"role"`
}
