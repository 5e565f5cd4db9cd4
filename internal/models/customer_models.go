package models

// Customer represents a loyalty program member. The DNI is the external
// lookup key and is immutable after creation; Puntos is mutated only through
// the points service so it always reconciles against the transactions ledger.
type Customer struct {
	ID      int64   `json:"id" db:"id"`
	DNI     string  `json:"dni" db:"dni" binding:"required"`
	Nombre  string  `json:"nombre" db:"nombre" binding:"required"`
	Celular *string `json:"celular,omitempty" db:"celular"`
	Puntos  int     `json:"puntos" db:"puntos"`
}
