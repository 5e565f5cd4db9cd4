package models

// Prize is a catalog entry customers can redeem points for.
type Prize struct {
	ID          int64  `json:"id" db:"id"`
	Nombre      string `json:"nombre" db:"nombre" binding:"required"`
	CostoPuntos int    `json:"costo_puntos" db:"costo_puntos" binding:"required,gt=0"`
}
