package services

import (
	"database/sql"
	"fmt"
	"strings"

	"aguipuntos_backend/internal/models"
	"aguipuntos_backend/internal/repositories"
)

// --- Data Transfer Objects (DTOs) ---

// SavePrizeRequest is used for creating and updating prizes.
type SavePrizeRequest struct {
	Nombre      string `json:"nombre" binding:"required"`
	CostoPuntos int    `json:"costo_puntos" binding:"required,gt=0"`
}

// --- PrizeService Interface ---

type PrizeService interface {
	GetPrizes() ([]models.Prize, error)
	CreatePrize(req SavePrizeRequest) (*models.Prize, error)
	UpdatePrize(id int64, req SavePrizeRequest) (*models.Prize, error)
	DeletePrize(id int64) error
}

// --- prizeService Implementation ---

type prizeService struct {
	prizeRepo repositories.PrizeRepository
	db        *sql.DB
}

// NewPrizeService creates a new instance of PrizeService.
func NewPrizeService(prizeRepo repositories.PrizeRepository, db *sql.DB) PrizeService {
	return &prizeService{prizeRepo: prizeRepo, db: db}
}

func (s *prizeService) GetPrizes() ([]models.Prize, error) {
	prizes, err := s.prizeRepo.List()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return prizes, nil
}

func (s *prizeService) CreatePrize(req SavePrizeRequest) (*models.Prize, error) {
	prize, err := s.validatePrize(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.prizeRepo.Create(prize); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return prize, nil
}

func (s *prizeService) UpdatePrize(id int64, req SavePrizeRequest) (*models.Prize, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id inválido", ErrValidation)
	}
	prize, err := s.validatePrize(req)
	if err != nil {
		return nil, err
	}
	prize.ID = id

	found, err := s.prizeRepo.Update(prize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if !found {
		return nil, ErrPrizeNotFound
	}
	return prize, nil
}

func (s *prizeService) DeletePrize(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: id inválido", ErrValidation)
	}
	found, err := s.prizeRepo.Delete(id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if !found {
		return ErrPrizeNotFound
	}
	return nil
}

func (s *prizeService) validatePrize(req SavePrizeRequest) (*models.Prize, error) {
	nombre := strings.TrimSpace(req.Nombre)
	if nombre == "" {
		return nil, fmt.Errorf("%w: nombre requerido", ErrValidation)
	}
	if req.CostoPuntos <= 0 {
		return nil, fmt.Errorf("%w: puntos requeridos inválidos", ErrValidation)
	}
	return &models.Prize{Nombre: nombre, CostoPuntos: req.CostoPuntos}, nil
}
