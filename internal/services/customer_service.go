package services

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"aguipuntos_backend/internal/models"
	"aguipuntos_backend/internal/repositories"
)

// --- Data Transfer Objects (DTOs) ---

// CreateCustomerRequest mirrors the registration form field names.
type CreateCustomerRequest struct {
	NumeroDNI       string  `json:"numeroDNI" binding:"required"`
	NombreYApellido string  `json:"nombreYApellido" binding:"required"`
	NumeroCelular   *string `json:"numeroCelular"`
}

// HistoryOptions filters a customer's transaction history. From/To are
// calendar dates in the business timezone, like report windows.
type HistoryOptions struct {
	Type     string
	From     string
	To       string
	OrderAsc bool
	Limit    int
	Offset   int
}

// ImportSummary reports the outcome of a bulk customer import.
type ImportSummary struct {
	Processed int `json:"processed"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Errors    int `json:"errors"`
}

// --- CustomerService Interface ---

type CustomerService interface {
	CreateCustomer(req CreateCustomerRequest) (*models.Customer, error)
	GetCustomerByDNI(dni string) (*models.Customer, error)
	GetCustomerByID(id int64) (*models.Customer, error)
	SearchCustomers(search string, limit, offset int) ([]models.Customer, int, error)
	GetCustomerTransactions(customerID int64, opts HistoryOptions) ([]models.Transaction, bool, error)
	ExportCustomerTransactionsCSV(customerID int64, opts HistoryOptions) ([]byte, error)
	ImportCustomers(r io.Reader) (*ImportSummary, error)
}

// --- customerService Implementation ---

type customerService struct {
	customerRepo    repositories.CustomerRepository
	transactionRepo repositories.TransactionRepository
	db              *sql.DB
	timezone        string
}

// NewCustomerService creates a new instance of CustomerService.
func NewCustomerService(
	customerRepo repositories.CustomerRepository,
	transactionRepo repositories.TransactionRepository,
	db *sql.DB,
	timezone string,
) CustomerService {
	return &customerService{
		customerRepo:    customerRepo,
		transactionRepo: transactionRepo,
		db:              db,
		timezone:        timezone,
	}
}

func (s *customerService) CreateCustomer(req CreateCustomerRequest) (*models.Customer, error) {
	dni := strings.TrimSpace(req.NumeroDNI)
	nombre := strings.TrimSpace(req.NombreYApellido)
	if dni == "" || nombre == "" {
		return nil, fmt.Errorf("%w: dni y nombre requeridos", ErrValidation)
	}

	if _, err := s.customerRepo.GetByDNI(s.db, dni); err == nil {
		return nil, ErrDNIExists
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	customer := &models.Customer{
		DNI:     dni,
		Nombre:  nombre,
		Celular: req.NumeroCelular,
	}
	if _, err := s.customerRepo.Create(s.db, customer); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrDNIExists
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return customer, nil
}

func (s *customerService) GetCustomerByDNI(dni string) (*models.Customer, error) {
	if dni == "" {
		return nil, fmt.Errorf("%w: dni requerido", ErrValidation)
	}
	customer, err := s.customerRepo.GetByDNI(s.db, dni)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return customer, nil
}

func (s *customerService) GetCustomerByID(id int64) (*models.Customer, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: cliente inválido", ErrValidation)
	}
	customer, err := s.customerRepo.GetByID(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return customer, nil
}

// SearchCustomers lists customers ordered by name. The total count is only
// computed when a search term narrows the result (-1 otherwise), matching the
// lookup widget's needs.
func (s *customerService) SearchCustomers(search string, limit, offset int) ([]models.Customer, int, error) {
	search = strings.TrimSpace(search)
	customers, err := s.customerRepo.List(search, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	total := -1
	if search != "" {
		total, err = s.customerRepo.CountBySearch(search)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
	}
	return customers, total, nil
}

// GetCustomerTransactions pages through a customer's ledger. The second
// return value reports whether more rows exist past the requested page.
func (s *customerService) GetCustomerTransactions(customerID int64, opts HistoryOptions) ([]models.Transaction, bool, error) {
	if customerID <= 0 {
		return nil, false, fmt.Errorf("%w: cliente inválido", ErrValidation)
	}
	filters, err := s.historyFilters(opts)
	if err != nil {
		return nil, false, err
	}

	// Fetch one extra row to detect a following page.
	limit := filters.Limit
	filters.Limit = limit + 1
	transactions, err := s.transactionRepo.ListByCustomer(customerID, filters)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	hasMore := len(transactions) > limit
	if hasMore {
		transactions = transactions[:limit]
	}
	return transactions, hasMore, nil
}

// ExportCustomerTransactionsCSV renders the (unpaginated) filtered history as
// CSV for download.
func (s *customerService) ExportCustomerTransactionsCSV(customerID int64, opts HistoryOptions) ([]byte, error) {
	if customerID <= 0 {
		return nil, fmt.Errorf("%w: cliente inválido", ErrValidation)
	}
	filters, err := s.historyFilters(opts)
	if err != nil {
		return nil, err
	}
	filters.Limit = 0
	filters.Offset = 0

	transactions, err := s.transactionRepo.ListByCustomer(customerID, filters)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	_ = writer.Write([]string{"createdAt", "type", "operations", "points", "note", "userName"})
	for _, t := range transactions {
		record := []string{
			t.CreatedAt.UTC().Format(time.RFC3339),
			t.Type,
			"",
			strconv.Itoa(t.Points),
			"",
			"",
		}
		if t.Operations != nil {
			record[2] = strconv.Itoa(*t.Operations)
		}
		if t.Note != nil {
			record[4] = *t.Note
		}
		if t.UserName != nil {
			record[5] = *t.UserName
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("%w: writing csv: %v", ErrStorageFailure, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("%w: writing csv: %v", ErrStorageFailure, err)
	}
	return buf.Bytes(), nil
}

// ImportCustomers upserts customers by DNI from a semicolon-separated CSV
// (dni;nombre;puntos;celular, optional header). The whole file is applied in
// one transaction; malformed lines are counted, not fatal.
func (s *customerService) ImportCustomers(r io.Reader) (*ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	summary := &ImportSummary{}
	err := repositories.WithTransaction(s.db, func(tx *sql.Tx) error {
		first := true
		for {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				summary.Errors++
				continue
			}

			field := func(i int) string {
				if i < len(record) {
					return strings.TrimSpace(record[i])
				}
				return ""
			}
			dni := field(0)
			nombre := field(1)
			puntosRaw := field(2)
			celularRaw := field(3)

			if first {
				first = false
				if strings.EqualFold(dni, "dni") && strings.EqualFold(nombre, "nombre") {
					continue
				}
			}
			if dni == "" && nombre == "" {
				continue
			}
			if dni == "" || nombre == "" {
				summary.Errors++
				continue
			}

			puntos := 0
			if puntosRaw != "" {
				puntos, err = strconv.Atoi(puntosRaw)
				if err != nil {
					summary.Errors++
					continue
				}
			}
			var celular *string
			if celularRaw != "" {
				celular = &celularRaw
			}

			created, err := s.customerRepo.Upsert(tx, &models.Customer{
				DNI:     dni,
				Nombre:  nombre,
				Celular: celular,
				Puntos:  puntos,
			})
			if err != nil {
				return err
			}
			if created {
				summary.Inserted++
			} else {
				summary.Updated++
			}
			summary.Processed++
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return summary, nil
}

func (s *customerService) historyFilters(opts HistoryOptions) (repositories.HistoryFilters, error) {
	filters := repositories.HistoryFilters{
		Type:     strings.ToUpper(strings.TrimSpace(opts.Type)),
		OrderAsc: opts.OrderAsc,
		Limit:    opts.Limit,
		Offset:   opts.Offset,
	}

	zone, err := ResolveTimezone(s.timezone)
	if err != nil {
		return filters, err
	}
	if opts.From != "" {
		fromDate, err := time.ParseInLocation(reportDateLayout, opts.From, zone)
		if err != nil {
			return filters, fmt.Errorf("%w: invalid from date %q", ErrValidation, opts.From)
		}
		start := StartOfDay(fromDate, zone).UTC()
		filters.Start = &start
	}
	if opts.To != "" {
		toDate, err := time.ParseInLocation(reportDateLayout, opts.To, zone)
		if err != nil {
			return filters, fmt.Errorf("%w: invalid to date %q", ErrValidation, opts.To)
		}
		end := StartOfDay(toDate.AddDate(0, 0, 1), zone).UTC()
		filters.End = &end
	}
	return filters, nil
}
