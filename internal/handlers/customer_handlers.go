package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"aguipuntos_backend/internal/models"
	"aguipuntos_backend/internal/services"
	"aguipuntos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	defaultCustomerPageSize = 20
	maxCustomerPageSize     = 100

	defaultHistoryPageSize = 50
	maxHistoryPageSize     = 500
)

// CustomerHandler holds the customer service.
type CustomerHandler struct {
	customerService services.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(cs services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: cs}
}

// CreateCustomer handles registering a new customer.
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req services.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateCustomer: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	customer, err := h.customerService.CreateCustomer(req)
	if err != nil {
		utils.LogError(err, "CreateCustomer: Error from customerService.CreateCustomer")
		if errors.Is(err, services.ErrDNIExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "El DNI ya está registrado.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create customer.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// GetCustomerByDNI handles looking a customer up by document number.
func (h *CustomerHandler) GetCustomerByDNI(c *gin.Context) {
	dni := c.Param("dni")

	customer, err := h.customerService.GetCustomerByDNI(dni)
	if err != nil {
		utils.LogError(err, "GetCustomerByDNI: Error from customerService.GetCustomerByDNI for DNI "+dni)
		if errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Cliente no encontrado.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch customer.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, customer)
}

// GetCustomerByID handles looking a customer up by internal id.
func (h *CustomerHandler) GetCustomerByID(c *gin.Context) {
	idStr := c.Param("id")
	customerID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid customer ID format.", err.Error()))
		return
	}

	customer, err := h.customerService.GetCustomerByID(customerID)
	if err != nil {
		utils.LogError(err, "GetCustomerByID: Error from customerService.GetCustomerByID for ID "+idStr)
		if errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Cliente no encontrado.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch customer.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, customer)
}

// GetCustomers handles listing customers with search and pagination.
func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultCustomerPageSize)))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	search := c.Query("search")

	if limit <= 0 {
		limit = defaultCustomerPageSize
	}
	if limit > maxCustomerPageSize {
		limit = maxCustomerPageSize
	}
	if offset < 0 {
		offset = 0
	}

	customers, total, err := h.customerService.SearchCustomers(search, limit, offset)
	if err != nil {
		utils.LogError(err, "GetCustomers: Error from customerService.SearchCustomers")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch customers.", "Internal error"))
		return
	}

	if customers == nil {
		customers = []models.Customer{}
	}

	response := gin.H{
		"data":   customers,
		"limit":  limit,
		"offset": offset,
	}
	if total >= 0 {
		response["total"] = total
	}
	c.JSON(http.StatusOK, response)
}

func historyOptionsFromQuery(c *gin.Context) services.HistoryOptions {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultHistoryPageSize)))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 {
		limit = defaultHistoryPageSize
	}
	if limit > maxHistoryPageSize {
		limit = maxHistoryPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return services.HistoryOptions{
		Type:     c.Query("type"),
		From:     c.Query("from"),
		To:       c.Query("to"),
		OrderAsc: c.Query("order") == "asc",
		Limit:    limit,
		Offset:   offset,
	}
}

// GetCustomerTransactions handles fetching a customer's ledger history.
func (h *CustomerHandler) GetCustomerTransactions(c *gin.Context) {
	idStr := c.Param("id")
	customerID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid customer ID format.", err.Error()))
		return
	}

	opts := historyOptionsFromQuery(c)
	transactions, hasMore, err := h.customerService.GetCustomerTransactions(customerID, opts)
	if err != nil {
		utils.LogError(err, "GetCustomerTransactions: Error from customerService.GetCustomerTransactions for ID "+idStr)
		if errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Cliente no encontrado.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch transactions.", "Internal error"))
		}
		return
	}

	if transactions == nil {
		transactions = []models.Transaction{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":    transactions,
		"hasMore": hasMore,
		"limit":   opts.Limit,
		"offset":  opts.Offset,
	})
}

// ExportCustomerTransactions streams a customer's history as a CSV download.
func (h *CustomerHandler) ExportCustomerTransactions(c *gin.Context) {
	idStr := c.Param("id")
	customerID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid customer ID format.", err.Error()))
		return
	}

	opts := historyOptionsFromQuery(c)
	payload, err := h.customerService.ExportCustomerTransactionsCSV(customerID, opts)
	if err != nil {
		utils.LogError(err, "ExportCustomerTransactions: Error from customerService.ExportCustomerTransactionsCSV for ID "+idStr)
		if errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Cliente no encontrado.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to export transactions.", "Internal error"))
		}
		return
	}

	filename := fmt.Sprintf("transacciones_cliente_%d.csv", customerID)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", payload)
}

// ImportCustomers handles a bulk semicolon-separated CSV upload. Accepts a
// multipart "file" field or a raw CSV body.
func (h *CustomerHandler) ImportCustomers(c *gin.Context) {
	var summary *services.ImportSummary

	file, err := c.FormFile("file")
	if err == nil {
		opened, err := file.Open()
		if err != nil {
			utils.LogError(err, "ImportCustomers: Failed to open uploaded file")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Could not read uploaded file.", err.Error()))
			return
		}
		defer opened.Close()
		summary, err = h.customerService.ImportCustomers(opened)
		if err != nil {
			respondImportError(c, err)
			return
		}
	} else {
		summary, err = h.customerService.ImportCustomers(c.Request.Body)
		if err != nil {
			respondImportError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, summary)
}

func respondImportError(c *gin.Context, err error) {
	utils.LogError(err, "ImportCustomers: Error from customerService.ImportCustomers")
	if errors.Is(err, services.ErrValidation) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	} else {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to import customers.", "Internal error"))
	}
}
