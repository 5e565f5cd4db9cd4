package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newCustomerService(env *testEnv) CustomerService {
	return NewCustomerService(env.customers, env.transactions, env.db, DefaultTimezone)
}

func TestCreateCustomer(t *testing.T) {
	env := newTestEnv(t)
	svc := newCustomerService(env)

	customer, err := svc.CreateCustomer(CreateCustomerRequest{
		NumeroDNI:       " 30111222 ",
		NombreYApellido: "Ana García",
		NumeroCelular:   strPtr("3815551234"),
	})
	require.NoError(t, err)
	require.NotZero(t, customer.ID)
	require.Equal(t, "30111222", customer.DNI)
	require.Equal(t, 0, customer.Puntos)

	_, err = svc.CreateCustomer(CreateCustomerRequest{
		NumeroDNI:       "30111222",
		NombreYApellido: "Otra Persona",
	})
	require.ErrorIs(t, err, ErrDNIExists)

	_, err = svc.CreateCustomer(CreateCustomerRequest{NumeroDNI: "", NombreYApellido: "X"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestSearchCustomers(t *testing.T) {
	env := newTestEnv(t)
	env.createCustomer(t, "30111222", "Ana García", 0)
	env.createCustomer(t, "27333444", "Luis Pérez", 0)
	svc := newCustomerService(env)

	// Without a search term the total is skipped.
	customers, total, err := svc.SearchCustomers("", 10, 0)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	require.Equal(t, -1, total)

	customers, total, err = svc.SearchCustomers("ana", 10, 0)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	require.Equal(t, 1, total)
	require.Equal(t, "Ana García", customers[0].Nombre)

	// DNI fragments match too.
	customers, total, err = svc.SearchCustomers("2733", 10, 0)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	require.Equal(t, 1, total)
}

func TestGetCustomerTransactionsPagination(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "30111222", "Ana García", 0)
	points := env.pointsService()
	svc := newCustomerService(env)

	for i := 0; i < 3; i++ {
		_, err := points.LoadPoints("30111222", 50, nil, testActor(7, "caja1"))
		require.NoError(t, err)
	}

	page, hasMore, err := svc.GetCustomerTransactions(customer.ID, HistoryOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.True(t, hasMore)

	page, hasMore, err = svc.GetCustomerTransactions(customer.ID, HistoryOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.False(t, hasMore)
}

func TestGetCustomerTransactionsTypeFilter(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "30111222", "Ana García", 0)
	points := env.pointsService()
	svc := newCustomerService(env)

	_, err := points.LoadPoints("30111222", 100, nil, testActor(7, "caja1"))
	require.NoError(t, err)
	_, err = points.RedeemCustom("30111222", 40, "", testActor(7, "caja1"))
	require.NoError(t, err)

	page, _, err := svc.GetCustomerTransactions(customer.ID, HistoryOptions{Type: "redeem", Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, -40, page[0].Points)
}

func TestExportCustomerTransactionsCSV(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "30111222", "Ana García", 0)
	points := env.pointsService()
	svc := newCustomerService(env)

	_, err := points.LoadPoints("30111222", 150, nil, testActor(7, "caja1"))
	require.NoError(t, err)

	payload, err := svc.ExportCustomerTransactionsCSV(customer.ID, HistoryOptions{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "createdAt,type,operations,points,note,userName", lines[0])
	require.Contains(t, lines[1], ",LOAD,3,150,,caja1")
}

func TestImportCustomersUpsert(t *testing.T) {
	env := newTestEnv(t)
	env.createCustomer(t, "30111222", "Nombre Viejo", 10)
	svc := newCustomerService(env)

	csvData := strings.Join([]string{
		"dni;nombre;puntos;celular",
		"30111222;Ana García;250;3815551234",
		"27333444;Luis Pérez;0;",
		";sin dni;5;",
		"40555666;Cata Ruiz;abc;",
		"",
	}, "\n")

	summary, err := svc.ImportCustomers(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Equal(t, 2, summary.Processed)
	require.Equal(t, 1, summary.Inserted)
	require.Equal(t, 1, summary.Updated)
	require.Equal(t, 2, summary.Errors)

	updated, err := svc.GetCustomerByDNI("30111222")
	require.NoError(t, err)
	require.Equal(t, "Ana García", updated.Nombre)
	require.Equal(t, 250, updated.Puntos)
	require.NotNil(t, updated.Celular)
	require.Equal(t, "3815551234", *updated.Celular)

	inserted, err := svc.GetCustomerByDNI("27333444")
	require.NoError(t, err)
	require.Equal(t, "Luis Pérez", inserted.Nombre)
	require.Equal(t, 0, inserted.Puntos)
}

func TestGetCustomerByDNIMissing(t *testing.T) {
	env := newTestEnv(t)
	svc := newCustomerService(env)

	_, err := svc.GetCustomerByDNI("99999999")
	require.ErrorIs(t, err, ErrCustomerNotFound)

	_, err = svc.GetCustomerByID(0)
	require.ErrorIs(t, err, ErrValidation)
}
