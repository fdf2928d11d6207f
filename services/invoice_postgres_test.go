//go:build integration

package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"garageflow-backend/config"
	"garageflow-backend/migrations"
	"garageflow-backend/models"
	"garageflow-backend/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newPostgresDB starts a throwaway PostgreSQL container and applies the
// embedded migrations to it.
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("garageflow_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// the migrator closes the handle it is given
	migrationDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := migrationDB.DB()
	require.NoError(t, err)
	m, err := migrations.New(sqlDB, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	version, dirty, ok, err := m.Version()
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, dirty)
	require.NotZero(t, version)
	require.NoError(t, m.Close())

	db, err := config.ConnectDB(config.DatabaseConfig{
		URL:             dsn,
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Minute,
		LogLevel:        "silent",
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestPostgres_ConcurrentCreatesGetDistinctNumbers(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()

	shop := testutil.CreateShop(t, db, "a@example.com")
	customer := testutil.CreateCustomer(t, db, shop.ID, "Jane Doe", "+14165550100")
	vehicle := testutil.CreateVehicle(t, db, shop.ID, customer.ID, "1HGCM82633A004352")
	other := testutil.CreateShop(t, db, "b@example.com")
	otherCustomer := testutil.CreateCustomer(t, db, other.ID, "Joe", "+14165550101")
	otherVehicle := testutil.CreateVehicle(t, db, other.ID, otherCustomer.ID, "2T1BURHE0JC000001")

	svc := NewInvoiceService(db, NewPartyRegistry(db), NewSequencer(), nil, nil)

	const perShop = 15
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = map[uint][]string{}
		errs    []error
	)
	for i := 0; i < perShop; i++ {
		for _, target := range []struct{ shop, customer, vehicle uint }{
			{shop.ID, customer.ID, vehicle.ID},
			{other.ID, otherCustomer.ID, otherVehicle.ID},
		} {
			wg.Add(1)
			go func(shopID, customerID, vehicleID uint) {
				defer wg.Done()
				res, err := svc.CreateInvoice(ctx, shopID, twoItemRequest(customerID, vehicleID))
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, err)
					return
				}
				numbers[shopID] = append(numbers[shopID], res.InvoiceNumber)
			}(target.shop, target.customer, target.vehicle)
		}
	}
	wg.Wait()
	require.Empty(t, errs)

	want := make([]string, perShop)
	for i := range want {
		want[i] = fmt.Sprintf("INV-%05d", i+1)
	}
	for _, shopID := range []uint{shop.ID, other.ID} {
		got := numbers[shopID]
		sort.Strings(got)
		assert.Equal(t, want, got)
		assert.Equal(t, int64(perShop+1), testutil.ShopCounter(t, db, shopID))
	}

	var items int64
	require.NoError(t, db.Model(&models.InvoiceItem{}).Count(&items).Error)
	assert.Equal(t, int64(2*perShop*2), items)
}

func TestPostgres_FailedCreateRollsBackCounter(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()

	shop := testutil.CreateShop(t, db, "a@example.com")
	jane := testutil.CreateCustomer(t, db, shop.ID, "Jane", "+14165550100")
	joe := testutil.CreateCustomer(t, db, shop.ID, "Joe", "+14165550101")
	janeCar := testutil.CreateVehicle(t, db, shop.ID, jane.ID, "1HGCM82633A004352")

	svc := NewInvoiceService(db, NewPartyRegistry(db), NewSequencer(), nil, nil)

	_, err := svc.CreateInvoice(ctx, shop.ID, twoItemRequest(joe.ID, janeCar.ID))
	assert.ErrorIs(t, err, InvalidRequest("Vehicle not found for this customer"))
	assert.Equal(t, int64(1), testutil.ShopCounter(t, db, shop.ID))

	res, err := svc.CreateInvoice(ctx, shop.ID, twoItemRequest(jane.ID, janeCar.ID))
	require.NoError(t, err)
	assert.Equal(t, "INV-00001", res.InvoiceNumber)
}
