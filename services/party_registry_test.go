package services

import (
	"context"
	"testing"
	"time"

	"garageflow-backend/models"
	"garageflow-backend/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCustomer(t *testing.T) {
	db := testutil.NewDB(t)
	reg := NewPartyRegistry(db)
	ctx := context.Background()
	shop := testutil.CreateShop(t, db, "a@example.com")
	other := testutil.CreateShop(t, db, "b@example.com")

	t.Run("creates with trimmed optional fields", func(t *testing.T) {
		c, err := reg.CreateCustomer(ctx, shop.ID, CreateCustomerRequest{
			Name:    "  Jane Doe ",
			Phone:   "+14165550100",
			Email:   strPtr(" jane@example.com "),
			Address: strPtr("   "),
		})
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", c.Name)
		require.NotNil(t, c.Email)
		assert.Equal(t, "jane@example.com", *c.Email)
		assert.Nil(t, c.Address)
	})

	t.Run("name and phone required", func(t *testing.T) {
		_, err := reg.CreateCustomer(ctx, shop.ID, CreateCustomerRequest{Name: "Bob"})
		assert.ErrorIs(t, err, InvalidRequest("Customer name and phone required"))
	})

	t.Run("invalid phone", func(t *testing.T) {
		_, err := reg.CreateCustomer(ctx, shop.ID, CreateCustomerRequest{Name: "Bob", Phone: "call me"})
		assert.ErrorIs(t, err, InvalidRequest("Invalid phone number format"))
	})

	t.Run("duplicate phone in same shop", func(t *testing.T) {
		_, err := reg.CreateCustomer(ctx, shop.ID, CreateCustomerRequest{Name: "Other Jane", Phone: "+14165550100"})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("same phone in another shop", func(t *testing.T) {
		_, err := reg.CreateCustomer(ctx, other.ID, CreateCustomerRequest{Name: "Jane Doe", Phone: "+14165550100"})
		assert.NoError(t, err)
	})
}

func TestListCustomers(t *testing.T) {
	db := testutil.NewDB(t)
	reg := NewPartyRegistry(db)
	ctx := context.Background()
	shop := testutil.CreateShop(t, db, "a@example.com")
	other := testutil.CreateShop(t, db, "b@example.com")

	testutil.CreateCustomer(t, db, shop.ID, "Zed Smith", "+14165550101")
	testutil.CreateCustomer(t, db, shop.ID, "Anna Smith", "+14165550102")
	testutil.CreateCustomer(t, db, shop.ID, "Carl Jones", "+16045550103")
	testutil.CreateCustomer(t, db, other.ID, "Anna Smith", "+14165550102")

	all, err := reg.ListCustomers(ctx, shop.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Anna Smith", all[0].Name)
	assert.Equal(t, "Zed Smith", all[2].Name)

	byName, err := reg.ListCustomers(ctx, shop.ID, "SMITH")
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	byPhone, err := reg.ListCustomers(ctx, shop.ID, "604555")
	require.NoError(t, err)
	require.Len(t, byPhone, 1)
	assert.Equal(t, "Carl Jones", byPhone[0].Name)

	none, err := reg.ListCustomers(ctx, shop.ID, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestListCustomers_WildcardsMatchLiterally(t *testing.T) {
	db := testutil.NewDB(t)
	reg := NewPartyRegistry(db)
	ctx := context.Background()
	shop := testutil.CreateShop(t, db, "a@example.com")

	testutil.CreateCustomer(t, db, shop.ID, "A_B Motors", "+14165550101")
	testutil.CreateCustomer(t, db, shop.ID, "Axb Towing", "+14165550102")
	testutil.CreateCustomer(t, db, shop.ID, "100% Auto", "+14165550103")

	underscore, err := reg.ListCustomers(ctx, shop.ID, "a_b")
	require.NoError(t, err)
	require.Len(t, underscore, 1)
	assert.Equal(t, "A_B Motors", underscore[0].Name)

	percent, err := reg.ListCustomers(ctx, shop.ID, "%")
	require.NoError(t, err)
	require.Len(t, percent, 1)
	assert.Equal(t, "100% Auto", percent[0].Name)

	backslash, err := reg.ListCustomers(ctx, shop.ID, `\`)
	require.NoError(t, err)
	assert.Empty(t, backslash)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%smith%", likePattern("SMITH"))
	assert.Equal(t, `%a\_b%`, likePattern("A_B"))
	assert.Equal(t, `%100\%%`, likePattern("100%"))
	assert.Equal(t, `%c:\\x%`, likePattern(`C:\x`))
}

func TestGetCustomer_TenantIsolation(t *testing.T) {
	db := testutil.NewDB(t)
	reg := NewPartyRegistry(db)
	ctx := context.Background()
	shop := testutil.CreateShop(t, db, "a@example.com")
	other := testutil.CreateShop(t, db, "b@example.com")
	c := testutil.CreateCustomer(t, db, shop.ID, "Jane Doe", "+14165550100")

	got, err := reg.GetCustomer(ctx, shop.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = reg.GetCustomer(ctx, other.ID, c.ID)
	assert.ErrorIs(t, err, NotFound("Customer not found"))
}

func TestCreateVehicle(t *testing.T) {
	db := testutil.NewDB(t)
	reg := NewPartyRegistry(db)
	ctx := context.Background()
	shop := testutil.CreateShop(t, db, "a@example.com")
	other := testutil.CreateShop(t, db, "b@example.com")
	c := testutil.CreateCustomer(t, db, shop.ID, "Jane Doe", "+14165550100")
	foreign := testutil.CreateCustomer(t, db, other.ID, "Joe", "+14165550199")

	year := 2019
	v, err := reg.CreateVehicle(ctx, shop.ID, CreateVehicleRequest{
		CustomerID: c.ID,
		VIN:        "1hgcm 82633a004352",
		Make:       strPtr("Honda"),
		Year:       &year,
	})
	require.NoError(t, err)
	assert.Equal(t, "1HGCM82633A004352", v.VIN)

	_, err = reg.CreateVehicle(ctx, shop.ID, CreateVehicleRequest{CustomerID: c.ID, VIN: "1HGCM82633A004352"})
	assert.ErrorIs(t, err, Conflict("Vehicle VIN already exists"))

	_, err = reg.CreateVehicle(ctx, shop.ID, CreateVehicleRequest{CustomerID: foreign.ID, VIN: "2T1BURHE0JC000001"})
	assert.ErrorIs(t, err, InvalidRequest("Customer not found"))

	_, err = reg.CreateVehicle(ctx, shop.ID, CreateVehicleRequest{CustomerID: c.ID, VIN: "  "})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	vehicles, err := reg.ListCustomerVehicles(ctx, shop.ID, c.ID)
	require.NoError(t, err)
	require.Len(t, vehicles, 1)
	assert.Equal(t, v.ID, vehicles[0].ID)

	vehicles, err = reg.ListCustomerVehicles(ctx, other.ID, c.ID)
	require.NoError(t, err)
	assert.Empty(t, vehicles)
}

func TestPartyRegistry_Membership(t *testing.T) {
	db := testutil.NewDB(t)
	reg := NewPartyRegistry(db)
	ctx := context.Background()
	shop := testutil.CreateShop(t, db, "a@example.com")
	c1 := testutil.CreateCustomer(t, db, shop.ID, "Jane", "+14165550100")
	c2 := testutil.CreateCustomer(t, db, shop.ID, "Joe", "+14165550101")
	v := testutil.CreateVehicle(t, db, shop.ID, c1.ID, "1HGCM82633A004352")

	ok, err := reg.CustomerExists(ctx, nil, shop.ID, c1.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = reg.CustomerExists(ctx, nil, shop.ID+1, c1.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = reg.VehicleBelongsTo(ctx, db, shop.ID, c1.ID, v.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = reg.VehicleBelongsTo(ctx, db, shop.ID, c2.ID, v.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCustomerHistory(t *testing.T) {
	db := testutil.NewDB(t)
	reg := NewPartyRegistry(db)
	ctx := context.Background()
	shop := testutil.CreateShop(t, db, "a@example.com")
	other := testutil.CreateShop(t, db, "b@example.com")
	c := testutil.CreateCustomer(t, db, shop.ID, "Jane", "+14165550100")
	v := testutil.CreateVehicle(t, db, shop.ID, c.ID, "1HGCM82633A004352")

	jan := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, time.February, 5, 0, 0, 0, 0, time.UTC)
	testutil.CreateInvoice(t, db, shop.ID, c.ID, v.ID, testutil.InvoiceOptions{Number: "INV-00001", Date: jan, Total: decimal.RequireFromString("50")})
	testutil.CreateInvoice(t, db, shop.ID, c.ID, v.ID, testutil.InvoiceOptions{
		Number: "INV-00002", Date: feb, Status: models.StatusPaid, Total: decimal.RequireFromString("75.5"),
	})

	history, err := reg.CustomerHistory(ctx, shop.ID, c.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "INV-00002", history[0].InvoiceNumber)
	assert.Equal(t, "75.50", history[0].TotalAmount)
	assert.Equal(t, "Paid", history[0].Status)
	assert.Equal(t, "1HGCM82633A004352", history[0].VehicleVIN)
	assert.Equal(t, "2026-02-05", history[0].InvoiceDate.String())
	assert.Equal(t, "INV-00001", history[1].InvoiceNumber)

	_, err = reg.CustomerHistory(ctx, other.ID, c.ID)
	assert.ErrorIs(t, err, NotFound("Customer not found"))
}
