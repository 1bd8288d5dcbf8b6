package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greentrack/internal/models"
	"greentrack/internal/testutil"
)

func TestEnsureAddresses_CreatesPlaceholdersOnce(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	existing := testutil.SeedAddress(t, db, "HAM")
	res := NewResolver(db, 2, nil)

	ids, err := res.EnsureAddresses(ctx, []string{"HAM", "BER", "", "BER", "FRA", "MUC"})
	require.NoError(t, err)
	require.Len(t, ids, 4)
	assert.Equal(t, existing.AddressID, ids["HAM"])
	assert.NotContains(t, ids, "")

	again, err := res.EnsureAddresses(ctx, []string{"BER", "FRA", "MUC"})
	require.NoError(t, err)
	assert.Equal(t, ids["BER"], again["BER"])

	var n int64
	require.NoError(t, db.Model(&models.Address{}).Count(&n).Error)
	assert.EqualValues(t, 4, n)

	var fra models.Address
	require.NoError(t, db.First(&fra, ids["FRA"]).Error)
	assert.Equal(t, "FRA", *fra.Name)
}

func TestVehicleForTransportType_FirstActiveByID(t *testing.T) {
	db := testutil.DB(t)
	truck := testutil.SeedTransportType(t, db, "TRUCK")
	van := testutil.SeedTransportType(t, db, "VAN")

	parked := testutil.SeedVehicle(t, db, truck.TransportTypeID, "T-0")
	require.NoError(t, db.Model(parked).Update("is_active", false).Error)
	t1 := testutil.SeedVehicle(t, db, truck.TransportTypeID, "T-1")
	testutil.SeedVehicle(t, db, truck.TransportTypeID, "T-2")

	got, err := NewResolver(db, 0, nil).VehicleForTransportType(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]uint{"TRUCK": t1.VehicleID}, got)
	assert.NotContains(t, got, van.Name)
}

func TestSourceKeys_FirstWins(t *testing.T) {
	db := testutil.DB(t)
	s := testutil.SeedScenario(t, db)
	dup := testutil.SeedOrderStop(t, db, s.Order.OrderID, s.Address.AddressID, "S1", 3)

	keys, err := NewResolver(db, 0, nil).OrderStopKeys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, s.From.StopID, keys["S1"])
	assert.NotEqual(t, dup.StopID, keys["S1"])
	assert.Equal(t, s.To.StopID, keys["S2"])
}
