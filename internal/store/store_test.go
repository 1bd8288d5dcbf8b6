package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greentrack/internal/models"
	"greentrack/internal/store"
	"greentrack/internal/testutil"
)

func TestInsertBatches_ChunksAndWritesBackIDs(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()

	rows := make([]models.Address, 7)
	for i := range rows {
		rows[i].ExternalCode = testutil.Str(string(rune('A' + i)))
	}

	n, err := store.InsertBatches(ctx, db, "addresses", rows, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	var count int64
	require.NoError(t, db.Model(&models.Address{}).Count(&count).Error)
	assert.EqualValues(t, 7, count)
	for _, r := range rows {
		assert.NotZero(t, r.AddressID)
	}
}

func TestInsertBatches_Empty(t *testing.T) {
	db := testutil.DB(t)
	n, err := store.InsertBatches[models.Address](context.Background(), db, "addresses", nil, 10, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInsertBatches_ErrorIsWrapped(t *testing.T) {
	db := testutil.DB(t)
	// duplicate external codes violate the unique index
	rows := []models.Address{
		{ExternalCode: testutil.Str("DUP")},
		{ExternalCode: testutil.Str("DUP")},
	}
	_, err := store.InsertBatches(context.Background(), db, "addresses", rows, 1, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert addresses batch #2")
}

func TestTruncate_SQLite(t *testing.T) {
	db := testutil.DB(t)
	s := testutil.SeedScenario(t, db)
	require.NotZero(t, s.Stage.StageID)

	err := store.Truncate(context.Background(), db,
		"freight_order_stages", "freight_order_stops", "freight_orders",
		"vehicle_attributes", "vehicles", "transport_types", "addresses")
	require.NoError(t, err)

	for _, m := range []any{&models.FreightOrderStage{}, &models.FreightOrder{}, &models.Vehicle{}, &models.Address{}} {
		var count int64
		require.NoError(t, db.Model(m).Count(&count).Error)
		assert.Zero(t, count, "%T", m)
	}
}

func TestAdvisoryLock_NoopOnSQLite(t *testing.T) {
	db := testutil.DB(t)
	assert.False(t, store.IsPostgres(db))
	require.NoError(t, store.AdvisoryLock(context.Background(), db, "greentrack:facts"))
}

func TestLockKey_StableAndDistinct(t *testing.T) {
	assert.Equal(t, store.LockKey("greentrack:ingest"), store.LockKey("greentrack:ingest"))
	assert.NotEqual(t, store.LockKey("greentrack:ingest"), store.LockKey("greentrack:facts"))
}
