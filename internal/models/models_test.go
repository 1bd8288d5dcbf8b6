package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"greentrack/internal/models"
	"greentrack/internal/testutil"
)

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestForeignKeys_RejectUnknownParents(t *testing.T) {
	db := testutil.DB(t)
	s := testutil.SeedScenario(t, db)

	cases := map[string]any{
		"stage of unknown order": &models.FreightOrderStage{OrderID: 999, FromStopID: s.From.StopID, ToStopID: s.To.StopID},
		"stage to unknown stop":  &models.FreightOrderStage{OrderID: s.Order.OrderID, FromStopID: s.From.StopID, ToStopID: 999},
		"stop at unknown address": &models.FreightOrderStop{
			OrderID: s.Order.OrderID, AddressID: 999, SequenceNumber: 3,
		},
		"order on unknown vehicle":   &models.FreightOrder{SourceKey: testutil.Str("FO9"), VehicleID: 999},
		"vehicle of unknown type":    &models.Vehicle{TransportTypeID: 999, IsActive: true},
		"attributes of unknown type": &models.VehicleAttributes{TransportTypeID: 999},
		"item of unknown unit":       &models.FreightOrderItem{OrderID: s.Order.OrderID, UnitID: 999},
	}
	for name, row := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, db.Create(row).Error)
		})
	}
}

func TestForeignKeys_ParentsInsertIndependently(t *testing.T) {
	db := testutil.DB(t)

	testutil.SeedAddress(t, db, "A1")
	testutil.SeedTransportType(t, db, "Truck")
	testutil.SeedUnit(t, db, "FU1", nil)

	assert.EqualValues(t, 1, countRows(t, db, &models.Address{}))
	assert.EqualValues(t, 1, countRows(t, db, &models.TransportType{}))
	assert.EqualValues(t, 1, countRows(t, db, &models.FreightUnit{}))
}

func TestForeignKeys_DeletingOrderCascades(t *testing.T) {
	db := testutil.DB(t)
	s := testutil.SeedScenario(t, db)
	u := testutil.SeedUnit(t, db, "FU1", testutil.Float(100))
	testutil.SeedItem(t, db, s.Order.OrderID, u.UnitID, nil)

	require.NoError(t, db.Delete(&models.FreightOrder{}, s.Order.OrderID).Error)

	assert.Zero(t, countRows(t, db, &models.FreightOrderStage{}))
	assert.Zero(t, countRows(t, db, &models.FreightOrderStop{}))
	assert.Zero(t, countRows(t, db, &models.FreightOrderItem{}))
	// parents stay
	assert.EqualValues(t, 1, countRows(t, db, &models.Vehicle{}))
	assert.EqualValues(t, 1, countRows(t, db, &models.Address{}))
	assert.EqualValues(t, 1, countRows(t, db, &models.FreightUnit{}))
}

func TestForeignKeys_DeletingStopCascadesToStages(t *testing.T) {
	db := testutil.DB(t)
	s := testutil.SeedScenario(t, db)

	require.NoError(t, db.Delete(&models.FreightOrderStop{}, s.To.StopID).Error)

	assert.Zero(t, countRows(t, db, &models.FreightOrderStage{}))
	assert.EqualValues(t, 1, countRows(t, db, &models.FreightOrderStop{}))
	assert.EqualValues(t, 1, countRows(t, db, &models.FreightOrder{}))
}

func TestStopTypeFromCategory(t *testing.T) {
	typ, ok := models.StopTypeFromCategory("O")
	assert.True(t, ok)
	assert.Equal(t, models.StopTypeOutbound, typ)

	typ, ok = models.StopTypeFromCategory("I")
	assert.True(t, ok)
	assert.Equal(t, models.StopTypeInbound, typ)

	_, ok = models.StopTypeFromCategory("X")
	assert.False(t, ok)
}
