// Package testutil provides an isolated, migrated database and seed helpers
// for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"greentrack/internal/config"
	"greentrack/internal/models"
)

// DB returns a fresh in-memory SQLite database, private to tb, with the full
// schema migrated. It is closed when the test ends.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, tb.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	// one connection keeps the in-memory database alive and serialized
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

func ptr[T any](v T) *T { return &v }

// Str returns a pointer to s.
func Str(s string) *string { return ptr(s) }

// Float returns a pointer to f.
func Float(f float64) *float64 { return ptr(f) }

func create(tb testing.TB, db *gorm.DB, v any) {
	tb.Helper()
	if err := db.Create(v).Error; err != nil {
		tb.Fatalf("seed %T: %v", v, err)
	}
}

func SeedAddress(tb testing.TB, db *gorm.DB, code string) *models.Address {
	tb.Helper()
	a := &models.Address{ExternalCode: Str(code), Name: Str(code)}
	create(tb, db, a)
	return a
}

func SeedTransportType(tb testing.TB, db *gorm.DB, name string) *models.TransportType {
	tb.Helper()
	t := &models.TransportType{Name: name}
	create(tb, db, t)
	return t
}

func SeedVehicle(tb testing.TB, db *gorm.DB, typeID uint, plate string) *models.Vehicle {
	tb.Helper()
	v := &models.Vehicle{TransportTypeID: typeID, LicensePlate: Str(plate), IsActive: true}
	create(tb, db, v)
	return v
}

func SeedAttributes(tb testing.TB, db *gorm.DB, typeID uint, capacity, co2Empty, co2Loaded float64) *models.VehicleAttributes {
	tb.Helper()
	a := &models.VehicleAttributes{
		TransportTypeID: typeID,
		CapacityKg:      Float(capacity),
		Co2EmptyKgKm:    Float(co2Empty),
		Co2LoadedKgKm:   Float(co2Loaded),
	}
	create(tb, db, a)
	return a
}

func SeedUnit(tb testing.TB, db *gorm.DB, key string, weight *float64) *models.FreightUnit {
	tb.Helper()
	u := &models.FreightUnit{SourceKey: Str(key), Weight: weight}
	create(tb, db, u)
	return u
}

func SeedOrder(tb testing.TB, db *gorm.DB, key string, vehicleID uint, totalWeight *float64) *models.FreightOrder {
	tb.Helper()
	o := &models.FreightOrder{SourceKey: Str(key), VehicleID: vehicleID, TotalWeight: totalWeight}
	create(tb, db, o)
	return o
}

func SeedItem(tb testing.TB, db *gorm.DB, orderID, unitID uint, weight *float64) *models.FreightOrderItem {
	tb.Helper()
	it := &models.FreightOrderItem{OrderID: orderID, UnitID: unitID, Weight: weight}
	create(tb, db, it)
	return it
}

func SeedOrderStop(tb testing.TB, db *gorm.DB, orderID, addressID uint, key string, seq int) *models.FreightOrderStop {
	tb.Helper()
	s := &models.FreightOrderStop{
		OrderID:        orderID,
		AddressID:      addressID,
		SourceKey:      Str(key),
		StopType:       Str(models.StopTypeOutbound),
		SequenceNumber: seq,
	}
	create(tb, db, s)
	return s
}

func SeedStage(tb testing.TB, db *gorm.DB, orderID, fromID, toID uint, distance, duration *float64) *models.FreightOrderStage {
	tb.Helper()
	s := &models.FreightOrderStage{
		OrderID:    orderID,
		FromStopID: fromID,
		ToStopID:   toID,
		Distance:   distance,
		Duration:   duration,
	}
	create(tb, db, s)
	return s
}

// Scenario is the canonical single-stage fixture: one truck type with
// capacity 1000 kg and factors 0.10/0.25, one order of 500 kg, one 100 km
// stage.
type Scenario struct {
	Address  *models.Address
	Type     *models.TransportType
	Vehicle  *models.Vehicle
	Order    *models.FreightOrder
	From, To *models.FreightOrderStop
	Stage    *models.FreightOrderStage
}

func SeedScenario(tb testing.TB, db *gorm.DB) Scenario {
	tb.Helper()
	var s Scenario
	s.Address = SeedAddress(tb, db, "A1")
	s.Type = SeedTransportType(tb, db, "Truck")
	SeedAttributes(tb, db, s.Type.TransportTypeID, 1000, 0.10, 0.25)
	s.Vehicle = SeedVehicle(tb, db, s.Type.TransportTypeID, "TRK-1")
	s.Order = SeedOrder(tb, db, "FO1", s.Vehicle.VehicleID, Float(500))
	s.From = SeedOrderStop(tb, db, s.Order.OrderID, s.Address.AddressID, "S1", 1)
	s.To = SeedOrderStop(tb, db, s.Order.OrderID, s.Address.AddressID, "S2", 2)
	s.Stage = SeedStage(tb, db, s.Order.OrderID, s.From.StopID, s.To.StopID, Float(100), Float(90))
	return s
}
