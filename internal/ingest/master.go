package ingest

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"

	"greentrack/internal/metrics"
	"greentrack/internal/models"
)

// pointWKB encodes (lon, lat) as a little-endian WKB point.
func pointWKB(lon, lat float64) ([]byte, error) {
	p := geom.NewPointFlat(geom.XY, []float64{lon, lat})
	return wkb.Marshal(p, binary.LittleEndian)
}

func (r *run) loadAddresses(ctx context.Context) error {
	m := addressMapping
	t, err := r.open(m)
	if err != nil || t == nil {
		return err
	}

	codes := make([]string, 0, len(t.Records))
	for _, rec := range t.Records {
		if c := rec.Text("external_code"); c != "" {
			codes = append(codes, c)
		}
	}
	existing, err := r.res.addressIDs(ctx, codes)
	if err != nil {
		return err
	}

	seen := firstWins{}
	var rows []models.Address
	dups := 0
	for _, rec := range t.Records {
		code := rec.TextPtr("external_code")
		if code != nil {
			if _, ok := existing[*code]; ok || !seen.add(*code) {
				dups++
				continue
			}
		}
		a := models.Address{
			ExternalCode: code,
			Name:         rec.TextPtr("name"),
			Street:       rec.TextPtr("street"),
			City:         rec.TextPtr("city"),
			PostalCode:   rec.TextPtr("postal_code"),
			Country:      rec.TextPtr("country"),
			Latitude:     rec.Number("latitude"),
			Longitude:    rec.Number("longitude"),
		}
		if a.Latitude != nil && a.Longitude != nil {
			loc, err := pointWKB(*a.Longitude, *a.Latitude)
			if err != nil {
				return fmt.Errorf("encode location of %v: %w", a.ExternalCode, err)
			}
			a.Location = loc
		}
		rows = append(rows, a)
	}
	r.drop(m.Table, metrics.ReasonDuplicate, dups)
	return insert(ctx, r, m.Table, rows)
}

func (r *run) loadTransportTypes(ctx context.Context) error {
	m := transportTypeMapping
	t, err := r.open(m)
	if err != nil || t == nil {
		return err
	}
	existing, err := r.res.TransportTypeIDs(ctx)
	if err != nil {
		return err
	}

	seen := firstWins{}
	var rows []models.TransportType
	invalid, dups := 0, 0
	for _, rec := range t.Records {
		name := rec.Text("name")
		if name == "" {
			invalid++
			continue
		}
		if _, ok := existing[name]; ok || !seen.add(name) {
			dups++
			continue
		}
		rows = append(rows, models.TransportType{Name: name, Description: rec.TextPtr("description")})
	}
	r.drop(m.Table, metrics.ReasonInvalid, invalid)
	r.drop(m.Table, metrics.ReasonDuplicate, dups)
	return insert(ctx, r, m.Table, rows)
}

func (r *run) loadVehicles(ctx context.Context) error {
	m := vehicleMapping
	t, err := r.open(m)
	if err != nil || t == nil {
		return err
	}
	typeIDs, err := r.res.TransportTypeIDs(ctx)
	if err != nil {
		return err
	}
	var plates []string
	if err := r.tx.WithContext(ctx).Model(&models.Vehicle{}).
		Where("license_plate IS NOT NULL").
		Pluck("license_plate", &plates).Error; err != nil {
		return fmt.Errorf("lookup license plates: %w", err)
	}
	seen := firstWins{}
	for _, p := range plates {
		seen.add(p)
	}

	var rows []models.Vehicle
	unknown, dups := 0, 0
	for _, rec := range t.Records {
		typeID, ok := typeIDs[rec.Text("transport_type")]
		if !ok {
			unknown++
			continue
		}
		plate := rec.TextPtr("license_plate")
		if plate != nil && !seen.add(*plate) {
			dups++
			continue
		}
		rows = append(rows, models.Vehicle{TransportTypeID: typeID, LicensePlate: plate, IsActive: true})
	}
	r.drop(m.Table, metrics.ReasonUnknownTransportType, unknown)
	r.drop(m.Table, metrics.ReasonDuplicate, dups)
	return insert(ctx, r, m.Table, rows)
}

// loadVehicleAttributes keeps only the first record per transport type.
func (r *run) loadVehicleAttributes(ctx context.Context) error {
	m := vehicleAttributesMapping
	t, err := r.open(m)
	if err != nil || t == nil {
		return err
	}
	typeIDs, err := r.res.TransportTypeIDs(ctx)
	if err != nil {
		return err
	}
	var have []uint
	if err := r.tx.WithContext(ctx).Model(&models.VehicleAttributes{}).
		Pluck("transport_type_id", &have).Error; err != nil {
		return fmt.Errorf("lookup vehicle attributes: %w", err)
	}
	seen := make(map[uint]bool, len(have))
	for _, id := range have {
		seen[id] = true
	}

	var rows []models.VehicleAttributes
	unknown, dups := 0, 0
	for _, rec := range t.Records {
		typeID, ok := typeIDs[rec.Text("transport_type")]
		if !ok {
			unknown++
			continue
		}
		if seen[typeID] {
			dups++
			continue
		}
		// the first row decides, even when its values do not parse
		seen[typeID] = true
		rows = append(rows, models.VehicleAttributes{
			TransportTypeID: typeID,
			CapacityKg:      rec.Number("capacity_kg"),
			CapacityVolume:  rec.Number("capacity_volume"),
			Co2EmptyKgKm:    rec.Number("co2_empty_kg_km"),
			Co2LoadedKgKm:   rec.Number("co2_loaded_kg_km"),
		})
	}
	r.drop(m.Table, metrics.ReasonUnknownTransportType, unknown)
	r.drop(m.Table, metrics.ReasonDuplicate, dups)
	return insert(ctx, r, m.Table, rows)
}
