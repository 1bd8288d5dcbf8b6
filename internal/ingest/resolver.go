package ingest

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"greentrack/internal/models"
	"greentrack/internal/store"
)

// Resolver turns external codes and source keys into surrogate ids. All
// lookups run against the in-progress transaction, so rows inserted earlier
// in the same load are visible.
type Resolver struct {
	db        *gorm.DB
	batchSize int
	log       logrus.FieldLogger
}

func NewResolver(db *gorm.DB, batchSize int, log logrus.FieldLogger) *Resolver {
	if batchSize <= 0 {
		batchSize = store.DefaultBatchSize
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{db: db, batchSize: batchSize, log: log}
}

type codeRow struct {
	ID   uint
	Code *string
}

// collect builds code -> id from rows ordered by id; the first id wins for
// codes that appear more than once.
func collect(rows []codeRow) map[string]uint {
	out := make(map[string]uint, len(rows))
	for _, r := range rows {
		if r.Code == nil || *r.Code == "" {
			continue
		}
		if _, seen := out[*r.Code]; !seen {
			out[*r.Code] = r.ID
		}
	}
	return out
}

// TransportTypeIDs maps transport type code (its name) to id.
func (r *Resolver) TransportTypeIDs(ctx context.Context) (map[string]uint, error) {
	var rows []codeRow
	err := r.db.WithContext(ctx).Model(&models.TransportType{}).
		Select("transport_type_id AS id, name AS code").
		Order("transport_type_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("lookup transport types: %w", err)
	}
	return collect(rows), nil
}

// VehicleForTransportType maps a transport type code to the first active
// vehicle of that type, lowest vehicle id first.
func (r *Resolver) VehicleForTransportType(ctx context.Context) (map[string]uint, error) {
	var rows []codeRow
	err := r.db.WithContext(ctx).Table("vehicles").
		Select("vehicles.vehicle_id AS id, transport_types.name AS code").
		Joins("JOIN transport_types ON transport_types.transport_type_id = vehicles.transport_type_id").
		Where("vehicles.is_active = ?", true).
		Order("vehicles.vehicle_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("lookup vehicles: %w", err)
	}
	return collect(rows), nil
}

func (r *Resolver) sourceKeys(ctx context.Context, model any, idCol string) (map[string]uint, error) {
	var rows []codeRow
	err := r.db.WithContext(ctx).Model(model).
		Select(idCol + " AS id, source_key AS code").
		Where("source_key IS NOT NULL").
		Order(idCol).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("lookup %T source keys: %w", model, err)
	}
	return collect(rows), nil
}

func (r *Resolver) UnitKeys(ctx context.Context) (map[string]uint, error) {
	return r.sourceKeys(ctx, &models.FreightUnit{}, "unit_id")
}

func (r *Resolver) OrderKeys(ctx context.Context) (map[string]uint, error) {
	return r.sourceKeys(ctx, &models.FreightOrder{}, "order_id")
}

func (r *Resolver) OrderStopKeys(ctx context.Context) (map[string]uint, error) {
	return r.sourceKeys(ctx, &models.FreightOrderStop{}, "stop_id")
}

func (r *Resolver) addressIDs(ctx context.Context, codes []string) (map[string]uint, error) {
	out := make(map[string]uint, len(codes))
	for i := 0; i < len(codes); i += r.batchSize {
		chunk := codes[i:min(i+r.batchSize, len(codes))]
		var rows []codeRow
		err := r.db.WithContext(ctx).Model(&models.Address{}).
			Select("address_id AS id, external_code AS code").
			Where("external_code IN ?", chunk).
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("lookup addresses: %w", err)
		}
		for code, id := range collect(rows) {
			out[code] = id
		}
	}
	return out, nil
}

// EnsureAddresses guarantees every code maps to an address id, inserting a
// placeholder address (code used as name) for each unknown code.
func (r *Resolver) EnsureAddresses(ctx context.Context, codes []string) (map[string]uint, error) {
	uniq := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		if c != "" {
			uniq[c] = struct{}{}
		}
	}
	all := make([]string, 0, len(uniq))
	for c := range uniq {
		all = append(all, c)
	}
	sort.Strings(all)

	known, err := r.addressIDs(ctx, all)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, c := range all {
		if _, ok := known[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return known, nil
	}

	placeholders := make([]models.Address, len(missing))
	for i, c := range missing {
		code := c
		placeholders[i] = models.Address{ExternalCode: &code, Name: &code}
	}
	if _, err := store.InsertBatches(ctx, r.db, "addresses", placeholders, r.batchSize, r.log); err != nil {
		return nil, err
	}
	r.log.WithField("count", len(missing)).Info("created placeholder addresses")

	added, err := r.addressIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for c, id := range added {
		known[c] = id
	}
	return known, nil
}
