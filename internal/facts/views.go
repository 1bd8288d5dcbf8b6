package facts

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"greentrack/internal/store"
)

// View names over transport_stage_fact.
const (
	ViewEmissionsPerVehicle = "emissions_per_vehicle"
	ViewEmissionsPerOrder   = "emissions_per_order"
	ViewFleetUtilization    = "fleet_utilization"

	refreshFunction = "refresh_analytics_materialized_views"
)

var viewQueries = []struct{ name, query string }{
	{ViewEmissionsPerVehicle, `SELECT
    vehicle_id,
    SUM(distance_km) AS total_distance,
    SUM(co2_kg)      AS total_co2,
    AVG(load_ratio)  AS avg_load_ratio
FROM transport_stage_fact
GROUP BY vehicle_id`},
	{ViewEmissionsPerOrder, `SELECT
    order_id,
    SUM(distance_km) AS total_distance,
    SUM(co2_kg)      AS total_co2,
    AVG(load_ratio)  AS avg_load_ratio
FROM transport_stage_fact
GROUP BY order_id`},
	{ViewFleetUtilization, `SELECT
    vehicle_id,
    SUM(total_weight_kg)     AS total_weight_kg,
    SUM(vehicle_capacity_kg) AS total_capacity_kg,
    CASE
        WHEN SUM(vehicle_capacity_kg) > 0
            THEN SUM(total_weight_kg) * 1.0 / SUM(vehicle_capacity_kg)
        ELSE 0
    END AS avg_load_ratio,
    SUM(distance_km)         AS total_distance_km
FROM transport_stage_fact
GROUP BY vehicle_id`},
}

const refreshFunctionSQL = `CREATE OR REPLACE FUNCTION refresh_analytics_materialized_views()
RETURNS void LANGUAGE plpgsql AS $$
BEGIN
    REFRESH MATERIALIZED VIEW emissions_per_vehicle;
    REFRESH MATERIALIZED VIEW emissions_per_order;
    REFRESH MATERIALIZED VIEW fleet_utilization;
END;
$$`

// EnsureViews creates the aggregate views and their refresh function if
// they do not exist. On Postgres they are materialized; SQLite gets plain
// views, which need no refresh.
func EnsureViews(ctx context.Context, db *gorm.DB) error {
	kind := "VIEW"
	if store.IsPostgres(db) {
		kind = "MATERIALIZED VIEW"
	}
	for _, v := range viewQueries {
		stmt := fmt.Sprintf("CREATE %s IF NOT EXISTS %s AS\n%s", kind, v.name, v.query)
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("create view %s: %w", v.name, err)
		}
	}
	if store.IsPostgres(db) {
		if err := db.WithContext(ctx).Exec(refreshFunctionSQL).Error; err != nil {
			return fmt.Errorf("create %s: %w", refreshFunction, err)
		}
	}
	return nil
}

// RefreshViews recomputes all three aggregates in one call.
func RefreshViews(ctx context.Context, db *gorm.DB) error {
	if !store.IsPostgres(db) {
		return nil
	}
	if err := db.WithContext(ctx).Exec("SELECT " + refreshFunction + "()").Error; err != nil {
		return fmt.Errorf("refresh views: %w", err)
	}
	return nil
}
