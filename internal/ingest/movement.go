package ingest

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"greentrack/internal/metrics"
	"greentrack/internal/models"
)

// parseSequence reads a STOP sequence number ("10", "0010", "10.0").
func parseSequence(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// stopFields are the values shared by unit and order stops once the parent
// and the address have resolved.
type stopFields struct {
	parentID  uint
	addressID uint
	stopType  string
	sequence  int
	key       *string
	parentKey *string
}

// resolveStops maps stop records onto their parent (via parents) and an
// address, creating placeholder addresses for unknown location codes.
// Unresolvable and malformed rows are dropped and counted.
func (r *run) resolveStops(ctx context.Context, table string, t *Table, parents map[string]uint) ([]stopFields, error) {
	type pending struct {
		rec      Record
		parentID uint
	}
	var (
		rows    []pending
		codes   []string
		orphans int
	)
	for _, rec := range t.Records {
		id, ok := parents[rec.Text("parent_key")]
		if !ok {
			orphans++
			continue
		}
		rows = append(rows, pending{rec, id})
		codes = append(codes, rec.Text("location"))
	}
	r.drop(table, metrics.ReasonUnknownParent, orphans)

	addrs, err := r.res.EnsureAddresses(ctx, codes)
	if err != nil {
		return nil, err
	}

	out := make([]stopFields, 0, len(rows))
	noAddress, invalid := 0, 0
	for _, p := range rows {
		addrID, ok := addrs[p.rec.Text("location")]
		if !ok {
			noAddress++
			continue
		}
		stopType, ok := models.StopTypeFromCategory(strings.ToUpper(p.rec.Text("category")))
		if !ok {
			invalid++
			continue
		}
		seq, ok := parseSequence(p.rec.Text("sequence"))
		if !ok {
			invalid++
			continue
		}
		out = append(out, stopFields{
			parentID:  p.parentID,
			addressID: addrID,
			stopType:  stopType,
			sequence:  seq,
			key:       p.rec.TextPtr("key"),
			parentKey: p.rec.TextPtr("parent_key"),
		})
	}
	r.drop(table, metrics.ReasonUnknownReference, noAddress)
	r.drop(table, metrics.ReasonInvalid, invalid)
	return out, nil
}

func (r *run) loadUnits(ctx context.Context) error {
	m := unitHeaderMapping
	t, err := r.open(m)
	if err != nil || t == nil {
		return err
	}
	existing, err := r.res.UnitKeys(ctx)
	if err != nil {
		return err
	}

	seen := firstWins{}
	var rows []models.FreightUnit
	invalid, dups := 0, 0
	for _, rec := range t.Records {
		key := rec.Text("key")
		if key == "" {
			invalid++
			continue
		}
		if _, ok := existing[key]; ok || !seen.add(key) {
			dups++
			continue
		}
		rows = append(rows, models.FreightUnit{
			SourceKey:         &key,
			Weight:            rec.Number("weight"),
			Volume:            rec.Number("volume"),
			DirectDistance:    rec.DistanceKm("distance"),
			EstimatedDuration: rec.DurationMin("duration"),
			PlannedDate:       rec.Date("planned_date"),
		})
	}
	r.drop(m.Table, metrics.ReasonInvalid, invalid)
	r.drop(m.Table, metrics.ReasonDuplicate, dups)
	return insert(ctx, r, m.Table, rows)
}

func (r *run) loadUnitStops(ctx context.Context) error {
	units, err := r.res.UnitKeys(ctx)
	if err != nil || len(units) == 0 {
		return err
	}
	m := unitStopMapping
	t, err := r.open(m)
	if err != nil || t == nil {
		return err
	}
	stops, err := r.resolveStops(ctx, m.Table, t, units)
	if err != nil {
		return err
	}
	rows := make([]models.FreightUnitStop, len(stops))
	for i, s := range stops {
		rows[i] = models.FreightUnitStop{
			UnitID:          s.parentID,
			AddressID:       s.addressID,
			StopType:        s.stopType,
			SequenceNumber:  s.sequence,
			SourceKey:       s.key,
			ParentSourceKey: s.parentKey,
		}
	}
	return insert(ctx, r, m.Table, rows)
}

// loadOrders assigns every order to the first active vehicle of its means
// of transport.
func (r *run) loadOrders(ctx context.Context) error {
	m := orderHeaderMapping
	t, err := r.open(m)
	if err != nil || t == nil {
		return err
	}
	vehicles, err := r.res.VehicleForTransportType(ctx)
	if err != nil {
		return err
	}
	existing, err := r.res.OrderKeys(ctx)
	if err != nil {
		return err
	}

	seen := firstWins{}
	var rows []models.FreightOrder
	unknown, invalid, dups := 0, 0, 0
	for _, rec := range t.Records {
		vehicleID, ok := vehicles[rec.Text("transport_type")]
		if !ok {
			unknown++
			continue
		}
		key := rec.Text("key")
		if key == "" {
			invalid++
			continue
		}
		if _, ok := existing[key]; ok || !seen.add(key) {
			dups++
			continue
		}
		rows = append(rows, models.FreightOrder{
			SourceKey:     &key,
			VehicleID:     vehicleID,
			TotalWeight:   rec.Number("weight"),
			TotalVolume:   rec.Number("volume"),
			TotalDistance: rec.DistanceKm("distance"),
			TotalDuration: rec.DurationMin("duration"),
			PlannedDate:   rec.Date("planned_date"),
		})
	}
	r.drop(m.Table, metrics.ReasonUnknownTransportType, unknown)
	r.drop(m.Table, metrics.ReasonInvalid, invalid)
	r.drop(m.Table, metrics.ReasonDuplicate, dups)
	return insert(ctx, r, m.Table, rows)
}

// loadOrderItems links orders to the units they carry. An item without its
// own weight takes the unit's weight.
func (r *run) loadOrderItems(ctx context.Context) error {
	orders, err := r.res.OrderKeys(ctx)
	if err != nil || len(orders) == 0 {
		return err
	}
	m := orderItemMapping
	t, err := r.open(m)
	if err != nil || t == nil {
		return err
	}
	units, err := r.res.UnitKeys(ctx)
	if err != nil {
		return err
	}
	var unitRows []models.FreightUnit
	if err := r.tx.WithContext(ctx).Select("unit_id", "weight").Find(&unitRows).Error; err != nil {
		return fmt.Errorf("lookup unit weights: %w", err)
	}
	unitWeight := make(map[uint]*float64, len(unitRows))
	for _, u := range unitRows {
		unitWeight[u.UnitID] = u.Weight
	}

	var rows []models.FreightOrderItem
	orphans, unknownUnit := 0, 0
	for _, rec := range t.Records {
		orderID, ok := orders[rec.Text("parent_key")]
		if !ok {
			orphans++
			continue
		}
		unitID, ok := units[rec.Text("unit_key")]
		if !ok {
			unknownUnit++
			continue
		}
		weight := rec.Number("weight")
		if weight == nil {
			weight = unitWeight[unitID]
		}
		rows = append(rows, models.FreightOrderItem{
			OrderID:         orderID,
			UnitID:          unitID,
			SourceKey:       rec.TextPtr("key"),
			ParentSourceKey: rec.TextPtr("parent_key"),
			Weight:          weight,
			Volume:          rec.Number("volume"),
		})
	}
	r.drop(m.Table, metrics.ReasonUnknownParent, orphans)
	r.drop(m.Table, metrics.ReasonUnknownReference, unknownUnit)
	return insert(ctx, r, m.Table, rows)
}

func (r *run) loadOrderStops(ctx context.Context) error {
	orders, err := r.res.OrderKeys(ctx)
	if err != nil || len(orders) == 0 {
		return err
	}
	m := orderStopMapping
	t, err := r.open(m)
	if err != nil || t == nil {
		return err
	}
	stops, err := r.resolveStops(ctx, m.Table, t, orders)
	if err != nil {
		return err
	}
	rows := make([]models.FreightOrderStop, len(stops))
	for i, s := range stops {
		stopType := s.stopType
		rows[i] = models.FreightOrderStop{
			OrderID:         s.parentID,
			AddressID:       s.addressID,
			StopType:        &stopType,
			SequenceNumber:  s.sequence,
			SourceKey:       s.key,
			ParentSourceKey: s.parentKey,
		}
	}
	return insert(ctx, r, m.Table, rows)
}

// loadOrderStages resolves each leg's order and its two stops. A leg whose
// stops belong to another order is dropped.
func (r *run) loadOrderStages(ctx context.Context) error {
	orders, err := r.res.OrderKeys(ctx)
	if err != nil || len(orders) == 0 {
		return err
	}
	stopKeys, err := r.res.OrderStopKeys(ctx)
	if err != nil || len(stopKeys) == 0 {
		return err
	}
	m := orderStageMapping
	t, err := r.open(m)
	if err != nil || t == nil {
		return err
	}

	var stopRows []models.FreightOrderStop
	if err := r.tx.WithContext(ctx).Select("stop_id", "order_id").Find(&stopRows).Error; err != nil {
		return fmt.Errorf("lookup stop orders: %w", err)
	}
	stopOrder := make(map[uint]uint, len(stopRows))
	for _, s := range stopRows {
		stopOrder[s.StopID] = s.OrderID
	}

	var rows []models.FreightOrderStage
	orphans, unknownStop, foreign := 0, 0, 0
	for _, rec := range t.Records {
		orderID, ok := orders[rec.Text("parent_key")]
		if !ok {
			orphans++
			continue
		}
		fromID, okFrom := stopKeys[rec.Text("from_key")]
		toID, okTo := stopKeys[rec.Text("to_key")]
		if !okFrom || !okTo {
			unknownStop++
			continue
		}
		if stopOrder[fromID] != orderID || stopOrder[toID] != orderID {
			foreign++
			continue
		}
		rows = append(rows, models.FreightOrderStage{
			OrderID:           orderID,
			FromStopID:        fromID,
			ToStopID:          toID,
			Distance:          rec.DistanceKm("distance"),
			Duration:          rec.DurationMin("duration"),
			SourceKey:         rec.TextPtr("key"),
			ParentSourceKey:   rec.TextPtr("parent_key"),
			FromStopSourceKey: rec.TextPtr("from_key"),
			ToStopSourceKey:   rec.TextPtr("to_key"),
		})
	}
	r.drop(m.Table, metrics.ReasonUnknownParent, orphans)
	r.drop(m.Table, metrics.ReasonUnknownReference, unknownStop)
	r.drop(m.Table, metrics.ReasonInvalid, foreign)
	return insert(ctx, r, m.Table, rows)
}
