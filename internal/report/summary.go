// Package report computes per-vehicle and fleet-wide cost summaries and
// upcoming-maintenance alerts. Every function here is pure: rows arrive
// already fetched and scoped to one company, results are recomputed per
// request and never persisted.
package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"
)

// FuelPurchase is one refuelling row as the engine consumes it: typed,
// tenant-scoped upstream, with the vehicle plate denormalized at fetch time.
type FuelPurchase struct {
	VehicleID     string
	Plate         string
	Liters        float64
	PricePerLiter float64
	Odometer      int
	FullTank      bool
}

// MaintenanceRecord is one performed-maintenance row with its cost.
type MaintenanceRecord struct {
	VehicleID string
	Plate     string
	Cost      float64
}

// VehicleCostSummary aggregates one vehicle's fuel and maintenance spend.
type VehicleCostSummary struct {
	Plate                string  `json:"plate"`
	TotalFuelCost        float64 `json:"total_fuel_cost"`
	TotalLiters          float64 `json:"total_liters"`
	AverageKmPerLiter    float64 `json:"average_km_per_liter"`
	TotalMaintenanceCost float64 `json:"total_maintenance_cost"`
	MaintenanceCount     int     `json:"maintenance_count"`
}

// FleetCostSummary aggregates a whole fleet, keyed by vehicle ID.
type FleetCostSummary struct {
	TotalFleetCost float64                       `json:"total_fleet_cost"`
	Vehicles       map[string]VehicleCostSummary `json:"vehicles"`
}

// ValidationError reports a required field missing or out of range on an
// input row. It aborts the summary call; the caller decides whether to
// degrade to a zeroed summary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input row: %s %s", e.Field, e.Reason)
}

// EfficiencyPolicy selects which purchase pairs feed the km/L average.
type EfficiencyPolicy int

const (
	// EveryPair computes an instantaneous km/L for every adjacent pair of
	// purchases, ignoring the full-tank flag. This matches how the numbers
	// have always been reported, even though a partial fill makes the
	// figure an approximation.
	EveryPair EfficiencyPolicy = iota
	// FullTankOnly computes km/L only across intervals bounded by full-tank
	// purchases, charging intermediate partial fills to the interval they
	// fall in.
	FullTankOnly
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SummarizeFuelCosts aggregates fuel purchases into a fleet summary using
// the EveryPair efficiency policy.
func SummarizeFuelCosts(purchases []FuelPurchase) (FleetCostSummary, error) {
	return SummarizeFuelCostsWithPolicy(purchases, EveryPair)
}

// SummarizeFuelCostsWithPolicy aggregates fuel purchases into a fleet
// summary. Rows are grouped by vehicle and each group is ordered by odometer
// ascending before costs are accumulated left to right; rounding happens
// only on the presented figures, never mid-accumulation.
func SummarizeFuelCostsWithPolicy(purchases []FuelPurchase, policy EfficiencyPolicy) (FleetCostSummary, error) {
	for _, p := range purchases {
		if err := validateFuelPurchase(p); err != nil {
			return FleetCostSummary{}, err
		}
	}

	groups := make(map[string][]FuelPurchase)
	for _, p := range purchases {
		groups[p.VehicleID] = append(groups[p.VehicleID], p)
	}

	summary := FleetCostSummary{Vehicles: make(map[string]VehicleCostSummary, len(groups))}
	fleetTotal := 0.0

	for _, vehicleID := range sortedKeys(groups) {
		rows := groups[vehicleID]
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Odometer < rows[j].Odometer })

		vs := VehicleCostSummary{Plate: rows[0].Plate}
		for _, p := range rows {
			cost := p.Liters * p.PricePerLiter
			vs.TotalFuelCost += cost
			vs.TotalLiters += p.Liters
			fleetTotal += cost
		}
		vs.AverageKmPerLiter = averageKmPerLiter(rows, policy)
		vs.TotalFuelCost = round2(vs.TotalFuelCost)
		vs.TotalLiters = round2(vs.TotalLiters)
		summary.Vehicles[vehicleID] = vs
	}

	summary.TotalFleetCost = round2(fleetTotal)
	return summary, nil
}

// averageKmPerLiter computes the arithmetic mean of the instantaneous km/L
// readings for one vehicle's odometer-ordered purchases. Pairs failing the
// ordering or positivity conditions contribute nothing, not zero.
func averageKmPerLiter(rows []FuelPurchase, policy EfficiencyPolicy) float64 {
	var samples []float64
	switch policy {
	case FullTankOnly:
		samples = fullTankSamples(rows)
	default:
		for i := 1; i < len(rows); i++ {
			prev, cur := rows[i-1], rows[i]
			distance := cur.Odometer - prev.Odometer
			if distance > 0 && cur.Liters > 0 {
				samples = append(samples, round2(float64(distance)/cur.Liters))
			}
		}
	}
	if len(samples) == 0 {
		return 0.0
	}
	return round2(lo.Sum(samples) / float64(len(samples)))
}

// fullTankSamples yields one km/L reading per interval between consecutive
// full-tank purchases. Liters bought at partial fills inside the interval
// are charged to it, so the reading reflects everything burned since the
// tank was last known full.
func fullTankSamples(rows []FuelPurchase) []float64 {
	var samples []float64
	prevFull := -1
	liters := 0.0
	for i, p := range rows {
		if prevFull >= 0 {
			liters += p.Liters
		}
		if !p.FullTank {
			continue
		}
		if prevFull >= 0 {
			distance := p.Odometer - rows[prevFull].Odometer
			if distance > 0 && liters > 0 {
				samples = append(samples, round2(float64(distance)/liters))
			}
		}
		prevFull = i
		liters = 0.0
	}
	return samples
}

// SummarizeMaintenanceCosts aggregates performed-maintenance rows into a
// fleet summary: per-vehicle cost totals and record counts.
func SummarizeMaintenanceCosts(records []MaintenanceRecord) (FleetCostSummary, error) {
	summary := FleetCostSummary{Vehicles: make(map[string]VehicleCostSummary)}
	fleetTotal := 0.0

	for _, r := range records {
		if r.VehicleID == "" {
			return FleetCostSummary{}, &ValidationError{Field: "vehicle_id", Reason: "is required"}
		}
		if r.Cost <= 0 {
			return FleetCostSummary{}, &ValidationError{Field: "cost", Reason: "must be positive"}
		}
		vs := summary.Vehicles[r.VehicleID]
		if vs.Plate == "" {
			vs.Plate = r.Plate
		}
		vs.TotalMaintenanceCost += r.Cost
		vs.MaintenanceCount++
		fleetTotal += r.Cost
		summary.Vehicles[r.VehicleID] = vs
	}

	for id, vs := range summary.Vehicles {
		vs.TotalMaintenanceCost = round2(vs.TotalMaintenanceCost)
		summary.Vehicles[id] = vs
	}
	summary.TotalFleetCost = round2(fleetTotal)
	return summary, nil
}

// MergeSummaries unions a fuel summary and a maintenance summary. A vehicle
// present on only one side appears with the missing side zeroed; the grand
// total is the sum of both fleet totals.
func MergeSummaries(fuel, maintenance FleetCostSummary) FleetCostSummary {
	ids := lo.Uniq(append(lo.Keys(fuel.Vehicles), lo.Keys(maintenance.Vehicles)...))
	sort.Strings(ids)

	merged := FleetCostSummary{Vehicles: make(map[string]VehicleCostSummary, len(ids))}
	for _, id := range ids {
		f := fuel.Vehicles[id]
		m := maintenance.Vehicles[id]
		vs := VehicleCostSummary{
			Plate:                f.Plate,
			TotalFuelCost:        f.TotalFuelCost,
			TotalLiters:          f.TotalLiters,
			AverageKmPerLiter:    f.AverageKmPerLiter,
			TotalMaintenanceCost: m.TotalMaintenanceCost,
			MaintenanceCount:     m.MaintenanceCount,
		}
		if vs.Plate == "" {
			vs.Plate = m.Plate
		}
		merged.Vehicles[id] = vs
	}
	merged.TotalFleetCost = round2(fuel.TotalFleetCost + maintenance.TotalFleetCost)
	return merged
}

func validateFuelPurchase(p FuelPurchase) error {
	if p.VehicleID == "" {
		return &ValidationError{Field: "vehicle_id", Reason: "is required"}
	}
	if p.Liters <= 0 {
		return &ValidationError{Field: "liters", Reason: "must be positive"}
	}
	if p.PricePerLiter <= 0 {
		return &ValidationError{Field: "price_per_liter", Reason: "must be positive"}
	}
	return nil
}

func sortedKeys(groups map[string][]FuelPurchase) []string {
	keys := lo.Keys(groups)
	sort.Strings(keys)
	return keys
}
