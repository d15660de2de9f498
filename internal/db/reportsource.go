package db

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/frotaops/fleet-manager/internal/models"
	"github.com/frotaops/fleet-manager/internal/report"
)

// ReportSource fetches the row sets the report package consumes. It is the
// only place raw documents become typed report rows: the vehicle plate and
// current odometer are denormalized onto each row here, so the report
// functions never reach back into storage.
type ReportSource struct {
	Vehicles    VehicleCollection
	Fuel        FuelCollection
	Maintenance MaintenanceCollection
}

// FuelRows fetches a tenant's fuel purchases with plates attached.
func (s *ReportSource) FuelRows(ctx context.Context, tenantID string) ([]report.FuelPurchase, error) {
	plates, err := s.plateIndex(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	purchases, err := s.Fuel.FindPurchases(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("fetch fuel purchases: %w", err)
	}

	return lo.Map(purchases, func(p models.FuelPurchase, _ int) report.FuelPurchase {
		return report.FuelPurchase{
			VehicleID:     p.VehicleID,
			Plate:         plates[p.VehicleID].Plate,
			Liters:        p.Liters,
			PricePerLiter: p.PricePerLiter,
			Odometer:      p.Odometer,
			FullTank:      p.FullTank,
		}
	}), nil
}

// MaintenanceRows fetches a tenant's performed-maintenance records with
// plates attached.
func (s *ReportSource) MaintenanceRows(ctx context.Context, tenantID string) ([]report.MaintenanceRecord, error) {
	plates, err := s.plateIndex(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	records, err := s.Maintenance.FindRecords(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("fetch maintenance records: %w", err)
	}

	return lo.Map(records, func(r models.MaintenanceRecord, _ int) report.MaintenanceRecord {
		return report.MaintenanceRecord{
			VehicleID: r.VehicleID,
			Plate:     plates[r.VehicleID].Plate,
			Cost:      r.Cost,
		}
	}), nil
}

// ScheduledRows fetches a tenant's open schedules joined with each vehicle's
// plate and current odometer, ready for alert evaluation. Schedules whose
// vehicle no longer exists are dropped.
func (s *ReportSource) ScheduledRows(ctx context.Context, tenantID string) ([]report.ScheduledMaintenance, error) {
	vehicles, err := s.plateIndex(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	schedules, err := s.Maintenance.FindSchedules(ctx, tenantID, models.ScheduleStatusScheduled)
	if err != nil {
		return nil, fmt.Errorf("fetch maintenance schedules: %w", err)
	}

	rows := make([]report.ScheduledMaintenance, 0, len(schedules))
	for _, sched := range schedules {
		vehicle, ok := vehicles[sched.VehicleID]
		if !ok {
			continue
		}
		rows = append(rows, report.ScheduledMaintenance{
			ScheduleID:      sched.ID.Hex(),
			VehicleID:       sched.VehicleID,
			Plate:           vehicle.Plate,
			Description:     sched.Description,
			CurrentOdometer: vehicle.CurrentOdometer,
			ScheduledKm:     sched.ScheduledKm,
			ScheduledDate:   sched.ScheduledDate,
			AlertThreshold:  sched.AlertThreshold,
		})
	}
	return rows, nil
}

// plateIndex maps vehicle ID to the vehicle document for a tenant.
func (s *ReportSource) plateIndex(ctx context.Context, tenantID string) (map[string]models.Vehicle, error) {
	vehicles, err := s.Vehicles.FindVehicles(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("fetch vehicles: %w", err)
	}
	return lo.KeyBy(vehicles, func(v models.Vehicle) string { return v.ID.Hex() }), nil
}
