package report

import "time"

// AlertKind distinguishes distance-based from date-based alerts.
type AlertKind string

const (
	AlertDistance AlertKind = "distance"
	AlertDate     AlertKind = "date"
)

// ScheduledMaintenance is a schedule row with status "scheduled", carrying
// the vehicle's plate and current odometer denormalized at fetch time.
type ScheduledMaintenance struct {
	ScheduleID      string
	VehicleID       string
	Plate           string
	Description     string
	CurrentOdometer int
	ScheduledKm     *int
	ScheduledDate   *time.Time
	AlertThreshold  int
}

// MaintenanceAlert flags a schedule that needs attention. Remaining is
// kilometers for distance alerts and whole days for date alerts; it can be
// negative only for distance alerts (overdue by distance still fires).
type MaintenanceAlert struct {
	Kind        AlertKind `json:"kind"`
	ScheduleID  string    `json:"schedule_id"`
	Description string    `json:"description"`
	Plate       string    `json:"plate"`
	Remaining   int       `json:"remaining"`
	Threshold   int       `json:"threshold"`
}

// EvaluateAlerts walks the scheduled rows and reports every upcoming
// maintenance. A schedule carrying both a due odometer and a due date is
// evaluated on each independently and can yield two alerts.
//
// Distance alerts fire whenever the remaining distance is at or below the
// threshold, including negative remainders (already past due). Date alerts
// fire only inside the zero-to-threshold window: an overdue date does not
// alert.
func EvaluateAlerts(schedules []ScheduledMaintenance, today time.Time) []MaintenanceAlert {
	var alerts []MaintenanceAlert
	for _, s := range schedules {
		if s.ScheduledKm != nil && *s.ScheduledKm > 0 {
			remaining := *s.ScheduledKm - s.CurrentOdometer
			if remaining <= s.AlertThreshold {
				alerts = append(alerts, MaintenanceAlert{
					Kind:        AlertDistance,
					ScheduleID:  s.ScheduleID,
					Description: s.Description,
					Plate:       s.Plate,
					Remaining:   remaining,
					Threshold:   s.AlertThreshold,
				})
			}
		}
		if s.ScheduledDate != nil {
			days := daysUntil(today, *s.ScheduledDate)
			if days >= 0 && days <= s.AlertThreshold {
				alerts = append(alerts, MaintenanceAlert{
					Kind:        AlertDate,
					ScheduleID:  s.ScheduleID,
					Description: s.Description,
					Plate:       s.Plate,
					Remaining:   days,
					Threshold:   s.AlertThreshold,
				})
			}
		}
	}
	return alerts
}

// daysUntil counts whole calendar days from today to due, ignoring the
// time-of-day component of both.
func daysUntil(today, due time.Time) int {
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(t).Hours() / 24)
}
