package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Schedule kinds and statuses.
const (
	ScheduleKindKm   = "km"
	ScheduleKindDate = "date"

	ScheduleStatusScheduled = "scheduled"
	ScheduleStatusCompleted = "completed"
)

// MaintenanceSchedule is a planned service for a vehicle, due either at an
// odometer reading or on a calendar date. At least one of ScheduledKm and
// ScheduledDate must be set; when both are set each is evaluated for alerts
// on its own.
type MaintenanceSchedule struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID       string             `bson:"tenant_id" json:"tenant_id"`
	VehicleID      string             `bson:"vehicle_id" json:"vehicle_id"`
	Description    string             `bson:"description" json:"description"`
	Kind           string             `bson:"kind" json:"kind"`
	ScheduledKm    *int               `bson:"scheduled_km,omitempty" json:"scheduled_km,omitempty"`
	ScheduledDate  *time.Time         `bson:"scheduled_date,omitempty" json:"scheduled_date,omitempty"`
	AlertThreshold int                `bson:"alert_threshold" json:"alert_threshold"`
	Status         string             `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// MaintenanceRecord is a service that was actually performed, with its cost.
// ScheduleID links back to the schedule it fulfilled, when there was one.
type MaintenanceRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID    string             `bson:"tenant_id" json:"tenant_id"`
	VehicleID   string             `bson:"vehicle_id" json:"vehicle_id"`
	ScheduleID  string             `bson:"schedule_id,omitempty" json:"schedule_id,omitempty"`
	Description string             `bson:"description" json:"description"`
	Cost        float64            `bson:"cost" json:"cost"`
	PerformedAt time.Time          `bson:"performed_at" json:"performed_at"`
	Workshop    string             `bson:"workshop,omitempty" json:"workshop,omitempty"`
	RecordedBy  string             `bson:"recorded_by,omitempty" json:"recorded_by,omitempty"`
	ReceiptURL  string             `bson:"receipt_url,omitempty" json:"receipt_url,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// CreateScheduleRequest plans a maintenance for one of the caller's vehicles.
type CreateScheduleRequest struct {
	VehicleID      string `json:"vehicle_id" validate:"required"`
	Description    string `json:"description" validate:"required,max=240"`
	ScheduledKm    *int   `json:"scheduled_km" validate:"omitempty,gt=0"`
	ScheduledDate  string `json:"scheduled_date" validate:"omitempty,datetime=2006-01-02"`
	AlertThreshold int    `json:"alert_threshold" validate:"required,gt=0"`
}

// RecordMaintenanceRequest logs a performed maintenance, optionally closing
// the schedule that triggered it.
type RecordMaintenanceRequest struct {
	VehicleID   string  `json:"vehicle_id" validate:"required"`
	ScheduleID  string  `json:"schedule_id"`
	Description string  `json:"description" validate:"required,max=240"`
	Cost        float64 `json:"cost" validate:"required,gt=0"`
	PerformedAt string  `json:"performed_at" validate:"required,datetime=2006-01-02"`
	Workshop    string  `json:"workshop" validate:"omitempty,max=120"`
	ReceiptName string  `json:"receipt_name" validate:"omitempty,max=120"`
}
