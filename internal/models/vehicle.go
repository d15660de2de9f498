package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle represents a fleet vehicle. CurrentOdometer is the reference
// reading for maintenance alerts; it advances on every fuel purchase and on
// odometer telemetry messages.
type Vehicle struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID        string             `bson:"tenant_id" json:"tenant_id"`
	Plate           string             `bson:"plate" json:"plate"`
	Make            string             `bson:"make" json:"make"`
	Model           string             `bson:"model" json:"model"`
	Year            int                `bson:"year" json:"year"`
	FuelType        string             `bson:"fuel_type" json:"fuel_type"` // "gasoline", "diesel", "ethanol", "flex"
	CurrentOdometer int                `bson:"current_odometer" json:"current_odometer"`
	Status          string             `bson:"status" json:"status"` // "active" or "inactive"
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// RegisterVehicleRequest registers a vehicle for the caller's company.
type RegisterVehicleRequest struct {
	Plate           string `json:"plate" validate:"required,min=5,max=10"`
	Make            string `json:"make" validate:"required,max=60"`
	Model           string `json:"model" validate:"required,max=60"`
	Year            int    `json:"year" validate:"required,gte=1950,lte=2100"`
	FuelType        string `json:"fuel_type" validate:"required,oneof=gasoline diesel ethanol flex"`
	CurrentOdometer int    `json:"current_odometer" validate:"gte=0"`
}
