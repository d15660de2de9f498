package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FuelPurchase is one refuelling event. Odometer is the reading at the pump;
// purchases for a vehicle are stored and listed in odometer order, which is
// what the consumption math keys on. FullTank marks purchases that filled
// the tank completely.
type FuelPurchase struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID      string             `bson:"tenant_id" json:"tenant_id"`
	VehicleID     string             `bson:"vehicle_id" json:"vehicle_id"`
	Liters        float64            `bson:"liters" json:"liters"`
	PricePerLiter float64            `bson:"price_per_liter" json:"price_per_liter"`
	Odometer      int                `bson:"odometer" json:"odometer"`
	PurchasedAt   time.Time          `bson:"purchased_at" json:"purchased_at"`
	FullTank      bool               `bson:"full_tank" json:"full_tank"`
	Station       string             `bson:"station,omitempty" json:"station,omitempty"`
	RecordedBy    string             `bson:"recorded_by,omitempty" json:"recorded_by,omitempty"`
	ReceiptURL    string             `bson:"receipt_url,omitempty" json:"receipt_url,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

// RegisterFuelPurchaseRequest logs a fuel purchase for one of the caller's
// vehicles.
type RegisterFuelPurchaseRequest struct {
	VehicleID     string  `json:"vehicle_id" validate:"required"`
	Liters        float64 `json:"liters" validate:"required,gt=0"`
	PricePerLiter float64 `json:"price_per_liter" validate:"required,gt=0"`
	Odometer      int     `json:"odometer" validate:"required,gt=0"`
	PurchasedAt   string  `json:"purchased_at" validate:"required"` // RFC 3339
	FullTank      bool    `json:"full_tank"`
	Station       string  `json:"station" validate:"omitempty,max=120"`
	ReceiptName   string  `json:"receipt_name" validate:"omitempty,max=120"`
}
