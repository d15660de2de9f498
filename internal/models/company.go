package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Company is a registered tenant. Every other document in the system carries
// the company's ID and is only ever queried through it.
type Company struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	TaxID     string             `bson:"tax_id,omitempty" json:"tax_id,omitempty"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// RegisterCompanyRequest registers a new company together with its first
// (admin) user account.
type RegisterCompanyRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	TaxID    string `json:"tax_id" validate:"omitempty,max=20"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
}
