package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/frotaops/fleet-manager/internal/models"
)

// ErrNotFound is returned when a tenant-scoped lookup matches nothing. A
// document belonging to another tenant is indistinguishable from a missing
// one by design.
var ErrNotFound = errors.New("document not found")

// VehicleCollection defines the interface for vehicle operations. Every
// method takes the tenant id explicitly and filters on it.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) (string, error)
	FindVehicles(ctx context.Context, tenantID string) ([]models.Vehicle, error)
	FindVehicleByID(ctx context.Context, tenantID, id string) (*models.Vehicle, error)
	FindVehicleByPlate(ctx context.Context, tenantID, plate string) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, tenantID, id string, vehicle models.Vehicle) error
	UpdateOdometer(ctx context.Context, tenantID, id string, odometer int) error
	DeleteVehicle(ctx context.Context, tenantID, id string) error
}

// MongoVehicleCollection implements VehicleCollection for MongoDB
type MongoVehicleCollection struct {
	Collection *mongo.Collection
}

// InsertVehicle inserts a vehicle and returns its generated ID.
func (c *MongoVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) (string, error) {
	if vehicle.TenantID == "" {
		return "", fmt.Errorf("vehicle is missing tenant id")
	}
	vehicle.ID = primitive.NewObjectID()
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = time.Now()

	if _, err := c.Collection.InsertOne(ctx, vehicle); err != nil {
		return "", err
	}
	return vehicle.ID.Hex(), nil
}

// FindVehicles lists a company's vehicles ordered by plate.
func (c *MongoVehicleCollection) FindVehicles(ctx context.Context, tenantID string) ([]models.Vehicle, error) {
	opts := options.Find().SetSort(bson.D{{Key: "plate", Value: 1}})
	cursor, err := c.Collection.Find(ctx, bson.M{"tenant_id": tenantID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// FindVehicleByID finds one of the tenant's vehicles by ID.
func (c *MongoVehicleCollection) FindVehicleByID(ctx context.Context, tenantID, id string) (*models.Vehicle, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle ID: %w", err)
	}

	var vehicle models.Vehicle
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID, "tenant_id": tenantID}).Decode(&vehicle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

// FindVehicleByPlate finds one of the tenant's vehicles by plate.
func (c *MongoVehicleCollection) FindVehicleByPlate(ctx context.Context, tenantID, plate string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := c.Collection.FindOne(ctx, bson.M{"tenant_id": tenantID, "plate": plate}).Decode(&vehicle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

// UpdateVehicle updates one of the tenant's vehicles.
func (c *MongoVehicleCollection) UpdateVehicle(ctx context.Context, tenantID, id string, vehicle models.Vehicle) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid vehicle ID: %w", err)
	}

	vehicle.UpdatedAt = time.Now()
	result, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "tenant_id": tenantID},
		bson.M{"$set": vehicle})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateOdometer advances the vehicle's current odometer reading.
func (c *MongoVehicleCollection) UpdateOdometer(ctx context.Context, tenantID, id string, odometer int) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid vehicle ID: %w", err)
	}

	result, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "tenant_id": tenantID},
		bson.M{"$set": bson.M{"current_odometer": odometer, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteVehicle deletes one of the tenant's vehicles.
func (c *MongoVehicleCollection) DeleteVehicle(ctx context.Context, tenantID, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid vehicle ID: %w", err)
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID, "tenant_id": tenantID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
