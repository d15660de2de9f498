package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/frotaops/fleet-manager/internal/models"
)

// FuelCollection defines the interface for fuel purchase operations, all
// scoped to one tenant.
type FuelCollection interface {
	InsertPurchase(ctx context.Context, purchase models.FuelPurchase) error
	FindPurchases(ctx context.Context, tenantID string) ([]models.FuelPurchase, error)
	FindPurchasesByVehicle(ctx context.Context, tenantID, vehicleID string) ([]models.FuelPurchase, error)
	LastOdometer(ctx context.Context, tenantID, vehicleID string) (int, error)
}

// MongoFuelCollection implements FuelCollection for MongoDB
type MongoFuelCollection struct {
	Collection *mongo.Collection
}

// InsertPurchase inserts a fuel purchase record.
func (c *MongoFuelCollection) InsertPurchase(ctx context.Context, purchase models.FuelPurchase) error {
	purchase.ID = primitive.NewObjectID()
	purchase.CreatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, purchase)
	return err
}

// FindPurchases lists a company's fuel purchases ordered by vehicle and then
// odometer ascending, the order the consumption math expects.
func (c *MongoFuelCollection) FindPurchases(ctx context.Context, tenantID string) ([]models.FuelPurchase, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "vehicle_id", Value: 1},
		{Key: "odometer", Value: 1},
	})
	cursor, err := c.Collection.Find(ctx, bson.M{"tenant_id": tenantID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var purchases []models.FuelPurchase
	if err := cursor.All(ctx, &purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}

// FindPurchasesByVehicle lists one vehicle's purchases, odometer ascending.
func (c *MongoFuelCollection) FindPurchasesByVehicle(ctx context.Context, tenantID, vehicleID string) ([]models.FuelPurchase, error) {
	opts := options.Find().SetSort(bson.D{{Key: "odometer", Value: 1}})
	cursor, err := c.Collection.Find(ctx, bson.M{"tenant_id": tenantID, "vehicle_id": vehicleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var purchases []models.FuelPurchase
	if err := cursor.All(ctx, &purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}

// LastOdometer returns the highest odometer reading recorded for a vehicle's
// fuel purchases, or ErrNotFound when the vehicle has none yet.
func (c *MongoFuelCollection) LastOdometer(ctx context.Context, tenantID, vehicleID string) (int, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "odometer", Value: -1}})
	var purchase models.FuelPurchase
	err := c.Collection.FindOne(ctx, bson.M{"tenant_id": tenantID, "vehicle_id": vehicleID}, opts).Decode(&purchase)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return purchase.Odometer, nil
}
