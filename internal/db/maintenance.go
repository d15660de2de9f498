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

// MaintenanceCollection defines the interface for maintenance schedules and
// performed-maintenance records, all scoped to one tenant.
type MaintenanceCollection interface {
	InsertSchedule(ctx context.Context, schedule models.MaintenanceSchedule) (string, error)
	FindSchedules(ctx context.Context, tenantID, status string) ([]models.MaintenanceSchedule, error)
	CompleteSchedule(ctx context.Context, tenantID, id string) error
	InsertRecord(ctx context.Context, record models.MaintenanceRecord) error
	FindRecords(ctx context.Context, tenantID string) ([]models.MaintenanceRecord, error)
}

// MongoMaintenanceCollection implements MaintenanceCollection for MongoDB.
// Schedules and records live in separate collections.
type MongoMaintenanceCollection struct {
	Schedules *mongo.Collection
	Records   *mongo.Collection
}

// InsertSchedule inserts a maintenance schedule and returns its ID.
func (c *MongoMaintenanceCollection) InsertSchedule(ctx context.Context, schedule models.MaintenanceSchedule) (string, error) {
	schedule.ID = primitive.NewObjectID()
	schedule.Status = models.ScheduleStatusScheduled
	schedule.CreatedAt = time.Now()
	schedule.UpdatedAt = time.Now()

	if _, err := c.Schedules.InsertOne(ctx, schedule); err != nil {
		return "", err
	}
	return schedule.ID.Hex(), nil
}

// FindSchedules lists a company's maintenance schedules, optionally filtered
// by status.
func (c *MongoMaintenanceCollection) FindSchedules(ctx context.Context, tenantID, status string) ([]models.MaintenanceSchedule, error) {
	filter := bson.M{"tenant_id": tenantID}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := c.Schedules.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var schedules []models.MaintenanceSchedule
	if err := cursor.All(ctx, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

// CompleteSchedule marks one of the tenant's schedules as completed.
func (c *MongoMaintenanceCollection) CompleteSchedule(ctx context.Context, tenantID, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	result, err := c.Schedules.UpdateOne(ctx,
		bson.M{"_id": objectID, "tenant_id": tenantID},
		bson.M{"$set": bson.M{"status": models.ScheduleStatusCompleted, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertRecord inserts a performed-maintenance record.
func (c *MongoMaintenanceCollection) InsertRecord(ctx context.Context, record models.MaintenanceRecord) error {
	record.ID = primitive.NewObjectID()
	record.CreatedAt = time.Now()
	_, err := c.Records.InsertOne(ctx, record)
	return err
}

// FindRecords lists a company's performed-maintenance records.
func (c *MongoMaintenanceCollection) FindRecords(ctx context.Context, tenantID string) ([]models.MaintenanceRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "performed_at", Value: 1}})
	cursor, err := c.Records.Find(ctx, bson.M{"tenant_id": tenantID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.MaintenanceRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
