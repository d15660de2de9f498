package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/frotaops/fleet-manager/internal/models"
)

// CompanyCollection defines the interface for company (tenant) operations.
type CompanyCollection interface {
	InsertCompany(ctx context.Context, company models.Company) (string, error)
	FindCompanyByID(ctx context.Context, id string) (*models.Company, error)
	FindCompanyByEmail(ctx context.Context, email string) (*models.Company, error)
}

// MongoCompanyCollection implements CompanyCollection for MongoDB
type MongoCompanyCollection struct {
	Collection *mongo.Collection
}

// InsertCompany inserts a new company and returns its generated ID.
func (c *MongoCompanyCollection) InsertCompany(ctx context.Context, company models.Company) (string, error) {
	company.ID = primitive.NewObjectID()
	company.CreatedAt = time.Now()
	company.UpdatedAt = time.Now()

	if _, err := c.Collection.InsertOne(ctx, company); err != nil {
		return "", err
	}
	return company.ID.Hex(), nil
}

// FindCompanyByID finds a company by its ID
func (c *MongoCompanyCollection) FindCompanyByID(ctx context.Context, id string) (*models.Company, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var company models.Company
	if err := c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&company); err != nil {
		return nil, err
	}
	return &company, nil
}

// FindCompanyByEmail finds a company by its registration email
func (c *MongoCompanyCollection) FindCompanyByEmail(ctx context.Context, email string) (*models.Company, error) {
	var company models.Company
	if err := c.Collection.FindOne(ctx, bson.M{"email": email}).Decode(&company); err != nil {
		return nil, err
	}
	return &company, nil
}
