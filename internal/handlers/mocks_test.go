package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/frotaops/fleet-manager/internal/models"
)

// MockCompanyCollection is a mock implementation of CompanyCollection
type MockCompanyCollection struct {
	mock.Mock
}

func (m *MockCompanyCollection) InsertCompany(ctx context.Context, company models.Company) (string, error) {
	args := m.Called(ctx, company)
	return args.String(0), args.Error(1)
}

func (m *MockCompanyCollection) FindCompanyByID(ctx context.Context, id string) (*models.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockCompanyCollection) FindCompanyByEmail(ctx context.Context, email string) (*models.Company, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

// MockUserCollection is a mock implementation of UserCollection
type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUsersByTenant(ctx context.Context, tenantID string) ([]models.User, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserCollection) UpdateUser(ctx context.Context, id string, user models.User) error {
	args := m.Called(ctx, id, user)
	return args.Error(0)
}

func (m *MockUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockVehicleCollection is a mock implementation of VehicleCollection
type MockVehicleCollection struct {
	mock.Mock
}

func (m *MockVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) (string, error) {
	args := m.Called(ctx, vehicle)
	return args.String(0), args.Error(1)
}

func (m *MockVehicleCollection) FindVehicles(ctx context.Context, tenantID string) ([]models.Vehicle, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vehicle), args.Error(1)
}

func (m *MockVehicleCollection) FindVehicleByID(ctx context.Context, tenantID, id string) (*models.Vehicle, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleCollection) FindVehicleByPlate(ctx context.Context, tenantID, plate string) (*models.Vehicle, error) {
	args := m.Called(ctx, tenantID, plate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleCollection) UpdateVehicle(ctx context.Context, tenantID, id string, vehicle models.Vehicle) error {
	args := m.Called(ctx, tenantID, id, vehicle)
	return args.Error(0)
}

func (m *MockVehicleCollection) UpdateOdometer(ctx context.Context, tenantID, id string, odometer int) error {
	args := m.Called(ctx, tenantID, id, odometer)
	return args.Error(0)
}

func (m *MockVehicleCollection) DeleteVehicle(ctx context.Context, tenantID, id string) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockFuelCollection is a mock implementation of FuelCollection
type MockFuelCollection struct {
	mock.Mock
}

func (m *MockFuelCollection) InsertPurchase(ctx context.Context, purchase models.FuelPurchase) error {
	args := m.Called(ctx, purchase)
	return args.Error(0)
}

func (m *MockFuelCollection) FindPurchases(ctx context.Context, tenantID string) ([]models.FuelPurchase, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FuelPurchase), args.Error(1)
}

func (m *MockFuelCollection) FindPurchasesByVehicle(ctx context.Context, tenantID, vehicleID string) ([]models.FuelPurchase, error) {
	args := m.Called(ctx, tenantID, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FuelPurchase), args.Error(1)
}

func (m *MockFuelCollection) LastOdometer(ctx context.Context, tenantID, vehicleID string) (int, error) {
	args := m.Called(ctx, tenantID, vehicleID)
	return args.Int(0), args.Error(1)
}

// MockMaintenanceCollection is a mock implementation of MaintenanceCollection
type MockMaintenanceCollection struct {
	mock.Mock
}

func (m *MockMaintenanceCollection) InsertSchedule(ctx context.Context, schedule models.MaintenanceSchedule) (string, error) {
	args := m.Called(ctx, schedule)
	return args.String(0), args.Error(1)
}

func (m *MockMaintenanceCollection) FindSchedules(ctx context.Context, tenantID, status string) ([]models.MaintenanceSchedule, error) {
	args := m.Called(ctx, tenantID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MaintenanceSchedule), args.Error(1)
}

func (m *MockMaintenanceCollection) CompleteSchedule(ctx context.Context, tenantID, id string) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockMaintenanceCollection) InsertRecord(ctx context.Context, record models.MaintenanceRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockMaintenanceCollection) FindRecords(ctx context.Context, tenantID string) ([]models.MaintenanceRecord, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MaintenanceRecord), args.Error(1)
}
