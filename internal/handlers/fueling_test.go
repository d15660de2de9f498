package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/frotaops/fleet-manager/internal/db"
	"github.com/frotaops/fleet-manager/internal/models"
)

func fuelRequestBody(t *testing.T, odometer int) []byte {
	t.Helper()
	body, err := json.Marshal(models.RegisterFuelPurchaseRequest{
		VehicleID:     "vehicle-1",
		Liters:        40,
		PricePerLiter: 5.89,
		Odometer:      odometer,
		PurchasedAt:   time.Now().UTC().Format(time.RFC3339),
		FullTank:      true,
		Station:       "Posto Central",
	})
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}
	return body
}

func TestFuelingHandler_Register(t *testing.T) {
	vehicle := &models.Vehicle{
		ID:              primitive.NewObjectID(),
		TenantID:        "tenant-1",
		Plate:           "ABC1D23",
		CurrentOdometer: 20000,
	}

	t.Run("successful registration advances odometer", func(t *testing.T) {
		fuel := new(MockFuelCollection)
		vehicles := new(MockVehicleCollection)
		handler := NewFuelingHandler(fuel, vehicles)

		vehicles.On("FindVehicleByID", mock.Anything, "tenant-1", "vehicle-1").Return(vehicle, nil)
		fuel.On("LastOdometer", mock.Anything, "tenant-1", "vehicle-1").Return(20000, nil)
		fuel.On("InsertPurchase", mock.Anything, mock.MatchedBy(func(p models.FuelPurchase) bool {
			return p.TenantID == "tenant-1" && p.Odometer == 20400 && p.RecordedBy != ""
		})).Return(nil)
		vehicles.On("UpdateOdometer", mock.Anything, "tenant-1", "vehicle-1", 20400).Return(nil)

		req := authedRequest("POST", "/api/fueling", fuelRequestBody(t, 20400), testClaims())
		w := httptest.NewRecorder()

		handler.HandleFueling(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp map[string]interface{}
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		// 400 km on 40 L since the last full tank
		assert.InDelta(t, 10.0, resp["consumption_km_per_liter"], 0.001)
		fuel.AssertExpectations(t)
		vehicles.AssertExpectations(t)
	})

	t.Run("stale odometer rejected", func(t *testing.T) {
		fuel := new(MockFuelCollection)
		vehicles := new(MockVehicleCollection)
		handler := NewFuelingHandler(fuel, vehicles)

		vehicles.On("FindVehicleByID", mock.Anything, "tenant-1", "vehicle-1").Return(vehicle, nil)
		fuel.On("LastOdometer", mock.Anything, "tenant-1", "vehicle-1").Return(25000, nil)

		req := authedRequest("POST", "/api/fueling", fuelRequestBody(t, 24000), testClaims())
		w := httptest.NewRecorder()

		handler.HandleFueling(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		fuel.AssertNotCalled(t, "InsertPurchase", mock.Anything, mock.Anything)
	})

	t.Run("first purchase falls back to vehicle odometer", func(t *testing.T) {
		fuel := new(MockFuelCollection)
		vehicles := new(MockVehicleCollection)
		handler := NewFuelingHandler(fuel, vehicles)

		vehicles.On("FindVehicleByID", mock.Anything, "tenant-1", "vehicle-1").Return(vehicle, nil)
		fuel.On("LastOdometer", mock.Anything, "tenant-1", "vehicle-1").Return(0, db.ErrNotFound)
		fuel.On("InsertPurchase", mock.Anything, mock.Anything).Return(nil)
		vehicles.On("UpdateOdometer", mock.Anything, "tenant-1", "vehicle-1", 20500).Return(nil)

		req := authedRequest("POST", "/api/fueling", fuelRequestBody(t, 20500), testClaims())
		w := httptest.NewRecorder()

		handler.HandleFueling(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("unknown vehicle returns 404", func(t *testing.T) {
		fuel := new(MockFuelCollection)
		vehicles := new(MockVehicleCollection)
		handler := NewFuelingHandler(fuel, vehicles)

		vehicles.On("FindVehicleByID", mock.Anything, "tenant-1", "vehicle-1").Return(nil, db.ErrNotFound)

		req := authedRequest("POST", "/api/fueling", fuelRequestBody(t, 20400), testClaims())
		w := httptest.NewRecorder()

		handler.HandleFueling(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("nonpositive liters rejected at the boundary", func(t *testing.T) {
		handler := NewFuelingHandler(new(MockFuelCollection), new(MockVehicleCollection))

		body, _ := json.Marshal(models.RegisterFuelPurchaseRequest{
			VehicleID:     "vehicle-1",
			Liters:        0,
			PricePerLiter: 5.89,
			Odometer:      20400,
			PurchasedAt:   time.Now().UTC().Format(time.RFC3339),
		})
		req := authedRequest("POST", "/api/fueling", body, testClaims())
		w := httptest.NewRecorder()

		handler.HandleFueling(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestFuelingHandler_List(t *testing.T) {
	t.Run("filters by vehicle when requested", func(t *testing.T) {
		fuel := new(MockFuelCollection)
		handler := NewFuelingHandler(fuel, new(MockVehicleCollection))

		purchases := []models.FuelPurchase{
			{ID: primitive.NewObjectID(), TenantID: "tenant-1", VehicleID: "vehicle-1", Liters: 40},
		}
		fuel.On("FindPurchasesByVehicle", mock.Anything, "tenant-1", "vehicle-1").Return(purchases, nil)

		req := authedRequest("GET", "/api/fueling?vehicle_id=vehicle-1", nil, testClaims())
		w := httptest.NewRecorder()

		handler.HandleFueling(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp []models.FuelPurchase
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Len(t, resp, 1)
	})

	t.Run("no purchases returns empty array", func(t *testing.T) {
		fuel := new(MockFuelCollection)
		handler := NewFuelingHandler(fuel, new(MockVehicleCollection))

		fuel.On("FindPurchases", mock.Anything, "tenant-1").Return(nil, nil)

		req := authedRequest("GET", "/api/fueling", nil, testClaims())
		w := httptest.NewRecorder()

		handler.HandleFueling(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})
}
