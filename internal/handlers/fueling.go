package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/frotaops/fleet-manager/internal/db"
	"github.com/frotaops/fleet-manager/internal/middleware"
	"github.com/frotaops/fleet-manager/internal/models"
)

// FuelingHandler handles fuel purchase registration and listing.
type FuelingHandler struct {
	fuel     db.FuelCollection
	vehicles db.VehicleCollection
}

// NewFuelingHandler creates a new fueling handler
func NewFuelingHandler(fuel db.FuelCollection, vehicles db.VehicleCollection) *FuelingHandler {
	return &FuelingHandler{fuel: fuel, vehicles: vehicles}
}

// HandleFueling serves the /api/fueling endpoint.
func (h *FuelingHandler) HandleFueling(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.register(w, r, claims)
	case http.MethodGet:
		h.list(w, r, claims)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *FuelingHandler) register(w http.ResponseWriter, r *http.Request, claims *models.Claims) {
	var req models.RegisterFuelPurchaseRequest
	if err := decodeAndValidate(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	purchasedAt, err := time.Parse(time.RFC3339, req.PurchasedAt)
	if err != nil {
		http.Error(w, "purchased_at must be RFC 3339", http.StatusBadRequest)
		return
	}

	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), claims.TenantID, req.VehicleID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Vehicle not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch vehicle", http.StatusInternalServerError)
		return
	}

	// The new reading must advance past the last one we know about, either
	// from an earlier purchase or from the vehicle document itself.
	lastOdometer, err := h.fuel.LastOdometer(r.Context(), claims.TenantID, req.VehicleID)
	if errors.Is(err, db.ErrNotFound) {
		lastOdometer = vehicle.CurrentOdometer
	} else if err != nil {
		http.Error(w, "Failed to fetch odometer history", http.StatusInternalServerError)
		return
	}
	if req.Odometer <= lastOdometer {
		http.Error(w, fmt.Sprintf("odometer %d must be greater than the last recorded reading %d", req.Odometer, lastOdometer), http.StatusBadRequest)
		return
	}

	// Receipt upload is simulated: we only store the object key the upload
	// would have produced.
	receiptURL := ""
	if req.ReceiptName != "" {
		receiptURL = "/storage/fuel-receipts/" + uuid.NewString() + path.Ext(req.ReceiptName)
	}

	purchase := models.FuelPurchase{
		TenantID:      claims.TenantID,
		VehicleID:     req.VehicleID,
		Liters:        req.Liters,
		PricePerLiter: req.PricePerLiter,
		Odometer:      req.Odometer,
		PurchasedAt:   purchasedAt,
		FullTank:      req.FullTank,
		Station:       req.Station,
		RecordedBy:    claims.UserID,
		ReceiptURL:    receiptURL,
	}
	if err := h.fuel.InsertPurchase(r.Context(), purchase); err != nil {
		log.WithError(err).Error("failed to register fuel purchase")
		http.Error(w, "Failed to register fuel purchase", http.StatusInternalServerError)
		return
	}

	if err := h.vehicles.UpdateOdometer(r.Context(), claims.TenantID, req.VehicleID, req.Odometer); err != nil {
		log.WithError(err).Warn("failed to advance vehicle odometer")
	}

	resp := map[string]interface{}{
		"message":     "Fuel purchase registered",
		"receipt_url": receiptURL,
	}
	// Echo the consumption since the previous reading when the tank was
	// filled completely, same figure the dashboard averages later.
	if req.FullTank && req.Odometer > lastOdometer && req.Liters > 0 {
		consumption := float64(req.Odometer-lastOdometer) / req.Liters
		resp["consumption_km_per_liter"] = math.Round(consumption*100) / 100
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *FuelingHandler) list(w http.ResponseWriter, r *http.Request, claims *models.Claims) {
	vehicleID := r.URL.Query().Get("vehicle_id")

	var purchases []models.FuelPurchase
	var err error
	if vehicleID != "" {
		purchases, err = h.fuel.FindPurchasesByVehicle(r.Context(), claims.TenantID, vehicleID)
	} else {
		purchases, err = h.fuel.FindPurchases(r.Context(), claims.TenantID)
	}
	if err != nil {
		log.WithError(err).Error("failed to list fuel purchases")
		http.Error(w, "Failed to list fuel purchases", http.StatusInternalServerError)
		return
	}
	if purchases == nil {
		purchases = []models.FuelPurchase{}
	}
	writeJSON(w, http.StatusOK, purchases)
}
