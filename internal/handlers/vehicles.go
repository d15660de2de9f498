package handlers

import (
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/frotaops/fleet-manager/internal/db"
	"github.com/frotaops/fleet-manager/internal/middleware"
	"github.com/frotaops/fleet-manager/internal/models"
)

// VehicleHandler handles fleet vehicle registration and listing.
type VehicleHandler struct {
	vehicles db.VehicleCollection
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(vehicles db.VehicleCollection) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles}
}

// HandleVehicles serves the /api/vehicles collection endpoint.
func (h *VehicleHandler) HandleVehicles(w http.ResponseWriter, r *http.Request) {
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

// HandleVehicleByID serves the /api/vehicles/{id} item endpoint.
func (h *VehicleHandler) HandleVehicleByID(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/vehicles/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "Vehicle ID required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, claims, id)
	case http.MethodPut:
		h.update(w, r, claims, id)
	case http.MethodDelete:
		h.delete(w, r, claims, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *VehicleHandler) register(w http.ResponseWriter, r *http.Request, claims *models.Claims) {
	var req models.RegisterVehicleRequest
	if err := decodeAndValidate(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	plate := strings.ToUpper(strings.TrimSpace(req.Plate))

	// Plates are unique within a company
	if _, err := h.vehicles.FindVehicleByPlate(r.Context(), claims.TenantID, plate); err == nil {
		http.Error(w, "Plate already registered", http.StatusConflict)
		return
	}

	id, err := h.vehicles.InsertVehicle(r.Context(), models.Vehicle{
		TenantID:        claims.TenantID,
		Plate:           plate,
		Make:            req.Make,
		Model:           req.Model,
		Year:            req.Year,
		FuelType:        req.FuelType,
		CurrentOdometer: req.CurrentOdometer,
		Status:          "active",
	})
	if err != nil {
		log.WithError(err).Error("failed to register vehicle")
		http.Error(w, "Failed to register vehicle", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id, "plate": plate})
}

func (h *VehicleHandler) list(w http.ResponseWriter, r *http.Request, claims *models.Claims) {
	vehicles, err := h.vehicles.FindVehicles(r.Context(), claims.TenantID)
	if err != nil {
		log.WithError(err).Error("failed to list vehicles")
		http.Error(w, "Failed to list vehicles", http.StatusInternalServerError)
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	writeJSON(w, http.StatusOK, vehicles)
}

func (h *VehicleHandler) get(w http.ResponseWriter, r *http.Request, claims *models.Claims, id string) {
	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), claims.TenantID, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Vehicle not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch vehicle", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

func (h *VehicleHandler) update(w http.ResponseWriter, r *http.Request, claims *models.Claims, id string) {
	existing, err := h.vehicles.FindVehicleByID(r.Context(), claims.TenantID, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Vehicle not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch vehicle", http.StatusInternalServerError)
		return
	}

	var req models.RegisterVehicleRequest
	if err := decodeAndValidate(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	existing.Plate = strings.ToUpper(strings.TrimSpace(req.Plate))
	existing.Make = req.Make
	existing.Model = req.Model
	existing.Year = req.Year
	existing.FuelType = req.FuelType
	existing.CurrentOdometer = req.CurrentOdometer

	if err := h.vehicles.UpdateVehicle(r.Context(), claims.TenantID, id, *existing); err != nil {
		http.Error(w, "Failed to update vehicle", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

func (h *VehicleHandler) delete(w http.ResponseWriter, r *http.Request, claims *models.Claims, id string) {
	if err := h.vehicles.DeleteVehicle(r.Context(), claims.TenantID, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Vehicle not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete vehicle", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Vehicle deleted"})
}
