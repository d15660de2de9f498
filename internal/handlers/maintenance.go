package handlers

import (
	"errors"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/frotaops/fleet-manager/internal/db"
	"github.com/frotaops/fleet-manager/internal/middleware"
	"github.com/frotaops/fleet-manager/internal/models"
	"github.com/frotaops/fleet-manager/internal/report"
)

// MaintenanceHandler handles maintenance schedules, performed-maintenance
// records, and the pending-alert listing.
type MaintenanceHandler struct {
	maintenance db.MaintenanceCollection
	vehicles    db.VehicleCollection
	source      *db.ReportSource
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(maintenance db.MaintenanceCollection, vehicles db.VehicleCollection, source *db.ReportSource) *MaintenanceHandler {
	return &MaintenanceHandler{maintenance: maintenance, vehicles: vehicles, source: source}
}

// HandleSchedules serves the /api/maintenance/schedules endpoint.
func (h *MaintenanceHandler) HandleSchedules(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.createSchedule(w, r, claims)
	case http.MethodGet:
		h.listSchedules(w, r, claims)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *MaintenanceHandler) createSchedule(w http.ResponseWriter, r *http.Request, claims *models.Claims) {
	var req models.CreateScheduleRequest
	if err := decodeAndValidate(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ScheduledKm == nil && req.ScheduledDate == "" {
		http.Error(w, "at least one of scheduled_km and scheduled_date is required", http.StatusBadRequest)
		return
	}

	if _, err := h.vehicles.FindVehicleByID(r.Context(), claims.TenantID, req.VehicleID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Vehicle not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch vehicle", http.StatusInternalServerError)
		return
	}

	var scheduledDate *time.Time
	if req.ScheduledDate != "" {
		parsed, err := time.Parse("2006-01-02", req.ScheduledDate)
		if err != nil {
			http.Error(w, "scheduled_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		scheduledDate = &parsed
	}

	kind := models.ScheduleKindDate
	if req.ScheduledKm != nil {
		kind = models.ScheduleKindKm
	}

	schedule := models.MaintenanceSchedule{
		TenantID:       claims.TenantID,
		VehicleID:      req.VehicleID,
		Description:    req.Description,
		Kind:           kind,
		ScheduledKm:    req.ScheduledKm,
		ScheduledDate:  scheduledDate,
		AlertThreshold: req.AlertThreshold,
	}
	id, err := h.maintenance.InsertSchedule(r.Context(), schedule)
	if err != nil {
		log.WithError(err).Error("failed to create maintenance schedule")
		http.Error(w, "Failed to create maintenance schedule", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message":     "Maintenance scheduled",
		"schedule_id": id,
	})
}

func (h *MaintenanceHandler) listSchedules(w http.ResponseWriter, r *http.Request, claims *models.Claims) {
	status := r.URL.Query().Get("status")
	if status != "" && status != models.ScheduleStatusScheduled && status != models.ScheduleStatusCompleted {
		http.Error(w, "status must be scheduled or completed", http.StatusBadRequest)
		return
	}

	schedules, err := h.maintenance.FindSchedules(r.Context(), claims.TenantID, status)
	if err != nil {
		log.WithError(err).Error("failed to list maintenance schedules")
		http.Error(w, "Failed to list maintenance schedules", http.StatusInternalServerError)
		return
	}
	if schedules == nil {
		schedules = []models.MaintenanceSchedule{}
	}
	writeJSON(w, http.StatusOK, schedules)
}

// HandleRecords serves the /api/maintenance/records endpoint.
func (h *MaintenanceHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.createRecord(w, r, claims)
	case http.MethodGet:
		h.listRecords(w, r, claims)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *MaintenanceHandler) createRecord(w http.ResponseWriter, r *http.Request, claims *models.Claims) {
	var req models.RecordMaintenanceRequest
	if err := decodeAndValidate(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	performedAt, err := time.Parse("2006-01-02", req.PerformedAt)
	if err != nil {
		http.Error(w, "performed_at must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	if _, err := h.vehicles.FindVehicleByID(r.Context(), claims.TenantID, req.VehicleID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Vehicle not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch vehicle", http.StatusInternalServerError)
		return
	}

	receiptURL := ""
	if req.ReceiptName != "" {
		receiptURL = "/storage/maintenance-receipts/" + uuid.NewString() + path.Ext(req.ReceiptName)
	}

	record := models.MaintenanceRecord{
		TenantID:    claims.TenantID,
		VehicleID:   req.VehicleID,
		ScheduleID:  req.ScheduleID,
		Description: req.Description,
		Cost:        req.Cost,
		PerformedAt: performedAt,
		Workshop:    req.Workshop,
		RecordedBy:  claims.UserID,
		ReceiptURL:  receiptURL,
	}
	if err := h.maintenance.InsertRecord(r.Context(), record); err != nil {
		log.WithError(err).Error("failed to record maintenance")
		http.Error(w, "Failed to record maintenance", http.StatusInternalServerError)
		return
	}

	// Completing the linked schedule stops its alerts from firing again.
	if req.ScheduleID != "" {
		if err := h.maintenance.CompleteSchedule(r.Context(), claims.TenantID, req.ScheduleID); err != nil {
			log.WithError(err).WithField("schedule_id", req.ScheduleID).Warn("failed to complete linked schedule")
		}
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message":     "Maintenance recorded",
		"receipt_url": receiptURL,
	})
}

func (h *MaintenanceHandler) listRecords(w http.ResponseWriter, r *http.Request, claims *models.Claims) {
	records, err := h.maintenance.FindRecords(r.Context(), claims.TenantID)
	if err != nil {
		log.WithError(err).Error("failed to list maintenance records")
		http.Error(w, "Failed to list maintenance records", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []models.MaintenanceRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// HandleAlerts serves the /api/maintenance/alerts endpoint.
func (h *MaintenanceHandler) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rows, err := h.source.ScheduledRows(r.Context(), claims.TenantID)
	if err != nil {
		log.WithError(err).Error("failed to fetch scheduled maintenance")
		http.Error(w, "Failed to evaluate maintenance alerts", http.StatusInternalServerError)
		return
	}

	alerts := report.EvaluateAlerts(rows, time.Now())
	if alerts == nil {
		alerts = []report.MaintenanceAlert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}
