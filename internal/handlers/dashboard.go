package handlers

import (
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/frotaops/fleet-manager/internal/db"
	"github.com/frotaops/fleet-manager/internal/middleware"
	"github.com/frotaops/fleet-manager/internal/report"
)

// DashboardHandler serves the aggregated cost dashboard for a tenant.
type DashboardHandler struct {
	source *db.ReportSource
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(source *db.ReportSource) *DashboardHandler {
	return &DashboardHandler{source: source}
}

// DashboardResponse is the payload of GET /api/dashboard.
type DashboardResponse struct {
	FuelSummary        report.FleetCostSummary   `json:"fuel_summary"`
	MaintenanceSummary report.FleetCostSummary   `json:"maintenance_summary"`
	Fleet              report.FleetCostSummary   `json:"fleet"`
	Alerts             []report.MaintenanceAlert `json:"alerts"`
}

// HandleDashboard serves the /api/dashboard endpoint.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	tenantID := claims.TenantID

	fuelRows, err := h.source.FuelRows(ctx, tenantID)
	if err != nil {
		log.WithError(err).Error("failed to fetch fuel rows")
		http.Error(w, "Failed to build dashboard", http.StatusInternalServerError)
		return
	}
	maintenanceRows, err := h.source.MaintenanceRows(ctx, tenantID)
	if err != nil {
		log.WithError(err).Error("failed to fetch maintenance rows")
		http.Error(w, "Failed to build dashboard", http.StatusInternalServerError)
		return
	}
	scheduledRows, err := h.source.ScheduledRows(ctx, tenantID)
	if err != nil {
		log.WithError(err).Error("failed to fetch scheduled maintenance")
		http.Error(w, "Failed to build dashboard", http.StatusInternalServerError)
		return
	}

	fuelSummary, err := report.SummarizeFuelCosts(fuelRows)
	if err != nil {
		h.reportError(w, err, "fuel purchase")
		return
	}
	maintenanceSummary, err := report.SummarizeMaintenanceCosts(maintenanceRows)
	if err != nil {
		h.reportError(w, err, "maintenance record")
		return
	}

	resp := DashboardResponse{
		FuelSummary:        fuelSummary,
		MaintenanceSummary: maintenanceSummary,
		Fleet:              report.MergeSummaries(fuelSummary, maintenanceSummary),
		Alerts:             report.EvaluateAlerts(scheduledRows, time.Now()),
	}
	if resp.Alerts == nil {
		resp.Alerts = []report.MaintenanceAlert{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// reportError distinguishes stored rows that fail report validation from
// infrastructure failures. A bad stored row is the caller's data problem,
// not an outage.
func (h *DashboardHandler) reportError(w http.ResponseWriter, err error, what string) {
	var vErr *report.ValidationError
	if errors.As(err, &vErr) {
		log.WithError(err).Warnf("stored %s fails validation", what)
		http.Error(w, "Stored "+what+" is invalid: "+vErr.Error(), http.StatusUnprocessableEntity)
		return
	}
	log.WithError(err).Error("failed to summarize costs")
	http.Error(w, "Failed to build dashboard", http.StatusInternalServerError)
}
