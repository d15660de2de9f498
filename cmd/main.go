package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/frotaops/fleet-manager/internal/auth"
	"github.com/frotaops/fleet-manager/internal/db"
	"github.com/frotaops/fleet-manager/internal/handlers"
	"github.com/frotaops/fleet-manager/internal/middleware"
	"github.com/frotaops/fleet-manager/internal/models"
	"github.com/frotaops/fleet-manager/internal/telemetry"
)

func main() {
	// Load .env in development; in production the environment is set by the
	// deployment.
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using process environment")
	}

	log.SetFormatter(&log.JSONFormatter{})
	if level, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	log.Info("connected to MongoDB")

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "fleet_manager"
	}
	collections := db.NewCollections(client.Database(dbName))
	source := &db.ReportSource{
		Vehicles:    collections.Vehicles,
		Fuel:        collections.Fuel,
		Maintenance: collections.Maintenance,
	}

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("failed to initialize auth service")
	}

	authHandler := handlers.NewAuthHandler(authService, collections.Companies, collections.Users)
	vehicleHandler := handlers.NewVehicleHandler(collections.Vehicles)
	fuelingHandler := handlers.NewFuelingHandler(collections.Fuel, collections.Vehicles)
	maintenanceHandler := handlers.NewMaintenanceHandler(collections.Maintenance, collections.Vehicles, source)
	dashboardHandler := handlers.NewDashboardHandler(source)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	rateLimiter := middleware.NewRateLimitMiddleware()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/register", authHandler.RegisterCompany)
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.Handle("/api/auth/users", authMiddleware.RequireRole(models.RoleAdmin)(http.HandlerFunc(authHandler.HandleUsers)))
	mux.HandleFunc("/api/auth/profile", authHandler.GetProfile)
	mux.HandleFunc("/api/auth/change-password", authHandler.ChangePassword)
	mux.HandleFunc("/api/vehicles", vehicleHandler.HandleVehicles)
	mux.HandleFunc("/api/vehicles/", vehicleHandler.HandleVehicleByID)
	mux.HandleFunc("/api/fueling", fuelingHandler.HandleFueling)
	mux.HandleFunc("/api/maintenance/schedules", maintenanceHandler.HandleSchedules)
	mux.HandleFunc("/api/maintenance/records", maintenanceHandler.HandleRecords)
	mux.HandleFunc("/api/maintenance/alerts", maintenanceHandler.HandleAlerts)
	mux.Handle("/api/dashboard", authMiddleware.RequirePermission("view_dashboard")(http.HandlerFunc(dashboardHandler.HandleDashboard)))
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	handler := middleware.Metrics(rateLimiter.RateLimit(100, 60)(authMiddleware.Authenticate(mux)))

	// Telemetry ingest is optional; the HTTP API works without a broker.
	if brokerURL := os.Getenv("MQTT_BROKER"); brokerURL != "" {
		subscriber, err := telemetry.NewOdometerSubscriber(brokerURL, "fleet-manager-api", collections.Vehicles)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to MQTT broker")
		}
		if err := subscriber.Start(); err != nil {
			log.WithError(err).Fatal("failed to subscribe to odometer telemetry")
		}
		defer subscriber.Stop()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.WithField("port", port).Info("HTTP server listening")
	log.Fatal(http.ListenAndServe(":"+port, handler))
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
