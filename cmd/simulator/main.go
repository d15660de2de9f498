package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// Vehicle mirrors the register-vehicle request payload.
type Vehicle struct {
	Plate           string `json:"plate"`
	Make            string `json:"make"`
	Model           string `json:"model"`
	Year            int    `json:"year"`
	FuelType        string `json:"fuel_type"`
	CurrentOdometer int    `json:"current_odometer"`
}

// FuelPurchase mirrors the register-fuel-purchase request payload.
type FuelPurchase struct {
	VehicleID     string  `json:"vehicle_id"`
	Liters        float64 `json:"liters"`
	PricePerLiter float64 `json:"price_per_liter"`
	Odometer      int     `json:"odometer"`
	PurchasedAt   string  `json:"purchased_at"`
	FullTank      bool    `json:"full_tank"`
	Station       string  `json:"station"`
}

// Schedule mirrors the create-schedule request payload.
type Schedule struct {
	VehicleID      string `json:"vehicle_id"`
	Description    string `json:"description"`
	ScheduledKm    *int   `json:"scheduled_km,omitempty"`
	ScheduledDate  string `json:"scheduled_date,omitempty"`
	AlertThreshold int    `json:"alert_threshold"`
}

var authToken string

func authorizedPost(url string, body *bytes.Buffer) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func postJSON(url string, payload interface{}) (map[string]interface{}, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal payload: %w", err)
	}
	resp, err := authorizedPost(url, bytes.NewBuffer(data))
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, resp.StatusCode, nil
	}
	return result, resp.StatusCode, nil
}

// registerCompany signs up a fresh company and captures the admin token.
func registerCompany(apiURL string) error {
	suffix := rand.Intn(100000)
	payload := map[string]string{
		"name":     fmt.Sprintf("Transportes Sim %d", suffix),
		"email":    fmt.Sprintf("sim-%d@example.com", suffix),
		"password": "Sim-Password-1",
	}
	result, status, err := postJSON(apiURL+"/auth/register", payload)
	if err != nil {
		return fmt.Errorf("failed to register company: %w", err)
	}
	if status != http.StatusCreated {
		return fmt.Errorf("company registration failed with status: %d", status)
	}
	token, ok := result["token"].(string)
	if !ok || token == "" {
		return fmt.Errorf("no token in registration response")
	}
	authToken = token
	log.WithField("email", payload["email"]).Info("Registered simulation company")
	return nil
}

func createVehicle(apiURL string, index int) (string, int, error) {
	makes := []string{"Volkswagen", "Mercedes-Benz", "Scania", "Volvo", "Iveco"}
	models := []string{"Delivery", "Accelo", "R450", "FH 540", "Daily"}
	fuelTypes := []string{"diesel", "diesel", "diesel", "flex", "gasoline"}

	pick := rand.Intn(len(makes))
	vehicle := Vehicle{
		Plate:           fmt.Sprintf("SIM%d%c%02d", rand.Intn(10), 'A'+rune(rand.Intn(26)), index),
		Make:            makes[pick],
		Model:           models[pick],
		Year:            2018 + rand.Intn(7),
		FuelType:        fuelTypes[pick],
		CurrentOdometer: 10000 + rand.Intn(50000),
	}

	result, status, err := postJSON(apiURL+"/vehicles", vehicle)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create vehicle: %w", err)
	}
	if status != http.StatusCreated {
		return "", 0, fmt.Errorf("vehicle creation failed with status: %d", status)
	}
	vehicleID, ok := result["id"].(string)
	if !ok {
		return "", 0, fmt.Errorf("invalid vehicle ID in response")
	}

	log.WithFields(log.Fields{
		"vehicle_id": vehicleID,
		"plate":      vehicle.Plate,
		"make":       vehicle.Make,
	}).Info("Created vehicle")
	return vehicleID, vehicle.CurrentOdometer, nil
}

// VehicleState tracks one simulated vehicle between ticks.
type VehicleState struct {
	VehicleID string
	Odometer  int
	TankSize  float64
}

// refuel posts a full-tank purchase for the distance covered since the last
// stop, so km/L averages come out plausible.
func refuel(apiURL string, s *VehicleState) {
	distance := 300 + rand.Intn(400)
	s.Odometer += distance

	liters := float64(distance) / (7 + rand.Float64()*3)
	if liters > s.TankSize {
		liters = s.TankSize
	}
	purchase := FuelPurchase{
		VehicleID:     s.VehicleID,
		Liters:        float64(int(liters*100)) / 100,
		PricePerLiter: 5.5 + rand.Float64()*1.5,
		Odometer:      s.Odometer,
		PurchasedAt:   time.Now().UTC().Format(time.RFC3339),
		FullTank:      true,
		Station:       "Posto Sim " + strconv.Itoa(rand.Intn(5)+1),
	}

	_, status, err := postJSON(apiURL+"/fueling", purchase)
	if err != nil {
		log.WithError(err).Error("Failed to send fuel purchase")
		return
	}
	log.WithFields(log.Fields{
		"vehicle_id": s.VehicleID,
		"odometer":   s.Odometer,
		"status":     status,
	}).Info("Sent fuel purchase")
}

func scheduleMaintenance(apiURL string, s *VehicleState) {
	dueKm := s.Odometer + 1000 + rand.Intn(9000)
	schedule := Schedule{
		VehicleID:      s.VehicleID,
		Description:    "Troca de óleo e filtros",
		ScheduledKm:    &dueKm,
		AlertThreshold: 500,
	}
	if rand.Intn(2) == 0 {
		schedule.ScheduledKm = nil
		schedule.ScheduledDate = time.Now().AddDate(0, 0, 10+rand.Intn(60)).Format("2006-01-02")
		schedule.Description = "Revisão periódica"
	}

	_, status, err := postJSON(apiURL+"/maintenance/schedules", schedule)
	if err != nil {
		log.WithError(err).Error("Failed to create maintenance schedule")
		return
	}
	log.WithFields(log.Fields{
		"vehicle_id": s.VehicleID,
		"status":     status,
	}).Info("Scheduled maintenance")
}

func simulateVehicle(apiURL string, mqttClient mqtt.Client, s *VehicleState, interval time.Duration, tenantID string) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for range tick.C {
		refuel(apiURL, s)

		if mqttClient != nil {
			payload, _ := json.Marshal(map[string]interface{}{
				"odometer":    s.Odometer,
				"recorded_at": time.Now().UTC(),
			})
			topic := fmt.Sprintf("fleet/%s/%s/odometer", tenantID, s.VehicleID)
			mqttClient.Publish(topic, 1, false, payload)
		}
	}
}

func main() {
	fleetSize := 5
	if val := os.Getenv("FLEET_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			fleetSize = n
		}
	}

	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	interval := 5 * time.Second
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			interval = time.Duration(n) * time.Second
		}
	}

	log.WithFields(log.Fields{
		"fleet_size": fleetSize,
		"api_url":    apiURL,
		"interval":   interval,
	}).Info("Starting fleet simulation")

	if err := registerCompany(apiURL); err != nil {
		log.WithError(err).Fatal("Failed to register simulation company")
	}

	tenantID := os.Getenv("SIM_TENANT_ID")

	var mqttClient mqtt.Client
	if broker := os.Getenv("MQTT_BROKER"); broker != "" && tenantID != "" {
		opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID("fleet-simulator")
		mqttClient = mqtt.NewClient(opts)
		if token := mqttClient.Connect(); token.Wait() && token.Error() != nil {
			log.WithError(token.Error()).Warn("MQTT broker unreachable, skipping telemetry")
			mqttClient = nil
		}
	}

	states := make([]*VehicleState, 0, fleetSize)
	for i := 0; i < fleetSize; i++ {
		vehicleID, odometer, err := createVehicle(apiURL, i+1)
		if err != nil {
			log.WithError(err).Error("Failed to create vehicle")
			continue
		}
		state := &VehicleState{
			VehicleID: vehicleID,
			Odometer:  odometer,
			TankSize:  60 + rand.Float64()*40,
		}
		scheduleMaintenance(apiURL, state)
		states = append(states, state)
	}

	log.WithField("created_vehicles", len(states)).Info("Vehicle creation completed")
	if len(states) == 0 {
		log.Error("No vehicles created. Ensure the API is reachable. Exiting.")
		time.Sleep(2 * time.Second)
		return
	}

	for _, s := range states {
		go simulateVehicle(apiURL, mqttClient, s, interval, tenantID)
	}

	log.Info("Fleet simulation started")
	select {} // Block forever
}
