// Package telemetry subscribes to odometer readings published by on-board
// units over MQTT and keeps vehicle documents current, so maintenance alerts
// work from live readings rather than the last fueling.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/frotaops/fleet-manager/internal/db"
)

// Topic layout: fleet/<tenant_id>/<vehicle_id>/odometer
const odometerTopicFilter = "fleet/+/+/odometer"

// OdometerReading is the payload an on-board unit publishes.
type OdometerReading struct {
	Odometer   int       `json:"odometer"`
	RecordedAt time.Time `json:"recorded_at"`
}

// OdometerSubscriber consumes odometer readings and applies them to the
// vehicle store.
type OdometerSubscriber struct {
	client   mqtt.Client
	vehicles db.VehicleCollection
}

// NewOdometerSubscriber connects to the broker and returns a subscriber
// ready to Start.
func NewOdometerSubscriber(brokerURL, clientID string, vehicles db.VehicleCollection) (*OdometerSubscriber, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.WithError(err).Warn("mqtt connection lost")
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to mqtt broker: %w", token.Error())
	}
	return &OdometerSubscriber{client: client, vehicles: vehicles}, nil
}

// Start subscribes to the odometer topic and applies readings until Stop.
func (s *OdometerSubscriber) Start() error {
	token := s.client.Subscribe(odometerTopicFilter, 1, s.handleMessage)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", odometerTopicFilter, token.Error())
	}
	log.WithField("topic", odometerTopicFilter).Info("subscribed to odometer telemetry")
	return nil
}

// Stop unsubscribes and disconnects from the broker.
func (s *OdometerSubscriber) Stop() {
	s.client.Unsubscribe(odometerTopicFilter)
	s.client.Disconnect(250)
}

func (s *OdometerSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	tenantID, vehicleID, err := parseOdometerTopic(msg.Topic())
	if err != nil {
		log.WithError(err).WithField("topic", msg.Topic()).Warn("dropping telemetry message")
		return
	}

	var reading OdometerReading
	if err := json.Unmarshal(msg.Payload(), &reading); err != nil {
		log.WithError(err).WithField("topic", msg.Topic()).Warn("dropping malformed telemetry payload")
		return
	}
	if reading.Odometer <= 0 {
		log.WithField("vehicle_id", vehicleID).Warn("dropping nonpositive odometer reading")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.vehicles.UpdateOdometer(ctx, tenantID, vehicleID, reading.Odometer); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"tenant_id":  tenantID,
			"vehicle_id": vehicleID,
		}).Error("failed to apply odometer reading")
		return
	}

	log.WithFields(log.Fields{
		"tenant_id":  tenantID,
		"vehicle_id": vehicleID,
		"odometer":   reading.Odometer,
	}).Debug("applied odometer reading")
}

// parseOdometerTopic extracts the tenant and vehicle IDs from a topic of the
// form fleet/<tenant_id>/<vehicle_id>/odometer.
func parseOdometerTopic(topic string) (tenantID, vehicleID string, err error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != "fleet" || parts[3] != "odometer" {
		return "", "", fmt.Errorf("unexpected topic %q", topic)
	}
	if parts[1] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("empty tenant or vehicle in topic %q", topic)
	}
	return parts[1], parts[2], nil
}
