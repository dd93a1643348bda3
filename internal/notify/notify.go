// Package notify publishes device registry changes so that downstream
// services (telemetry ingest, dashboards) can refresh their view of which
// devices belong to which organization.
package notify

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

// Registry change events.
const (
	EventTrackerCreated   = "tracker.created"
	EventTrackerUpdated   = "tracker.updated"
	EventTrackerHold      = "tracker.hold"
	EventTrackerRemoved   = "tracker.removed"
	EventOrganizationHold = "organization.hold"
)

// Event is the JSON payload of a change notification.
type Event struct {
	Event          string    `json:"event"`
	OrganizationID string    `json:"organizationId"`
	TrackerID      string    `json:"trackerId,omitempty"`
	IMEI           string    `json:"imei,omitempty"`
	IMEI2          string    `json:"imei2,omitempty"`
	At             time.Time `json:"at"`
}

// Publisher sends change events. Implementations never block the caller
// for long and never fail it.
type Publisher interface {
	Publish(ev Event)
	Close()
}

// Observer is told the outcome of each publish.
type Observer interface {
	Published(event string, err error)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(Event) {}
func (Nop) Close()        {}

// Config configures the MQTT publisher.
type Config struct {
	Broker      string
	ClientID    string
	TopicPrefix string
	// PublishWait bounds how long Publish waits for the broker ack.
	PublishWait time.Duration
}

// MQTTPublisher publishes events with QoS 1 to <prefix>/<event>.
type MQTTPublisher struct {
	client   mqtt.Client
	prefix   string
	wait     time.Duration
	log      logrus.FieldLogger
	observer Observer
}

// NewMQTT connects to the broker. The client reconnects on its own after
// the first successful connection.
func NewMQTT(cfg Config, log logrus.FieldLogger, observer Observer) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("mqtt connection lost")
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}
	return newMQTTPublisher(client, cfg, log, observer), nil
}

func newMQTTPublisher(client mqtt.Client, cfg Config, log logrus.FieldLogger, observer Observer) *MQTTPublisher {
	wait := cfg.PublishWait
	if wait <= 0 {
		wait = 2 * time.Second
	}
	return &MQTTPublisher{
		client:   client,
		prefix:   strings.TrimSuffix(cfg.TopicPrefix, "/"),
		wait:     wait,
		log:      log,
		observer: observer,
	}
}

// Topic returns the topic an event is published on.
func (p *MQTTPublisher) Topic(event string) string {
	if p.prefix == "" {
		return event
	}
	return p.prefix + "/" + event
}

// Publish sends ev and waits at most the configured publish wait.
func (p *MQTTPublisher) Publish(ev Event) {
	err := p.publish(ev)
	if p.observer != nil {
		p.observer.Published(ev.Event, err)
	}
	if err != nil {
		p.log.WithError(err).WithFields(logrus.Fields{
			"event":          ev.Event,
			"organizationId": ev.OrganizationID,
			"trackerId":      ev.TrackerID,
		}).Warn("change notification dropped")
	}
}

func (p *MQTTPublisher) publish(ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	token := p.client.Publish(p.Topic(ev.Event), 1, false, payload)
	if !token.WaitTimeout(p.wait) {
		return fmt.Errorf("publish %s: timed out", ev.Event)
	}
	return token.Error()
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
