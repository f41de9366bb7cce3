package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"safehub/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const locationTopic = "safehub/location/+"

// MQTTLocationProvider receives position fixes published by the mobile app
// on safehub/location/<userID>. Payload: {"lat": .., "lng": ..}.
type MQTTLocationProvider struct {
	client mqtt.Client

	mu   sync.RWMutex
	last map[uint]models.Point
	ch   chan LocationSample
}

func NewMQTTLocationProvider(brokerURL, clientID string) (*MQTTLocationProvider, error) {
	p := &MQTTLocationProvider{
		last: make(map[uint]models.Point),
		ch:   make(chan LocationSample, 256),
	}

	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOnConnectHandler(func(c mqtt.Client) {
			if tok := c.Subscribe(locationTopic, 0, p.handle); tok.Wait() && tok.Error() != nil {
				zap.L().Error("mqtt subscribe failed", zap.Error(tok.Error()))
			}
		})

	client := mqtt.NewClient(opts)
	if tok := client.Connect(); tok.Wait() && tok.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", tok.Error())
	}
	p.client = client
	return p, nil
}

func (p *MQTTLocationProvider) handle(_ mqtt.Client, msg mqtt.Message) {
	parts := strings.Split(msg.Topic(), "/")
	id, err := strconv.ParseUint(parts[len(parts)-1], 10, 32)
	if err != nil {
		zap.L().Debug("ignoring location on malformed topic", zap.String("topic", msg.Topic()))
		return
	}

	var fix struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}
	if err := json.Unmarshal(msg.Payload(), &fix); err != nil {
		zap.L().Debug("ignoring malformed location payload", zap.Error(err))
		return
	}

	sample := LocationSample{
		UserID: uint(id),
		Point:  models.Point{Lng: fix.Lng, Lat: fix.Lat},
		At:     time.Now(),
	}

	p.mu.Lock()
	p.last[sample.UserID] = sample.Point
	p.mu.Unlock()

	// never block the mqtt read loop on a slow consumer
	select {
	case p.ch <- sample:
	default:
	}
}

func (p *MQTTLocationProvider) Last(userID uint) (*models.Point, error) {
	p.mu.RLock()
	pt, ok := p.last[userID]
	p.mu.RUnlock()
	if !ok {
		return nil, ErrLocationUnavailable
	}
	return &pt, nil
}

func (p *MQTTLocationProvider) Samples() <-chan LocationSample {
	return p.ch
}

func (p *MQTTLocationProvider) Close() {
	p.client.Disconnect(250)
}
