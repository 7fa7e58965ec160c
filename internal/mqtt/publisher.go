package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"TariffSentinel/internal/config"
	"TariffSentinel/internal/model"
)

// Refresher triggers a refresh cycle when the command topic requests one.
type Refresher interface {
	Refresh(ctx context.Context, trigger model.Trigger) (*model.Snapshot, error)
}

// Publisher owns the MQTT presentation: Home Assistant discovery, retained
// state publishing and the refresh command topic.
type Publisher struct {
	client    *Client
	cfg       *config.Config
	refresher Refresher
}

// NewPublisher wires the MQTT client. Discovery and the command subscription
// are (re)announced on every connect.
func NewPublisher(cfg *config.Config, r Refresher) *Publisher {
	p := &Publisher{cfg: cfg, refresher: r}
	p.client = NewClient(cfg, p.announce)
	return p
}

// Connect dials the broker.
func (p *Publisher) Connect() error {
	return p.client.Connect()
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect()
}

// announce publishes the retained discovery configs and subscribes the
// command topic. Runs on every (re)connect so a restarted broker relearns
// the device.
func (p *Publisher) announce() {
	for _, e := range entities(p.cfg.MQTT.TopicPrefix) {
		payload, err := json.Marshal(e.config)
		if err != nil {
			logrus.Errorf("marshal discovery config %s: %v", e.objectID, err)
			continue
		}
		topic := fmt.Sprintf("%s/%s/%s/%s/config", p.cfg.MQTT.DiscoveryPrefix, e.component, nodeID, e.objectID)
		if err := p.client.Publish(topic, true, payload); err != nil {
			logrus.Errorf("announce %s: %v", e.objectID, err)
		}
	}

	commandTopic := p.cfg.MQTT.TopicPrefix + "/command"
	if err := p.client.Subscribe(commandTopic, p.handleCommand); err != nil {
		logrus.Errorf("subscribe %s: %v", commandTopic, err)
	} else {
		logrus.Infof("subscribed to command topic %s", commandTopic)
	}
}

func (p *Publisher) handleCommand(topic string, payload []byte) {
	cmd := strings.ToLower(strings.TrimSpace(string(payload)))
	if cmd != "refresh" && cmd != "update" {
		logrus.Warnf("unknown command %q on %s", cmd, topic)
		return
	}
	logrus.Info("refresh requested over MQTT")
	go func() {
		if _, err := p.refresher.Refresh(context.Background(), model.TriggerManual); err != nil {
			logrus.Errorf("MQTT-triggered refresh: %v", err)
		}
	}()
}

// PublishState publishes the retained state document for a snapshot. Wired
// as the coordinator's OnUpdate hook.
func (p *Publisher) PublishState(snap *model.Snapshot) {
	if snap == nil {
		return
	}
	payload, err := json.Marshal(buildState(snap))
	if err != nil {
		logrus.Errorf("marshal state payload: %v", err)
		return
	}
	topic := p.cfg.MQTT.TopicPrefix + "/state"
	if err := p.client.Publish(topic, true, payload); err != nil {
		logrus.Errorf("publish state: %v", err)
		return
	}
	logrus.Debugf("published state for cycle %s", snap.CycleID)
}

// statePayload is the JSON document published per refresh. The discovery
// configs address its fields with value templates, so renaming a field here
// means re-announcing matching templates.
type statePayload struct {
	CycleID         string  `json:"cycle_id"`
	UpdatedAt       string  `json:"updated_at"`
	Signal          float64 `json:"signal"`
	SignalStale     bool    `json:"signal_stale"`
	GridPrice       float64 `json:"grid_price"`
	GridPriceStale  bool    `json:"grid_price_stale"`
	EnergyBase      float64 `json:"energy_base"`
	EnergyBaseStale bool    `json:"energy_base_stale"`
	EnergyFee       float64 `json:"energy_fee"`
	EnergyFeeStale  bool    `json:"energy_fee_stale"`
	EnergyVat       float64 `json:"energy_vat"`
	EnergyVatStale  bool    `json:"energy_vat_stale"`
	TotalPrice      float64 `json:"total_price"`
	WindowActive    bool    `json:"window_active"`
	WindowStart     string  `json:"window_start"`
	WindowEnd       string  `json:"window_end"`
}

func buildState(snap *model.Snapshot) statePayload {
	s := statePayload{
		CycleID:      snap.CycleID,
		UpdatedAt:    snap.UpdatedAt.Format(time.RFC3339),
		TotalPrice:   snap.TotalPrice,
		WindowActive: snap.Window.Active,
	}
	if r, ok := snap.Readings[model.KeySignal]; ok {
		s.Signal, s.SignalStale = r.Value, r.Stale
	}
	if r, ok := snap.Readings[model.KeyGridPrice]; ok {
		s.GridPrice, s.GridPriceStale = r.Value, r.Stale
	}
	if r, ok := snap.Readings[model.KeyEnergyBase]; ok {
		s.EnergyBase, s.EnergyBaseStale = r.Value, r.Stale
	}
	if r, ok := snap.Readings[model.KeyEnergyFee]; ok {
		s.EnergyFee, s.EnergyFeeStale = r.Value, r.Stale
	}
	if r, ok := snap.Readings[model.KeyEnergyVat]; ok {
		s.EnergyVat, s.EnergyVatStale = r.Value, r.Stale
	}
	if snap.Window.Start != nil {
		s.WindowStart = snap.Window.Start.Format(time.RFC3339)
	}
	if snap.Window.End != nil {
		s.WindowEnd = snap.Window.End.Format(time.RFC3339)
	}
	return s
}
