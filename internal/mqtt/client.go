package mqtt

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"TariffSentinel/internal/config"
)

// Client wraps the paho MQTT connection.
type Client struct {
	client mqtt.Client
	cfg    *config.Config

	onConnect func()
}

// NewClient builds the client from config. The onConnect hook runs on every
// successful (re)connect, before any messages flow.
func NewClient(cfg *config.Config, onConnect func()) *Client {
	c := &Client{cfg: cfg, onConnect: onConnect}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTT.Broker)
	opts.SetClientID(cfg.MQTT.ClientID)
	opts.SetUsername(cfg.MQTT.Username)
	opts.SetPassword(cfg.MQTT.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetConnectionLostHandler(c.connectionLost)
	opts.SetOnConnectHandler(c.connected)

	c.client = mqtt.NewClient(opts)
	return c
}

// Connect dials the broker and blocks until the first attempt resolves.
func (c *Client) Connect() error {
	logrus.Infof("connecting to MQTT broker %s...", c.cfg.MQTT.Broker)
	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect to MQTT broker: %w", token.Error())
	}
	return nil
}

// Disconnect closes the connection gracefully.
func (c *Client) Disconnect() {
	logrus.Info("disconnecting from MQTT broker")
	c.client.Disconnect(250)
}

// Publish sends a payload and waits for the broker acknowledgement.
func (c *Client) Publish(topic string, retain bool, payload []byte) error {
	token := c.client.Publish(topic, 0, retain, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish %s: %w", topic, token.Error())
	}
	return nil
}

// Subscribe registers a handler for a topic.
func (c *Client) Subscribe(topic string, handler func(topic string, payload []byte)) error {
	token := c.client.Subscribe(topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", topic, token.Error())
	}
	return nil
}

func (c *Client) connected(_ mqtt.Client) {
	logrus.Info("MQTT connected")
	if c.onConnect != nil {
		c.onConnect()
	}
}

func (c *Client) connectionLost(_ mqtt.Client, err error) {
	logrus.Errorf("MQTT connection lost: %v", err)
}
