// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package bus wraps the MQTT client shared by every binary.
package bus

import (
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// disconnectQuiesce is how long Close waits for in-flight work, in ms.
const disconnectQuiesce = 250

// Client is a connected MQTT client publishing and receiving JSON payloads.
type Client struct {
	name   string
	broker string
	client mqtt.Client
}

// Connect dials the broker and blocks until the connection is up.
func Connect(broker, clientID string) (*Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Printf("%s: MQTT connection lost: %v", clientID, err)
		})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect to %s: %w", broker, token.Error())
	}
	log.Printf("%s: connected to MQTT broker at %s", clientID, broker)

	return &Client{name: clientID, broker: broker, client: client}, nil
}

// PublishJSON marshals v and publishes it at QoS 0.
func (c *Client) PublishJSON(topic string, retained bool, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("json marshal (%s): %w", topic, err)
	}
	token := c.client.Publish(topic, 0, retained, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("MQTT publish (%s): %w", topic, token.Error())
	}
	return nil
}

// Subscribe registers handler for topic. Paho invokes handler on its own
// goroutine, never concurrently with itself for the same client.
func (c *Client) Subscribe(topic string, handler func(payload []byte)) error {
	token := c.client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("MQTT subscribe (%s): %w", topic, token.Error())
	}
	log.Printf("%s: subscribed to %s", c.name, topic)
	return nil
}

// SubscribeJSON subscribes and decodes each payload into a fresh T.
// Malformed payloads are logged and dropped.
func SubscribeJSON[T any](c *Client, topic string, handler func(T)) error {
	return c.Subscribe(topic, func(payload []byte) {
		var v T
		if err := json.Unmarshal(payload, &v); err != nil {
			log.Printf("%s: %s unmarshal error: %v", c.name, topic, err)
			return
		}
		handler(v)
	})
}

// Close disconnects from the broker.
func (c *Client) Close() {
	c.client.Disconnect(disconnectQuiesce)
	log.Printf("%s: disconnected from %s", c.name, c.broker)
}
