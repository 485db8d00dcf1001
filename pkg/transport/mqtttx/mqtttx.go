// Package mqtttx transmits sample frames as MQTT messages. Publish tokens
// resolve asynchronously, which maps directly onto the pipeline's
// transmit/complete contract.
package mqtttx

import (
	"fmt"
	"log"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Transmitter publishes frames to an MQTT topic.
type Transmitter struct {
	client mqtt.Client
	topic  string
	qos    byte

	complete  func()
	mu        sync.RWMutex
	connected bool
}

// New creates a transmitter publishing to topic on the given broker.
func New(broker, clientID, topic string, qos byte) *Transmitter {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	return &Transmitter{
		client: mqtt.NewClient(opts),
		topic:  topic,
		qos:    qos,
	}
}

// OnComplete installs the completion callback invoked after every Transmit
// once the publish token resolves. Install it before the first Transmit.
func (t *Transmitter) OnComplete(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.complete = fn
}

// Connect connects to the broker.
func (t *Transmitter) Connect() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.connected {
		return fmt.Errorf("already connected")
	}

	token := t.client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	t.connected = true

	return nil
}

// Close disconnects from the broker.
func (t *Transmitter) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.connected {
		return nil
	}

	t.client.Disconnect(250)
	t.connected = false

	return nil
}

// IsConnected returns whether the broker connection is up.
func (t *Transmitter) IsConnected() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.connected
}

// Transmit publishes one frame and returns immediately; the completion
// callback fires when the publish token resolves. The frame slice must stay
// untouched until then, which the pipeline's single-flight guarantee
// provides.
func (t *Transmitter) Transmit(data []byte) {
	t.mu.RLock()
	complete := t.complete
	t.mu.RUnlock()

	token := t.client.Publish(t.topic, t.qos, false, data)

	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			log.Printf("Failed to publish frame: %v", err)
		}
		if complete != nil {
			complete()
		}
	}()
}

// Announce publishes a retained handshake message describing the channel
// layout on the "<topic>/meta" subtopic, so late subscribers can decode the
// stream.
func (t *Transmitter) Announce(data []byte) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.connected {
		return fmt.Errorf("not connected")
	}

	token := t.client.Publish(t.topic+"/meta", t.qos, true, data)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to send handshake: %w", err)
	}

	return nil
}
