// Package serialtx transmits sample frames over a serial port. Writes run on
// a goroutine so the producer never blocks; the completion callback fires
// once the port accepts the frame, mirroring a DMA-complete interrupt.
package serialtx

import (
	"fmt"
	"log"
	"sync"

	"go.bug.st/serial"
)

// DefaultBaudRate is the standard baud rate for the streamer.
const DefaultBaudRate = 115200

// Transmitter writes frames to a serial port.
type Transmitter struct {
	port     string
	baudRate int

	conn      serial.Port
	complete  func()
	mu        sync.RWMutex
	connected bool
}

// New creates a transmitter for the given port. A zero baudRate selects
// DefaultBaudRate.
func New(port string, baudRate int) *Transmitter {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	return &Transmitter{
		port:     port,
		baudRate: baudRate,
	}
}

// OnComplete installs the completion callback invoked after every Transmit
// once the frame has been handed to the port. Install it before the first
// Transmit.
func (t *Transmitter) OnComplete(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.complete = fn
}

// Connect opens the serial port.
func (t *Transmitter) Connect() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: t.baudRate,
	}

	port, err := serial.Open(t.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", t.port, err)
	}

	t.conn = port
	t.connected = true

	return nil
}

// Close closes the serial port.
func (t *Transmitter) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.connected {
		return nil
	}

	if t.conn != nil {
		if err := t.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		t.conn = nil
	}

	t.connected = false

	return nil
}

// IsConnected returns whether the port is currently open.
func (t *Transmitter) IsConnected() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.connected
}

// Transmit starts an asynchronous write of one frame. It returns
// immediately; the completion callback fires after the write finishes. The
// frame slice must stay untouched until then, which the pipeline's
// single-flight guarantee provides.
func (t *Transmitter) Transmit(data []byte) {
	t.mu.RLock()
	conn := t.conn
	complete := t.complete
	t.mu.RUnlock()

	go func() {
		if conn != nil {
			if _, err := conn.Write(data); err != nil {
				log.Printf("Failed to write frame to serial port: %v", err)
			}
		}
		if complete != nil {
			complete()
		}
	}()
}

// Announce synchronously writes a handshake message describing the channel
// layout. Call it before the first Transmit.
func (t *Transmitter) Announce(data []byte) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.connected {
		return fmt.Errorf("not connected")
	}

	if _, err := t.conn.Write(data); err != nil {
		return fmt.Errorf("failed to send handshake: %w", err)
	}

	return nil
}
