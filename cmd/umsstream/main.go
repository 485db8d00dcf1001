// Command umsstream samples a set of simulated signals at a fixed rate and
// streams the encoded frames over a serial port or an MQTT broker.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/CedricK04/ums-go/pkg/config"
	"github.com/CedricK04/ums-go/pkg/sim"
	"github.com/CedricK04/ums-go/pkg/transport/mqtttx"
	"github.com/CedricK04/ums-go/pkg/transport/serialtx"
	"github.com/CedricK04/ums-go/pkg/triplebuf"
	"github.com/CedricK04/ums-go/pkg/ums"
	"github.com/CedricK04/ums-go/pkg/umserr"
)

// transmitter is the shape shared by the serial and MQTT transports.
type transmitter interface {
	Connect() error
	Close() error
	Transmit(data []byte)
	OnComplete(fn func())
	Announce(data []byte) error
}

func main() {
	var (
		configFlag   = flag.String("config", "config.yaml", "Configuration file path")
		portFlag     = flag.String("p", "", "Serial port override (e.g., /dev/ttyACM0)")
		brokerFlag   = flag.String("broker", "", "MQTT broker override (e.g., tcp://localhost:1883)")
		durationFlag = flag.Duration("duration", 0, "Stop after this duration (0 = run until interrupted)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Transport.Serial.Port = *portFlag
	}
	if *brokerFlag != "" {
		cfg.Transport.MQTT.Broker = *brokerFlag
	}

	if err := run(cfg, *durationFlag); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(cfg *config.Config, duration time.Duration) error {
	policy, err := cfg.Sampling.PipelinePolicy()
	if err != nil {
		return err
	}

	var tx transmitter
	switch cfg.Transport.Kind {
	case "serial":
		tx = serialtx.New(cfg.Transport.Serial.Port, cfg.Transport.Serial.BaudRate)
	case "mqtt":
		tx = mqtttx.New(cfg.Transport.MQTT.Broker, cfg.Transport.MQTT.ClientID,
			cfg.Transport.MQTT.Topic, cfg.Transport.MQTT.QoS)
	default:
		return fmt.Errorf("unknown transport kind %q", cfg.Transport.Kind)
	}

	if err := tx.Connect(); err != nil {
		return err
	}
	defer tx.Close()

	start := time.Now()
	sess, err := ums.New(ums.Config{
		Transmit: tx.Transmit,
		Critical: triplebuf.MutexCriticalSection(),
		Now: func() uint32 {
			return uint32(time.Since(start).Milliseconds())
		},
		Policy:      policy,
		MaxChannels: cfg.Sampling.MaxChannels,
		CountHeader: cfg.Sampling.CountHeader,
	})
	if err != nil {
		return err
	}
	defer sess.Close()
	tx.OnComplete(sess.TransmitComplete)

	bank, err := sim.NewBank(cfg.Channels)
	if err != nil {
		return err
	}
	if err := bank.Register(sess); err != nil {
		return err
	}

	handshake, err := sess.Handshake()
	if err != nil {
		return err
	}
	if err := tx.Announce(handshake); err != nil {
		return err
	}

	log.Printf("Streaming %d channels (%d bytes/frame) every %v via %s",
		sess.ChannelCount(), sess.FrameSize(), cfg.Sampling.Interval, cfg.Transport.Kind)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	ticker := time.NewTicker(cfg.Sampling.Interval)
	defer ticker.Stop()

	var published, dropped uint64
	for {
		select {
		case <-ctx.Done():
			log.Printf("Done: published %d samples, dropped %d", published, dropped)
			return nil
		case <-ticker.C:
			bank.Step(time.Since(start))
			switch err := sess.Publish(); {
			case err == nil:
				published++
			case errors.Is(err, umserr.ErrBufferFull):
				// Transmitter still busy; retry at the next tick.
				dropped++
			default:
				return fmt.Errorf("publish failed: %w", err)
			}
		}
	}
}
