// Command ringwolfd is the long-running daemon that wires a BlueX RF03 ring
// link through the gesture core to whichever sinks are configured: a CSV
// telemetry log, a GPIO feedback pulse, a confirmation tone, and an optional
// mDNS status announcement. It is the one piece of glue spec.md scopes out
// of the core and leaves to "the host UI"; ringwolfd is a minimal,
// headless stand-in for one.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"

	"ringwolf/internal/config"
	"ringwolf/internal/discovery"
	"ringwolf/internal/feedback/gpiofeedback"
	"ringwolf/internal/feedback/tone"
	"ringwolf/internal/link/ble"
	"ringwolf/internal/link/hotplug"
	"ringwolf/internal/ring"
	"ringwolf/internal/telemetry"
)

// maxReconnectDelay bounds each reconnect attempt the supervisor makes when
// a hotplug "device added" event arrives.
const maxReconnectDelay = 10 * time.Second

func main() {
	cfg, err := config.Load(filepath.Base(os.Args[0]), os.Args[1:], os.Getenv("RINGWOLF_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := charmlog.New(os.Stderr)
	level, err := charmlog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = charmlog.InfoLevel
	}
	logger.SetLevel(level)

	if err := run(cfg, logger); err != nil {
		logger.Error("ringwolfd exiting", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *charmlog.Logger) error {
	ringLogger := ringLoggerAdapter{logger}

	link, err := ble.New(cfg.DeviceNamePattern, ringLogger)
	if err != nil {
		return fmt.Errorf("ringwolfd: %w", err)
	}

	controller := ring.NewController(link, ringLogger)
	controller.VerifySelectToUserInput = cfg.VerifySelectToUserInput

	telemetryLog, err := telemetry.Open(cfg.TelemetryDir, cfg.TelemetryFile)
	if err != nil {
		return fmt.Errorf("ringwolfd: %w", err)
	}
	defer telemetryLog.Close()

	sessionID := controller.SessionID
	controller.SetStateSink(multiStateSink(
		telemetryLog.StateSink(sessionID),
		ring.StateSinkFunc(func(from, to ring.ControllerState) {
			logger.Info("state change", "from", from, "to", to)
		}),
	))

	controlSinks := []ring.ControlSink{
		telemetryLog.ControlSink(sessionID),
		ring.ControlSinkFunc(func(event ring.ControlEvent) {
			logger.Info("control event", "event", event)
		}),
	}

	if cfg.GPIOChip != "" && cfg.GPIOLine >= 0 {
		fb, err := gpiofeedback.Open(cfg.GPIOChip, cfg.GPIOLine)
		if err != nil {
			return fmt.Errorf("ringwolfd: %w", err)
		}
		defer fb.Close()
		controlSinks = append(controlSinks, fb.ControlSink())
	}

	if cfg.ToneEnabled {
		player, err := tone.Open(880.0)
		if err != nil {
			return fmt.Errorf("ringwolfd: opening tone player: %w", err)
		}
		defer player.Close()
		controlSinks = append(controlSinks, player.ControlSink())
	}

	controller.SetControlSink(multiControlSink(controlSinks...))
	controller.SetRawSink(telemetryLog.RawSink(sessionID))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.DiscoveryEnabled {
		announcer := discovery.New(cfg.DiscoveryName, 0)
		go func() {
			if err := announcer.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("discovery: announcer stopped", "err", err)
			}
		}()
	}

	supervisor := newReconnectSupervisor(controller, logger)
	go func() {
		watcher := hotplug.New(ringLogger)
		watcher.OnDeviceAdded = supervisor.triggerReconnect
		if err := watcher.Run(ctx); err != nil {
			logger.Debug("hotplug: watcher stopped", "err", err)
		}
	}()

	if err := controller.Connect(ctx); err != nil {
		return fmt.Errorf("ringwolfd: initial connect: %w", err)
	}

	<-ctx.Done()
	logger.Info("shutting down")
	return controller.Disconnect()
}

// reconnectSupervisor runs at most one reconnect attempt at a time,
// triggered by a hotplug "device added" event. The controller dropping to
// Disconnected does not by itself start a reconnect.
type reconnectSupervisor struct {
	controller *ring.Controller
	logger     *charmlog.Logger
	inFlight   chan struct{}
}

func newReconnectSupervisor(c *ring.Controller, logger *charmlog.Logger) *reconnectSupervisor {
	return &reconnectSupervisor{controller: c, logger: logger, inFlight: make(chan struct{}, 1)}
}

func (s *reconnectSupervisor) triggerReconnect() {
	select {
	case s.inFlight <- struct{}{}:
	default:
		s.logger.Debug("reconnect already in progress, ignoring hotplug event")
		return
	}
	go func() {
		defer func() { <-s.inFlight }()
		ctx, cancel := context.WithTimeout(context.Background(), maxReconnectDelay)
		defer cancel()
		if err := s.controller.Connect(ctx); err != nil {
			s.logger.Warn("reconnect attempt failed", "err", err)
		}
	}()
}

type ringLoggerAdapter struct {
	l *charmlog.Logger
}

func (a ringLoggerAdapter) Debug(msg string, keyvals ...any) { a.l.Debug(msg, keyvals...) }
func (a ringLoggerAdapter) Warn(msg string, keyvals ...any)  { a.l.Warn(msg, keyvals...) }
func (a ringLoggerAdapter) Error(msg string, keyvals ...any) { a.l.Error(msg, keyvals...) }

func multiStateSink(sinks ...ring.StateSink) ring.StateSink {
	return ring.StateSinkFunc(func(from, to ring.ControllerState) {
		for _, s := range sinks {
			s.OnStateChange(from, to)
		}
	})
}

func multiControlSink(sinks ...ring.ControlSink) ring.ControlSink {
	return ring.ControlSinkFunc(func(event ring.ControlEvent) {
		for _, s := range sinks {
			s.OnControlEvent(event)
		}
	})
}
