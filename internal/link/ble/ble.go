// Package ble implements ring.Link over a real BlueX RF03 smart ring using
// tinygo.org/x/bluetooth, the standard cross-platform Go BLE library. No
// library in the retrieved reference pack speaks BLE GATT (see DESIGN.md),
// so this one package reaches outside it for the one thing the core cannot
// do without: moving bytes over the air.
package ble

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"tinygo.org/x/bluetooth"

	"ringwolf/internal/ring"
)

// UUIDs and characteristic roles, spec §6.
var (
	ServiceUUID = bluetooth.MustParseUUID("6e40fff0-b5a3-f393-e0a9-e50e24dcca9e")
	WriteCharUUID = bluetooth.MustParseUUID("6e400002-b5a3-f393-e0a9-e50e24dcca9e")
	NotifyCharUUID = bluetooth.MustParseUUID("6e400003-b5a3-f393-e0a9-e50e24dcca9e")
)

// DefaultNamePattern matches the ring's advertised name, spec §6.
const DefaultNamePattern = `^R0\d_[0-9A-Z]{4}$`

// scanTimeout bounds how long Connect will scan for a matching advertiser
// before giving up.
const scanTimeout = 15 * time.Second

// Logger is the minimal logging surface Link needs; ring.Logger satisfies
// it, so callers can pass the same logger used for the core.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// Link connects to one BlueX RF03 ring over BLE and implements ring.Link.
// Scanning and discovery live here, outside the gesture core. Link makes no
// reconnect attempts of its own; a dropped connection stays down until
// Connect is called again.
type Link struct {
	adapter     *bluetooth.Adapter
	namePattern *regexp.Regexp
	logger      Logger

	device     bluetooth.Device
	writeChar  bluetooth.DeviceCharacteristic
	notifyChar bluetooth.DeviceCharacteristic

	notifyCh  chan [16]byte
	connected bool
}

// New prepares a Link that will match an advertiser whose name satisfies
// namePattern (spec §6's `^R0\d_[0-9A-Z]{4}$` by default). logger may be nil.
func New(namePattern string, logger Logger) (*Link, error) {
	if namePattern == "" {
		namePattern = DefaultNamePattern
	}
	re, err := regexp.Compile(namePattern)
	if err != nil {
		return nil, fmt.Errorf("ble: compiling name pattern %q: %w", namePattern, err)
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &Link{
		adapter:     bluetooth.DefaultAdapter,
		namePattern: re,
		logger:      logger,
	}, nil
}

var _ ring.Link = (*Link)(nil)

// Connect enables the adapter, scans for a matching advertiser, connects,
// discovers the ring's custom service, and subscribes to notifications.
func (l *Link) Connect(ctx context.Context) error {
	if err := l.adapter.Enable(); err != nil {
		return fmt.Errorf("ble: enabling adapter: %w", err)
	}

	addr, err := l.scan(ctx)
	if err != nil {
		return err
	}

	device, err := l.adapter.Connect(addr, bluetooth.ConnectionParams{})
	if err != nil {
		return fmt.Errorf("ble: connecting to %s: %w", addr, err)
	}
	l.device = device

	services, err := device.DiscoverServices([]bluetooth.UUID{ServiceUUID})
	if err != nil || len(services) == 0 {
		device.Disconnect()
		return fmt.Errorf("ble: discovering service: %w", err)
	}

	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{WriteCharUUID, NotifyCharUUID})
	if err != nil {
		device.Disconnect()
		return fmt.Errorf("ble: discovering characteristics: %w", err)
	}
	for _, c := range chars {
		switch c.UUID() {
		case WriteCharUUID:
			l.writeChar = c
		case NotifyCharUUID:
			l.notifyChar = c
		}
	}

	l.notifyCh = make(chan [16]byte, 32)
	if err := l.notifyChar.EnableNotifications(l.onNotify); err != nil {
		device.Disconnect()
		return fmt.Errorf("ble: enabling notifications: %w", err)
	}

	l.connected = true
	return nil
}

// onNotify adapts a variable-length BLE payload to the fixed 16-byte frame
// the core expects (spec §4.1). A payload of any other length is dropped
// here, before it can be copied into a fixed-size frame and misread as a
// legitimate sample.
func (l *Link) onNotify(buf []byte) {
	if len(buf) != 16 {
		l.logger.Debug("ble: dropping malformed notification", "len", len(buf))
		return
	}
	var frame [16]byte
	copy(frame[:], buf)
	select {
	case l.notifyCh <- frame:
	default:
		l.logger.Warn("ble: notification channel full, dropping sample")
	}
}

func (l *Link) scan(ctx context.Context) (bluetooth.Address, error) {
	found := make(chan bluetooth.ScanResult, 1)
	scanCtx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	err := l.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
		if l.namePattern.MatchString(result.LocalName()) {
			adapter.StopScan()
			select {
			case found <- result:
			default:
			}
		}
	})
	if err != nil {
		return bluetooth.Address{}, fmt.Errorf("ble: starting scan: %w", err)
	}

	select {
	case result := <-found:
		return result.Address, nil
	case <-scanCtx.Done():
		l.adapter.StopScan()
		return bluetooth.Address{}, fmt.Errorf("ble: no advertiser matched name pattern within %s", scanTimeout)
	}
}

// Disconnect tears down the GATT connection and closes the notification
// channel, releasing subscriptions on every exit path (spec §5).
func (l *Link) Disconnect() error {
	if !l.connected {
		return nil
	}
	l.connected = false
	close(l.notifyCh)
	return l.device.Disconnect()
}

// Write sends a 16-byte command to the ring's write characteristic.
func (l *Link) Write(command [16]byte) error {
	_, err := l.writeChar.WriteWithoutResponse(command[:])
	if err != nil {
		return fmt.Errorf("ble: write failed: %w", err)
	}
	return nil
}

// Notifications returns the channel of inbound 16-byte payloads.
func (l *Link) Notifications() <-chan [16]byte { return l.notifyCh }

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
