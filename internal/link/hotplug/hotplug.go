// Package hotplug watches for a BLE USB dongle being plugged or unplugged
// and signals a caller-supplied reconnect policy, the udev-driven "device
// came back" case spec.md §7 describes abstractly (a bounded reconnect
// attempt after a transport drop) but never wires to a concrete signal. The
// teacher enumerates USB sound and hidraw devices through cgo libudev
// (src/cm108.go); this package does the pure-Go equivalent with
// github.com/jochenvg/go-udev, watching rather than enumerating once.
package hotplug

import (
	"context"

	"github.com/jochenvg/go-udev"
)

// Logger is the minimal logging surface Watcher needs.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
}

// Watcher observes udev "add" events on the "usb" subsystem and invokes
// OnDeviceAdded for each one. It does not itself decide whether the device
// is the ring's dongle; that's the caller's reconnect policy to apply,
// matching spec §7's "at most one reconnect per disconnect" rule which this
// package has no visibility into on its own.
type Watcher struct {
	OnDeviceAdded func()

	logger Logger
}

// New prepares a Watcher. logger may be nil.
func New(logger Logger) *Watcher {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Watcher{logger: logger}
}

// Run blocks, dispatching to OnDeviceAdded for every matching add event,
// until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	u := udev.Udev{}
	monitor := u.NewMonitorFromNetlink("udev")
	if err := monitor.FilterAddMatchSubsystem("usb"); err != nil {
		return err
	}

	deviceCh, errCh, err := monitor.DeviceChan(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			w.logger.Warn("hotplug: monitor error", "err", err)
		case dev := <-deviceCh:
			if dev == nil {
				continue
			}
			if dev.Action() != "add" {
				continue
			}
			w.logger.Debug("hotplug: usb device added", "syspath", dev.Syspath())
			if w.OnDeviceAdded != nil {
				w.OnDeviceAdded()
			}
		}
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
