// Command ringwolf-tty is a secondary entry point for scripts or legacy
// integrations that expect to read a serial-style device rather than link
// against Go: it connects to a ring, opens a Linux pseudo-terminal the same
// way the teacher's virtual KISS TNC does (src/kiss.go, via
// github.com/creack/pty), and writes one line per ControlEvent in a trivial
// text protocol. Provisional-intent events produce no line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/creack/pty"
	"github.com/spf13/pflag"

	"ringwolf/internal/link/ble"
	"ringwolf/internal/ring"
)

func main() {
	namePattern := pflag.StringP("device-name-pattern", "d", ble.DefaultNamePattern, "Regex an advertised BLE device name must match")
	symlink := pflag.StringP("symlink", "s", "/tmp/ringwolf", "Symlink path pointing at the pseudo-terminal's slave side")
	help := pflag.BoolP("help", "h", false, "Display help text")
	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "ringwolf-tty - bridges ring gestures onto a virtual serial device.")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		return
	}

	logger := log.New(os.Stderr)

	if err := run(*namePattern, *symlink, logger); err != nil {
		logger.Error("ringwolf-tty exiting", "err", err)
		os.Exit(1)
	}
}

func run(namePattern, symlinkPath string, logger *log.Logger) error {
	ptmx, pts, err := pty.Open()
	if err != nil {
		return fmt.Errorf("ringwolf-tty: opening pseudo-terminal: %w", err)
	}
	defer ptmx.Close()
	defer pts.Close()

	_ = os.Remove(symlinkPath)
	if err := os.Symlink(pts.Name(), symlinkPath); err != nil {
		logger.Warn("ringwolf-tty: could not create symlink", "path", symlinkPath, "err", err)
	} else {
		defer os.Remove(symlinkPath)
	}
	logger.Info("virtual serial device ready", "slave", pts.Name(), "symlink", symlinkPath)

	link, err := ble.New(namePattern, adaptLogger{logger})
	if err != nil {
		return fmt.Errorf("ringwolf-tty: %w", err)
	}

	controller := ring.NewController(link, adaptLogger{logger})
	controller.SetControlSink(ring.ControlSinkFunc(func(event ring.ControlEvent) {
		writeLine(ptmx, logger, protocolLine(event))
	}))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := controller.Connect(ctx); err != nil {
		return fmt.Errorf("ringwolf-tty: connect: %w", err)
	}

	<-ctx.Done()
	return controller.Disconnect()
}

// protocolLine renders one ControlEvent as the trivial text protocol a
// script consuming this TTY expects: one keyword per line, with a
// percentage argument for in-progress verification.
func protocolLine(event ring.ControlEvent) string {
	switch event {
	case ring.ScrollUp:
		return "SCROLL_UP"
	case ring.ScrollDown:
		return "SCROLL_DOWN"
	case ring.ConfirmWakeupIntent:
		return "WAKE"
	case ring.ConfirmSelectionIntent:
		return "SELECT"
	case ring.CancelIntent:
		return "CANCEL"
	case ring.Timeout:
		return "TIMEOUT"
	case ring.VerifyIntent25:
		return "VERIFY 25"
	case ring.VerifyIntent50:
		return "VERIFY 50"
	case ring.VerifyIntent75:
		return "VERIFY 75"
	default:
		return ""
	}
}

func writeLine(w *os.File, logger *log.Logger, line string) {
	if line == "" {
		return
	}
	if _, err := w.Write([]byte(line + "\n")); err != nil {
		logger.Debug("ringwolf-tty: write to pseudo-terminal failed, no reader attached", "err", err)
	}
}

type adaptLogger struct{ l *log.Logger }

func (a adaptLogger) Debug(msg string, keyvals ...any) { a.l.Debug(msg, keyvals...) }
func (a adaptLogger) Warn(msg string, keyvals ...any)  { a.l.Warn(msg, keyvals...) }
func (a adaptLogger) Error(msg string, keyvals ...any) { a.l.Error(msg, keyvals...) }
