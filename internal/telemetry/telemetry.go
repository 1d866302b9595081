// Package telemetry writes a CSV record for every state change, control
// event, and (optionally) raw sample the ring controller produces, the same
// daily-file-or-single-file design as the teacher's packet logger.
package telemetry

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lestrrat-go/strftime"

	"ringwolf/internal/ring"
)

// dailyPattern names one file per UTC day under a telemetry directory. The
// teacher's own log rotation hand-rolls "2006-01-02.log" with time.Format;
// here the equivalent job goes to the declared-but-otherwise-unused
// github.com/lestrrat-go/strftime dependency, since day-boundary naming is
// exactly what it exists to do.
const dailyPattern = "ringwolf-%Y-%m-%d.csv"

// Log writes telemetry as CSV, either to one fixed file or to a fresh file
// every UTC day. Safe for use from a single goroutine only, matching how the
// controller itself delivers sink callbacks.
type Log struct {
	dir        string
	singleFile string

	namer   *strftime.Strftime
	file    *os.File
	writer  *csv.Writer
	openDay string
}

// Open prepares a telemetry log. Exactly one of dir or singleFile should be
// non-empty; both empty disables telemetry (Log still works, every write is
// a no-op).
func Open(dir, singleFile string) (*Log, error) {
	l := &Log{dir: dir, singleFile: singleFile}

	if dir == "" && singleFile == "" {
		return l, nil
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("telemetry: creating %s: %w", dir, err)
		}
		namer, err := strftime.New(dailyPattern)
		if err != nil {
			return nil, fmt.Errorf("telemetry: compiling file name pattern: %w", err)
		}
		l.namer = namer
		if err := l.rollIfNeeded(time.Now().UTC()); err != nil {
			return nil, err
		}
		return l, nil
	}

	f, err := os.OpenFile(singleFile, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: opening %s: %w", singleFile, err)
	}
	l.file = f
	l.writer = csv.NewWriter(f)
	return l, l.writeHeaderIfEmpty(singleFile)
}

func (l *Log) rollIfNeeded(now time.Time) error {
	name := l.namer.FormatString(now)
	if l.file != nil && name == l.openDay {
		return nil
	}
	if l.file != nil {
		l.writer.Flush()
		l.file.Close()
	}

	full := filepath.Join(l.dir, name)
	f, err := os.OpenFile(full, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("telemetry: opening %s: %w", full, err)
	}
	l.file = f
	l.writer = csv.NewWriter(f)
	l.openDay = name
	return l.writeHeaderIfEmpty(full)
}

func (l *Log) writeHeaderIfEmpty(path string) error {
	info, err := os.Stat(path)
	if err == nil && info.Size() > 0 {
		return nil
	}
	if err := l.writer.Write([]string{"utime", "isotime", "kind", "session", "detail"}); err != nil {
		return fmt.Errorf("telemetry: writing header: %w", err)
	}
	l.writer.Flush()
	return l.writer.Error()
}

func (l *Log) write(kind string, session int, detail string) {
	if l.dir == "" && l.singleFile == "" {
		return
	}
	now := time.Now().UTC()
	if l.dir != "" {
		if err := l.rollIfNeeded(now); err != nil {
			return
		}
	}
	_ = l.writer.Write([]string{
		fmt.Sprintf("%d", now.Unix()),
		now.Format(time.RFC3339),
		kind,
		fmt.Sprintf("%d", session),
		detail,
	})
	l.writer.Flush()
}

// Close flushes and closes the underlying file, if one is open.
func (l *Log) Close() error {
	if l.file == nil {
		return nil
	}
	l.writer.Flush()
	return l.file.Close()
}

// StateSink adapts Log to ring.StateSink.
func (l *Log) StateSink(sessionID func() int) ring.StateSink {
	return ring.StateSinkFunc(func(from, to ring.ControllerState) {
		l.write("state", sessionID(), fmt.Sprintf("%s->%s", from, to))
	})
}

// ControlSink adapts Log to ring.ControlSink.
func (l *Log) ControlSink(sessionID func() int) ring.ControlSink {
	return ring.ControlSinkFunc(func(event ring.ControlEvent) {
		l.write("event", sessionID(), event.String())
	})
}

// RawSink adapts Log to ring.RawSink.
func (l *Log) RawSink(sessionID func() int) ring.RawSink {
	return ring.RawSinkFunc(func(s ring.RawSample) {
		detail := fmt.Sprintf("x=%d,y=%d,z=%d,net_g=%.4f,scroll_diff=%.4f,tap=%t",
			s.RawX, s.RawY, s.RawZ, s.FilteredNetG, s.FilteredScrollDiff, s.IsTap)
		l.write("sample", sessionID(), detail)
	})
}
