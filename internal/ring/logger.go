package ring

// Logger is the minimal structured-logging surface the core needs. The
// daemon wires this to github.com/charmbracelet/log; tests use a no-op or
// recording implementation.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// nopLogger discards everything. Used when a caller does not supply one.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
