package log

// NullLogger is a logging engine that discards every message passed to it.
type NullLogger struct{}

// NewNullLogger creates a logger that silently drops all output. It is useful as a default when no
// logging destination is configured, and in tests that should not pollute standard output.
func NewNullLogger() Logger {
	return &NullLogger{}
}

// Debug discards the message.
func (l *NullLogger) Debug(format string, v ...interface{}) {}

// Info discards the message.
func (l *NullLogger) Info(format string, v ...interface{}) {}

// Warn discards the message.
func (l *NullLogger) Warn(format string, v ...interface{}) {}

// Error discards the message.
func (l *NullLogger) Error(format string, v ...interface{}) {}

// Level reads the current logging level, which is always the least verbose level available.
func (l *NullLogger) Level() Level {
	return Error
}
