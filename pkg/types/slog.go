package types

import "log/slog"

// SlogLogger adapts a *slog.Logger to Logger.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps l. A nil logger falls back to slog.Default.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{l: l}
}

// Debug implements Logger.
func (s *SlogLogger) Debug(msg string, fields ...any) {
	s.l.Debug(msg, fields...)
}

// Info implements Logger.
func (s *SlogLogger) Info(msg string, fields ...any) {
	s.l.Info(msg, fields...)
}

// Error implements Logger.
func (s *SlogLogger) Error(msg string, err error, fields ...any) {
	if err != nil {
		fields = append([]any{"error", err}, fields...)
	}
	s.l.Error(msg, fields...)
}
