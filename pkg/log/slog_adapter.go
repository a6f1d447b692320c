package log

import (
	"context"
	"log/slog"
)

// SlogAdapter renders protocol events as structured log records.
// Messages and state changes are logged at debug level, error events at
// warn level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter returns an adapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log implements Logger.
func (a *SlogAdapter) Log(event Event) {
	level := slog.LevelDebug
	msg := "protocol message"

	attrs := []slog.Attr{
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
	}
	attrs = appendString(attrs, "conn_id", event.ConnectionID)
	attrs = appendString(attrs, "udn", event.DeviceUDN)
	attrs = appendString(attrs, "remote", event.RemoteAddr)

	switch {
	case event.Message != nil:
		attrs = append(attrs, messageAttrs(event.Message)...)
	case event.StateChange != nil:
		msg = "protocol state"
		sc := event.StateChange
		attrs = append(attrs,
			slog.String("entity", sc.Entity.String()),
			slog.String("old_state", sc.OldState),
			slog.String("new_state", sc.NewState),
		)
		attrs = appendString(attrs, "reason", sc.Reason)
	case event.Error != nil:
		level, msg = slog.LevelWarn, "protocol error"
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
		)
		attrs = appendString(attrs, "error_context", event.Error.Context)
		if event.Error.Code != nil {
			attrs = append(attrs, slog.Int("error_code", *event.Error.Code))
		}
	}

	a.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

func messageAttrs(m *MessageEvent) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("msg_type", m.Type.String()),
		slog.String("event_type", m.EventType.String()),
	}
	attrs = appendString(attrs, "service", m.ServiceID)
	attrs = appendString(attrs, "action", m.Action)
	attrs = appendString(attrs, "sid", m.SID)
	attrs = appendString(attrs, "error", m.ErrorText)
	if m.Status != nil {
		attrs = append(attrs, slog.String("status", m.Status.String()))
	}
	if m.ProcessingTime != nil {
		attrs = append(attrs, slog.Duration("processing_time", *m.ProcessingTime))
	}
	return attrs
}

func appendString(attrs []slog.Attr, key, value string) []slog.Attr {
	if value == "" {
		return attrs
	}
	return append(attrs, slog.String(key, value))
}

var _ Logger = (*SlogAdapter)(nil)
