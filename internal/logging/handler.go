// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Aikagi Contributors

// Package logging provides structured logging with OpenTelemetry trace
// context and redaction of credential material.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// redactedValue replaces any attribute that may carry credential material.
const redactedValue = "[REDACTED]"

// sensitiveKeys lists attribute keys whose values never reach the log
// output. Session tokens are bearer credentials, so they are treated the
// same as passwords.
var sensitiveKeys = map[string]struct{}{
	"password":         {},
	"password_confirm": {},
	"password_hash":    {},
	"session_id":       {},
	"token":            {},
}

// authHandler wraps a slog.Handler to add trace context and scrub
// credential attributes.
type authHandler struct {
	handler slog.Handler
	service string
	version string
}

// Handle adds trace context and redacts sensitive attributes before
// delegating to the wrapped handler.
func (h *authHandler) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(attr slog.Attr) bool {
		clean.AddAttrs(redact(attr))
		return true
	})

	clean.AddAttrs(
		slog.String("service", h.service),
		slog.String("version", h.version),
	)

	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.HasTraceID() {
		clean.AddAttrs(slog.String("trace_id", spanCtx.TraceID().String()))
	}
	if spanCtx.HasSpanID() {
		clean.AddAttrs(slog.String("span_id", spanCtx.SpanID().String()))
	}

	//nolint:wrapcheck // Handler interface requires unwrapped error passthrough
	return h.handler.Handle(ctx, clean)
}

// redact masks sensitive attributes, descending into groups.
func redact(attr slog.Attr) slog.Attr {
	if _, ok := sensitiveKeys[attr.Key]; ok {
		return slog.String(attr.Key, redactedValue)
	}
	if attr.Value.Kind() == slog.KindGroup {
		members := attr.Value.Group()
		cleaned := make([]any, 0, len(members))
		for _, member := range members {
			cleaned = append(cleaned, redact(member))
		}
		return slog.Group(attr.Key, cleaned...)
	}
	return attr
}

// Enabled returns true if the level is enabled.
func (h *authHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// WithAttrs returns a new handler with the given attributes. Attributes
// are redacted here too so pre-bound credentials never linger in the
// wrapped handler.
func (h *authHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cleaned := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		cleaned = append(cleaned, redact(attr))
	}
	return &authHandler{
		handler: h.handler.WithAttrs(cleaned),
		service: h.service,
		version: h.version,
	}
}

// WithGroup returns a new handler with the given group.
func (h *authHandler) WithGroup(name string) slog.Handler {
	return &authHandler{
		handler: h.handler.WithGroup(name),
		service: h.service,
		version: h.version,
	}
}

// Setup creates a configured slog.Logger.
// format: "json" or "text" (defaults to "json" if empty)
// If w is nil, writes to os.Stderr.
func Setup(service, version, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	var baseHandler slog.Handler
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}

	if format == "text" {
		baseHandler = slog.NewTextHandler(w, opts)
	} else {
		baseHandler = slog.NewJSONHandler(w, opts)
	}

	handler := &authHandler{
		handler: baseHandler,
		service: service,
		version: version,
	}

	return slog.New(handler)
}

// SetDefault sets up and configures the default logger.
func SetDefault(service, version, format string) {
	logger := Setup(service, version, format, nil)
	slog.SetDefault(logger)
}
