// Package ctxutil stores per-request values on a context.
package ctxutil

import "context"

type (
	traceDataKey struct{}
	sessionIDKey struct{}
)

// TraceData identifies a request across logs and spans.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

// GetTraceData returns nil when the request was not tagged.
func GetTraceData(ctx context.Context) *TraceData {
	td, _ := ctx.Value(traceDataKey{}).(*TraceData)
	return td
}

func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// SessionID returns the authenticated session id, or "".
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}
