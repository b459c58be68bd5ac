// Package context carries request-scoped values (trace ids, the business clock).
package context

import (
	"context"

	"github.com/google/uuid"
)

// TraceContext contains request tracing information.
type TraceContext struct {
	TraceID   string
	SpanID    string
	RequestID string
}

type traceContextKey struct{}

// WithTrace adds TraceContext to context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns TraceContext from context.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

type documentKey struct{}

// DocumentRef names the DW or PZ document a unit of work belongs to.
type DocumentRef struct {
	Type   string
	Number string
}

// WithDocument marks ctx as working on the document with the given prefix and number.
func WithDocument(ctx context.Context, docType, number string) context.Context {
	return context.WithValue(ctx, documentKey{}, DocumentRef{Type: docType, Number: number})
}

// GetDocument returns the document ctx works on.
func GetDocument(ctx context.Context) (DocumentRef, bool) {
	ref, ok := ctx.Value(documentKey{}).(DocumentRef)
	return ref, ok
}

// GetRequestID returns request ID from context or empty string.
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}

// NewTraceContext creates a TraceContext for work that does not start from an HTTP request
// (maintenance commands).
func NewTraceContext() *TraceContext {
	return &TraceContext{
		TraceID:   uuid.New().String(),
		SpanID:    uuid.New().String()[:16],
		RequestID: uuid.New().String(),
	}
}
