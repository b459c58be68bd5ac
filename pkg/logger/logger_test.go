package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	appctx "szafa/internal/core/context"
)

func TestFromContext_AddsTraceFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := &Logger{zap.New(core).Sugar()}

	ctx := WithLogger(context.Background(), l)
	ctx = appctx.WithTrace(ctx, &appctx.TraceContext{TraceID: "t-1", RequestID: "r-1"})

	Info(ctx, "issue document created", "number", "DW/2024/06/0001")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "t-1", fields["trace_id"])
		assert.Equal(t, "r-1", fields["request_id"])
		assert.Equal(t, "DW/2024/06/0001", fields["number"])
	}
}

func TestWithComponent(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := (&Logger{zap.New(core).Sugar()}).WithComponent("relink")

	l.Debugw("pass finished", "relinked", 3)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "relink", entries[0].ContextMap()["component"])
	}
}

func TestFromContext_AddsDocumentAndEmployee(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := WithLogger(context.Background(), &Logger{zap.New(core).Sugar()})
	ctx = appctx.WithDocument(ctx, "PZ", "PZ/2024/06/0003")

	Warn(ctx, "stock clamped at zero", "requested", -4)
	FromContext(ctx).WithEmployee("2002").Infow("employment period saved")

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "PZ", fields["document_type"])
		assert.Equal(t, "PZ/2024/06/0003", fields["document_number"])

		fields = entries[1].ContextMap()
		assert.Equal(t, "2002", fields["card_number"])
		assert.Equal(t, "PZ/2024/06/0003", fields["document_number"])
	}
}
