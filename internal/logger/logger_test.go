package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestFromContext(t *testing.T) {
	base := zap.NewExample()
	fallback := zap.NewNop()

	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Error("expected fallback logger for empty context")
	}
	if got := FromContext(context.Background(), nil); got == nil {
		t.Error("expected no-op logger, got nil")
	}
	ctx := ContextWithLogger(context.Background(), base)
	if got := FromContext(ctx, fallback); got != base {
		t.Error("expected logger stored in context")
	}
}
