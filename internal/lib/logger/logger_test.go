package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	ctx := context.Background()

	assert.True(t, New(envLocal).Enabled(ctx, slog.LevelDebug))
	assert.True(t, New(envDev).Enabled(ctx, slog.LevelDebug))
	assert.False(t, New(envProd).Enabled(ctx, slog.LevelDebug))
	assert.True(t, New(envProd).Enabled(ctx, slog.LevelInfo))
	assert.False(t, New("unknown").Enabled(ctx, slog.LevelDebug))
}
