package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupAppliesLevelAndOutput(t *testing.T) {
	var buf bytes.Buffer
	Setup(Config{Level: "warn", Output: &buf})

	logger := FromContext(context.Background())
	logger.Info().Msg("should be filtered")
	logger.Warn().Msg("should appear")

	assert.NotContains(t, buf.String(), "should be filtered")
	assert.Contains(t, buf.String(), "should appear")
}

func TestFromContextIncludesRunAndSymbol(t *testing.T) {
	var buf bytes.Buffer
	Setup(Config{Level: "debug", Output: &buf})

	ctx := WithRun(context.Background(), "run-1", "BTC-USD")
	logger := FromContext(ctx)
	logger.Info().Msg("matched")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "run-1", line["run_id"])
	assert.Equal(t, "BTC-USD", line["symbol"])
}

func TestDefaultConfigUsesInfoLevel(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.False(t, cfg.Pretty)
}
