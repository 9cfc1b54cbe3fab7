package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewBuildsBothModes(t *testing.T) {
	t.Parallel()

	for _, development := range []bool{true, false} {
		logger, err := New(development)
		require.NoError(t, err)
		require.NotNil(t, logger)
		logger.Info("logger ready", zap.Bool("development", development))
	}
}

func TestNamedScopesComponent(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	parent := zap.New(core).Named(rootName)

	Named(parent, "market").Info("prices saved")
	Named(parent, "news").Info("batch saved")

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, "agridata.market", entries[0].LoggerName)
	require.Equal(t, "agridata.news", entries[1].LoggerName)
}

func TestNamedNilParentIsSafe(t *testing.T) {
	t.Parallel()

	logger := Named(nil, "api")
	require.NotNil(t, logger)
	require.NotPanics(t, func() { logger.Warn("dropped") })
}
