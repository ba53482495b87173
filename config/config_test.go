package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/jsdeobf/config"
)

func TestDefaultPipelineConfigValidates(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultPipelineConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadMaxIterationsOnEnabledPass(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultPipelineConfig()
	cfg.ConstProp.Pass.MaxIterations = 0
	require.Error(t, cfg.Validate())
}

func TestValidateIgnoresDisabledPassOptions(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultPipelineConfig()
	cfg.ConstProp.Enabled = false
	cfg.ConstProp.Pass.MaxIterations = -5
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownPassOrderEntry(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultPipelineConfig()
	cfg.PassOrder = append(cfg.PassOrder, "not-a-real-pass")
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBadTimeoutMs(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultPipelineConfig()
	cfg.DCE.TimeoutMs = 0
	require.Error(t, cfg.Validate())
}
