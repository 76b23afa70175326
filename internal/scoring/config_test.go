package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/kquant/internal/contracts"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "strategies.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestLoadFileConfig(t *testing.T) {
	path := writeConfig(t, `
meta:
  config_id: test-v1
  version: "1.0"
strategies:
  momentum:
    enabled: false
  quality:
    weights:
      - metric: roe
        weight: 5.0
composite:
  - metric: per
    weight: 2.0
`)

	cfg, raw, err := LoadFileConfig(path)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.Equal(t, "test-v1", cfg.Meta.ConfigID)
	assert.False(t, *cfg.Strategies["momentum"].Enabled)
}

func TestLoadFileConfigUnknownField(t *testing.T) {
	path := writeConfig(t, `
meta:
  config_id: test-v1
stratgies:
  quality:
    enabled: true
`)

	// KnownFields(true): 오타 필드는 즉시 실패
	_, _, err := LoadFileConfig(path)
	assert.Error(t, err)
}

func TestValidateFileConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  FileConfig
	}{
		{
			"missing config_id",
			FileConfig{},
		},
		{
			"unknown strategy",
			FileConfig{
				Meta:       FileMeta{ConfigID: "x"},
				Strategies: map[string]StrategyTuning{"nope": {}},
			},
		},
		{
			"unknown metric",
			FileConfig{
				Meta: FileMeta{ConfigID: "x"},
				Strategies: map[string]StrategyTuning{
					contracts.StrategyQuality: {Weights: []WeightOverride{{Metric: "nope", Weight: 1}}},
				},
			},
		},
		{
			"non-positive weight",
			FileConfig{
				Meta:      FileMeta{ConfigID: "x"},
				Composite: []WeightOverride{{Metric: MetricROE, Weight: 0}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileConfig(&tt.cfg)
			require.Error(t, err)
			var vErr ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}
}

func TestHashDeterministic(t *testing.T) {
	cfg := &FileConfig{Meta: FileMeta{ConfigID: "x", Version: "1"}}

	h1, err := Hash(cfg)
	require.NoError(t, err)
	h2, err := Hash(cfg)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)

	cfg.Meta.Version = "2"
	h3, err := Hash(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestApplyFileConfigDefaults(t *testing.T) {
	strategies, composite := ApplyFileConfig(nil)

	assert.Len(t, strategies, len(contracts.StrategyNames))
	assert.Equal(t, CompositeWeights(), composite)
}

func TestApplyFileConfigDisable(t *testing.T) {
	disabled := false
	cfg := &FileConfig{
		Meta: FileMeta{ConfigID: "x"},
		Strategies: map[string]StrategyTuning{
			contracts.StrategyMomentum: {Enabled: &disabled},
		},
	}

	strategies, _ := ApplyFileConfig(cfg)

	assert.Len(t, strategies, len(contracts.StrategyNames)-1)
	for _, st := range strategies {
		assert.NotEqual(t, contracts.StrategyMomentum, st.Name)
	}
}

func TestApplyFileConfigWeightOverride(t *testing.T) {
	cfg := &FileConfig{
		Meta: FileMeta{ConfigID: "x"},
		Strategies: map[string]StrategyTuning{
			contracts.StrategyQuality: {
				Weights: []WeightOverride{{Metric: MetricROE, Weight: 5.0}},
			},
		},
		Composite: []WeightOverride{{Metric: MetricPER, Weight: 2.0}},
	}

	strategies, composite := ApplyFileConfig(cfg)

	// 가중치 목록은 통째로 교체됨
	for _, st := range strategies {
		if st.Name == contracts.StrategyQuality {
			require.Len(t, st.Weights, 1)
			assert.Equal(t, WeightTerm{Metric: MetricROE, Weight: 5.0}, st.Weights[0])
		}
	}
	require.Len(t, composite, 1)
	assert.Equal(t, WeightTerm{Metric: MetricPER, Weight: 2.0}, composite[0])
}
