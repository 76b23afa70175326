package scoring

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wonny/kquant/internal/contracts"
)

// FileConfig overrides the built-in strategy set from YAML. 내장 기본값이
// SSOT이고, 파일은 가중치/활성화 여부만 바꾼다.
type FileConfig struct {
	Meta       FileMeta                  `yaml:"meta" json:"meta"`
	Strategies map[string]StrategyTuning `yaml:"strategies" json:"strategies"`
	Composite  []WeightOverride          `yaml:"composite" json:"composite"`
}

// FileMeta 메타 정보
type FileMeta struct {
	ConfigID string `yaml:"config_id" json:"config_id"`
	Version  string `yaml:"version" json:"version"`
}

// StrategyTuning tunes one built-in strategy.
type StrategyTuning struct {
	Enabled *bool            `yaml:"enabled" json:"enabled"`
	Weights []WeightOverride `yaml:"weights" json:"weights"`
}

// WeightOverride replaces the whole weight list of a strategy when present.
type WeightOverride struct {
	Metric string  `yaml:"metric" json:"metric"`
	Weight float64 `yaml:"weight" json:"weight"`
	Invert bool    `yaml:"invert" json:"invert"`
}

// LoadFileConfig reads YAML and returns the parsed overrides with raw bytes.
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func LoadFileConfig(path string) (*FileConfig, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&cfg); err != nil {
		return nil, nil, err
	}

	if err := ValidateFileConfig(&cfg); err != nil {
		return nil, data, err
	}

	return &cfg, data, nil
}

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateFileConfig checks strategy names, metric IDs and weight signs.
func ValidateFileConfig(cfg *FileConfig) error {
	if cfg.Meta.ConfigID == "" {
		return ValidationError{"meta.config_id", "required"}
	}

	known := make(map[string]bool)
	for _, name := range contracts.StrategyNames {
		known[name] = true
	}
	metricIDs := make(map[string]bool)
	for _, m := range Registry() {
		metricIDs[m.ID] = true
	}

	for name, tuning := range cfg.Strategies {
		if !known[name] {
			return ValidationError{"strategies." + name, "unknown strategy"}
		}
		if err := validateOverrides(tuning.Weights, "strategies."+name+".weights", metricIDs); err != nil {
			return err
		}
	}

	return validateOverrides(cfg.Composite, "composite", metricIDs)
}

func validateOverrides(overrides []WeightOverride, field string, metricIDs map[string]bool) error {
	for i, w := range overrides {
		if !metricIDs[w.Metric] {
			return ValidationError{fmt.Sprintf("%s[%d].metric", field, i), "unknown metric " + w.Metric}
		}
		if w.Weight <= 0 {
			return ValidationError{fmt.Sprintf("%s[%d].weight", field, i), "must be > 0"}
		}
	}
	return nil
}

// Hash generates a SHA256 hash from the config (canonical JSON)
// 주의: 실행 시점의 전략 설정 감사 추적용
func Hash(cfg *FileConfig) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// ApplyFileConfig materializes the final strategy set and composite weights:
// built-in defaults with the file's overrides applied. A nil cfg returns the
// defaults unchanged.
func ApplyFileConfig(cfg *FileConfig) ([]Strategy, []WeightTerm) {
	strategies := DefaultStrategies()
	composite := CompositeWeights()
	if cfg == nil {
		return strategies, composite
	}

	if len(cfg.Composite) > 0 {
		composite = toWeightTerms(cfg.Composite)
	}

	out := strategies[:0]
	for _, st := range strategies {
		tuning, ok := cfg.Strategies[st.Name]
		if ok {
			if tuning.Enabled != nil && !*tuning.Enabled {
				continue
			}
			if len(tuning.Weights) > 0 {
				st.Weights = toWeightTerms(tuning.Weights)
			}
		}
		out = append(out, st)
	}
	return out, composite
}

func toWeightTerms(overrides []WeightOverride) []WeightTerm {
	terms := make([]WeightTerm, len(overrides))
	for i, w := range overrides {
		terms[i] = WeightTerm{Metric: w.Metric, Weight: w.Weight, Invert: w.Invert}
	}
	return terms
}
