package features

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/kquant/internal/contracts"
)

func batchWithReferenceRevenue(revenue float64) *contracts.Batch {
	return &contracts.Batch{
		Securities: map[string]*contracts.SecurityData{
			DefaultReferenceCode: {
				Security: contracts.Security{Code: DefaultReferenceCode, Type: contracts.TypeOrdinary},
				Statements: []contracts.StatementItem{
					{Account: "매출액", Period: "2024-12-31", Freq: contracts.FreqAnnual, Value: revenue},
				},
			},
		},
	}
}

func TestMultiplierTiers(t *testing.T) {
	tests := []struct {
		name    string
		revenue float64
		want    float64
	}{
		{"KRW as-is", 3e14, 1},
		{"millions of KRW", 3e8, 1e6},
		{"hundred-million KRW", 3e6, 1e8},
	}

	n := NewUnitNormalizer("", testLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Multiplier(context.Background(), batchWithReferenceRevenue(tt.revenue))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMultiplierMissingReference(t *testing.T) {
	n := NewUnitNormalizer("", testLogger())

	_, err := n.Multiplier(context.Background(), &contracts.Batch{
		Securities: map[string]*contracts.SecurityData{},
	})
	require.Error(t, err)
	assert.True(t, contracts.IsDataUnavailable(err))
}

func TestMultiplierMissingReferenceRevenue(t *testing.T) {
	n := NewUnitNormalizer("", testLogger())

	batch := &contracts.Batch{
		Securities: map[string]*contracts.SecurityData{
			DefaultReferenceCode: {
				Security: contracts.Security{Code: DefaultReferenceCode},
			},
		},
	}
	_, err := n.Multiplier(context.Background(), batch)
	require.Error(t, err)
	assert.True(t, contracts.IsDataUnavailable(err))
}

func TestMultiplierCustomReference(t *testing.T) {
	n := NewUnitNormalizer("000660", testLogger())

	batch := &contracts.Batch{
		Securities: map[string]*contracts.SecurityData{
			"000660": {
				Statements: []contracts.StatementItem{
					{Account: "매출액", Period: "2024-12-31", Freq: contracts.FreqAnnual, Value: 5e8},
				},
			},
		},
	}
	got, err := n.Multiplier(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 1e6, got)
}
