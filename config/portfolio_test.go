package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPortfolio(t *testing.T) {
	p, err := LoadPortfolio(filepath.Join("testdata", "holdings.json"))
	require.NoError(t, err)

	// display order first, unlisted tickers last
	assert.Equal(t, []string{"NVDA", "BRK.B", "TRMB"}, p.Tickers)
	assert.Equal(t, 0, p.DisplayRank["NVDA"])
	assert.Equal(t, 2, p.DisplayRank["TRMB"])

	require.Len(t, p.Lots["NVDA"], 2)
	assert.Equal(t, "185.27", p.Lots["NVDA"][0].BuyPrice.String())
	assert.Equal(t, "0.0538797587", p.Lots["NVDA"][0].Shares.String())

	assert.Equal(t, []string{"BRK.B", "BRK-B"}, p.AliasesFor("BRK.B"))
	assert.Equal(t, []string{"NVDA"}, p.AliasesFor("NVDA"))

	assert.True(t, p.Thresholds.SellProfit.IsPositive())
	assert.True(t, p.Thresholds.BuyProfit.IsNegative())
}

func TestLoadPortfolioMissingFile(t *testing.T) {
	_, err := LoadPortfolio(filepath.Join("testdata", "nope.json"))
	require.Error(t, err)
}

func writePortfolio(t *testing.T, mutate func(m map[string]any)) string {
	t.Helper()

	raw, err := os.ReadFile(filepath.Join("testdata", "holdings.json"))
	require.NoError(t, err)

	m := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &m))
	mutate(m)

	out, err := json.Marshal(m)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "holdings.json")
	require.NoError(t, os.WriteFile(path, out, 0o644))
	return path
}

func TestLoadPortfolioValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m map[string]any)
		wantErr string
	}{
		{
			name: "ticker missing from sell thresholds",
			mutate: func(m map[string]any) {
				delete(m["sell_yield_thresholds"].(map[string]any), "TRMB")
			},
			wantErr: "missing from sell_yield_thresholds",
		},
		{
			name: "ticker missing from buy thresholds",
			mutate: func(m map[string]any) {
				delete(m["buy_yield_thresholds"].(map[string]any), "TRMB")
			},
			wantErr: "missing from buy_yield_thresholds",
		},
		{
			name: "sell yield threshold not positive",
			mutate: func(m map[string]any) {
				m["sell_yield_thresholds"].(map[string]any)["TRMB"] = -0.05
			},
			wantErr: "must be > 0",
		},
		{
			name: "buy yield threshold not negative",
			mutate: func(m map[string]any) {
				m["buy_yield_thresholds"].(map[string]any)["TRMB"] = 0.05
			},
			wantErr: "must be < 0",
		},
		{
			name: "zero buy price",
			mutate: func(m map[string]any) {
				lots := m["holdings"].(map[string]any)["TRMB"].([]any)
				lots[0].(map[string]any)["buy_price"] = 0
			},
			wantErr: "buy_price must be > 0",
		},
		{
			name: "negative shares",
			mutate: func(m map[string]any) {
				lots := m["holdings"].(map[string]any)["TRMB"].([]any)
				lots[0].(map[string]any)["shares"] = -1
			},
			wantErr: "shares must be > 0",
		},
		{
			name: "sell profit threshold not positive",
			mutate: func(m map[string]any) {
				m["sell_profit_threshold"] = 0
			},
			wantErr: "sell_profit_threshold",
		},
		{
			name: "empty holdings",
			mutate: func(m map[string]any) {
				m["holdings"] = map[string]any{}
			},
			wantErr: "no holdings",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writePortfolio(t, tc.mutate)

			_, err := LoadPortfolio(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
