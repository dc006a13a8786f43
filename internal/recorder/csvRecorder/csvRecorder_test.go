package csvRecorder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ljwu/holdings-monitor/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []model.EvaluationRow {
	return []model.EvaluationRow{
		{
			Ticker:    "NVDA",
			LotIndex:  1,
			BuyPrice:  decimal.RequireFromString("185.27"),
			Shares:    decimal.RequireFromString("0.0538797587"),
			CurPrice:  decimal.RequireFromString("190.10"),
			Yield:     decimal.RequireFromString("0.0260701576"),
			ProfitUSD: decimal.RequireFromString("0.260240"),
			BuyValue:  decimal.RequireFromString("9.982"),
			CurValue:  decimal.RequireFromString("10.2425"),
			Status:    model.StatusHold,
		},
		{
			Ticker:    "XYZ",
			LotIndex:  2,
			BuyPrice:  decimal.NewFromInt(100),
			Shares:    decimal.NewFromInt(10),
			CurPrice:  decimal.NewFromInt(107),
			Yield:     decimal.RequireFromString("0.07"),
			ProfitUSD: decimal.NewFromInt(70),
			BuyValue:  decimal.NewFromInt(1000),
			CurValue:  decimal.NewFromInt(1070),
			Status:    model.StatusSell,
		},
	}
}

func TestAppendWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	r := New(path)
	ts := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)

	require.NoError(t, r.Append(ts, sampleRows()))
	require.NoError(t, r.Append(ts.Add(3*time.Minute), sampleRows()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	assert.Len(t, lines, 5) // 1 header + 2x2 data rows
	assert.True(t, strings.HasPrefix(lines[0], "time,ticker,lot,"))
	assert.Equal(t, 1, strings.Count(string(raw), "time,ticker,lot,"))
}

func TestAppendDoesNotTruncateExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	r := New(path)
	ts := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)

	require.NoError(t, r.Append(ts, sampleRows()))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, r.Append(ts.Add(3*time.Minute), sampleRows()[:1]))
	after, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(after), string(before)))
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	r := New(path)
	ts := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)
	rows := sampleRows()

	require.NoError(t, r.Append(ts, rows))

	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(rows))

	for i, rec := range records {
		assert.Equal(t, ts, rec.Time)
		assert.Equal(t, rows[i].Ticker, rec.Ticker)
		assert.Equal(t, rows[i].LotIndex, rec.LotIndex)
		// values round-trip at the stated six decimal places
		assert.True(t, rec.BuyPrice.Equal(rows[i].BuyPrice.Round(6)), "buy price %s != %s", rec.BuyPrice, rows[i].BuyPrice)
		assert.True(t, rec.Shares.Equal(rows[i].Shares.Round(6)))
		assert.True(t, rec.ProfitUSD.Equal(rows[i].ProfitUSD.Round(6)))
		assert.True(t, rec.CurValue.Equal(rows[i].CurValue.Round(6)))
		assert.Equal(t, rows[i].Status, rec.Status)
	}

	assert.Equal(t, "2.61%", records[0].YieldPct)
	assert.Equal(t, "7.00%", records[1].YieldPct)
}
