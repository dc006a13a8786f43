package notifier

import (
	"strings"
	"testing"
	"time"

	"github.com/ljwu/holdings-monitor/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(ticker string, lot int, yield, profit float64, status model.Status) model.EvaluationRow {
	return model.EvaluationRow{
		Ticker:    ticker,
		LotIndex:  lot,
		Yield:     decimal.NewFromFloat(yield),
		ProfitUSD: decimal.NewFromFloat(profit),
		CurValue:  decimal.NewFromFloat(100),
		Status:    status,
	}
}

func TestComposeTitleCounts(t *testing.T) {
	summary := model.PassSummary{HoldCount: 12, SellCount: 2, BuyCount: 1, TotalCurValue: decimal.NewFromFloat(1234.56)}

	title, body := Compose(time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC), nil, summary, nil, false)

	assert.Equal(t, "hold 12□, sell 2★, buy 1▲", title)
	assert.True(t, strings.HasPrefix(body, "Total $1,234.56\n"), "body = %q", body)
	assert.Contains(t, body, "2026-09-01 10:30:00 UTC")
}

func TestComposeTableOrder(t *testing.T) {
	rows := []model.EvaluationRow{
		row("ZZZ", 1, 0.01, 5, model.StatusHold),   // unlisted: sorts last
		row("NVDA", 2, 0.07, 70, model.StatusSell), // listed rank 0, lot 2
		row("NVDA", 1, -0.02, -3, model.StatusHold),
		row("AAPL", 1, -0.08, -20, model.StatusBuy), // listed rank 1
	}
	rank := map[string]int{"NVDA": 0, "AAPL": 1}
	summary := model.PassSummary{HoldCount: 2, SellCount: 1, BuyCount: 1, TotalCurValue: decimal.NewFromInt(400)}

	_, body := Compose(time.Now(), rows, summary, rank, false)

	lines := strings.Split(body, "\n")
	// body: total, timestamp, header, separator, then the 4 lots
	require.Len(t, lines, 8)

	assert.True(t, strings.HasPrefix(lines[4], "NVDA"))
	assert.Contains(t, lines[4], " 1 ")
	assert.True(t, strings.HasPrefix(lines[5], "NVDA"))
	assert.Contains(t, lines[5], " 2 ")
	assert.True(t, strings.HasPrefix(lines[6], "AAPL"))
	assert.True(t, strings.HasPrefix(lines[7], "ZZZ"))
}

func TestComposeRowContent(t *testing.T) {
	rows := []model.EvaluationRow{row("XYZ", 1, 0.07, 70, model.StatusSell)}
	summary := model.PassSummary{SellCount: 1, TotalCurValue: decimal.NewFromInt(1070)}

	_, body := Compose(time.Now(), rows, summary, nil, false)

	assert.Contains(t, body, "+7.00%")
	assert.Contains(t, body, "🟢+$70.00")
	assert.Contains(t, body, "★")
}

func TestComposeNegativeProfitMarker(t *testing.T) {
	rows := []model.EvaluationRow{row("XYZ", 1, -0.07, -70, model.StatusBuy)}
	summary := model.PassSummary{BuyCount: 1, TotalCurValue: decimal.NewFromInt(930)}

	_, body := Compose(time.Now(), rows, summary, nil, false)

	assert.Contains(t, body, "-7.00%")
	assert.Contains(t, body, "🔴-$70.00")
	assert.Contains(t, body, "▲")
}

func TestComposeCodeBlockWrapping(t *testing.T) {
	summary := model.PassSummary{TotalCurValue: decimal.Zero}

	_, plain := Compose(time.Now(), nil, summary, nil, false)
	_, wrapped := Compose(time.Now(), nil, summary, nil, true)

	assert.False(t, strings.HasSuffix(plain, "\n"))
	assert.True(t, strings.HasSuffix(wrapped, "\n"))
}
