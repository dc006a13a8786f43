package notifier

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ljwu/holdings-monitor/internal/model"
	"github.com/ljwu/holdings-monitor/utils"
)

// Compose builds the push title and body for one pass. The title carries the
// three status counts with their symbols; the body starts with total current
// value and the pass timestamp, then a fixed-width table of every lot sorted
// by configured display order and lot index.
func Compose(now time.Time, rows []model.EvaluationRow, summary model.PassSummary, displayRank map[string]int, codeBlock bool) (title, body string) {
	title = fmt.Sprintf("hold %d%s, sell %d%s, buy %d%s",
		summary.HoldCount, model.StatusSymbol[model.StatusHold],
		summary.SellCount, model.StatusSymbol[model.StatusSell],
		summary.BuyCount, model.StatusSymbol[model.StatusBuy],
	)

	body = "Total " + utils.FmtMoney(summary.TotalCurValue) + "\n" +
		now.Format("2006-01-02 15:04:05 MST") + "\n" +
		formatRowsAsTable(rows, displayRank, codeBlock)

	return title, body
}

type column struct {
	header string
	width  int
}

var columns = []column{
	{"Ticker", 6},
	{"Lot", 3},
	{"Yield", 8},
	{"P/L", 13},
	{"Op", 2},
}

func formatRowsAsTable(rows []model.EvaluationRow, displayRank map[string]int, codeBlock bool) string {
	headers := make([]string, 0, len(columns))
	for _, c := range columns {
		headers = append(headers, lpad(c.header, c.width))
	}
	headerLine := strings.Join(headers, " ")

	out := []string{headerLine, strings.Repeat("-", len(headerLine))}

	sorted := make([]model.EvaluationRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := rankOf(sorted[i].Ticker, displayRank), rankOf(sorted[j].Ticker, displayRank)
		if ri != rj {
			return ri < rj
		}
		return sorted[i].LotIndex < sorted[j].LotIndex
	})

	for _, r := range sorted {
		mark := "🟢"
		if r.ProfitUSD.IsNegative() {
			mark = "🔴"
		}
		out = append(out, strings.Join([]string{
			lpad(r.Ticker, columns[0].width),
			rpad(fmt.Sprintf("%d", r.LotIndex), columns[1].width),
			rpad(utils.FmtSignedPct(r.Yield), columns[2].width),
			rpad(mark+utils.FmtSignedMoney(r.ProfitUSD), columns[3].width),
			rpad(model.StatusSymbol[r.Status], columns[4].width),
		}, " "))
	}

	table := strings.Join(out, "\n")
	if codeBlock {
		// blank lines around the table improve the push client's chance
		// of monospace rendering
		return "\n" + table + "\n"
	}
	return table
}

func rankOf(ticker string, displayRank map[string]int) int {
	if r, ok := displayRank[ticker]; ok {
		return r
	}
	return int(^uint(0) >> 1) // unlisted tickers sort last
}

func lpad(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}

func rpad(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return strings.Repeat(" ", w-len(s)) + s
}
