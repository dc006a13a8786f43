package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusHold Status = "hold"
	StatusBuy  Status = "buy"
	StatusSell Status = "sell"
)

// StatusSymbol is the fixed visual marker used in notification titles and
// table rows.
var StatusSymbol = map[Status]string{
	StatusHold: "□",
	StatusBuy:  "▲",
	StatusSell: "★",
}

// Lot is one discrete purchase of shares, tracked independently from other
// purchases of the same ticker. Immutable after configuration load.
type Lot struct {
	BuyPrice decimal.Decimal
	Shares   decimal.Decimal
}

// Thresholds holds the dual-gate trigger configuration: per-ticker yield
// bounds plus global absolute-dollar bounds.
type Thresholds struct {
	SellYieldByTicker map[string]decimal.Decimal
	BuyYieldByTicker  map[string]decimal.Decimal
	SellProfit        decimal.Decimal
	BuyProfit         decimal.Decimal
}

// Portfolio is the static process-lifetime configuration of what is held and
// how it triggers.
type Portfolio struct {
	// Tickers is the evaluation and display order: configured display
	// order first, any remaining held tickers after it.
	Tickers       []string
	Lots          map[string][]Lot
	Thresholds    Thresholds
	SymbolAliases map[string][]string
	DisplayRank   map[string]int
}

// AliasesFor returns the ordered candidate symbols to try for a ticker.
func (p Portfolio) AliasesFor(ticker string) []string {
	if aliases, ok := p.SymbolAliases[ticker]; ok && len(aliases) > 0 {
		return aliases
	}
	return []string{ticker}
}

// Quote is one fresh price observation; never retained across passes.
type Quote struct {
	Ticker         string
	Price          decimal.Decimal
	ObservedAt     time.Time
	ResolvedSymbol string
}

// EvaluationRow is the per-lot outcome of one pass. Pure function of
// (Lot, Quote, Thresholds).
type EvaluationRow struct {
	Ticker    string
	LotIndex  int
	BuyPrice  decimal.Decimal
	Shares    decimal.Decimal
	CurPrice  decimal.Decimal
	Yield     decimal.Decimal
	ProfitUSD decimal.Decimal
	BuyValue  decimal.Decimal
	CurValue  decimal.Decimal
	Status    Status
}

// PassSummary aggregates one pass for the notification title and the outcome
// line.
type PassSummary struct {
	HoldCount     int
	SellCount     int
	BuyCount      int
	TotalCurValue decimal.Decimal
}

func (s PassSummary) LotCount() int {
	return s.HoldCount + s.SellCount + s.BuyCount
}
