package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/ljwu/holdings-monitor/internal/model"
	"github.com/shopspring/decimal"
)

type lotEntry struct {
	BuyPrice decimal.Decimal `json:"buy_price"`
	Shares   decimal.Decimal `json:"shares"`
}

type portfolioFile struct {
	Holdings            map[string][]lotEntry      `json:"holdings"`
	SellYieldThresholds map[string]decimal.Decimal `json:"sell_yield_thresholds"`
	BuyYieldThresholds  map[string]decimal.Decimal `json:"buy_yield_thresholds"`
	SellProfitThreshold decimal.Decimal            `json:"sell_profit_threshold"`
	BuyProfitThreshold  decimal.Decimal            `json:"buy_profit_threshold"`
	SymbolAliases       map[string][]string        `json:"symbol_aliases"`
	DisplayOrder        []string                   `json:"display_order"`
}

// LoadPortfolio reads and validates the holdings file. Any violation is a
// configuration error: the caller must not enter the polling loop.
func LoadPortfolio(path string) (model.Portfolio, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("read holdings file %s: %w", path, err)
	}

	pf := portfolioFile{}
	if err := json.Unmarshal(raw, &pf); err != nil {
		return model.Portfolio{}, fmt.Errorf("parse holdings file %s: %w", path, err)
	}

	if len(pf.Holdings) == 0 {
		return model.Portfolio{}, fmt.Errorf("holdings file %s contains no holdings", path)
	}

	if !pf.SellProfitThreshold.IsPositive() {
		return model.Portfolio{}, fmt.Errorf("sell_profit_threshold must be > 0, got %s", pf.SellProfitThreshold)
	}
	if !pf.BuyProfitThreshold.IsNegative() {
		return model.Portfolio{}, fmt.Errorf("buy_profit_threshold must be < 0, got %s", pf.BuyProfitThreshold)
	}

	lots := make(map[string][]model.Lot, len(pf.Holdings))
	for ticker, entries := range pf.Holdings {
		if len(entries) == 0 {
			return model.Portfolio{}, fmt.Errorf("ticker %s has no lots", ticker)
		}

		sellThr, ok := pf.SellYieldThresholds[ticker]
		if !ok {
			return model.Portfolio{}, fmt.Errorf("ticker %s missing from sell_yield_thresholds", ticker)
		}
		if !sellThr.IsPositive() {
			return model.Portfolio{}, fmt.Errorf("sell_yield_thresholds[%s] must be > 0, got %s", ticker, sellThr)
		}

		buyThr, ok := pf.BuyYieldThresholds[ticker]
		if !ok {
			return model.Portfolio{}, fmt.Errorf("ticker %s missing from buy_yield_thresholds", ticker)
		}
		if !buyThr.IsNegative() {
			return model.Portfolio{}, fmt.Errorf("buy_yield_thresholds[%s] must be < 0, got %s", ticker, buyThr)
		}

		for i, e := range entries {
			if !e.BuyPrice.IsPositive() {
				return model.Portfolio{}, fmt.Errorf("ticker %s lot %d: buy_price must be > 0, got %s", ticker, i+1, e.BuyPrice)
			}
			if !e.Shares.IsPositive() {
				return model.Portfolio{}, fmt.Errorf("ticker %s lot %d: shares must be > 0, got %s", ticker, i+1, e.Shares)
			}
			lots[ticker] = append(lots[ticker], model.Lot{BuyPrice: e.BuyPrice, Shares: e.Shares})
		}
	}

	tickers, rank := orderTickers(lots, pf.DisplayOrder)

	return model.Portfolio{
		Tickers: tickers,
		Lots:    lots,
		Thresholds: model.Thresholds{
			SellYieldByTicker: pf.SellYieldThresholds,
			BuyYieldByTicker:  pf.BuyYieldThresholds,
			SellProfit:        pf.SellProfitThreshold,
			BuyProfit:         pf.BuyProfitThreshold,
		},
		SymbolAliases: pf.SymbolAliases,
		DisplayRank:   rank,
	}, nil
}

// orderTickers puts held tickers into the configured display order; tickers
// absent from display_order go last, alphabetically.
func orderTickers(lots map[string][]model.Lot, displayOrder []string) ([]string, map[string]int) {
	rank := make(map[string]int, len(lots))
	tickers := make([]string, 0, len(lots))

	for _, t := range displayOrder {
		if _, held := lots[t]; held {
			rank[t] = len(tickers)
			tickers = append(tickers, t)
		}
	}

	rest := make([]string, 0, len(lots))
	for t := range lots {
		if _, seen := rank[t]; !seen {
			rest = append(rest, t)
		}
	}
	sort.Strings(rest)

	for _, t := range rest {
		rank[t] = len(tickers)
		tickers = append(tickers, t)
	}

	return tickers, rank
}
