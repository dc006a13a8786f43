package monitorService

import (
	"fmt"

	"github.com/ljwu/holdings-monitor/internal/model"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Evaluate classifies every held lot against the current quotes. Pure and
// deterministic: no I/O, no hidden state. The only error is a held ticker
// missing from a threshold map, which is a configuration fault.
//
// A lot is "sell" iff yield > the ticker's sell yield threshold AND profit >
// the global sell profit threshold, "buy" iff the symmetric negative
// conditions hold, otherwise "hold". Sell is checked first; both bounds are
// strict.
func Evaluate(portfolio model.Portfolio, quotes map[string]model.Quote) (rows, sellRows, buyRows []model.EvaluationRow, summary model.PassSummary, err error) {
	thresholds := portfolio.Thresholds

	for _, ticker := range portfolio.Tickers {
		quote, ok := quotes[ticker]
		if !ok {
			return nil, nil, nil, model.PassSummary{}, fmt.Errorf("no quote for held ticker %s", ticker)
		}

		sellYieldThr, ok := thresholds.SellYieldByTicker[ticker]
		if !ok {
			return nil, nil, nil, model.PassSummary{}, fmt.Errorf("ticker %s missing from sell yield thresholds", ticker)
		}
		buyYieldThr, ok := thresholds.BuyYieldByTicker[ticker]
		if !ok {
			return nil, nil, nil, model.PassSummary{}, fmt.Errorf("ticker %s missing from buy yield thresholds", ticker)
		}

		for idx, lot := range portfolio.Lots[ticker] {
			row := evaluateLot(ticker, idx+1, lot, quote, sellYieldThr, buyYieldThr, thresholds)
			rows = append(rows, row)
			summary.TotalCurValue = summary.TotalCurValue.Add(row.CurValue)

			switch row.Status {
			case model.StatusSell:
				summary.SellCount++
				sellRows = append(sellRows, row)
			case model.StatusBuy:
				summary.BuyCount++
				buyRows = append(buyRows, row)
			default:
				summary.HoldCount++
			}
		}
	}

	return rows, sellRows, buyRows, summary, nil
}

func evaluateLot(ticker string, lotIndex int, lot model.Lot, quote model.Quote, sellYieldThr, buyYieldThr decimal.Decimal, thr model.Thresholds) model.EvaluationRow {
	yield := quote.Price.Div(lot.BuyPrice).Sub(one)
	profit := quote.Price.Sub(lot.BuyPrice).Mul(lot.Shares)

	status := model.StatusHold
	switch {
	case yield.GreaterThan(sellYieldThr) && profit.GreaterThan(thr.SellProfit):
		status = model.StatusSell
	case yield.LessThan(buyYieldThr) && profit.LessThan(thr.BuyProfit):
		status = model.StatusBuy
	}

	return model.EvaluationRow{
		Ticker:    ticker,
		LotIndex:  lotIndex,
		BuyPrice:  lot.BuyPrice,
		Shares:    lot.Shares,
		CurPrice:  quote.Price,
		Yield:     yield,
		ProfitUSD: profit,
		BuyValue:  lot.BuyPrice.Mul(lot.Shares),
		CurValue:  quote.Price.Mul(lot.Shares),
		Status:    status,
	}
}
