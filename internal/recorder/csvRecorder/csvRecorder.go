package csvRecorder

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ljwu/holdings-monitor/internal/model"
	"github.com/shopspring/decimal"
)

var header = []string{
	"time", "ticker", "lot", "buy_price", "shares", "cur_price",
	"yield_pct", "profit_usd", "buy_value", "cur_value", "status",
}

const timeLayout = "2006-01-02 15:04:05"

// CSVRecorder appends one row per lot per pass to a durable delimited file.
// The header is written only when the file is first created; existing
// content is never rewritten.
type CSVRecorder struct {
	path string
}

func New(path string) *CSVRecorder {
	return &CSVRecorder{path: path}
}

func (r *CSVRecorder) Path() string { return r.path }

func (r *CSVRecorder) Append(ts time.Time, rows []model.EvaluationRow) error {
	_, statErr := os.Stat(r.path)
	needHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open monitor log %s: %w", r.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if needHeader {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write monitor log header: %w", err)
		}
	}

	tsStr := ts.Format(timeLayout)
	for _, row := range rows {
		record := []string{
			tsStr,
			row.Ticker,
			strconv.Itoa(row.LotIndex),
			row.BuyPrice.StringFixed(6),
			row.Shares.StringFixed(6),
			row.CurPrice.StringFixed(6),
			row.Yield.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%",
			row.ProfitUSD.StringFixed(6),
			row.BuyValue.StringFixed(6),
			row.CurValue.StringFixed(6),
			string(row.Status),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write monitor log row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush monitor log: %w", err)
	}

	return nil
}

// Record is one logged lot evaluation read back from the file.
type Record struct {
	Time      time.Time
	Ticker    string
	LotIndex  int
	BuyPrice  decimal.Decimal
	Shares    decimal.Decimal
	CurPrice  decimal.Decimal
	YieldPct  string
	ProfitUSD decimal.Decimal
	BuyValue  decimal.Decimal
	CurValue  decimal.Decimal
	Status    model.Status
}

// ReadAll parses the whole log back, skipping the header row. Used by the
// day-report generator.
func (r *CSVRecorder) ReadAll() ([]Record, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open monitor log %s: %w", r.path, err)
	}
	defer f.Close()

	lines, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read monitor log %s: %w", r.path, err)
	}

	records := make([]Record, 0, len(lines))
	for i, line := range lines {
		if i == 0 {
			continue // header
		}
		if len(line) != len(header) {
			return nil, fmt.Errorf("monitor log line %d: expected %d columns, got %d", i+1, len(header), len(line))
		}

		rec, err := parseRecord(line)
		if err != nil {
			return nil, fmt.Errorf("monitor log line %d: %w", i+1, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseRecord(line []string) (Record, error) {
	ts, err := time.Parse(timeLayout, line[0])
	if err != nil {
		return Record{}, err
	}

	lot, err := strconv.Atoi(line[2])
	if err != nil {
		return Record{}, err
	}

	decimals := make([]decimal.Decimal, 0, 5)
	for _, idx := range []int{3, 4, 5, 7, 8} {
		d, err := decimal.NewFromString(line[idx])
		if err != nil {
			return Record{}, err
		}
		decimals = append(decimals, d)
	}

	curValue, err := decimal.NewFromString(line[9])
	if err != nil {
		return Record{}, err
	}

	return Record{
		Time:      ts,
		Ticker:    line[1],
		LotIndex:  lot,
		BuyPrice:  decimals[0],
		Shares:    decimals[1],
		CurPrice:  decimals[2],
		YieldPct:  line[6],
		ProfitUSD: decimals[3],
		BuyValue:  decimals[4],
		CurValue:  curValue,
		Status:    model.Status(line[10]),
	}, nil
}
