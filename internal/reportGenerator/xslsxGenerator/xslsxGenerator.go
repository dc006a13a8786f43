package xslsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ljwu/holdings-monitor/internal/model"
	"github.com/ljwu/holdings-monitor/internal/recorder/csvRecorder"
	"github.com/ljwu/holdings-monitor/utils"
	"github.com/xuri/excelize/v2"
)

// XSLSXGenerator renders the monitor log into an xlsx report, one sheet per
// trading day.
type XSLSXGenerator struct{}

func New() *XSLSXGenerator {
	return &XSLSXGenerator{}
}

func (g *XSLSXGenerator) Generate(ctx context.Context, records []csvRecorder.Record) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.Generate"

	if len(records) == 0 {
		return nil, "", errors.New("empty monitor log")
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("records", len(records)))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	for _, day := range groupByDay(records) {
		if err := g.fillSheet(f, day.date, day.records); err != nil {
			return nil, "", err
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

type dayGroup struct {
	date    string
	records []csvRecorder.Record
}

func groupByDay(records []csvRecorder.Record) []dayGroup {
	byDate := make(map[string][]csvRecorder.Record)
	for _, r := range records {
		date := r.Time.Format("2006-01-02")
		byDate[date] = append(byDate[date], r)
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	groups := make([]dayGroup, 0, len(dates))
	for _, date := range dates {
		groups = append(groups, dayGroup{date: date, records: byDate[date]})
	}
	return groups
}

func (g *XSLSXGenerator) fillSheet(f *excelize.File, date string, records []csvRecorder.Record) error {
	sheetName := date
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	if err := f.MergeCell(sheetName, "A1", "K1"); err != nil {
		return err
	}

	f.SetCellValue(sheetName, "A1", fmt.Sprintf("Holdings monitor %s", date))

	titleStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#cfe2f3"},
		},
	})
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheetName, "A1", "A1", titleStyle); err != nil {
		return fmt.Errorf("apply title style: %w", err)
	}

	headers := []string{"time", "ticker", "lot", "buy price", "shares", "cur price", "yield", "profit", "buy value", "cur value", "status"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellStr(sheetName, cell, h)
	}

	for i, r := range records {
		rowNum := i + 3
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), r.Time.Format("15:04:05"))
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", rowNum), r.Ticker)
		_ = f.SetCellInt(sheetName, fmt.Sprintf("C%d", rowNum), r.LotIndex)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowNum), r.BuyPrice.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowNum), r.Shares.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowNum), r.CurPrice.InexactFloat64())
		_ = f.SetCellStr(sheetName, fmt.Sprintf("G%d", rowNum), r.YieldPct)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", rowNum), r.ProfitUSD.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", rowNum), r.BuyValue.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("J%d", rowNum), r.CurValue.InexactFloat64())
		_ = f.SetCellStr(sheetName, fmt.Sprintf("K%d", rowNum), string(r.Status))
	}

	return g.fillFinalPass(f, sheetName, len(records)+4, records)
}

// fillFinalPass appends the status counts of the day's last pass.
func (g *XSLSXGenerator) fillFinalPass(f *excelize.File, sheetName string, rowNum int, records []csvRecorder.Record) error {
	lastTs := records[len(records)-1].Time
	counts := map[model.Status]int{}
	for _, r := range records {
		if r.Time.Equal(lastTs) {
			counts[r.Status]++
		}
	}

	if err := f.MergeCell(sheetName, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("D%d", rowNum)); err != nil {
		return err
	}

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowNum), "Final pass")

	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#d9ead3"},
		},
	})
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("A%d", rowNum), style); err != nil {
		return fmt.Errorf("apply final pass style: %w", err)
	}

	rowNum++
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), "time")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", rowNum), "hold")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("C%d", rowNum), "sell")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("D%d", rowNum), "buy")

	rowNum++
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), lastTs.Format("15:04:05"))
	_ = f.SetCellInt(sheetName, fmt.Sprintf("B%d", rowNum), counts[model.StatusHold])
	_ = f.SetCellInt(sheetName, fmt.Sprintf("C%d", rowNum), counts[model.StatusSell])
	_ = f.SetCellInt(sheetName, fmt.Sprintf("D%d", rowNum), counts[model.StatusBuy])

	return nil
}
