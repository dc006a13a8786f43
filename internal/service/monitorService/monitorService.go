package monitorService

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/ljwu/holdings-monitor/config"
	"github.com/ljwu/holdings-monitor/internal/market"
	"github.com/ljwu/holdings-monitor/internal/model"
	"github.com/ljwu/holdings-monitor/internal/notifier"
	"github.com/ljwu/holdings-monitor/utils"
)

type QuoteProvider interface {
	GetQuotes(ctx context.Context, tickers []string) (map[string]model.Quote, error)
}

type Notifier interface {
	Name() string
	Enabled() bool
	Deliver(ctx context.Context, title, body string) bool
}

type Recorder interface {
	Append(ts time.Time, rows []model.EvaluationRow) error
}

// MonitorService runs one complete pass: fetch quotes, evaluate every lot,
// append to the monitor log, and push a notification when the configured
// policy asks for one. Exactly one outcome line per pass is written to out.
type MonitorService struct {
	portfolio      model.Portfolio
	cal            *market.Calendar
	provider       QuoteProvider
	notifiers      []Notifier
	recorder       Recorder
	onlyPushOnSell bool
	codeBlock      bool

	out io.Writer
	now func() time.Time
}

func New(cfg *config.Config, portfolio model.Portfolio, cal *market.Calendar, provider QuoteProvider, recorder Recorder, notifiers ...Notifier) *MonitorService {
	return &MonitorService{
		portfolio:      portfolio,
		cal:            cal,
		provider:       provider,
		notifiers:      notifiers,
		recorder:       recorder,
		onlyPushOnSell: cfg.Monitor.OnlyPushOnSell,
		codeBlock:      cfg.Bark.CodeBlock,
		out:            os.Stdout,
		now:            time.Now,
	}
}

// Probe performs one provider fetch with no evaluation. A failing probe at
// session start means the market is likely closed for a holiday.
func (s *MonitorService) Probe(ctx context.Context) error {
	ctx = utils.CreateCtxWithRqID(ctx)
	_, err := s.provider.GetQuotes(ctx, s.portfolio.Tickers)
	return err
}

// RunOnce executes a single pass. All failures are absorbed here: the
// outcome line reports them and the caller's loop continues.
func (s *MonitorService) RunOnce(ctx context.Context) {
	ctx = utils.CreateCtxWithRqID(ctx)
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MonitorService.RunOnce"

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic recovered in pass",
				slog.String("rqID", rqID),
				slog.String("op", op),
				slog.Any("panic", r),
				slog.String("stacktrace", string(debug.Stack())),
			)
			fmt.Fprintf(s.out, "FAIL: panic: %v\n", r)
		}
	}()

	now := s.now().In(s.cal.Location())

	if !s.cal.IsOpen(now) {
		slog.Debug("market closed, nothing to do", slog.String("rqID", rqID), slog.String("op", op))
		fmt.Fprintln(s.out, "OK")
		return
	}

	quotes, err := s.provider.GetQuotes(ctx, s.portfolio.Tickers)
	if err != nil {
		fmt.Fprintf(s.out, "FAIL: %s\n", err)
		return
	}

	rows, sellRows, buyRows, summary, err := Evaluate(s.portfolio, quotes)
	if err != nil {
		slog.Error("evaluation failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		fmt.Fprintf(s.out, "FAIL: %s\n", err)
		return
	}

	if s.recorder != nil {
		// log write failure is non-fatal: notification still goes out
		if err := s.recorder.Append(now, rows); err != nil {
			slog.Warn("monitor log append failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}

	needPush := len(sellRows) > 0
	if !s.onlyPushOnSell {
		needPush = needPush || len(buyRows) > 0
	}

	if needPush {
		title, body := notifier.Compose(now, rows, summary, s.portfolio.DisplayRank, s.codeBlock)
		if !s.deliver(ctx, title, body) {
			fmt.Fprintln(s.out, "FAIL: push delivery failed")
			return
		}
	}

	fmt.Fprintf(s.out, "OK %s (hold %d, sell %d, buy %d, %d lots)\n",
		now.Format("2006-01-02 15:04:05 MST"),
		summary.HoldCount, summary.SellCount, summary.BuyCount, summary.LotCount())
}

func (s *MonitorService) deliver(ctx context.Context, title, body string) bool {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MonitorService.deliver"

	delivered := true
	for _, n := range s.notifiers {
		if !n.Enabled() {
			continue
		}
		if !n.Deliver(ctx, title, body) {
			slog.Error("notifier failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("notifier", n.Name()))
			delivered = false
		}
	}
	return delivered
}
