package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ljwu/holdings-monitor/config"
	"github.com/ljwu/holdings-monitor/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/ljwu/holdings-monitor/internal/externalApi/finnhubApi"
	"github.com/ljwu/holdings-monitor/internal/market"
	"github.com/ljwu/holdings-monitor/internal/notifier/barkNotifier"
	"github.com/ljwu/holdings-monitor/internal/notifier/telegramNotifier"
	"github.com/ljwu/holdings-monitor/internal/recorder/csvRecorder"
	"github.com/ljwu/holdings-monitor/internal/reportGenerator/xslsxGenerator"
	"github.com/ljwu/holdings-monitor/internal/scheduler"
	"github.com/ljwu/holdings-monitor/internal/service/monitorService"
	"github.com/ljwu/holdings-monitor/internal/session"
)

func main() {
	once := flag.Bool("once", false, "run a single evaluation pass and exit")
	sessionMode := flag.Bool("session", false, "run one bounded intraday session (wait for open, probe, poll until close)")
	daemon := flag.Bool("daemon", false, "stay resident and start an intraday session every trading day at market open")
	report := flag.Bool("report", false, "render the monitor log into an xlsx day report and exit")
	flag.Parse()

	cfg := config.MustLoad()

	setupLogger(cfg)

	if cfg.Finnhub.ApiKey == "" {
		hardExit("FINNHUB_API_KEY is not set")
	}

	cal, err := market.NewCalendar(cfg.Market)
	if err != nil {
		hardExit(err.Error())
	}

	recorder := csvRecorder.New(cfg.Monitor.CSVPath)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if *report {
		runReport(ctx, cfg, recorder)
		return
	}

	portfolio, err := config.LoadPortfolio(cfg.Monitor.HoldingsFile)
	if err != nil {
		hardExit(err.Error())
	}

	provider := finnhubApi.New(cfg, portfolio.SymbolAliases, cal.Location())

	notifiers := []monitorService.Notifier{barkNotifier.New(cfg)}
	if cfg.Telegram.Token != "" {
		tg, err := telegramNotifier.New(cfg)
		if err != nil {
			hardExit(fmt.Sprintf("telegram notifier init failed: %s", err))
		}
		notifiers = append(notifiers, tg)
	}

	var passRecorder monitorService.Recorder
	if cfg.Monitor.LogToCSV {
		passRecorder = recorder
	}

	svc := monitorService.New(cfg, portfolio, cal, provider, passRecorder, notifiers...)
	sess := session.New(svc, cal, cfg.Monitor.IntervalMinutes)

	switch {
	case *once:
		svc.RunOnce(ctx)
	case *sessionMode:
		sess.Run(ctx)
	case *daemon:
		runDaemon(ctx, cfg, cal, sess)
	default:
		// legacy resident mode, kept for compatibility with old setups
		sess.RunForever(ctx)
	}
}

func runDaemon(ctx context.Context, cfg *config.Config, cal *market.Calendar, sess *session.Session) {
	openHour, openMin := cal.OpenClock()
	crontab := fmt.Sprintf("CRON_TZ=%s %d %d * * 1-5", cfg.Market.Timezone, openMin, openHour)

	sched := scheduler.New()
	sched.NewCrontabJob("intraday session", func(ctx context.Context) error {
		sess.Run(ctx)
		return nil
	}, crontab)
	sched.Start()
	defer sched.Stop()

	slog.Info("daemon started", slog.String("crontab", crontab))

	<-ctx.Done()
}

func runReport(ctx context.Context, cfg *config.Config, recorder *csvRecorder.CSVRecorder) {
	records, err := recorder.ReadAll()
	if err != nil {
		hardExit(err.Error())
	}

	fileBytes, ext, err := xslsxGenerator.New().Generate(ctx, records)
	if err != nil {
		hardExit(err.Error())
	}

	filename := "holdings_report_" + time.Now().Format("20060102") + ext
	path := filepath.Join(cfg.Report.Dir, filename)
	if err := os.WriteFile(path, fileBytes, 0o644); err != nil {
		hardExit(err.Error())
	}

	if cfg.GoogleDrive.CredentialsFile != "" {
		driveApi, err := googleDriveApi.New(ctx, cfg)
		if err != nil {
			hardExit(fmt.Sprintf("google drive init failed: %s", err))
		}
		link, err := driveApi.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
		if err != nil {
			hardExit(fmt.Sprintf("google drive upload failed: %s", err))
		}
		fmt.Println("OK", path, link)
		return
	}

	fmt.Println("OK", path)
}

func hardExit(msg string) {
	fmt.Printf("FAIL: %s\n", msg)
	os.Exit(1)
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
