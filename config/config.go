package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	API         API
	Finnhub     Finnhub
	Bark        Bark
	Telegram    Telegram
	GoogleDrive GoogleDrive
	Market      Market
	Monitor     Monitor
	Report      Report
}

type API struct {
	Debug   bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
}

type Finnhub struct {
	Url    string `env:"FINNHUB_API_URL" envDefault:"https://finnhub.io/api/v1"`
	ApiKey string `env:"FINNHUB_API_KEY"`
}

type Bark struct {
	// BaseUrl includes the device key as its last path segment; empty
	// disables push delivery entirely.
	BaseUrl   string        `env:"BARK_BASE_URL" envDefault:""`
	PushUrl   string        `env:"BARK_PUSH_URL" envDefault:"https://api.day.app/push"`
	Timeout   time.Duration `env:"BARK_TIMEOUT" envDefault:"5s"`
	CodeBlock bool          `env:"BARK_CODE_BLOCK" envDefault:"true"`
	Sound     string        `env:"BARK_SOUND" envDefault:""`
}

type Telegram struct {
	Token  string `env:"TELEGRAM_TOKEN" envDefault:""`
	ChatID int64  `env:"TELEGRAM_CHAT_ID" envDefault:"0"`
}

type GoogleDrive struct {
	CredentialsFile string `env:"GOOGLE_DRIVE_CREDENTIALS_FILE" envDefault:""`
}

type Market struct {
	Timezone     string        `env:"MARKET_TZ" envDefault:"America/New_York"`
	Open         string        `env:"MARKET_OPEN" envDefault:"09:30"`
	Close        string        `env:"MARKET_CLOSE" envDefault:"16:00"`
	SessionGrace time.Duration `env:"SESSION_END_GRACE" envDefault:"0s"`
}

type Monitor struct {
	HoldingsFile    string        `env:"HOLDINGS_FILE" envDefault:"holdings.json"`
	IntervalMinutes int           `env:"INTERVAL_MINUTES" envDefault:"3"`
	StalenessBound  time.Duration `env:"STALENESS_BOUND" envDefault:"600s"`
	OnlyPushOnSell  bool          `env:"ONLY_PUSH_ON_SELL" envDefault:"false"`
	LogToCSV        bool          `env:"LOG_TO_CSV" envDefault:"true"`
	CSVPath         string        `env:"CSV_PATH" envDefault:"holdings_monitor_log.csv"`
}

type Report struct {
	Dir string `env:"REPORT_DIR" envDefault:"."`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		log.Fatalf("FAIL: parse config error: %s", err)
	}

	return cfg
}
