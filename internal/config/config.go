// Package config handles the parsing and validation of application configuration
// from command-line arguments and environment variables.
package config

import (
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/wardstone/wardstone/internal/logger"
	"github.com/wardstone/wardstone/internal/vars"
)

// Config represents the complete application flags configuration.
type Config struct {
	// betteralign:ignore

	Server     Server        `group:"Server Options" env-namespace:"WARDSTONE"`
	Monitoring Monitoring    `group:"Monitoring Options" namespace:"monitor" env-namespace:"WARDSTONE_MONITOR"`
	A2S        A2S           `group:"A2S Options" namespace:"a2s" env-namespace:"WARDSTONE_A2S"`
	GeoIP      GeoIP         `group:"GeoIP Options" namespace:"geoip" env-namespace:"WARDSTONE_GEOIP"`
	RateLimit  RateLimit     `group:"Rate Limit Options" namespace:"rate-limit" env-namespace:"WARDSTONE_RATE_LIMIT"`
	Webhook    Webhook       `group:"Webhook Options" namespace:"webhook" env-namespace:"WARDSTONE_WEBHOOK"`
	Logger     logger.Config `group:"Logger Options" namespace:"log" env-namespace:"WARDSTONE_LOG"`

	Version bool `short:"v" long:"version" description:"Print version and build info"`
}

// Server holds web server configuration.
type Server struct {
	// betteralign:ignore

	Address     string `short:"l" long:"address" env:"LISTEN_ADDRESS" description:"Server listen address" default:":8080"`
	MaxBodySize int64  `long:"max-body-size" env:"MAX_BODY_SIZE" description:"Max body size for incoming requests" default:"65536"`
	TrustProxy  bool   `long:"trust-proxy" env:"TRUST_PROXY" description:"Trust X-Forwarded-For headers"`
}

// Monitoring holds the defaults and limits of the polling pipeline.
type Monitoring struct {
	// betteralign:ignore

	CheckTimeout time.Duration `long:"check-timeout" env:"CHECK_TIMEOUT" description:"Timeout for a single status check" default:"10s"`
	StatusAPIURL string        `long:"status-api-url" env:"STATUS_API_URL" description:"Base URL of the Minecraft status REST API" default:"https://api.mcsrvstat.us/3"`
	MinInterval  int           `long:"min-interval" env:"MIN_INTERVAL" description:"Lowest accepted poll interval in seconds" default:"10"`

	GenerateCount int `long:"gen-fake-data" hidden:"true"`
}

// A2S holds Source Query protocol configuration.
type A2S struct {
	// betteralign:ignore

	Timeout    time.Duration `long:"timeout" env:"TIMEOUT" description:"Query timeout" default:"3s"`
	BufferSize uint16        `long:"buffer-size" env:"BUFFER_SIZE" description:"Response body buffer size" default:"1400"`
}

// GeoIP holds MaxMind GeoIP configuration.
type GeoIP struct {
	// betteralign:ignore

	Path     string        `short:"g" long:"path" env:"PATH" description:"Path to MMDB file" default:"wardstone.mmdb"`
	URL      string        `long:"url" env:"URL" description:"URL to download MMDB" default:"https://git.io/GeoLite2-Country.mmdb"`
	Interval time.Duration `long:"interval" env:"INTERVAL" description:"Update interval check" default:"24h"`
	Disabled bool          `long:"disabled" env:"DISABLED" description:"Disable country detection entirely"`
}

// RateLimit holds API rate limiting configuration.
type RateLimit struct {
	// betteralign:ignore

	HardLimitCount int           `long:"hard-count" env:"HARD_COUNT" description:"Hard IP limit: requests count" default:"60"`
	HardLimitWin   time.Duration `long:"hard-window" env:"HARD_WINDOW" description:"Hard IP limit: window duration" default:"1m"`
}

// Webhook holds alert notification configuration.
type Webhook struct {
	// betteralign:ignore

	URL      string        `long:"url" env:"URL" description:"Webhook URL for alert notifications (disabled when empty)"`
	Template string        `long:"template" env:"TEMPLATE" description:"Optional JSON template for the webhook payload"`
	Cooldown time.Duration `long:"cooldown" env:"COOLDOWN" description:"Minimum delay between notifications for the same server and rule" default:"5m"`
}

// Parse reads the configuration from flags and environment variables.
// It terminates the application if the configuration is invalid or if the help flag is invoked.
func Parse() *Config {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.Default)
	parser.NamespaceDelimiter = "-"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}

	if cfg.Version {
		vars.Print()
		os.Exit(0)
	}

	return &cfg
}
