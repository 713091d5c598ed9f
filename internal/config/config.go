package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/viper"
)

const (
	// GatewayUrlKey is the base url of the payment gateway HTTP API
	GatewayUrlKey = "GATEWAY_URL"
	// DatadirKey is the local data directory to store the internal state of the tracker
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// SourceCurrencyKey is the fiat currency the customer amount is priced in
	SourceCurrencyKey = "SOURCE_CURRENCY"
	// PollIntervalKey is the interval in seconds between two status polls of a tracked payment
	PollIntervalKey = "POLL_INTERVAL"
	// TerminalDelayKey is the delay in seconds between a payment reaching a
	// terminal status and the terminal callback being fired
	TerminalDelayKey = "TERMINAL_DELAY"
	// WebhookEndpointsKey is the list of endpoints to be invoked when a payment reaches a terminal status
	WebhookEndpointsKey = "WEBHOOK_ENDPOINTS"
	// WebhookSecretKey is the secret used to sign webhook invocations
	WebhookSecretKey = "WEBHOOK_SECRET"
	// EnableProfilerKey enables profiler that can be used to investigate performance issues
	EnableProfilerKey = "ENABLE_PROFILER"
	// StatsIntervalKey defines interval for printing basic tracker statistics
	StatsIntervalKey = "STATS_INTERVAL"

	// DBBadger and DBInMemory are the supported database types
	DBBadger   = "badger"
	DBInMemory = "inmemory"

	DbLocation       = "db"
	ProfilerLocation = "stats"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("paytracker", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("PAYTRACKER")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, DBBadger)
	vip.SetDefault(SourceCurrencyKey, "usd")
	vip.SetDefault(PollIntervalKey, 10)
	vip.SetDefault(TerminalDelayKey, 5)
	vip.SetDefault(EnableProfilerKey, false)
	vip.SetDefault(StatsIntervalKey, 600)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetStringSlice(key string) []string {
	return vip.GetStringSlice(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	if !vip.IsSet(GatewayUrlKey) {
		return fmt.Errorf("missing gateway url")
	}
	if !validateUrl(GetString(GatewayUrlKey)) {
		return fmt.Errorf("gateway url must be a valid http(s) url")
	}

	dbType := GetString(DBTypeKey)
	if dbType != DBBadger && dbType != DBInMemory {
		return fmt.Errorf(
			"%s must be either %s or %s", DBTypeKey, DBBadger, DBInMemory,
		)
	}

	if GetInt(PollIntervalKey) <= 0 {
		return fmt.Errorf("%s must be a positive number of seconds", PollIntervalKey)
	}
	if GetInt(TerminalDelayKey) < 0 {
		return fmt.Errorf("%s must not be negative", TerminalDelayKey)
	}

	for _, endpoint := range GetStringSlice(WebhookEndpointsKey) {
		if !validateUrl(endpoint) {
			return fmt.Errorf("webhook endpoint %s is not a valid http(s) url", endpoint)
		}
	}

	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if err := makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation)); err != nil {
		return err
	}

	profilerEnabled := GetBool(EnableProfilerKey)
	if profilerEnabled {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, ProfilerLocation)); err != nil {
			return err
		}
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

func validateUrl(rawUrl string) bool {
	u, err := url.Parse(rawUrl)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && len(u.Host) > 0
}
