package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	DatabaseDSN   string `env:"DATABASE_URI"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`

	// JWTSecret ключ проверки токенов, выданных сервисом авторизации.
	JWTSecret     string `env:"JWT_SECRET"`
	PaymentSecret string `env:"PAYMENT_SECRET"`

	SupplierURL      string        `env:"SUPPLIER_URL"`
	SupplierToken    string        `env:"SUPPLIER_TOKEN"`
	SupplierEncoding string        `env:"SUPPLIER_ENCODING" envDefault:"form"`
	SupplierTimeout  time.Duration `env:"SUPPLIER_TIMEOUT"  envDefault:"15s"`

	// RedisAddr если пуст, обработчик очереди работает без блокировки между репликами.
	RedisAddr string `env:"REDIS_ADDR"`

	CommissionRate      decimal.Decimal `env:"COMMISSION_RATE"      envDefault:"0.0002"`
	FulfillmentDelay    time.Duration   `env:"FULFILLMENT_DELAY"    envDefault:"2m"`
	FulfillmentInterval time.Duration   `env:"FULFILLMENT_INTERVAL" envDefault:"30s"`
	FulfillmentWorkers  uint            `env:"FULFILLMENT_WORKERS"  envDefault:"5"`
	FulfillmentBatch    uint            `env:"FULFILLMENT_BATCH"    envDefault:"50"`
	CancelWindow        time.Duration   `env:"CANCEL_WINDOW"        envDefault:"110s"`

	// ForwardingLease сколько заказ считается занятым отправкой. Должен быть больше SupplierTimeout.
	ForwardingLease time.Duration `env:"FORWARDING_LEASE" envDefault:"1m"`
}

// String скрывает секреты при выводе конфига в лог.
func (c Config) String() string {
	masked := c
	for _, secret := range []*string{&masked.DatabaseDSN, &masked.JWTSecret, &masked.PaymentSecret, &masked.SupplierToken} {
		if *secret != "" {
			*secret = "***"
		}
	}
	type plain Config
	return fmt.Sprintf("%+v", plain(masked))
}

func LoadConfig() (*Config, error) {
	return loadConfig(os.Args[1:])
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func loadConfig(args []string) (*Config, error) {
	var flagsConfig, envConfig Config

	if envParseErr := env.ParseWithOptions(&envConfig, env.Options{
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(decimal.Decimal{}): parseDecimal,
		},
	}); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	if flagsErr := loadFlags(&flagsConfig, args); flagsErr != nil {
		return nil, fmt.Errorf("parse flags: %s", flagsErr.Error())
	}

	conf := mergeConfig(&envConfig, &flagsConfig)
	if conf.DatabaseDSN == "" {
		return nil, errors.New("database DSN is not set")
	}
	if conf.JWTSecret == "" {
		return nil, errors.New("jwt secret is not set")
	}
	if conf.CommissionRate.IsNegative() || conf.CommissionRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, errors.New("commission rate must be in [0, 1)")
	}
	if conf.ForwardingLease <= conf.SupplierTimeout {
		return nil, fmt.Errorf("forwarding lease %s must exceed supplier timeout %s",
			conf.ForwardingLease, conf.SupplierTimeout)
	}
	return conf, nil
}

func parseDecimal(value string) (any, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("parse decimal %q: %w", value, err)
	}
	return d, nil
}

func loadFlags(flagConfig *Config, args []string) error {
	fs := flag.NewFlagSet("bundles", flag.ContinueOnError)
	fs.StringVar(&flagConfig.RunAddress, "a", "localhost:8080", "Run address in format host:port")
	fs.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	fs.StringVar(&flagConfig.MigrationsDir, "m", "internal/db/migrations", "Database migrations directory")
	fs.StringVar(&flagConfig.SupplierURL, "s", "", "Supplier API endpoint")
	fs.StringVar(&flagConfig.RedisAddr, "r", "", "Redis address for the fulfillment lock")

	return fs.Parse(args) //nolint:wrapcheck
}

// mergeConfig значения из окружения приоритетнее флагов.
func mergeConfig(envConfig, flagsConfig *Config) *Config {
	conf := *envConfig
	conf.RunAddress = defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress)
	conf.DatabaseDSN = defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN)
	conf.MigrationsDir = defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir)
	conf.SupplierURL = defaultIfBlank(envConfig.SupplierURL, flagsConfig.SupplierURL)
	conf.RedisAddr = defaultIfBlank(envConfig.RedisAddr, flagsConfig.RedisAddr)
	return &conf
}

func defaultIfBlank(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
