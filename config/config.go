package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "FINSEARCH"
	configFileEnvName = envPrefix + "_CONFIG_FILE"
	defaultConfigFile = "/config.yaml"
)

const (
	LogFormatJSON = "json"
	LogFormatText = "text"

	CacheBackendMemory = "memory"
	CacheBackendSQLite = "sqlite"
)

type httpServer struct {
	Addr              string        `mapstructure:"addr"`
	HandlerTimeout    time.Duration `mapstructure:"handler_timeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
}

type cache struct {
	Backend    string `mapstructure:"backend"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type remoteConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	PathTemplate string        `mapstructure:"path_template"`
	TTL          time.Duration `mapstructure:"ttl"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type searchAPI struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type export struct {
	Workers                int           `mapstructure:"workers"`
	AdvancedPricing        string        `mapstructure:"advanced_pricing"`
	CustomerGroups         []string      `mapstructure:"customer_groups"`
	CrossSellingCategories []string      `mapstructure:"cross_selling_categories"`
	ProductGroupsTTL       time.Duration `mapstructure:"product_groups_ttl"`
}

type brokerTLS struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

func (t brokerTLS) Enabled() bool {
	return t.CA != "" && t.Cert != "" && t.Key != ""
}

type broker struct {
	Enabled            bool      `mapstructure:"enabled"`
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	ExportItemsTopic   string    `mapstructure:"export_items_topic"`
	Partitions         int32     `mapstructure:"partitions"`
	ReplicationFactor  int16     `mapstructure:"replication_factor"`
	TLS                brokerTLS `mapstructure:"tls"`
}

type Config struct {
	LogLevel     slog.Level   `mapstructure:"log_level"`
	LogFormat    string       `mapstructure:"log_format"`
	SQLDB        string       `mapstructure:"sql_db"`
	HTTP         httpServer   `mapstructure:"http"`
	Cache        cache        `mapstructure:"cache"`
	RemoteConfig remoteConfig `mapstructure:"remote_config"`
	SearchAPI    searchAPI    `mapstructure:"search_api"`
	Export       export       `mapstructure:"export"`
	Broker       broker       `mapstructure:"broker"`
}

// Load reads the config file and applies FINSEARCH_ prefixed environment
// overrides, e.g. FINSEARCH_HTTP_ADDR for http.addr.
func Load() Config {
	cfg, err := load(viper.New(), getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

func load(v *viper.Viper, path string) (Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(decodeHook()))
	if err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", LogFormatJSON)
	v.SetDefault("sql_db", "")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.handler_timeout", "60s")
	v.SetDefault("http.read_header_timeout", "5s")
	v.SetDefault("http.idle_timeout", "30s")

	v.SetDefault("cache.backend", CacheBackendMemory)
	v.SetDefault("cache.sqlite_path", "finsearch-cache.db")

	v.SetDefault("remote_config.base_url", "https://cdn.findologic.com")
	v.SetDefault("remote_config.path_template", "/config/{shopkey}/config.json")
	v.SetDefault("remote_config.ttl", "1h")
	v.SetDefault("remote_config.timeout", "3s")

	v.SetDefault("search_api.base_url", "https://service.findologic.com/ps")
	v.SetDefault("search_api.timeout", "3s")

	v.SetDefault("export.workers", 1)
	v.SetDefault("export.advanced_pricing", "cheapest")
	v.SetDefault("export.customer_groups", []string{})
	v.SetDefault("export.cross_selling_categories", []string{})
	v.SetDefault("export.product_groups_ttl", "24h")

	v.SetDefault("broker.enabled", false)
	v.SetDefault("broker.seed_brokers", []string{})
	v.SetDefault("broker.schema_registry_urls", []string{})
	v.SetDefault("broker.export_items_topic", "export_items")
	v.SetDefault("broker.partitions", 3)
	v.SetDefault("broker.replication_factor", 1)
	v.SetDefault("broker.tls.ca", "")
	v.SetDefault("broker.tls.cert", "")
	v.SetDefault("broker.tls.key", "")
}

func (c Config) validate() error {
	switch c.LogFormat {
	case LogFormatJSON, LogFormatText:
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}

	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendSQLite:
	default:
		return fmt.Errorf("unknown cache.backend %q", c.Cache.Backend)
	}

	switch c.Export.AdvancedPricing {
	case "off", "unit", "cheapest":
	default:
		return fmt.Errorf("unknown export.advanced_pricing %q", c.Export.AdvancedPricing)
	}

	if c.SQLDB == "" {
		return fmt.Errorf("sql_db is required")
	}

	if c.Broker.Enabled && (len(c.Broker.SeedBrokers) == 0 || len(c.Broker.SchemaRegistryURLs) == 0) {
		return fmt.Errorf("broker.seed_brokers and broker.schema_registry_urls are required")
	}
	return nil
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", defaultConfigFile, "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	LogFormat=%q
	SQLDB=%q

	HTTP:
	Addr=%q
	HandlerTimeout=%s

	Cache:
	Backend=%q
	SQLitePath=%q

	RemoteConfig:
	BaseURL=%q
	TTL=%s

	SearchAPI:
	BaseURL=%q

	Export:
	Workers=%d
	AdvancedPricing=%q
	CustomerGroups=%q
	CrossSellingCategories=%q

	Broker:
	Enabled=%t
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	ExportItemsTopic=%q
	TLS=%t

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.LogFormat,
		maskDSN(c.SQLDB),
		c.HTTP.Addr,
		c.HTTP.HandlerTimeout,
		c.Cache.Backend,
		c.Cache.SQLitePath,
		c.RemoteConfig.BaseURL,
		c.RemoteConfig.TTL,
		c.SearchAPI.BaseURL,
		c.Export.Workers,
		c.Export.AdvancedPricing,
		c.Export.CustomerGroups,
		c.Export.CrossSellingCategories,
		c.Broker.Enabled,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.ExportItemsTopic,
		c.Broker.TLS.Enabled(),
	)
}

// maskDSN hides the password of a postgres URL.
func maskDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	userinfo, host, ok := strings.Cut(rest, "@")
	if !ok {
		return dsn
	}
	user, _, hasPassword := strings.Cut(userinfo, ":")
	if !hasPassword {
		return dsn
	}
	return scheme + "://" + user + ":***@" + host
}
