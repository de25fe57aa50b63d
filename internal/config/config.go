package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// ErrMissingSetting indica que uma variável obrigatória não foi informada
var ErrMissingSetting = errors.New("missing required setting")

// Nomes das variáveis obrigatórias
const (
	AccessTokenKey     = "FB_ACCESS_TOKEN"
	AdAccountIDKey     = "FB_AD_ACCOUNT_ID"
	DatabaseNameKey    = "DATABASE_NAME"
	SchemaNameKey      = "SCHEMA_NAME"
	TableNamePrefixKey = "TABLE_NAME_PREFIX"
)

var requiredKeys = []string{
	AccessTokenKey,
	AdAccountIDKey,
	DatabaseNameKey,
	SchemaNameKey,
	TableNamePrefixKey,
}

type Config struct {
	App       App       `mapstructure:",squash"`
	Meta      Meta      `mapstructure:",squash"`
	Warehouse Warehouse `mapstructure:",squash"`
	Metrics   Metrics   `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
	TempDir  string `mapstructure:"temp_dir"`
}

type Meta struct {
	BaseURL               string `mapstructure:"meta_base_url"`
	Version               string `mapstructure:"meta_version"`
	URL                   string `mapstructure:"-"`
	AccessToken           string `mapstructure:"fb_access_token"`
	AdAccountID           string `mapstructure:"fb_ad_account_id"`
	PageLimit             int    `mapstructure:"meta_page_limit"`
	RequestTimeoutSeconds int    `mapstructure:"meta_request_timeout_seconds"`
}

type Warehouse struct {
	Driver          string `mapstructure:"warehouse_driver"`
	DatabaseName    string `mapstructure:"database_name"`
	SchemaName      string `mapstructure:"schema_name"`
	TableNamePrefix string `mapstructure:"table_name_prefix"`

	// Postgres
	Host     string `mapstructure:"database_host"`
	User     string `mapstructure:"database_user"`
	Password string `mapstructure:"database_password"`
	SSLMode  string `mapstructure:"database_sslmode"`

	// BigQuery
	BigQueryCredentialsFile string `mapstructure:"bigquery_credentials_file"`
	BigQueryLocation        string `mapstructure:"bigquery_location"`
	GCSStagingBucket        string `mapstructure:"gcs_staging_bucket"`

	// Snowflake
	SnowflakeAccount   string `mapstructure:"snowflake_account"`
	SnowflakeWarehouse string `mapstructure:"snowflake_warehouse"`
	SnowflakeRole      string `mapstructure:"snowflake_role"`
}

type Metrics struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TEMP_DIR", "")

	v.SetDefault("META_BASE_URL", "https://graph.facebook.com")
	v.SetDefault("META_VERSION", "v22.0")
	v.SetDefault("META_PAGE_LIMIT", 100)
	v.SetDefault("META_REQUEST_TIMEOUT_SECONDS", 60)

	v.SetDefault("WAREHOUSE_DRIVER", "postgres")
	v.SetDefault("DATABASE_HOST", "localhost:5432")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "")
	v.SetDefault("DATABASE_SSLMODE", "disable")

	v.SetDefault("BIGQUERY_CREDENTIALS_FILE", "")
	v.SetDefault("BIGQUERY_LOCATION", "")
	v.SetDefault("GCS_STAGING_BUCKET", "")

	v.SetDefault("SNOWFLAKE_ACCOUNT", "")
	v.SetDefault("SNOWFLAKE_WAREHOUSE", "")
	v.SetDefault("SNOWFLAKE_ROLE", "")

	v.SetDefault("PUSHGATEWAY_URL", "")
}

// NewConfig lê a configuração das variáveis de ambiente. Se envFile for
// informado ele é carregado antes; caso contrário procura um .env nas
// localizações conhecidas. As variáveis obrigatórias não são validadas aqui.
func NewConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("config: erro ao carregar %s: %w", envFile, err)
		}
	} else {
		loadEnvFile()
	}

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	// Sem default as obrigatórias precisam ser registradas para o Unmarshal
	for _, key := range requiredKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: erro ao registrar %s: %w", key, err)
		}
	}

	config := &Config{}
	err := v.Unmarshal(config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Meta.URL = fmt.Sprintf("%s/%s", strings.TrimRight(config.Meta.BaseURL, "/"), config.Meta.Version)
	config.Warehouse.Driver = strings.ToLower(strings.TrimSpace(config.Warehouse.Driver))

	return config, nil
}

// Require devolve o valor ou ErrMissingSetting com o nome da variável.
// Os componentes chamam no primeiro uso de cada valor obrigatório.
func Require(name, value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingSetting, name)
	}
	return value, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err != nil {
			continue
		}
		if err := godotenv.Load(location); err == nil {
			logrus.Debug("Arquivo .env carregado de:", location)
			return
		}
	}

	logrus.Debug("Nenhum arquivo .env encontrado, usando apenas variáveis de ambiente")
}
