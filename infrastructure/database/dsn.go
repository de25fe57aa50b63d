package database

import (
	"net/url"

	"github.com/snowflakedb/gosnowflake"

	"github.com/vfg2006/meta-ads-etl/internal/config"
)

// PostgresDSN monta a URL de conexão para o banco informado
func PostgresDSN(cfg config.Warehouse, database string) string {
	dsn := url.URL{
		Scheme: "postgres",
		Host:   cfg.Host,
		Path:   "/" + database,
	}

	if cfg.Password != "" {
		dsn.User = url.UserPassword(cfg.User, cfg.Password)
	} else if cfg.User != "" {
		dsn.User = url.User(cfg.User)
	}

	if cfg.SSLMode != "" {
		query := url.Values{}
		query.Set("sslmode", cfg.SSLMode)
		dsn.RawQuery = query.Encode()
	}

	return dsn.String()
}

// SnowflakeDSN monta o DSN do gosnowflake para banco e schema
func SnowflakeDSN(cfg config.Warehouse, database, schema string) (string, error) {
	if _, err := config.Require("SNOWFLAKE_ACCOUNT", cfg.SnowflakeAccount); err != nil {
		return "", err
	}

	return gosnowflake.DSN(&gosnowflake.Config{
		Account:   cfg.SnowflakeAccount,
		User:      cfg.User,
		Password:  cfg.Password,
		Database:  database,
		Schema:    schema,
		Warehouse: cfg.SnowflakeWarehouse,
		Role:      cfg.SnowflakeRole,
	})
}
