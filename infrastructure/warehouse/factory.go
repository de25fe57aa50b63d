package warehouse

import (
	"fmt"

	"github.com/vfg2006/meta-ads-etl/internal/config"
)

const (
	PostgresDriver  = "postgres"
	BigQueryDriver  = "bigquery"
	SnowflakeDriver = "snowflake"
)

// New escolhe o driver pelo WAREHOUSE_DRIVER. Nenhuma conexão é aberta aqui.
func New(cfg config.Warehouse) (Loader, error) {
	switch cfg.Driver {
	case "", PostgresDriver:
		return NewPostgresLoader(cfg), nil
	case BigQueryDriver:
		return NewBigQueryLoader(cfg), nil
	case SnowflakeDriver:
		return NewSnowflakeLoader(cfg), nil
	default:
		return nil, fmt.Errorf("warehouse: driver desconhecido %q", cfg.Driver)
	}
}
