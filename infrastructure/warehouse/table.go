package warehouse

import "fmt"

type TableName struct {
	Schema string
	Name   string
}

// NewTableName monta {schema}.{prefix}_{suffix}
func NewTableName(schema, prefix, suffix string) TableName {
	return TableName{
		Schema: schema,
		Name:   fmt.Sprintf("%s_%s", prefix, suffix),
	}
}

func (t TableName) String() string {
	return fmt.Sprintf("%s.%s", t.Schema, t.Name)
}
