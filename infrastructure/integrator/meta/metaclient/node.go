package metaclient

import (
	"context"
	"net/url"
	"strings"

	"github.com/vfg2006/meta-ads-etl/internal/domain"
)

func (c *MetaClient) GetNode(ctx context.Context, id string, fields []string) (domain.Row, error) {
	params := url.Values{}
	if len(fields) > 0 {
		params.Add("fields", strings.Join(fields, ","))
	}

	var response map[string]interface{}
	if err := c.get(ctx, c.endpoint(id, params), &response); err != nil {
		return nil, err
	}

	return domain.Row(response), nil
}
