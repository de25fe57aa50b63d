package metaclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/meta-ads-etl/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/meta-ads-etl/internal/domain"
)

// ListEdge segue paging.next até a última página
func (c *MetaClient) ListEdge(ctx context.Context, parentID, edge string, fields []string) ([]domain.Row, error) {
	params := url.Values{}
	if len(fields) > 0 {
		params.Add("fields", strings.Join(fields, ","))
	}
	if c.Cfg.Meta.PageLimit > 0 {
		params.Add("limit", strconv.Itoa(c.Cfg.Meta.PageLimit))
	}

	next := c.endpoint(fmt.Sprintf("%s/%s", parentID, edge), params)
	rows := make([]domain.Row, 0)
	pages := 0

	for next != "" {
		var response metadomain.EdgeResponse
		if err := c.get(ctx, next, &response); err != nil {
			return nil, err
		}
		pages++

		for _, item := range response.Data {
			rows = append(rows, domain.Row(item))
		}

		next = ""
		if response.HasNext() {
			next = response.Paging.Next
		}
	}

	logrus.WithFields(logrus.Fields{
		"parent_id": parentID,
		"edge":      edge,
		"pages":     pages,
		"rows":      len(rows),
	}).Debug("meta: aresta listada")

	return rows, nil
}
