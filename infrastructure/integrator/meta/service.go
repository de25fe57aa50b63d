package meta

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vfg2006/meta-ads-etl/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/meta-ads-etl/internal/config"
	"github.com/vfg2006/meta-ads-etl/internal/domain"
)

const (
	accountPrefix = "act_"
	insightsEdge  = "insights"
)

type Extractor struct {
	cfg    *config.Config
	Client metaclient.Client
}

func New(cfg *config.Config, client metaclient.Client) *Extractor {
	return &Extractor{
		cfg:    cfg,
		Client: client,
	}
}

// Extract busca todas as linhas da entidade, restritas aos campos registrados,
// e entrega cada uma para emit. Erros da API não são tratados aqui.
func (e *Extractor) Extract(ctx context.Context, entity domain.Entity, emit func(domain.Row) error) error {
	accountID, err := e.accountID()
	if err != nil {
		return err
	}

	switch entity {
	case domain.Account:
		return e.extractAccount(ctx, accountID, emit)
	case domain.Campaign, domain.AdSet, domain.Ad:
		return e.extractChildren(ctx, accountID, entity, emit)
	case domain.AdInsight:
		return e.extractInsights(ctx, accountID, emit)
	default:
		return fmt.Errorf("meta: entidade desconhecida %q", entity)
	}
}

func (e *Extractor) accountID() (string, error) {
	id, err := config.Require(config.AdAccountIDKey, e.cfg.Meta.AdAccountID)
	if err != nil {
		return "", err
	}
	return NormalizeAccountID(id), nil
}

// NormalizeAccountID garante o formato act_<id> exigido pelas arestas da conta
func NormalizeAccountID(id string) string {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, accountPrefix) {
		return id
	}
	return accountPrefix + id
}

func (e *Extractor) extractAccount(ctx context.Context, accountID string, emit func(domain.Row) error) error {
	row, err := e.Client.GetNode(ctx, accountID, domain.Account.Fields())
	if err != nil {
		return errors.Wrapf(err, "meta: erro ao buscar a conta %s", accountID)
	}
	return emit(row)
}

func (e *Extractor) extractChildren(ctx context.Context, accountID string, entity domain.Entity, emit func(domain.Row) error) error {
	listed, err := e.Client.ListEdge(ctx, accountID, entity.Edge(), []string{"id"})
	if err != nil {
		return errors.Wrapf(err, "meta: erro ao listar %s da conta %s", entity, accountID)
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"entity":     entity.String(),
		"total":      len(listed),
	}).Debug("meta: entidades listadas")

	fields := entity.Fields()
	for _, item := range listed {
		row, err := e.Client.GetNode(ctx, item.ID(), fields)
		if err != nil {
			return errors.Wrapf(err, "meta: erro ao buscar %s %s", entity, item.ID())
		}
		if err := emit(row); err != nil {
			return err
		}
	}

	return nil
}

func (e *Extractor) extractInsights(ctx context.Context, accountID string, emit func(domain.Row) error) error {
	ads, err := e.Client.ListEdge(ctx, accountID, domain.AdInsight.Edge(), []string{"id"})
	if err != nil {
		return errors.Wrapf(err, "meta: erro ao listar anúncios da conta %s", accountID)
	}

	fields := domain.AdInsight.Fields()
	total := 0
	for _, ad := range ads {
		rows, err := e.Client.ListEdge(ctx, ad.ID(), insightsEdge, fields)
		if err != nil {
			return errors.Wrapf(err, "meta: erro ao buscar insights do anúncio %s", ad.ID())
		}

		for _, row := range rows {
			if err := emit(row); err != nil {
				return err
			}
		}
		total += len(rows)
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"ads":        len(ads),
		"rows":       total,
	}).Debug("meta: insights extraídos")

	return nil
}
