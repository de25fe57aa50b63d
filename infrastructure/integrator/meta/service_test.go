package meta

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	metadomain "github.com/vfg2006/meta-ads-etl/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/meta-ads-etl/infrastructure/integrator/meta/metaclient/mocks"
	"github.com/vfg2006/meta-ads-etl/internal/config"
	"github.com/vfg2006/meta-ads-etl/internal/domain"
)

func newExtractor(t *testing.T, accountID string) (*Extractor, *mocks.MockClient) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Meta.AdAccountID = accountID

	return New(cfg, client), client
}

func collect(rows *[]domain.Row) func(domain.Row) error {
	return func(row domain.Row) error {
		*rows = append(*rows, row)
		return nil
	}
}

func TestNormalizeAccountID(t *testing.T) {
	assert.Equal(t, "act_123", NormalizeAccountID("123"))
	assert.Equal(t, "act_123", NormalizeAccountID("act_123"))
	assert.Equal(t, "act_123", NormalizeAccountID(" 123 "))
}

func TestExtractor_Account(t *testing.T) {
	extractor, client := newExtractor(t, "123")

	client.EXPECT().
		GetNode(gomock.Any(), "act_123", domain.Account.Fields()).
		Return(domain.Row{"account_id": "123", "name": "Loja"}, nil).
		Times(1)

	var rows []domain.Row
	err := extractor.Extract(context.Background(), domain.Account, collect(&rows))
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "Loja", rows[0]["name"])
}

func TestExtractor_Children(t *testing.T) {
	tests := []struct {
		name   string
		entity domain.Entity
		edge   string
	}{
		{name: "campanhas", entity: domain.Campaign, edge: "campaigns"},
		{name: "conjuntos de anúncios", entity: domain.AdSet, edge: "adsets"},
		{name: "anúncios", entity: domain.Ad, edge: "ads"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor, client := newExtractor(t, "act_9")

			gomock.InOrder(
				client.EXPECT().
					ListEdge(gomock.Any(), "act_9", tt.edge, []string{"id"}).
					Return([]domain.Row{{"id": "1"}, {"id": "2"}}, nil),
				client.EXPECT().
					GetNode(gomock.Any(), "1", tt.entity.Fields()).
					Return(domain.Row{"id": "1", "name": "primeiro"}, nil),
				client.EXPECT().
					GetNode(gomock.Any(), "2", tt.entity.Fields()).
					Return(domain.Row{"id": "2", "name": "segundo"}, nil),
			)

			var rows []domain.Row
			err := extractor.Extract(context.Background(), tt.entity, collect(&rows))
			require.NoError(t, err)

			require.Len(t, rows, 2)
			assert.Equal(t, "primeiro", rows[0]["name"])
			assert.Equal(t, "segundo", rows[1]["name"])
		})
	}
}

func TestExtractor_NoCampaigns(t *testing.T) {
	extractor, client := newExtractor(t, "123")

	client.EXPECT().
		ListEdge(gomock.Any(), "act_123", "campaigns", []string{"id"}).
		Return([]domain.Row{}, nil)

	var rows []domain.Row
	err := extractor.Extract(context.Background(), domain.Campaign, collect(&rows))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestExtractor_Insights(t *testing.T) {
	extractor, client := newExtractor(t, "123")
	fields := domain.AdInsight.Fields()

	client.EXPECT().
		ListEdge(gomock.Any(), "act_123", "ads", []string{"id"}).
		Return([]domain.Row{{"id": "10"}, {"id": "11"}}, nil)
	client.EXPECT().
		ListEdge(gomock.Any(), "10", "insights", fields).
		Return([]domain.Row{
			{"ad_id": "10", "date_start": "2024-01-01"},
			{"ad_id": "10", "date_start": "2024-01-02"},
		}, nil)
	client.EXPECT().
		ListEdge(gomock.Any(), "11", "insights", fields).
		Return([]domain.Row{}, nil)

	var rows []domain.Row
	err := extractor.Extract(context.Background(), domain.AdInsight, collect(&rows))
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "2024-01-02", rows[1]["date_start"])
}

func TestExtractor_APIErrorPropagates(t *testing.T) {
	extractor, client := newExtractor(t, "123")

	apiErr := &metadomain.APIError{StatusCode: 400, Details: metadomain.ErrorDetails{Code: 190, Message: "token inválido"}}
	client.EXPECT().
		ListEdge(gomock.Any(), "act_123", "adsets", []string{"id"}).
		Return(nil, apiErr)

	err := extractor.Extract(context.Background(), domain.AdSet, func(domain.Row) error {
		t.Fatal("nenhuma linha deveria ser emitida")
		return nil
	})
	require.Error(t, err)

	var target *metadomain.APIError
	require.True(t, errors.As(err, &target))
	assert.True(t, target.IsTokenExpired())
}

func TestExtractor_EmitErrorStops(t *testing.T) {
	extractor, client := newExtractor(t, "123")
	stop := errors.New("disco cheio")

	client.EXPECT().
		ListEdge(gomock.Any(), "act_123", "ads", []string{"id"}).
		Return([]domain.Row{{"id": "1"}, {"id": "2"}}, nil)
	client.EXPECT().
		GetNode(gomock.Any(), "1", gomock.Any()).
		Return(domain.Row{"id": "1"}, nil)

	err := extractor.Extract(context.Background(), domain.Ad, func(domain.Row) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func TestExtractor_MissingAccountID(t *testing.T) {
	extractor, _ := newExtractor(t, "")

	err := extractor.Extract(context.Background(), domain.Account, collect(&[]domain.Row{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingSetting)
	assert.Contains(t, err.Error(), "FB_AD_ACCOUNT_ID")
}
