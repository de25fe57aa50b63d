package metaclient

//go:generate mockgen -source=client.go -destination=mocks/client.go -package=mocks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	metadomain "github.com/vfg2006/meta-ads-etl/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/meta-ads-etl/internal/config"
	"github.com/vfg2006/meta-ads-etl/internal/domain"
)

// Números ficam como json.Number para chegarem ao CSV sem conversão
var json = jsoniter.Config{
	EscapeHTML:             true,
	UseNumber:              true,
	ValidateJsonRawMessage: true,
}.Froze()

type Client interface {
	// GetNode busca um objeto da Graph API restrito aos campos informados
	GetNode(ctx context.Context, id string, fields []string) (domain.Row, error)
	// ListEdge busca todas as páginas de uma aresta (ex.: act_1/campaigns, 123/insights)
	ListEdge(ctx context.Context, parentID, edge string, fields []string) ([]domain.Row, error)
}

type MetaClient struct {
	Cfg        *config.Config
	httpClient *http.Client
}

func NewClient(cfg *config.Config) Client {
	// O token vai no header Authorization: Bearer
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.Meta.AccessToken,
		TokenType:   "Bearer",
	})

	httpClient := oauth2.NewClient(context.Background(), tokenSource)
	if cfg.Meta.RequestTimeoutSeconds > 0 {
		httpClient.Timeout = time.Duration(cfg.Meta.RequestTimeoutSeconds) * time.Second
	}

	return &MetaClient{
		Cfg:        cfg,
		httpClient: httpClient,
	}
}

func (c *MetaClient) endpoint(path string, params url.Values) string {
	endpoint := fmt.Sprintf("%s/%s", strings.TrimRight(c.Cfg.Meta.URL, "/"), strings.TrimLeft(path, "/"))
	if len(params) == 0 {
		return endpoint
	}
	return endpoint + "?" + params.Encode()
}

// get executa um GET e decodifica o corpo em out
func (c *MetaClient) get(ctx context.Context, rawURL string, out interface{}) error {
	if _, err := config.Require(config.AccessTokenKey, c.Cfg.Meta.AccessToken); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("erro ao criar a requisição: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("erro ao executar a requisição: %w", err)
	}
	defer resp.Body.Close()

	body, err := c.HandleResponse(resp)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		logrus.WithError(err).Error("Erro ao decodificar JSON")
		return fmt.Errorf("erro ao decodificar resposta da API: %w", err)
	}

	return nil
}

// HandleResponse lê o corpo e converte respostas não-200 em *metadomain.APIError
func (c *MetaClient) HandleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler resposta: %w", err)
	}

	if resp.StatusCode == http.StatusOK {
		return body, nil
	}

	apiErr := &metadomain.APIError{StatusCode: resp.StatusCode}
	if resp.Request != nil && resp.Request.URL != nil {
		apiErr.Path = resp.Request.URL.Path
	}

	var errorResponse metadomain.ErrorResponse
	if err := json.Unmarshal(body, &errorResponse); err == nil {
		apiErr.Details = errorResponse.Error
	} else {
		apiErr.Details.Message = strings.TrimSpace(string(body))
	}

	fields := logrus.Fields{
		"status_code": resp.StatusCode,
		"code":        apiErr.Details.Code,
		"fbtrace_id":  apiErr.Details.FBTraceID,
	}
	switch {
	case apiErr.IsTokenExpired():
		logrus.WithFields(fields).Error("Token da Meta expirado ou inválido")
	case apiErr.IsRateLimited():
		logrus.WithFields(fields).Error("Limite de chamadas da Meta atingido")
	default:
		logrus.WithFields(fields).Debug("Erro retornado pela API da Meta")
	}

	return nil, apiErr
}
