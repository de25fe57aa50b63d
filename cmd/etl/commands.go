package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vfg2006/meta-ads-etl/infrastructure/integrator/meta"
	"github.com/vfg2006/meta-ads-etl/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/meta-ads-etl/infrastructure/warehouse"
	"github.com/vfg2006/meta-ads-etl/internal/config"
	"github.com/vfg2006/meta-ads-etl/internal/domain"
	"github.com/vfg2006/meta-ads-etl/internal/metrics"
	"github.com/vfg2006/meta-ads-etl/internal/pipeline"
	"github.com/vfg2006/meta-ads-etl/pkg/log"
)

const pushTimeout = 10 * time.Second

type runOptions struct {
	envFile  string
	entities []string
}

func newRootCmd() *cobra.Command {
	opts := &runOptions{}

	root := &cobra.Command{
		Use:           "meta-ads-etl",
		Short:         "Extrai contas, campanhas, conjuntos, anúncios e insights do Meta Ads para o banco analítico",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	addRunFlags(root, opts)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Executa o job completo (padrão)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	addRunFlags(runCmd, opts)

	root.AddCommand(runCmd, newFieldsCmd())
	return root
}

func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().StringVar(&opts.envFile, "env-file", "", "arquivo .env carregado antes das variáveis de ambiente")
	cmd.Flags().StringSliceVar(&opts.entities, "entities", nil,
		"entidades a processar ("+strings.Join(entityNames(), ",")+"); padrão: todas")
}

func newFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields [entity]",
		Short: "Lista os campos registrados de cada entidade",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entities, err := domain.ParseEntities(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, entity := range entities {
				fmt.Fprintf(out, "%s (_%s):\n", entity, entity.TableSuffix())
				for _, field := range entity.Fields() {
					fmt.Fprintf(out, "  %s\n", field)
				}
			}
			return nil
		},
	}
}

func entityNames() []string {
	names := make([]string, 0, len(domain.Entities()))
	for _, entity := range domain.Entities() {
		names = append(names, entity.String())
	}
	return names
}

func run(parent context.Context, opts *runOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, correlationID := log.WithCorrelationID(ctx)
	logger := log.ForContext(ctx)

	log.Configure("")
	logger.Info("iniciando processo")

	entities, err := domain.ParseEntities(opts.entities)
	if err != nil {
		return err
	}

	cfg, err := config.NewConfig(opts.envFile)
	if err != nil {
		return err
	}
	log.Configure(cfg.App.LogLevel)
	logger.WithFields(log.Fields{
		"driver":   cfg.Warehouse.Driver,
		"entities": strings.Join(entityNamesOf(entities), ","),
	}).Info("variáveis de ambiente importadas")

	logger.Info("inicializando API do Meta Ads")
	extractor := meta.New(cfg, metaclient.NewClient(cfg))
	logger.WithField("api_url", cfg.Meta.URL).Info("API do Meta Ads inicializada")

	loader, err := warehouse.New(cfg.Warehouse)
	if err != nil {
		return err
	}
	defer func() {
		if err := loader.Close(); err != nil {
			logger.WithError(err).Warn("erro ao fechar conexão com o banco")
		}
	}()

	recorder := metrics.NewRecorder()
	runner := pipeline.New(cfg, extractor, loader, recorder)

	start := time.Now()
	runErr := runner.Run(ctx, entities)

	pushMetrics(cfg, recorder, logger)

	if runErr != nil {
		return runErr
	}

	logger.WithFields(log.Fields{
		"correlation_id": correlationID,
		"duration":       time.Since(start).String(),
	}).Info("processo finalizado")
	return nil
}

func entityNamesOf(entities []domain.Entity) []string {
	names := make([]string, len(entities))
	for i, entity := range entities {
		names[i] = entity.String()
	}
	return names
}

// pushMetrics envia as métricas mesmo quando a execução falhou
func pushMetrics(cfg *config.Config, recorder *metrics.Recorder, logger log.Logger) {
	if cfg.Metrics.PushgatewayURL == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()

	accountID := ""
	if cfg.Meta.AdAccountID != "" {
		accountID = meta.NormalizeAccountID(cfg.Meta.AdAccountID)
	}

	if err := recorder.Push(ctx, cfg.Metrics.PushgatewayURL, accountID); err != nil {
		logger.WithError(err).Warn("erro ao enviar métricas")
		return
	}
	logger.WithField("url", cfg.Metrics.PushgatewayURL).Debug("métricas enviadas")
}
