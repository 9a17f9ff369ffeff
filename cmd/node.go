package main

import (
	"context"
	"fmt"

	"MediLedger/config"
	"MediLedger/contract"
	"MediLedger/database"
	"MediLedger/routes"
	"MediLedger/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newNodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "node",
		Short: "Serve the ledger node the portal writes to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig((*config.AppConfig).RequireNode)
			if err != nil {
				return err
			}
			return runNode(cmd.Context(), cfg)
		},
	}
}

func runNode(ctx context.Context, cfg *config.AppConfig) error {
	logger, err := utils.NewLogger(cfg.Env)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	db, err := database.InitDB(ctx, cfg.DBURL, cfg.Env, logger, contract.Tables()...)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	node := contract.NewNode(db, contract.FeeSchedule{
		MinGasPriceGwei:       cfg.MinGasPriceGwei,
		SuggestedGasPriceGwei: cfg.SuggestedGasPriceGwei,
	}, utils.SystemClock{}, logger)
	defer node.Close()

	logger.Info("ledger node configured",
		zap.Uint64("min_gas_price_gwei", cfg.MinGasPriceGwei),
		zap.Uint64("suggested_gas_price_gwei", cfg.SuggestedGasPriceGwei))
	return serve(cfg.NodeAddr, routes.SetupNodeRoutes(cfg, node, logger), logger)
}
