//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/florelle/fleuriste/internal/bootstrap"
	"github.com/florelle/fleuriste/internal/domain/bouquet"
	"github.com/florelle/fleuriste/internal/infra/config"
	"github.com/florelle/fleuriste/internal/infra/llm/chatgpt"
	httpiface "github.com/florelle/fleuriste/internal/interface/http"
	"github.com/florelle/fleuriste/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideBouquetConfig,
		provideChatGPTClient,
		provideTopOccasions,
		providePostgresPool,
		provideCatalogRepository,
		provideBouquetRepository,
		provideTrendingStore,
		bouquet.NewService,
		wire.Bind(new(bouquet.ChatClient), new(*chatgpt.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
