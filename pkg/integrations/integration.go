package integrations

import (
	"go.uber.org/zap"

	"winenow.app/WineNowNote/pkg/integrations/winesearcher-web"
	"winenow.app/WineNowNote/pkg/model"
)

type Integration interface {
	FindWine(name string) ([]model.Wine, error)
}

func GetIntegration(name string, logger *zap.Logger) Integration {
	if name == winesearcherweb.IntegrationName {
		return winesearcherweb.NewWineSearcherWebIntegration(logger)
	}

	return nil
}
