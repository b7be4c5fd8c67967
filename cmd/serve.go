package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"winenow.app/WineNowNote/configs"
	"winenow.app/WineNowNote/pkg/auth"
	"winenow.app/WineNowNote/pkg/integrations"
	"winenow.app/WineNowNote/pkg/repository"
	"winenow.app/WineNowNote/pkg/server"
	"winenow.app/WineNowNote/pkg/storage"
)

const timeout = 5 * time.Second

type ServeCmd struct {
	ConfigFile string `default:".WineNowNote.toml" help:"Path to config file" short:"c"`
}

func (s *ServeCmd) Run(_ *Context) error {
	logConfig := zap.NewProductionConfig()

	logger, _ := logConfig.Build()
	defer logger.Sync() //nolint:errcheck // we don't care about logger sync errors

	conf, err := configs.GetConfig(s.ConfigFile, logger)
	if err != nil {
		logger.Error("error loading config", zap.Error(err))

		return err
	}

	repo, err := repository.Open(conf, logger)
	if err != nil {
		logger.Error("error connecting to database", zap.Error(err))

		return err
	}
	defer repo.Close()

	store := storage.NewLocalStore(conf, logger)

	authManager := auth.NewAuthManager(conf, repo, logger)

	var integration integrations.Integration
	if len(conf.Integrations.Wine) > 0 {
		integration = integrations.GetIntegration(conf.Integrations.Wine[0], logger)
	}

	router := server.NewRouter(server.Servers{
		Auth:      server.NewAuthServer(repo, authManager, logger),
		Wines:     server.NewWineServer(repo, integration, logger),
		Notes:     server.NewNoteServer(repo, repo, repo, store, logger),
		Templates: server.NewTemplateServer(repo, logger),
		Dashboard: server.NewDashboardServer(repo, logger),
	}, authManager, conf.Storage.MediaDir)

	address := fmt.Sprintf(":%d", conf.Server.Port)

	corsHandler := configureCORS(router)
	serverHandler := h2c.NewHandler(corsHandler, &http2.Server{})

	svr := &http.Server{
		Addr:              address,
		ReadHeaderTimeout: timeout,
		Handler:           serverHandler,
	}

	err = svr.ListenAndServe()
	if err != nil {
		logger.Error("failed to start server", zap.Error(err))

		return err
	}

	return nil
}

func configureCORS(handler http.Handler) http.Handler {
	corsOpts := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD", "PATCH"},
		AllowedHeaders: []string{
			"accept",
			"accept-encoding",
			"accept-language",
			"authorization",
			"cache-control",
			"content-encoding",
			"content-length",
			"content-type",
			"date",
			"keep-alive",
			"origin",
			"referer",
			"user-agent",
		},
		MaxAge:             86400, // 24 hours
		OptionsPassthrough: false, // Handle OPTIONS requests in CORS middleware
	})

	return corsOpts.Handler(handler)
}
