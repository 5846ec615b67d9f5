package main

import (
	"os"

	"github.com/DRSN-tech/dropship-sync/internal/app"
	config "github.com/DRSN-tech/dropship-sync/internal/cfg"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
)

//	@title						dropship-sync API
//	@version					1.0
//	@description				Интеграция каталога маркетплейса с поставщиками дропшиппинга.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {
	if err := config.LoadEnvFile(); err != nil {
		os.Stderr.WriteString("failed to load .env: " + err.Error() + "\n")
		os.Exit(1)
	}

	logCfg := config.LoadLogCfg()
	log := logger.NewZapLogger(logCfg.Level, logCfg.Format)

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
