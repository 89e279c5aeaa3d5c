package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/joripage/lob-engine/config"
	"github.com/joripage/lob-engine/pkg/migrate"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	configBytes, err := json.MarshalIndent(cfg, "", "   ")
	if err != nil {
		zap.S().Warnf("could not convert config to JSON: %v", err)
	} else {
		zap.S().Debugf("load config %s", string(configBytes))
	}

	if cfg.EventsDB == nil || cfg.EventsDB.MigrationSourceURL == "" {
		fmt.Println("events_db.migration_source_url not configured, nothing to migrate")
		return
	}

	if err := migrate.Up(cfg.EventsDB.MigrationSourceURL, cfg.EventsDB.DataSource); err != nil {
		fmt.Println("migration failed:", err)
		os.Exit(1)
	}
	fmt.Println("migration applied")
}
