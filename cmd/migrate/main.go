package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"deliveryhub/cmd"
	"deliveryhub/internal/adapters/out/postgres"
	"deliveryhub/internal/adapters/out/postgres/migrations"
	"deliveryhub/internal/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	command := flag.String("cmd", "up", "migration command: up|down|status|version|redo|reset")
	flag.Parse()

	cfg, err := cmd.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})

	gormDB, err := postgres.Open(cfg.DB.DSN(), cfg.DB.Pool(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}
	defer sqlDB.Close()

	if err := migrations.Run(context.Background(), sqlDB, *command, flag.Args()...); err != nil {
		log.Error().Err(err).Str("cmd", *command).Msg("migration failed")
		os.Exit(1)
	}
	log.Info().Str("cmd", *command).Msg("migration finished")
}
