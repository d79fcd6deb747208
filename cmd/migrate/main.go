package main

import (
	"flag"
	"fmt"
	"os"

	"bouw-backoffice/pkg/config"
	"bouw-backoffice/pkg/database"
	"bouw-backoffice/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: migrate [up|status|down]")
	}
	flag.Parse()

	cmd := "up"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)
	defer log.Sync() //nolint:errcheck

	db, err := database.ConnectDB(cfg.DSN(), log, false)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}

	switch cmd {
	case "up":
		err = database.Migrate(db)
	case "status":
		err = database.MigrationStatus(db)
	case "down":
		err = database.Rollback(db)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal("migration command failed", zap.String("cmd", cmd), zap.Error(err))
	}
	log.Info("migration command finished", zap.String("cmd", cmd))
}
