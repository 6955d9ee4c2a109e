package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/balkashynov/punch/internal/clock"
	"github.com/balkashynov/punch/internal/config"
	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/logging"
)

// annotationNoStore marks commands that run without opening the store
const annotationNoStore = "punch/no-store"

// app is everything a command needs, built once per invocation
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	gdb    *gorm.DB
	store  *db.Store
	clock  clock.Clock
}

var current *app

// openApp loads configuration, builds the logger, opens the store and
// makes sure the schema and the seed administrator exist
func openApp(ctx context.Context) error {
	if current != nil {
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if debugLogging {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	gdb, err := db.Open(cfg.Database, cfg.Log.Level == "debug")
	if err != nil {
		return err
	}

	clk := clock.Real()
	store := db.NewStore(gdb,
		db.WithClock(clk),
		db.WithLogger(logger),
		db.WithBcryptCost(cfg.Security.BcryptCost),
	)

	seeded, err := store.Bootstrap(ctx, cfg.DefaultUser)
	if err != nil {
		_ = db.Close(gdb)
		return fmt.Errorf("failed to prepare database: %w", err)
	}
	if seeded {
		fmt.Printf("🔑 Created administrator '%s'. Change its password with 'punch admin users edit'.\n", cfg.DefaultUser.Username)
	}

	current = &app{
		cfg:    cfg,
		logger: logger,
		gdb:    gdb,
		store:  store,
		clock:  clk,
	}
	logger.Debug("store opened", zap.String("type", cfg.Database.Type))
	return nil
}

// closeApp releases the store; safe to call more than once
func closeApp() error {
	if current == nil {
		return nil
	}
	a := current
	current = nil

	_ = a.logger.Sync()
	return db.Close(a.gdb)
}
