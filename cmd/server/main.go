package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"hacksim/internal/config"
	"hacksim/internal/domain"
	"hacksim/internal/engine"
	"hacksim/internal/httpapi"
	"hacksim/internal/llm"
	sqlitestore "hacksim/internal/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml")
	addrFlag := flag.String("addr", "", "http listen address override")
	dbPathFlag := flag.String("db", "", "sqlite database path override")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	addr := firstNonEmpty(*addrFlag, cfg.Server.Addr, ":8090")
	dbPath := firstNonEmpty(*dbPathFlag, cfg.Server.DBPath, "data/hacksim.db")
	dbPath = filepath.Clean(dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		log.Fatalf("create db directory: %v", err)
	}

	store, err := sqlitestore.Open(dbPath)
	if err != nil {
		log.Fatalf("open sqlite store: %v", err)
	}
	defer func() {
		_ = store.Close()
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("migrate sqlite: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	var responder llm.Responder
	if key := config.APIKey(); key != "" {
		client, err := llm.NewClient(llm.Config{
			Provider:    cfg.LLM.Provider,
			Model:       cfg.LLM.Model,
			APIKey:      key,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			CallCap:     cfg.LLM.CallCap,
		})
		if err != nil {
			log.Fatalf("init narration client: %v", err)
		}
		responder = client
	} else {
		logger.Info("no api key found, narration falls back to heuristics")
	}

	defaults := engine.Config{
		Runs:               cfg.Simulation.Runs,
		ConversationRounds: cfg.Simulation.ConversationRounds,
		MinTeamSize:        cfg.Simulation.MinTeamSize,
		MaxTeamSize:        cfg.Simulation.MaxTeamSize,
		PivotBaseChance:    cfg.Simulation.PivotBaseChance,
		ResearchTrigger:    cfg.Simulation.ResearchTrigger,
		Seed:               cfg.Simulation.Seed,
		Mode:               domain.FormationMode(cfg.Simulation.Mode),
	}

	srv := httpapi.NewServer(store, responder, defaults, logger)
	e := srv.Router()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	logger.Info("hacksim server started", zap.String("addr", addr), zap.String("db", dbPath))
	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("http server failed: %v", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
