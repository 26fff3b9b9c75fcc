package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hacksim/internal/config"
	"hacksim/internal/domain"
	"hacksim/internal/engine"
	"hacksim/internal/export"
	"hacksim/internal/llm"
	"hacksim/internal/profile"
	"hacksim/internal/progress"
	sqlitestore "hacksim/internal/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml")
	profilesPath := flag.String("profiles", "", "path to a TOML profile roster (default: built-in roster)")
	runs := flag.Int("runs", 0, "number of runs override")
	rounds := flag.Int("rounds", 0, "conversation rounds override")
	seed := flag.Int64("seed", -1, "master seed override")
	teamSize := flag.String("team-size", "", "team size range override, e.g. 2-4")
	mode := flag.String("mode", "", "formation mode override: conversation or team")
	jsonOut := flag.String("json-out", "", "write the summary as JSON to this path")
	markdownOut := flag.String("markdown-out", "", "write the summary as Markdown to this path")
	dbPath := flag.String("db", "", "persist results to this sqlite database")
	noLLM := flag.Bool("no-llm", false, "skip the narration collaborator even if an API key is set")
	verbose := flag.Bool("verbose", false, "stream narration to stderr while running")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	simCfg := engine.Config{
		Runs:               cfg.Simulation.Runs,
		ConversationRounds: cfg.Simulation.ConversationRounds,
		MinTeamSize:        cfg.Simulation.MinTeamSize,
		MaxTeamSize:        cfg.Simulation.MaxTeamSize,
		PivotBaseChance:    cfg.Simulation.PivotBaseChance,
		ResearchTrigger:    cfg.Simulation.ResearchTrigger,
		Seed:               cfg.Simulation.Seed,
		Mode:               domain.FormationMode(cfg.Simulation.Mode),
	}
	if *runs > 0 {
		simCfg.Runs = *runs
	}
	if *rounds > 0 {
		simCfg.ConversationRounds = *rounds
	}
	if *seed >= 0 {
		simCfg.Seed = *seed
	}
	if *teamSize != "" {
		low, high, err := config.ParseTeamSize(*teamSize)
		if err != nil {
			log.Fatalf("parse team size: %v", err)
		}
		simCfg.MinTeamSize, simCfg.MaxTeamSize = low, high
	}
	if *mode != "" {
		simCfg.Mode = domain.FormationMode(*mode)
	}

	roster, err := profile.Load(*profilesPath)
	if err != nil {
		log.Fatalf("load profiles: %v", err)
	}

	var responder llm.Responder
	if !*noLLM {
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
		}
	}

	logger := zap.NewNop()
	if *verbose {
		dev, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("init logger: %v", err)
		}
		logger = dev
	}
	defer func() {
		_ = logger.Sync()
	}()

	sim, err := engine.New(roster, simCfg, responder, logger)
	if err != nil {
		log.Fatalf("configure simulation: %v", err)
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *verbose {
		bus := progress.New(128)
		events := bus.Subscribe("console")
		sim.SetProgressSink(bus.Publish)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for event := range events {
				log.Printf("run %d round %d: %s", event.RunIndex, event.Round, event.Message)
			}
		}()
		defer func() {
			bus.Unsubscribe("console")
			<-done
		}()
	}

	summary, err := sim.Run(ctx)
	if err != nil {
		log.Fatalf("run simulation: %v", err)
	}

	export.WriteText(os.Stdout, summary)

	if *jsonOut != "" {
		if err := export.WriteJSON(*jsonOut, summary); err != nil {
			log.Fatalf("write json export: %v", err)
		}
	}
	if *markdownOut != "" {
		if err := export.WriteMarkdown(*markdownOut, summary); err != nil {
			log.Fatalf("write markdown export: %v", err)
		}
	}

	if *dbPath != "" {
		if err := persist(ctx, *dbPath, simCfg, summary); err != nil {
			log.Fatalf("persist results: %v", err)
		}
	}
}

func persist(ctx context.Context, dbPath string, simCfg engine.Config, summary domain.SimulationSummary) error {
	if err := os.MkdirAll(filepath.Dir(filepath.Clean(dbPath)), 0o755); err != nil {
		return err
	}
	store, err := sqlitestore.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	rec := domain.SimulationRecord{
		ID:          uuid.NewString(),
		Seed:        simCfg.Seed,
		Mode:        string(simCfg.Mode),
		RunsPlanned: simCfg.Runs,
		CreatedAt:   time.Now().UTC(),
	}
	if rec.Mode == "" {
		rec.Mode = string(domain.ModeConversation)
	}
	for _, run := range summary.Runs {
		if run.Halted {
			rec.Halted = true
			rec.HaltReason = run.Reason
		}
	}
	return store.SaveSummary(ctx, rec, summary)
}
