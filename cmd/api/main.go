package main

import (
	"context"
	"log"

	"tseval/adapters/api"
	"tseval/adapters/apfd"
	"tseval/adapters/compare"
	"tseval/adapters/confusion"
	"tseval/adapters/excel"
	"tseval/adapters/postgres"
	"tseval/adapters/profiling"
	"tseval/adapters/trend"
	"tseval/app"
	"tseval/domain/core"
	"tseval/internal/config"
	"tseval/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	var history ports.MetricHistoryRepository
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatal("Failed to connect to database: ", err)
		}
		defer db.Close()
		history = postgres.NewHistoryRepository(db)
		log.Println("[Main] Metric history persistence enabled")
	} else {
		log.Println("[Main] No DATABASE_URL set, history stays in memory")
	}

	engine := apfd.NewEngine(
		apfd.WithBootstrapSamples(cfg.Evaluation.BootstrapSamples),
		apfd.WithConfidence(cfg.Evaluation.ConfidenceLevel),
	)
	comparator := compare.NewComparator(
		compare.WithAlpha(cfg.Evaluation.Alpha),
		compare.WithConfidenceLevel(cfg.Evaluation.ConfidenceLevel),
		compare.WithRetention(cfg.Evaluation.HistoryRetention),
	)
	analyzer := trend.NewAnalyzer(engine, trend.WithWindowSize(cfg.Evaluation.TrendWindow))
	profiler := profiling.NewProfiler(profiling.NewInMemoryProfileStore(cfg.Evaluation.HistoryRetention))

	service := app.NewEvaluationService(app.ServiceDeps{
		Engine:     engine,
		Estimator:  confusion.NewEstimator(),
		Comparator: comparator,
		Analyzer:   analyzer,
		Profiler:   profiler,
		History:    history,
		FNLeakage:  cfg.Evaluation.FNLeakageRate,
	})

	if cfg.Data.ExcelFile != "" {
		seedFromFile(service, cfg.Data.ExcelFile)
	}

	log.Fatal(api.NewApp(service).Start(cfg.Server.Port))
}

// seedFromFile evaluates a spreadsheet export as the first iteration so
// comparison history is warm before the driver connects. Ingestion
// failures are logged, not fatal.
func seedFromFile(service *app.EvaluationService, path string) {
	reader := excel.NewDataReader(path)

	executions, err := reader.ReadExecutions()
	if err != nil {
		log.Printf("[Main] Skipping seed file %s: %v", path, err)
		return
	}
	faults, err := reader.ReadFaults()
	if err != nil {
		log.Printf("[Main] Ignoring fault sheet in %s: %v", path, err)
	}

	result, err := service.EvaluateIteration(context.Background(), app.IterationRequest{
		SessionID:  core.SessionID("seed-" + core.NewID().String()),
		Technique:  "file-import",
		Iteration:  1,
		Executions: executions,
		Faults:     faults,
	})
	if err != nil {
		log.Printf("[Main] Failed to evaluate seed file %s: %v", path, err)
		return
	}
	log.Printf("[Main] Seeded history from %s: %d records, apfd=%.4f", path, len(executions), result.APFD.APFD)
}
