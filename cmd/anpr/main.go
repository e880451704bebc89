package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nvr-ai/go-anpr/benchmark"
	"github.com/nvr-ai/go-anpr/config"
	"github.com/nvr-ai/go-anpr/console"
	"github.com/nvr-ai/go-anpr/controller"
	"github.com/nvr-ai/go-anpr/detector"
	"github.com/nvr-ai/go-anpr/images"
	"github.com/nvr-ai/go-anpr/profiler"
	"github.com/nvr-ai/go-anpr/recognizer"
	"github.com/nvr-ai/go-anpr/registry"
	"github.com/nvr-ai/go-anpr/storage/postgres"
)

func main() {
	var (
		configPath   string
		imagePath    string
		scenarioPath string
		weather      string
		outputDir    string
		memory       bool
		stats        bool
		showWindow   bool
		profile      bool
	)
	flag.StringVar(&configPath, "config", "", "Path to YAML configuration file")
	flag.StringVar(&imagePath, "image", "", "Check a single image and exit (.jpg, .jpeg, .png, .bmp)")
	flag.StringVar(&scenarioPath, "evaluate", "", "Evaluate a labelled scenario YAML file")
	flag.StringVar(&weather, "weather", "", "Weather condition for -evaluate, or filter for -stats")
	flag.StringVar(&outputDir, "output-dir", "", "Output directory for result images and reports")
	flag.BoolVar(&memory, "memory", false, "Use an in-memory registry instead of PostgreSQL")
	flag.BoolVar(&stats, "stats", false, "Print aggregate benchmark statistics and exit")
	flag.BoolVar(&showWindow, "show-window", false, "Show result images in a window")
	flag.BoolVar(&profile, "profile", false, "Print per-stage timings on exit")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if showWindow {
		cfg.Output.ShowWindow = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if !memory {
		db, err = postgres.Open(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("database unavailable: %v", err)
		}
		defer db.Close()
		if err := postgres.Bootstrap(ctx, db); err != nil {
			log.Fatal(err)
		}
	}

	if stats {
		if db == nil {
			log.Fatal("-stats needs the database, drop -memory")
		}
		summaries, err := postgres.NewRunStore(db).Summary(ctx, weather)
		if err != nil {
			log.Fatal(err)
		}
		benchmark.PrintSummary(os.Stdout, summaries)
		return
	}

	rec, err := recognizer.NewFromConfig(ctx, cfg.Recognizer)
	if err != nil {
		log.Fatalf("failed to initialise OCR engine: %v", err)
	}
	defer rec.Close()

	prof := profiler.New()
	pipeline := detector.NewPipeline(cfg.Detector, rec, prof)
	if profile {
		defer prof.Report(os.Stdout)
	}

	if scenarioPath != "" {
		if err := evaluate(ctx, pipeline, db, scenarioPath, weather, string(cfg.Recognizer.Backend), cfg.Output.Dir); err != nil {
			log.Fatal(err)
		}
		return
	}

	var reg registry.Registry = registry.NewMemoryRegistry()
	if db != nil {
		reg = postgres.NewVehicleStore(db)
	}

	c := console.New(os.Stdin, os.Stdout)
	app := &console.App{
		Console:    c,
		Detector:   pipeline,
		Reconciler: controller.NewReconciler(reg, c),
		Registry:   reg,
		Display: console.FileDisplay{
			Dir:        cfg.Output.Dir,
			Format:     images.FormatPNG,
			ShowWindow: cfg.Output.ShowWindow,
		},
		DefaultImage: cfg.DefaultImage,
	}

	if imagePath != "" {
		if err := app.CheckImage(ctx, imagePath); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Fatal(err)
	}
}

func evaluate(ctx context.Context, det benchmark.Detector, db *sql.DB, path, weather, method, outputDir string) error {
	sc, err := benchmark.LoadScenario(path)
	if err != nil {
		return err
	}
	if weather != "" {
		sc.Weather = weather
	}

	metrics, err := benchmark.Evaluate(ctx, det, sc, method)
	if err != nil {
		return err
	}

	if db != nil {
		if err := benchmark.Record(ctx, postgres.NewRunStore(db), metrics); err != nil {
			return err
		}
	}

	resultsFile, err := benchmark.SaveResults(outputDir, metrics)
	if err != nil {
		return err
	}

	benchmark.PrintSummary(os.Stdout, benchmark.Summarize(metrics))
	fmt.Printf("Results saved to: %s\n", resultsFile)
	return nil
}
