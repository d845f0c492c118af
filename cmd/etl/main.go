package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/txn-etl/internal/config"
	"github.com/dvloznov/txn-etl/internal/etl"
	"github.com/dvloznov/txn-etl/internal/logger"
	"github.com/dvloznov/txn-etl/internal/quotes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithLevel(cfg.LogLevel)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "process":
		runProcess(log)
	case "check":
		runCheck(log)
	case "quotes":
		runQuotes(log, cfg)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Transaction ETL CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  etl <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  process   Run the full pipeline over a CSV file")
	fmt.Println("  check     Load and validate a CSV file without transforming it")
	fmt.Println("  quotes    Fetch quotes from the external quote API")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'etl <command> -h' for more information on a command.")
}

func runProcess(log zerolog.Logger) {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	file := fs.String("file", "", "Path to the transaction CSV file")
	output := fs.String("output", "summary", "Output format: summary or json")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().Str("path", *file).Msg("Starting pipeline run")

	records, summary, err := etl.Run(ctx, *file)
	if err != nil {
		if etl.IsStructuralError(err) {
			log.Fatal().Err(err).Msg("File rejected: structural defect")
		}
		log.Fatal().Err(err).Msg("Pipeline run failed")
	}

	switch *output {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]interface{}{
			"records": records,
			"summary": summary,
		}); err != nil {
			log.Fatal().Err(err).Msg("Failed to encode output")
		}
	case "summary":
		printSummary(summary)
	default:
		log.Fatal().Str("output", *output).Msg("Unknown output format")
	}
}

func runCheck(log zerolog.Logger) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	file := fs.String("file", "", "Path to the transaction CSV file")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	// Load and validate only; skip cleaning and transformation.
	state := &etl.State{Path: *file}
	p := etl.NewPipeline(&etl.LoadStep{}, &etl.ValidateStep{})
	if err := p.Execute(ctx, state); err != nil {
		if etl.IsStructuralError(err) {
			log.Fatal().Err(err).Msg("File rejected: structural defect")
		}
		log.Fatal().Err(err).Msg("Check failed")
	}

	printSummary(state.Summary)

	for i, rec := range state.Records {
		if rec.Validation == nil || rec.Validation.Valid {
			continue
		}
		fmt.Printf("row %d (%s): %s\n",
			i+1,
			rec.StringField("transaction_id"),
			strings.Join(rec.Validation.Errors, "; "),
		)
	}
}

func runQuotes(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("quotes", flag.ExitOnError)
	count := fs.Int("count", 1, "Number of quotes to fetch")
	fs.Parse(os.Args[2:])

	if *count < 1 {
		log.Fatal().Msg("Error: --count must be positive")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	client := quotes.NewClient(quotes.ClientOptions{
		BaseURL:        cfg.QuoteAPIURL,
		Timeout:        cfg.QuoteTimeout,
		MaxAttempts:    cfg.QuoteMaxAttempts,
		RetryDelay:     cfg.QuoteRetryDelay,
		RequestsPerSec: cfg.QuoteRequestsPerSec,
	})

	symbols := make([]string, *count)
	for i := range symbols {
		symbols[i] = fmt.Sprintf("%d", i)
	}

	fetched := client.FetchQuotes(ctx, symbols)
	if len(fetched) == 0 {
		log.Fatal().Msg("No quotes could be fetched")
	}

	for _, q := range fetched {
		fmt.Printf("%q\n    - %s\n", q.Quote, q.Author)
	}
}

func printSummary(s etl.Summary) {
	fmt.Println("\n=== Run Summary ===")
	fmt.Printf("Rows loaded:    %d\n", s.RowsLoaded)
	fmt.Printf("Valid rows:     %d\n", s.ValidRows)
	fmt.Printf("Invalid rows:   %d\n", s.InvalidRows)
	fmt.Printf("Anomalous rows: %d\n", s.AnomalousRows)
	fmt.Println()
}
