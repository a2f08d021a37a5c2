package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/retailmatch/backend/internal/domain"
	"github.com/retailmatch/backend/internal/infrastructure/cache"
	"github.com/retailmatch/backend/internal/infrastructure/export"
	"github.com/retailmatch/backend/internal/infrastructure/scraper"
	"github.com/retailmatch/backend/internal/logging"
	"github.com/retailmatch/backend/internal/usecase"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	fs.SetOutput(stderr)
	catalogPath := fs.String("catalog", "tshowlist.csv", "Path to the brand catalog CSV")
	rawURL := fs.String("url", "", "Retailer page URL")
	outPath := fs.String("out", "", "Write matches to this CSV file")
	engine := fs.String("engine", scraper.EngineHTTP, "Fetch engine: http or colly")
	timeout := fs.Duration("timeout", 15*time.Second, "Page fetch timeout")
	keepStopWords := fs.Bool("keep-stop-words", false, "Do not drop generic page words before matching")
	fold := fs.Bool("fold-diacritics", false, "Match accented names against plain ASCII text")
	verbose := fs.Bool("v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *rawURL == "" {
		fmt.Fprintln(stderr, "missing -url")
		fs.Usage()
		return 2
	}

	level := zerolog.WarnLevel.String()
	if *verbose {
		level = zerolog.DebugLevel.String()
	}
	logging.Setup(level, "console", stderr)

	fetcher, err := scraper.NewFetcher(*engine, scraper.Options{Timeout: *timeout})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	store := cache.NewMemoryCatalogStore(0)
	defer store.Close()

	svc := usecase.NewBrandMatchService(store, fetcher, usecase.BrandMatchServiceConfig{
		FilterStopWords:    !*keepStopWords,
		StopWords:          usecase.DefaultStopWords,
		FoldDiacritics:     *fold,
		EnableDebugLogging: *verbose,
	})

	catalog, err := svc.LoadDefaultCatalog(*catalogPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Loaded %d brands from %s\n", catalog.Len(), catalog.Source)

	report, err := svc.MatchURL(context.Background(), &domain.MatchRequest{URL: *rawURL})
	if err != nil {
		fmt.Fprintf(stderr, "Error fetching page: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Extracted %d text elements from %s\n", report.TextElements, report.URL)

	if !report.HasMatches() {
		fmt.Fprintln(stdout, "No matching brands found")
	} else {
		fmt.Fprintf(stdout, "Found %d matching brands\n\n", len(report.Matches))
		if err := export.WriteTable(stdout, report.Matches); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	if *outPath != "" {
		if err := writeExport(*outPath, report.Matches); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Wrote %s\n", *outPath)
	}

	return 0
}

func writeExport(path string, records []domain.BrandRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	if err := export.WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
