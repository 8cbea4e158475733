// Command seed imports tests and articles from an .xlsx workbook into the
// configured database.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"ecoaware/backend/config"
	"ecoaware/backend/seed"
	"ecoaware/backend/utils"
)

func main() {
	file := flag.String("file", "", "path to the .xlsx workbook")
	startRow := flag.Int("start-row", 2, "first data row in every sheet")
	dryRun := flag.Bool("dry-run", false, "validate without writing")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: seed -file catalog.xlsx [-start-row 2] [-dry-run]")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	logger := utils.InitLogger(utils.LoggerConfig{Format: cfg.LogFormat, EnableColors: cfg.LogColors})

	db, err := utils.InitDB(cfg)
	if err != nil {
		logger.Fatalf("Error initializing database: %v", err)
	}

	importCfg := seed.DefaultImportConfig()
	importCfg.FilePath = *file
	importCfg.StartRow = *startRow
	importCfg.DryRun = *dryRun

	result, err := seed.ImportFile(db, importCfg)
	if err != nil {
		logger.Fatalf("Import failed: %v", err)
	}

	for _, e := range result.Errors {
		logger.Println("[WARN]", e)
	}
	logger.Printf("tests: %d created, %d updated; questions: %d; articles: %d created, %d updated; skipped rows: %d",
		result.TestsCreated, result.TestsUpdated, result.QuestionsCreated,
		result.ArticlesCreated, result.ArticlesUpdated, result.Skipped)
	if *dryRun {
		logger.Println("dry run, nothing written")
	}
}
