package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/tom5610/sagemaker-101-workshop/dataset"
	"github.com/tom5610/sagemaker-101-workshop/db"
)

func main() {
	url := flag.String("url", "", "dataset URL to download")
	input := flag.String("input", "", "local CSV to use instead of downloading")
	outDir := flag.String("out", "./data", "output directory for channel files")
	name := flag.String("name", "", "dataset name (defaults to the file name)")
	separator := flag.String("separator", ",", "CSV field separator")
	latin1 := flag.Bool("latin1", false, "decode the file as Latin-1")
	required := flag.String("required", "", "comma-separated columns that must not be missing")
	dedupe := flag.Bool("dedupe", true, "drop duplicate rows")
	testRatio := flag.Float64("test_ratio", 0.1, "validation split ratio")
	seed := flag.Int64("seed", 42, "split seed")
	dbPath := flag.String("db", "", "sqlite database to record the dataset in")
	flag.Parse()

	if *url == "" && *input == "" {
		log.Fatal("either -url or -input is required")
	}

	path := *input
	var result *dataset.DownloadResult
	if *url != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		dest := filepath.Join(*outDir, "raw", filepath.Base(*url))
		var err error
		result, err = dataset.Download(ctx, dataset.DownloadOptions{URL: *url, Dest: dest})
		if err != nil {
			log.Fatalf("failed to download dataset: %v", err)
		}
		path = result.Path
		log.Printf("downloaded %d bytes to %s", result.Bytes, result.Path)
	}

	table, err := dataset.ReadCSV(path, dataset.ReadOptions{
		Comma:  rune((*separator)[0]),
		Latin1: *latin1,
	})
	if err != nil {
		log.Fatalf("failed to read dataset: %v", err)
	}
	log.Printf("read %d rows, %d columns", table.Len(), len(table.Columns))

	cleaner := dataset.NewCleaner()
	if *required != "" {
		cleaner.AddRule(dataset.NewMissingValueRule(strings.Split(*required, ",")...))
	}
	if *dedupe {
		cleaner.AddRule(dataset.NewDuplicateRowRule())
	}
	cleaned, issues := cleaner.Clean(table)
	stats := cleaner.GetStats()
	log.Printf("cleaned: %d passed, %d rejected", stats.Passed, stats.Rejected)
	for _, issue := range issues {
		log.Printf("row %d: [%s] %s", issue.Row, issue.Rule, issue.Message)
	}

	trainTable, validation := dataset.SplitTable(cleaned, *testRatio, *seed)
	if err := dataset.WriteChannels(*outDir, trainTable, validation); err != nil {
		log.Fatalf("failed to write channels: %v", err)
	}
	log.Printf("wrote %d train rows, %d validation rows under %s",
		trainTable.Len(), validation.Len(), *outDir)

	if *dbPath != "" {
		if err := recordDataset(*dbPath, *name, *url, path, result, cleaned); err != nil {
			log.Printf("failed to record dataset: %v", err)
		}
	}

	fmt.Printf("channels ready under %s\n", *outDir)
}

func recordDataset(dbPath, name, url, path string, result *dataset.DownloadResult, t *dataset.Table) error {
	if err := db.InitDB(dbPath); err != nil {
		return err
	}
	defer db.Close()

	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	record := db.DatasetRecord{
		Name:      name,
		SourceURL: url,
		Rows:      t.Len(),
		Columns:   len(t.Columns),
	}
	if result != nil {
		record.SHA256 = result.SHA256
	}
	return db.SaveDataset(record)
}
