package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/chrissnell/remotetide/internal/app"
	"github.com/chrissnell/remotetide/internal/log"
	"github.com/chrissnell/remotetide/internal/tide"
	"github.com/chrissnell/remotetide/pkg/config"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] input.xlsx|input.csv ...\n       %s -serve -archive runs.db\n\n", os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	cfgFile := flag.String("config", "", "Path to YAML configuration; built-in defaults are used when empty")
	output := flag.String("output", "", "Write the processed workbook to this path (default "+config.DefaultXLSXPath+")")
	csvOutput := flag.String("csv", "", "Also write the processed table as CSV to this path")
	archivePath := flag.String("archive", "", "Archive runs in this SQLite database")
	serve := flag.Bool("serve", false, "Serve archived runs over HTTP instead of processing inputs")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("remotetide %s\n", version)
		os.Exit(0)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfgData, err := loadConfig(*cfgFile)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	if *output != "" {
		cfgData.Output.XLSXPath = *output
	}
	if *csvOutput != "" {
		cfgData.Output.CSVPath = *csvOutput
	}
	if *archivePath != "" {
		cfgData.Archive.Path = *archivePath
	}

	application := app.New(cfgData, log.GetSugaredLogger())

	if *serve {
		if err := application.Serve(context.Background()); err != nil {
			log.Errorf("Application error: %v", err)
			os.Exit(1)
		}
		return
	}

	if flag.NArg() == 0 && cfgData.TimescaleDB == nil {
		flag.Usage()
		os.Exit(2)
	}

	report, err := application.Process(context.Background(), flag.Args())
	if err != nil {
		var empty *tide.EmptyInputError
		if errors.As(err, &empty) {
			log.Infof("no work: %v", err)
			fmt.Println("no valid data")
			os.Exit(0)
		}
		log.Errorf("Processing failed: %v", err)
		os.Exit(1)
	}

	for _, path := range report.Outputs {
		fmt.Printf("Processed data saved to %s\n", path)
	}
	if report.RunID != "" {
		fmt.Printf("Run archived as %s\n", report.RunID)
	}
}

func loadConfig(cfgFile string) (*config.ConfigData, error) {
	if cfgFile == "" {
		return config.ParseYAML(nil)
	}

	filename, _ := filepath.Abs(cfgFile)
	provider := config.NewYAMLProvider(filename)
	defer provider.Close()

	cfgData, err := provider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %w", err)
	}

	return cfgData, nil
}
