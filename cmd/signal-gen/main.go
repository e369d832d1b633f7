package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/lantern-care/lantern/internal/signalgen"
)

// Default configuration constants.
const (
	defaultPersons    = 100
	defaultDays       = 14
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultDeviant    = 0.1
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		persons = flag.Int("persons", defaultPersons, "Number of persons to simulate")
		days    = flag.Int("days", defaultDays, "Number of days of history per person")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submission workers")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		deviant = flag.Float64("deviant", defaultDeviant, "Fraction of persons given an anomalous final day")
		logFile = flag.String("log", "", "Log file for run output (default: stderr)")
		verbose = flag.Bool("verbose", false, "Log every assessment result")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		signalgen.ShowHelp()
		return
	}

	if err := signalgen.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &signalgen.Config{
		BaseURL: *baseURL,
		Persons: *persons,
		Days:    *days,
		Workers: *workers,
		Timeout: *timeout,
		Deviant: *deviant,
		Verbose: *verbose,
		LogFile: *logFile,
	}

	if err := signalgen.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Run failed: " + err.Error() + "\n")
		return
	}
}
