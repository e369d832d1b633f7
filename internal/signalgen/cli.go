package signalgen

import "os"

// ShowHelp prints usage information for the signal generator.
func ShowHelp() {
	os.Stdout.WriteString(`Lantern Signal Generator
========================

A concurrent tool that synthesizes per-person daily observation streams,
feeds them through the ingestion API, and forces a risk assessment for
each person at the end of the run.

Usage:
  go run cmd/signal-gen/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -persons int
        Number of persons to simulate (default 100)
  -days int
        Number of days of history per person (default 14)
  -workers int
        Number of concurrent submission workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -deviant float
        Fraction of persons given an anomalous final day (default 0.1)
  -log string
        Log file for run output (default: stderr)
  -verbose
        Log every assessment result
  -help
        Show this help

Examples:
  # Quick smoke run against a local service
  go run cmd/signal-gen/main.go -persons 10 -days 8

  # Larger run with a third of the population deviating
  go run cmd/signal-gen/main.go -persons 500 -deviant 0.33 -verbose
`)
}
