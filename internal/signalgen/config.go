// Package signalgen generates synthetic observation streams and drives
// them through a running service for smoke and load testing.
package signalgen

import "time"

// Config controls a generation run.
type Config struct {
	BaseURL string
	Persons int
	Days    int
	Workers int
	Timeout time.Duration
	Deviant float64 // fraction of persons that get a final-day anomaly
	Verbose bool
	LogFile string
}

// Stats accumulates run results.
type Stats struct {
	Generated   int64
	Submitted   int64
	Accepted    int64
	Rejected    int64
	Failed      int64
	Assessed    int64
	Escalations int64
	StartTime   time.Time
	EndTime     time.Time
}
