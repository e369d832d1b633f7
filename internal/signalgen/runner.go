package signalgen

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

// Run executes a full generation pass: health check, submit streams,
// force assessments, and report. Deviant persons are expected to land on
// elevated levels; the run fails only on transport-level problems.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	persons := generatePersons(config, stats)
	log.Printf("generated %d observations for %d persons over %d days",
		stats.Generated, config.Persons, config.Days)

	if err := submitStreams(ctx, config, persons, stats); err != nil {
		return fmt.Errorf("submission aborted: %w", err)
	}

	client := newHTTPClient(config.Timeout)
	for _, p := range persons {
		a, err := fetchAssessment(ctx, client, config.BaseURL, p.id)
		if err != nil {
			log.Printf("assessment failed for %s: %v", p.id, err)
			continue
		}
		stats.Assessed++
		if a.Escalated {
			stats.Escalations++
		}
		if config.Verbose {
			log.Printf("person %s: level=%s final=%.1f deviant=%v",
				p.id, a.Level, a.FinalScore, p.deviant)
		}
	}

	stats.EndTime = time.Now()
	displayFinalStats(config, stats)
	return nil
}

// checkServiceHealth probes /healthz before generating anything.
func checkServiceHealth(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return err
	}
	defer drainAndClose(resp)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status %d", resp.StatusCode)
	}
	return nil
}

func displayFinalStats(config *Config, stats *Stats) {
	elapsed := stats.EndTime.Sub(stats.StartTime)
	log.Printf("run finished in %s", elapsed.Round(time.Millisecond))
	log.Printf("  submitted: %d (accepted: %d, rejected: %d, failed: %d)",
		stats.Submitted, stats.Accepted, stats.Rejected, stats.Failed)
	log.Printf("  assessed:  %d persons, %d escalations", stats.Assessed, stats.Escalations)
	if stats.Submitted > 0 && elapsed > 0 {
		rate := float64(stats.Submitted) / elapsed.Seconds()
		log.Printf("  throughput: %.0f observations/sec", rate)
	}
}

// SetupLogging redirects the standard logger to a file when requested.
func SetupLogging(logFile string) error {
	if logFile == "" {
		return nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	log.SetOutput(f)
	return nil
}
