package signalgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lantern-care/lantern/internal/domain/model"
)

// HTTPClient wraps the standard client with a per-run timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.client.Do(req)
}

func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// submitStreams posts every person's observations through the batch
// endpoint, one batch per person per day, using a worker pool.
func submitStreams(ctx context.Context, config *Config, persons []person, stats *Stats) error {
	log.Printf("submitting observations for %d persons with %d workers...", len(persons), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/v1/signals/batch"

	personChan := make(chan person, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range personChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				submitPerson(ctx, client, url, p, config, stats)
			}
		}()
	}

	go func() {
		defer close(personChan)
		for _, p := range persons {
			select {
			case personChan <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	return ctx.Err()
}

// submitPerson sends one person's stream in day-sized batches so baseline
// windows fill in order.
func submitPerson(ctx context.Context, client *HTTPClient, url string, p person, config *Config, stats *Stats) {
	perDay := len(p.stream) / config.Days
	for start := 0; start < len(p.stream); start += perDay {
		end := start + perDay
		if end > len(p.stream) {
			end = len(p.stream)
		}
		batch := p.stream[start:end]

		resp, err := client.Post(ctx, url, batch)
		atomic.AddInt64(&stats.Submitted, int64(len(batch)))
		if err != nil {
			atomic.AddInt64(&stats.Failed, int64(len(batch)))
			if config.Verbose {
				log.Printf("batch submit failed for %s: %v", p.id, err)
			}
			continue
		}

		var body struct {
			Accepted int `json:"accepted"`
			Rejected int `json:"rejected"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			atomic.AddInt64(&stats.Accepted, int64(body.Accepted))
			atomic.AddInt64(&stats.Rejected, int64(body.Rejected))
		}
		drainAndClose(resp)
	}
}

// fetchAssessment forces a recompute and returns the resulting assessment.
func fetchAssessment(ctx context.Context, client *HTTPClient, baseURL, personID string) (*model.Assessment, error) {
	resp, err := client.Post(ctx, fmt.Sprintf("%s/v1/assessments/%s", baseURL, personID), nil)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var a model.Assessment
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}
