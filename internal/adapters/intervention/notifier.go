package intervention

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lantern-care/lantern/pkg/logger"
)

const defaultHTTPTimeout = 10 * time.Second

// HTTPNotifier posts notices as JSON to the external check-in agent.
type HTTPNotifier struct {
	url    string
	client *http.Client
}

// NewHTTPNotifier creates a notifier targeting the given endpoint.
func NewHTTPNotifier(url string) *HTTPNotifier {
	return &HTTPNotifier{
		url:    url,
		client: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// Notify delivers the notice. Non-2xx responses are errors so that the
// dispatcher's retry policy applies.
func (h *HTTPNotifier) Notify(ctx context.Context, n Notice) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("post notice: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("agent returned status %d", resp.StatusCode)
	}
	return nil
}

// LogNotifier writes notices to the service log. Used when no agent
// endpoint is configured.
type LogNotifier struct {
	logger logger.Logger
}

// NewLogNotifier creates a notifier that only logs.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: logger.Get().Named("notifier")}
}

func (l *LogNotifier) Notify(ctx context.Context, n Notice) error {
	l.logger.Info(ctx, "intervention notice",
		logger.String("personID", n.PersonID),
		logger.String("level", string(n.Level)),
		logger.Float64("finalScore", n.FinalScore),
		logger.Any("explanations", n.Explanations),
	)
	return nil
}
