package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Transport delivers one batch envelope. Implementations report failure
// for anything other than a clean acceptance; the Logger requeues on
// failure, so duplicate delivery is possible when a response is lost
// after the server committed the batch.
type Transport interface {
	Send(ctx context.Context, source string, lines []string) error
}

type batchEnvelope struct {
	Source string   `json:"source"`
	Logs   []string `json:"logs"`
}

// HTTPTransport posts batches to the collector's /api/logs endpoint.
// Only status 200 counts as success; any other status surfaces the
// response body for diagnostics.
type HTTPTransport struct {
	endpoint string
	client   *http.Client
}

func NewHTTPTransport(endpoint string) *HTTPTransport {
	return &HTTPTransport{
		endpoint: strings.TrimRight(endpoint, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (t *HTTPTransport) Send(ctx context.Context, source string, lines []string) error {
	body, err := json.Marshal(batchEnvelope{Source: source, Logs: lines})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint+"/api/logs", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return nil
}
