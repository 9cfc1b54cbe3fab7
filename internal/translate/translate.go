// Package translate calls an external translation endpoint with chunking
// and per-chunk fail-open semantics.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/krishilink/agrimarket-crawler/internal/metrics"
)

// DefaultEndpoint is the public Google Translate endpoint used when no
// override is configured.
const DefaultEndpoint = "https://translate.googleapis.com/translate_a/single"

// Config controls the translation client.
type Config struct {
	Endpoint  string
	ChunkSize int
	Timeout   time.Duration
}

// Client translates text one chunk at a time. A failing chunk keeps its
// original text so a flaky upstream never fails the caller.
type Client struct {
	endpoint  string
	chunkSize int
	http      *http.Client
	logger    *zap.Logger
}

// New constructs a Client. Zero config fields fall back to defaults
// (endpoint, 500-rune chunks, 10s per-request timeout).
func New(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 500
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Timeout == 0 {
		httpClient.Timeout = cfg.Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint:  cfg.Endpoint,
		chunkSize: cfg.ChunkSize,
		http:      httpClient,
		logger:    logger,
	}
}

// Translate converts text into targetLang. Long input is split into
// fixed-size rune chunks, each translated with a single attempt and
// concatenated in order with single-space joins. Empty input returns ""
// without any upstream call.
func (c *Client) Translate(ctx context.Context, text, targetLang string) string {
	if text == "" {
		return ""
	}

	chunks := splitChunks(text, c.chunkSize)
	out := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		translated, err := c.translateChunk(ctx, chunk, targetLang)
		if err != nil {
			metrics.ObserveTranslateChunk("failed")
			c.logger.Warn("translation chunk failed, keeping source text",
				zap.Int("chunk_len", len(chunk)),
				zap.Error(err),
			)
			translated = chunk
		} else {
			metrics.ObserveTranslateChunk("translated")
		}
		out = append(out, translated)
	}
	return strings.Join(out, " ")
}

func (c *Client) translateChunk(ctx context.Context, chunk, targetLang string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", targetLang)
	q.Set("dt", "t")
	q.Set("q", chunk)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build translate request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate request: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read translate response: %w", err)
	}
	return decodeResponse(body)
}

// decodeResponse unpacks the gtx wire format: the first element is a list
// of segments, each segment a list whose first element is translated text.
func decodeResponse(body []byte) (string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode translate response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("decode translate response: empty payload")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("decode translate segments: %w", err)
	}

	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var piece string
		if err := json.Unmarshal(seg[0], &piece); err != nil {
			return "", fmt.Errorf("decode translate segment text: %w", err)
		}
		b.WriteString(piece)
	}
	return b.String(), nil
}

func splitChunks(text string, size int) []string {
	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
