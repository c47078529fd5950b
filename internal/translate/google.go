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

	"golang.org/x/text/language"
)

const DefaultBaseURL = "https://translate.googleapis.com"

type GoogleConfig struct {
	BaseURL string
	Timeout time.Duration
}

type googleClient struct {
	baseURL string
	client  *http.Client
}

// NewGoogle returns a client for the public Google Translate endpoint:
//
//	GET {baseURL}/translate_a/single?client=gtx&sl=en&tl=hi&dt=t&q=...
//
// The response is a nested JSON array whose first element lists the
// translated segments.
func NewGoogle(cfg GoogleConfig) Translator {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &googleClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *googleClient) Translate(ctx context.Context, text string, source, target language.Tag) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", baseCode(source))
	q.Set("tl", baseCode(target))
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/translate_a/single?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: HTTP %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	out, err := parseSegments(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return out, nil
}

func parseSegments(body []byte) (string, error) {
	var parsed []any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("cannot parse translation response: %w", err)
	}
	if len(parsed) == 0 {
		return "", fmt.Errorf("translation response is empty")
	}
	segments, ok := parsed[0].([]any)
	if !ok || len(segments) == 0 {
		return "", fmt.Errorf("translation response has no segments")
	}

	var sb strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			sb.WriteString(s)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("translation response has no text")
	}
	return sb.String(), nil
}

func baseCode(t language.Tag) string {
	base, _ := t.Base()
	return base.String()
}
