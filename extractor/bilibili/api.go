package bilibili

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bilisan-cli/bilisan/constant"
)

// fetch performs one HTTP round trip with the default browser headers applied.
func (e *Extractor) fetch(ctx context.Context, method, rawURL string, headers map[string]string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", constant.UserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", rawURL, resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return content, nil
}

// fetchPage retrieves the raw HTML of a content page.
func (e *Extractor) fetchPage(ctx context.Context, rawURL string) (string, error) {
	content, err := e.fetch(ctx, http.MethodGet, rawURL, nil, nil)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// fetchJSON retrieves and decodes a JSON endpoint into out.
func (e *Extractor) fetchJSON(ctx context.Context, rawURL string, headers map[string]string, out any) error {
	content, err := e.fetch(ctx, http.MethodGet, rawURL, headers, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(content, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", rawURL, err)
	}
	return nil
}

// postFormJSON submits a urlencoded form and decodes the JSON response into out.
func (e *Extractor) postFormJSON(ctx context.Context, rawURL string, form url.Values, headers map[string]string, out any) error {
	merged := map[string]string{
		"Content-Type": "application/x-www-form-urlencoded; charset=UTF-8",
	}
	for k, v := range headers {
		merged[k] = v
	}

	content, err := e.fetch(ctx, http.MethodPost, rawURL, merged, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(content, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", rawURL, err)
	}
	return nil
}

// fetchJSONP retrieves a possibly JSONP-wrapped endpoint, strips the
// callback wrapper, and decodes the remaining JSON into out.
func (e *Extractor) fetchJSONP(ctx context.Context, rawURL string, out any) error {
	content, err := e.fetch(ctx, http.MethodGet, rawURL, nil, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(stripJSONP(content), out); err != nil {
		return fmt.Errorf("%s: decode response: %w", rawURL, err)
	}
	return nil
}

// stripJSONP trims a callback wrapper, leaving the bare JSON value.
func stripJSONP(content []byte) []byte {
	start := bytes.IndexAny(content, "{[")
	if start < 0 {
		return content
	}
	end := bytes.LastIndexAny(content, "}]")
	if end < start {
		return content
	}
	return content[start : end+1]
}
