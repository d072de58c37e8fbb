package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 8 << 20

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Status  string `json:"status"`
		Type    string `json:"type"`
	} `json:"error"`
}

// postJSON sends body as JSON and decodes a 2xx answer into out.
func postJSON(ctx context.Context, client *http.Client, name, url string, header http.Header, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &Error{Provider: name, Op: OpRequest, Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &Error{Provider: name, Op: OpRequest, Err: err}
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return &Error{Provider: name, Op: OpRequest, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Error{Provider: name, Op: OpRequest, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		msg := string(bytes.TrimSpace(data))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &Error{Provider: name, Op: OpRequest, Status: resp.StatusCode, Err: errors.New(msg)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Provider: name, Op: OpRequest, Status: resp.StatusCode, Raw: string(data), Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
