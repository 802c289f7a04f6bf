package webserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tejzpr/audience-inbox/internal/classifier"
	"github.com/tejzpr/audience-inbox/internal/errs"
	"github.com/tejzpr/audience-inbox/internal/inbox"
)

var remoteClient = &http.Client{Timeout: 5 * time.Second}

// IsRunning reports whether baseURL answers like an audience-inbox server.
func IsRunning(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := remoteClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false
	}
	return body.Status == healthMagic
}

// RemoteClassify asks a running server to classify content.
func RemoteClassify(ctx context.Context, baseURL, content string) (classifier.Result, error) {
	payload, _ := json.Marshal(map[string]string{"content": content})

	var out classifier.Result
	err := remoteCall(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/api/queries/auto-tag", payload, &out)
	return out, err
}

// RemoteAnalytics fetches the analytics of a running server.
func RemoteAnalytics(ctx context.Context, baseURL string) (inbox.Analytics, error) {
	var out inbox.Analytics
	err := remoteCall(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/api/analytics", nil, &out)
	return out, err
}

func remoteCall(ctx context.Context, method, url string, payload []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return errs.Wrap(err, "build request")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := remoteClient.Do(req)
	if err != nil {
		return errs.Wrap(err, "failed to reach server")
	}
	defer resp.Body.Close()

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return errs.Wrapf(err, "decode response (status %d)", resp.StatusCode)
	}
	if !env.Success {
		switch resp.StatusCode {
		case http.StatusBadRequest:
			return errs.Wrap(inbox.ErrInvalidInput, env.Error)
		case http.StatusNotFound:
			return errs.Wrap(inbox.ErrNotFound, env.Error)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, env.Error)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return errs.Wrap(err, "decode data")
	}
	return nil
}
