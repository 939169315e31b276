package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"order-fulfillment-service/internal/domain"
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

func (m *MexalClient) newRequest(
	ctx context.Context,
	method string,
	endpoint string,
	body io.Reader,
) (*http.Request, error) {
	url := strings.TrimRight(m.baseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Passepartout "+m.token)
	req.Header.Set("Coordinate-Gestionale", m.coordinates)
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json;charset=utf-8")
	}

	return req, nil
}

func (m *MexalClient) do(req *http.Request) (*http.Response, error) {
	resp, err := m.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429/5xx) with
// exponential backoff while respecting context cancellation.
func (m *MexalClient) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	const maxAttempts = 4
	backoff := 200 * time.Millisecond

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := m.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		}

		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}

		if !retry || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

// search issues a filtered search POST and decodes the "dati" payload into
// out. Transport and server failures surface as ErrUpstreamUnavailable.
func (m *MexalClient) search(ctx context.Context, endpoint string, filters []mexalFilter, out any) error {
	if filters == nil {
		filters = []mexalFilter{}
	}

	payload, err := json.Marshal(mexalSearch{Filters: filters})
	if err != nil {
		return fmt.Errorf("mexal search %s: marshal filters: %w", endpoint, err)
	}

	resp, err := m.doWithRetry(ctx, func() (*http.Request, error) {
		return m.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return fmt.Errorf("mexal search %s: %w: %w", endpoint, domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	var env mexalEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("mexal search %s: decode envelope: %w", endpoint, err)
	}
	if env.Data == nil {
		return fmt.Errorf("mexal search %s: response has no dati field", endpoint)
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("mexal search %s: decode dati: %w", endpoint, err)
	}

	return nil
}
