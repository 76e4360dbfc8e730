// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

// Package recommend defines the recommendation provider boundary and its
// HTTP implementation. The provider is the only source of main-feed ranking;
// when it is down the feed is unavailable rather than silently unranked.
package recommend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/arlo-hs/reelay/internal/logging"
	"github.com/arlo-hs/reelay/internal/metrics"
)

// ErrUnavailable reports that the recommendation source cannot serve right
// now, either because calls are failing or because the circuit breaker is
// open. Callers translate it to a retryable FEED_UNAVAILABLE response.
var ErrUnavailable = errors.New("recommendation source unavailable")

// Request asks for one ranked batch of content ids for a user.
type Request struct {
	UserID string `json:"user_id"`

	// Language biases ranking toward the viewer's preferred language.
	Language string `json:"language"`

	// Limit is the target batch size. The provider may return fewer ids
	// when the eligible corpus is sparse.
	Limit int `json:"limit"`

	// ExcludeContentIDs lists recently viewed content the batch should skip.
	ExcludeContentIDs []string `json:"exclude_content_ids,omitempty"`

	// Category restricts ranking to one content category when set. The main
	// feed leaves it empty.
	Category string `json:"category,omitempty"`
}

// Provider produces ranked content-id batches.
type Provider interface {
	Recommend(ctx context.Context, req Request) ([]string, error)
}

// HTTPProvider calls an external recommendation service over HTTP, guarded
// by a circuit breaker so a struggling service is not hammered by every
// cache miss.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]string]
}

// Config holds the HTTP provider settings.
type Config struct {
	BaseURL          string
	Timeout          time.Duration
	FailureThreshold uint32
	BreakerInterval  time.Duration
	BreakerTimeout   time.Duration
}

// NewHTTPProvider creates an HTTP provider with circuit breaker protection.
func NewHTTPProvider(cfg Config) *HTTPProvider {
	settings := gobreaker.Settings{
		Name:     "recommender",
		Interval: cfg.BreakerInterval,
		Timeout:  cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecommenderBreakerState.Set(breakerStateValue(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Recommender circuit breaker state changed")
		},
	}

	return &HTTPProvider{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: gobreaker.NewCircuitBreaker[[]string](settings),
	}
}

// recommendResponse is the provider's wire response.
type recommendResponse struct {
	ContentIDs []string `json:"content_ids"`
}

// Recommend implements Provider. Any failure, including an open breaker,
// surfaces as ErrUnavailable with the cause wrapped.
func (p *HTTPProvider) Recommend(ctx context.Context, req Request) ([]string, error) {
	ids, err := p.breaker.Execute(func() ([]string, error) {
		return p.call(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecommenderRequests.WithLabelValues("rejected").Inc()
		} else {
			metrics.RecommenderRequests.WithLabelValues("failure").Inc()
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	metrics.RecommenderRequests.WithLabelValues("success").Inc()
	return ids, nil
}

// State exposes the breaker state for health reporting.
func (p *HTTPProvider) State() string {
	return p.breaker.State().String()
}

// call performs one HTTP round trip to the recommendation service.
func (p *HTTPProvider) call(ctx context.Context, req Request) ([]string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/v1/recommendations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call recommender: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("recommender returned status %d", resp.StatusCode)
	}

	var parsed recommendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return parsed.ContentIDs, nil
}

// breakerStateValue maps a breaker state to its gauge value.
func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
