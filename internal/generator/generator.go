// Package generator wraps the hosted generation service behind a narrow
// client interface so the gateway's caching and verification logic can be
// tested without any network.
package generator

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/packsmith-labs/packsmith/internal/config"
)

// Client is the opaque external collaborator: one fallible, slow,
// non-deterministic call returning raw model text.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ModelAPI is the production Client talking to the hosted model service.
type ModelAPI struct {
	cfg    *config.ModelAPIEnvConfig
	client *resty.Client
}

// NewModelAPI constructs a ModelAPI client. Transport-level retries handle
// transient network failures; service-level errors are never retried here.
func NewModelAPI(cfg *config.ModelAPIEnvConfig) (*ModelAPI, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	retry := retryablehttp.NewClient()
	retry.RetryMax = cfg.RetryMax
	retry.RetryWaitMin = cfg.RetryWaitMin
	retry.RetryWaitMax = cfg.RetryWaitMax
	retry.Logger = nil

	client := resty.NewWithClient(retry.StandardClient()).
		SetBaseURL(cfg.ModelAPIUrl).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetTimeout(cfg.ClientTimeout).
		SetAuthToken(cfg.ModelAPIKey)

	return &ModelAPI{
		cfg:    cfg,
		client: client,
	}, nil
}

// Generate performs one generation call and returns the raw model text.
func (m *ModelAPI) Generate(ctx context.Context, req Request) (string, error) {
	var out generateResponse
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(generateRequest{Model: m.cfg.ModelName, Request: req}).
		SetResult(&out).
		Post("/v1/generate")
	if err != nil {
		log.Error().Err(err).Msg("generate request failed")
		return "", fmt.Errorf("generate: %w", err)
	}
	if resp.IsError() {
		log.Error().Int("status", resp.StatusCode()).Str("body", resp.String()).Msg("generate non-2xx")
		return "", fmt.Errorf("generate status %d: %s", resp.StatusCode(), resp.String())
	}
	if !out.Success {
		return "", fmt.Errorf("generate api returned success=false: %s", out.Error)
	}
	return out.Text, nil
}
