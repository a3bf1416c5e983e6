package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"kindled-backend/pkg/jwt"
)

// =====================================================
// STREAM MODERATION CLIENT
// =====================================================

const (
	DefaultStreamBaseURL   = "https://chat.stream-io-api.com"
	DefaultStreamConfigKey = "custom:kindled"

	streamCheckPath = "/api/v2/moderation/check"
	streamTokenTTL  = 5 * time.Minute
)

// blockingActions are the recommended actions that reject content
var blockingActions = map[string]bool{
	"block":        true,
	"shadow_block": true,
	"remove":       true,
}

// StreamConfig credentials and endpoint of the Stream moderation API
type StreamConfig struct {
	APIKey    string
	APISecret string
	BaseURL   string
	ConfigKey string
}

type streamGate struct {
	config     StreamConfig
	tokens     *jwt.Manager
	httpClient *http.Client
}

// NewStreamGate creates a gate backed by Stream's synchronous moderation check.
// Missing credentials are not an error here; every Check fails instead.
func NewStreamGate(cfg StreamConfig) Gate {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultStreamBaseURL
	}
	if cfg.ConfigKey == "" {
		cfg.ConfigKey = DefaultStreamConfigKey
	}
	return &streamGate{
		config: cfg,
		tokens: jwt.NewManager(cfg.APISecret),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type streamCheckRequest struct {
	EntityType        string               `json:"entity_type"`
	EntityID          string               `json:"entity_id"`
	EntityCreatorID   string               `json:"entity_creator_id"`
	ModerationPayload streamPayload        `json:"moderation_payload"`
	ConfigKey         string               `json:"config_key"`
	Options           streamRequestOptions `json:"options"`
}

type streamPayload struct {
	Texts  []string `json:"texts"`
	Images []string `json:"images"`
}

type streamRequestOptions struct {
	ForceSync bool `json:"force_sync"`
}

type streamCheckResponse struct {
	RecommendedAction string `json:"recommended_action"`
	Item              *struct {
		RecommendedAction string `json:"recommended_action"`
	} `json:"item"`
}

func (r streamCheckResponse) action() string {
	if r.RecommendedAction != "" {
		return r.RecommendedAction
	}
	if r.Item != nil {
		return r.Item.RecommendedAction
	}
	return ""
}

// Check submits text and maps the recommended action to a verdict
func (g *streamGate) Check(ctx context.Context, text string) (Verdict, error) {
	if g.config.APIKey == "" || g.config.APISecret == "" {
		return Verdict{}, ErrNotConfigured
	}

	// Step 1: Build request body
	body, err := json.Marshal(streamCheckRequest{
		EntityType:        "general",
		EntityID:          "entity_" + uuid.NewString(),
		EntityCreatorID:   "user_" + uuid.NewString(),
		ModerationPayload: streamPayload{Texts: []string{text}, Images: []string{}},
		ConfigKey:         g.config.ConfigKey,
		Options:           streamRequestOptions{ForceSync: true},
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Step 2: Sign server token
	token, err := g.tokens.GenerateServerToken(streamTokenTTL)
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to sign server token: %w", err)
	}

	endpoint := strings.TrimRight(g.config.BaseURL, "/") + streamCheckPath + "?api_key=" + url.QueryEscape(g.config.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", token)
	httpReq.Header.Set("Stream-Auth-Type", "jwt")

	// Step 3: Call Stream API
	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to call Stream API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Verdict{}, fmt.Errorf("Stream API error: status %d", resp.StatusCode)
	}

	// Step 4: Parse verdict
	var result streamCheckResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return Verdict{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	action := strings.ToLower(result.action())
	return Verdict{Blocked: blockingActions[action], Action: action}, nil
}
