package agentcard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/deskmesh/deskmesh/pkg/errors"
)

// Discovery constants for AgentCard HTTP endpoints.
const (
	// WellKnownPath is the standardized location for AgentCard discovery.
	WellKnownPath = "/.well-known/agent-card.json"
	// DefaultMediaType is the A2A media type for JSON payloads.
	DefaultMediaType = "application/a2a+json"
)

// PublishHandler serves the provided AgentCard as JSON.
func PublishHandler(card *AgentCard) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if card == nil {
			http.Error(w, "agent card not configured", http.StatusNotFound)
			return
		}
		payload, err := json.Marshal(card)
		if err != nil {
			http.Error(w, "failed to encode agent card", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", DefaultMediaType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
	})
}

// Fetch retrieves and validates an AgentCard from a base URL. The result is
// safe to cache for the process lifetime: advertised capabilities are
// treated as configuration, not runtime state.
func Fetch(ctx context.Context, baseURL string) (*AgentCard, error) {
	url := strings.TrimRight(baseURL, "/") + WellKnownPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.New(errors.CodeDiscovery, "invalid agent address", err).
			WithContext("url", baseURL)
	}
	req.Header.Set("Accept", DefaultMediaType)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.New(errors.CodeDiscovery, "agent card endpoint unreachable", err).
			WithContext("url", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.CodeDiscovery,
			fmt.Sprintf("agent card fetch failed: %s", resp.Status), nil).
			WithContext("url", url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New(errors.CodeDiscovery, "agent card read failed", err).
			WithContext("url", url)
	}

	var card AgentCard
	if err := json.Unmarshal(body, &card); err != nil {
		return nil, errors.New(errors.CodeDiscovery, "agent card payload is malformed", err).
			WithContext("url", url)
	}
	if err := Validate(&card); err != nil {
		return nil, err
	}
	return &card, nil
}
