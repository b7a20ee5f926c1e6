package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/deskmesh/deskmesh/pkg/a2a/agentcard"
	"github.com/deskmesh/deskmesh/pkg/a2a/client"
	"github.com/deskmesh/deskmesh/pkg/a2a/types"
)

// Invoker is the strategy-facing view of one remote agent.
type Invoker interface {
	Name() string
	Invoke(ctx context.Context, query, contextText string) (string, error)
}

// RemoteAgent binds one capability card to a live A2A client. It holds no
// mutable state beyond connection configuration and the cached card.
type RemoteAgent struct {
	card   *agentcard.AgentCard
	client *client.Client
}

// NewRemoteAgent creates a proxy for the given card and client.
func NewRemoteAgent(card *agentcard.AgentCard, c *client.Client) *RemoteAgent {
	return &RemoteAgent{card: card, client: c}
}

// Name returns the agent name from its card.
func (a *RemoteAgent) Name() string {
	return a.card.Name
}

// Card returns the cached capability card.
func (a *RemoteAgent) Card() *agentcard.AgentCard {
	return a.card
}

// Invoke sends exactly one request to the remote agent and awaits its
// reply. The transport is chosen from the card's preference; streamed
// replies are folded by the client into one final text.
func (a *RemoteAgent) Invoke(ctx context.Context, query, contextText string) (string, error) {
	text := query
	if contextText != "" {
		text = query + "\n\n" + contextText
	}
	req := &types.SendMessageRequest{
		Message: types.NewTextMessage(types.RoleUser, text, ""),
	}

	var (
		reply *types.Message
		err   error
	)
	if a.card.PreferredTransport == "http+sse" {
		reply, err = a.client.SendStreamingMessage(ctx, req)
	} else {
		reply, err = a.client.SendMessage(ctx, req)
	}
	if err != nil {
		return "", err
	}
	return reply.Text(), nil
}

// render computes the outgoing context text for a stage from accumulated
// run state. It is a pure function of its inputs: the run context stays
// the single source of truth and rendering has no side effects.
func render(rc *RunContext, priorKeys []string) string {
	var sections []string
	for _, key := range priorKeys {
		output := rc.GetString(key)
		if output == "" || output == Skipped || output == Unavailable {
			continue
		}
		sections = append(sections, fmt.Sprintf("Context from %s:\n%s", strings.TrimSuffix(key, "_output"), output))
	}
	return strings.Join(sections, "\n\n")
}
