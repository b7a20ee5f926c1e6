package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/deskmesh/deskmesh/pkg/a2a/client"
	"github.com/deskmesh/deskmesh/pkg/errors"
)

// Registry holds the resolved remote agents for one orchestrator process.
// It is built once at startup and read-only afterwards.
type Registry struct {
	agents map[string]*RemoteAgent
}

// BuildRegistry discovers every endpoint and constructs its proxy. The
// build is all or nothing: if any card fetch or validation fails, no
// registry is returned. A partially-wired mesh would route queries into a
// hole at request time, so refusing to start is the cheaper failure.
func BuildRegistry(ctx context.Context, endpoints []string, log *slog.Logger, opts ...client.Option) (*Registry, error) {
	if log == nil {
		log = slog.Default()
	}
	agents := make(map[string]*RemoteAgent, len(endpoints))
	for _, endpoint := range endpoints {
		c := client.New(endpoint, opts...)
		card, err := c.FetchCard(ctx)
		if err != nil {
			return nil, errors.New(errors.CodeDiscovery,
				fmt.Sprintf("agent at %s is not reachable", endpoint), err)
		}
		if _, dup := agents[card.Name]; dup {
			return nil, errors.New(errors.CodeDiscovery,
				fmt.Sprintf("duplicate agent name %q at %s", card.Name, endpoint), nil)
		}
		agents[card.Name] = NewRemoteAgent(card, c)
		log.Info("discovered agent",
			slog.String("name", card.Name),
			slog.String("endpoint", endpoint),
			slog.Int("skills", len(card.Skills)))
	}
	return &Registry{agents: agents}, nil
}

// Agent returns the proxy registered under name.
func (r *Registry) Agent(name string) (*RemoteAgent, error) {
	agent, ok := r.agents[name]
	if !ok {
		return nil, errors.New(errors.CodeNotFound,
			fmt.Sprintf("no agent named %q in registry", name), nil)
	}
	return agent, nil
}

// Names returns the registered agent names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	return len(r.agents)
}
