package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/deskmesh/deskmesh/pkg/a2a/agentcard"
	"github.com/deskmesh/deskmesh/pkg/a2a/client"
	a2aserver "github.com/deskmesh/deskmesh/pkg/a2a/server"
	"github.com/deskmesh/deskmesh/pkg/a2a/types"
	"github.com/deskmesh/deskmesh/pkg/agents"
	"github.com/deskmesh/deskmesh/pkg/config"
	"github.com/deskmesh/deskmesh/pkg/mcp"
	"github.com/deskmesh/deskmesh/pkg/orchestrator"
	"github.com/deskmesh/deskmesh/pkg/store"
	"github.com/deskmesh/deskmesh/pkg/telemetry"
	"github.com/deskmesh/deskmesh/pkg/toolserver"
)

func runServe(ctx context.Context, global globalFlags, cfg *config.Config, args []string) {
	if len(args) == 0 {
		fatal(fmt.Errorf("serve requires a target: tools, agents, orchestrator or all"))
	}

	shutdown, err := telemetry.InitWithConfig("deskmesh", version, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		fatal(err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdown(flushCtx)
	}()

	// Live-reload log settings while serving. Addresses and the
	// orchestration mode stay fixed for the process lifetime.
	if global.ConfigPath != "" {
		watcher, err := config.NewWatcher(global.ConfigPath)
		if err != nil {
			fatal(err)
		}
		watcher.OnChange(func(next *config.Config) {
			telemetry.ConfigureSlog(os.Stderr, next.Log.Level, next.Log.Format)
		})
		watcher.Start(ctx)
		defer watcher.Stop()
	}

	switch args[0] {
	case "tools":
		serveTools(ctx, cfg)
	case "agents":
		serveAgents(ctx, cfg)
	case "orchestrator":
		serveOrchestrator(ctx, cfg)
	case "all":
		go serveTools(ctx, cfg)
		go serveAgents(ctx, cfg)
		// Give the tool and agent listeners a moment before discovery.
		time.Sleep(500 * time.Millisecond)
		serveOrchestrator(ctx, cfg)
	default:
		fatal(fmt.Errorf("unknown serve target %q", args[0]))
	}
}

func serveTools(ctx context.Context, cfg *config.Config) {
	st, err := store.Open(cfg.Store.Path, slog.Default())
	if err != nil {
		fatal(err)
	}
	defer st.Close()

	srv := toolserver.New(st, slog.Default())
	addr := fmt.Sprintf(":%d", cfg.Tools.Port)
	if err := srv.ServeStreamableHTTP(addr); err != nil {
		fatal(err)
	}
}

func serveAgents(ctx context.Context, cfg *config.Config) {
	log := slog.Default()

	newToolset := func(names []string) *mcp.Toolset {
		client, err := mcp.NewClientWithStreamableHTTP(cfg.Tools.URL)
		if err != nil {
			fatal(fmt.Errorf("tool server at %s unreachable: %w", cfg.Tools.URL, err))
		}
		return mcp.NewToolset(client, names)
	}

	dataCard := agents.CustomerDataCard(cfg.Agents.CustomerData.URL)
	dataAgent := agents.NewCustomerDataAgent(newToolset(agents.CustomerDataTools), log)
	go serveA2A(ctx, cfg.Agents.CustomerData.Port, dataCard, dataAgent, log)

	supportCard := agents.SupportCard(cfg.Agents.Support.URL)
	supportAgent := agents.NewSupportAgent(newToolset(agents.SupportTools), log)
	serveA2A(ctx, cfg.Agents.Support.Port, supportCard, supportAgent, log)
}

func serveOrchestrator(ctx context.Context, cfg *config.Config) {
	log := slog.Default()

	mode, err := orchestrator.ParseMode(cfg.Orchestrator.Mode)
	if err != nil {
		fatal(err)
	}
	stageTimeout, err := cfg.Orchestrator.StageTimeoutDuration()
	if err != nil {
		fatal(err)
	}

	registry, err := orchestrator.BuildRegistry(ctx,
		[]string{cfg.Agents.CustomerData.URL, cfg.Agents.Support.URL}, log,
		client.WithTimeout(stageTimeout))
	if err != nil {
		fatal(err)
	}
	metrics, err := telemetry.NewMeshMetrics()
	if err != nil {
		fatal(err)
	}
	strategy, err := agents.NewStrategy(mode, registry, stageTimeout, metrics, log)
	if err != nil {
		fatal(err)
	}

	card := agentcard.Build(agentcard.Config{
		Name:        "deskmesh_orchestrator",
		Description: "Routes customer support queries across the worker agent mesh.",
		Version:     version,
		URL:         fmt.Sprintf("http://localhost:%d", cfg.Orchestrator.Port),
		Skills: []agentcard.AgentSkill{
			{
				ID:          "orchestrate",
				Name:        "Orchestrate",
				Description: "Answer a support query by coordinating the data and support agents.",
				Tags:        []string{"orchestration"},
			},
		},
	})
	serveA2A(ctx, cfg.Orchestrator.Port, card, &orchestratorExecutor{strategy: strategy, log: log}, log)
}

// orchestratorExecutor exposes a strategy as an A2A executor so clients
// talk to the orchestrator the same way the orchestrator talks to workers.
type orchestratorExecutor struct {
	strategy orchestrator.Strategy
	log      *slog.Logger
}

func (e *orchestratorExecutor) Execute(ctx context.Context, msg *types.Message) (*types.Message, error) {
	rc := orchestrator.NewRunContext()
	e.log.Info("orchestrating query",
		slog.String("run_id", rc.ID()),
		slog.String("mode", string(e.strategy.Mode())))

	answer, err := e.strategy.Run(ctx, rc, msg.Text())
	if err != nil {
		return nil, err
	}
	return types.NewTextMessage(types.RoleAgent, answer, msg.ContextID), nil
}

func serveA2A(ctx context.Context, port int, card *agentcard.AgentCard, exec a2aserver.Executor, log *slog.Logger) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: a2aserver.New(card, exec, log).Handler(),
	}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx)
	}()
	log.Info("agent listening", slog.String("name", card.Name), slog.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fatal(err)
	}
}
