package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/deskmesh/deskmesh/pkg/a2a/client"
	"github.com/deskmesh/deskmesh/pkg/agents"
	"github.com/deskmesh/deskmesh/pkg/config"
	"github.com/deskmesh/deskmesh/pkg/orchestrator"
	"github.com/deskmesh/deskmesh/pkg/telemetry"
)

func runAsk(ctx context.Context, global globalFlags, cfg *config.Config, args []string) {
	if len(args) == 0 {
		fatal(fmt.Errorf("ask requires a query"))
	}
	query := strings.Join(args, " ")

	ctx, cancel := context.WithTimeout(ctx, global.Timeout)
	defer cancel()

	mode, err := orchestrator.ParseMode(cfg.Orchestrator.Mode)
	if err != nil {
		fatal(err)
	}
	stageTimeout, err := cfg.Orchestrator.StageTimeoutDuration()
	if err != nil {
		fatal(err)
	}

	registry, err := orchestrator.BuildRegistry(ctx,
		[]string{cfg.Agents.CustomerData.URL, cfg.Agents.Support.URL}, slog.Default(),
		client.WithTimeout(stageTimeout))
	if err != nil {
		fatal(err)
	}
	metrics, err := telemetry.NewMeshMetrics()
	if err != nil {
		fatal(err)
	}
	strategy, err := agents.NewStrategy(mode, registry, stageTimeout, metrics, slog.Default())
	if err != nil {
		fatal(err)
	}

	rc := orchestrator.NewRunContext()
	answer, err := strategy.Run(ctx, rc, query)
	if err != nil {
		fatal(err)
	}

	if global.JSON {
		out := map[string]interface{}{
			"run_id": rc.ID(),
			"mode":   string(mode),
			"answer": answer,
		}
		if decision, ok := rc.Decision(); ok {
			out["routing"] = decision
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(out)
		return
	}
	fmt.Println(answer)
}

func runAgents(ctx context.Context, global globalFlags, cfg *config.Config) {
	ctx, cancel := context.WithTimeout(ctx, global.Timeout)
	defer cancel()

	endpoints := []string{cfg.Agents.CustomerData.URL, cfg.Agents.Support.URL}
	if global.JSON {
		results := make([]map[string]interface{}, 0, len(endpoints))
		for _, endpoint := range endpoints {
			entry := map[string]interface{}{"url": endpoint}
			card, err := client.New(endpoint).FetchCard(ctx)
			if err != nil {
				entry["error"] = err.Error()
			} else {
				entry["card"] = card
			}
			results = append(results, entry)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(results)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tURL\tSKILLS\tSTATUS")
	for _, endpoint := range endpoints {
		card, err := client.New(endpoint).FetchCard(ctx)
		if err != nil {
			fmt.Fprintf(w, "-\t%s\t-\tunreachable\n", endpoint)
			continue
		}
		skills := make([]string, 0, len(card.Skills))
		for _, skill := range card.Skills {
			skills = append(skills, skill.ID)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\tok\n", card.Name, endpoint, strings.Join(skills, ","))
	}
	w.Flush()
}
