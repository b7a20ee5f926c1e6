// Copyright 2026 © The DeskMesh Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry provides OpenTelemetry integration for mesh
// observability.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic conventions for mesh telemetry. These follow OpenTelemetry
// naming conventions where applicable.
const (
	// Run attributes
	AttrRunID    = "deskmesh.run.id"
	AttrRunMode  = "deskmesh.run.mode"
	AttrRunQuery = "deskmesh.run.query"

	// Routing attributes
	AttrRouteNeedsData    = "deskmesh.route.needs_data"
	AttrRouteNeedsSupport = "deskmesh.route.needs_support"
	AttrRouteUrgency      = "deskmesh.route.urgency"

	// Stage attributes
	AttrStageAgent      = "deskmesh.stage.agent"
	AttrStageOutputKey  = "deskmesh.stage.output_key"
	AttrStageSkipped    = "deskmesh.stage.skipped"
	AttrStageDurationMs = "deskmesh.stage.duration_ms"

	// Agent card attributes
	AttrAgentName     = "deskmesh.agent.name"
	AttrAgentEndpoint = "deskmesh.agent.endpoint"
	AttrAgentSkills   = "deskmesh.agent.skill_count"

	// Tool attributes
	AttrToolName    = "deskmesh.tool.name"
	AttrToolSuccess = "deskmesh.tool.success"
)

// RunAttributes returns common attributes for orchestration run spans.
// Long queries are truncated before attachment.
func RunAttributes(runID, mode, query string) []attribute.KeyValue {
	if len(query) > 200 {
		query = query[:200] + "..."
	}
	return []attribute.KeyValue{
		attribute.String(AttrRunID, runID),
		attribute.String(AttrRunMode, mode),
		attribute.String(AttrRunQuery, query),
	}
}

// RouteAttributes returns attributes describing a routing decision.
func RouteAttributes(needsData, needsSupport bool, urgency string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(AttrRouteNeedsData, needsData),
		attribute.Bool(AttrRouteNeedsSupport, needsSupport),
		attribute.String(AttrRouteUrgency, urgency),
	}
}

// StageAttributes returns attributes for one stage invocation span.
func StageAttributes(agent, outputKey string, skipped bool, durationMs float64) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrStageAgent, agent),
		attribute.String(AttrStageOutputKey, outputKey),
		attribute.Bool(AttrStageSkipped, skipped),
	}
	if durationMs > 0 {
		attrs = append(attrs, attribute.Float64(AttrStageDurationMs, durationMs))
	}
	return attrs
}

// AgentAttributes returns attributes for a discovered agent.
func AgentAttributes(name, endpoint string, skills int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrAgentName, name),
		attribute.String(AttrAgentEndpoint, endpoint),
		attribute.Int(AttrAgentSkills, skills),
	}
}

// ToolAttributes returns attributes for a tool call span.
func ToolAttributes(name string, success bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrToolName, name),
		attribute.Bool(AttrToolSuccess, success),
	}
}
