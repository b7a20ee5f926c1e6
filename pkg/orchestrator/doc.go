// Package orchestrator coordinates remote agents to answer one query.
//
// A run creates a RunContext, selects a configured Strategy (sequential,
// dynamic-routed, or parallel fan-out) and drives remote agent proxies
// over the A2A binding, merging intermediate outputs into the run context
// until a final response is produced.
package orchestrator
