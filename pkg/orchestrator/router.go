package orchestrator

import "strings"

// Urgency grades how quickly a query needs attention.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// ExecutionMode is the routing outcome derived from the needs flags.
type ExecutionMode string

const (
	ExecSequential  ExecutionMode = "sequential"
	ExecDataOnly    ExecutionMode = "data_only"
	ExecSupportOnly ExecutionMode = "support_only"
)

// RoutingDecision is the classifier output consumed by gated stages.
type RoutingDecision struct {
	NeedsData    bool          `json:"needs_data"`
	NeedsSupport bool          `json:"needs_support"`
	Urgency      Urgency       `json:"urgency"`
	Mode         ExecutionMode `json:"execution_mode"`
}

// Fixed vocabularies for intent classification. Matching is a plain
// lower-cased substring test; classification quality is explicitly not a
// goal, determinism is.
var (
	dataTerms = []string{
		"customer", "ticket", "id ", "id:", " id", "list", "search",
		"lookup", "record", "account", "stats", "statistics", "filter",
	}
	supportTerms = []string{
		"help", "issue", "problem", "reset", "fix", "troubleshoot",
		"broken", "error", "support", "login", "password", "crash",
		"not working", "doesn't work", "can't", "cannot",
	}
	urgencyTerms = []string{
		"urgent", "immediately", "asap", "critical", "emergency", "right now",
	}
	complaintTerms = []string{
		"frustrated", "angry", "unacceptable", "complaint", "disappointed",
		"terrible", "worst",
	}
)

// Analyze maps raw query text to a routing decision. It is a pure,
// deterministic function with no network dependency.
//
// When neither vocabulary matches, both flags default to true: the full
// pipeline runs rather than silently dropping a stage the classifier
// failed to recognize.
func Analyze(query string) RoutingDecision {
	text := strings.ToLower(query)

	decision := RoutingDecision{
		NeedsData:    containsAny(text, dataTerms),
		NeedsSupport: containsAny(text, supportTerms),
	}

	switch {
	case containsAny(text, urgencyTerms):
		decision.Urgency = UrgencyHigh
	case containsAny(text, complaintTerms):
		decision.Urgency = UrgencyMedium
	default:
		decision.Urgency = UrgencyLow
	}

	// Fail open: run everything when nothing matched.
	if !decision.NeedsData && !decision.NeedsSupport {
		decision.NeedsData = true
		decision.NeedsSupport = true
	}

	switch {
	case decision.NeedsData && !decision.NeedsSupport:
		decision.Mode = ExecDataOnly
	case decision.NeedsSupport && !decision.NeedsData:
		decision.Mode = ExecSupportOnly
	default:
		decision.Mode = ExecSequential
	}
	return decision
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
