package agentcard

import (
	"net/url"
	"strings"

	"github.com/deskmesh/deskmesh/pkg/errors"
)

// AgentSkill advertises one capability of an agent.
type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Examples    []string `json:"examples,omitempty"`
}

// AgentCard is the immutable, discoverable descriptor of one agent.
type AgentCard struct {
	ProtocolVersion    string       `json:"protocolVersion,omitempty"`
	Name               string       `json:"name"`
	Description        string       `json:"description,omitempty"`
	Version            string       `json:"version,omitempty"`
	URL                string       `json:"url"`
	PreferredTransport string       `json:"preferredTransport,omitempty"`
	DefaultInputModes  []string     `json:"defaultInputModes,omitempty"`
	DefaultOutputModes []string     `json:"defaultOutputModes,omitempty"`
	Skills             []AgentSkill `json:"skills"`
}

// Config describes AgentCard fields that can be derived from runtime settings.
type Config struct {
	ProtocolVersion    string
	Name               string
	Description        string
	Version            string
	URL                string
	PreferredTransport string
	DefaultInputModes  []string
	DefaultOutputModes []string
	Skills             []AgentSkill
}

// Build assembles an AgentCard from the provided config.
func Build(cfg Config) *AgentCard {
	protocolVersion := cfg.ProtocolVersion
	if protocolVersion == "" {
		protocolVersion = "1.0"
	}
	transport := cfg.PreferredTransport
	if transport == "" {
		transport = "http+json"
	}
	inputModes := cfg.DefaultInputModes
	if len(inputModes) == 0 {
		inputModes = []string{"text/plain"}
	}
	outputModes := cfg.DefaultOutputModes
	if len(outputModes) == 0 {
		outputModes = []string{"text/plain"}
	}
	return &AgentCard{
		ProtocolVersion:    protocolVersion,
		Name:               cfg.Name,
		Description:        cfg.Description,
		Version:            cfg.Version,
		URL:                strings.TrimRight(cfg.URL, "/"),
		PreferredTransport: transport,
		DefaultInputModes:  inputModes,
		DefaultOutputModes: outputModes,
		Skills:             cfg.Skills,
	}
}

// Validate checks the card has the shape required for orchestration wiring.
func Validate(card *AgentCard) error {
	if card == nil {
		return errors.New(errors.CodeDiscovery, "agent card is nil", nil)
	}
	if strings.TrimSpace(card.Name) == "" {
		return errors.New(errors.CodeDiscovery, "agent card has no name", nil)
	}
	if len(card.Skills) == 0 {
		return errors.New(errors.CodeDiscovery, "agent card advertises no skills", nil).
			WithContext("agent", card.Name)
	}
	if card.URL == "" {
		return errors.New(errors.CodeDiscovery, "agent card has no address", nil).
			WithContext("agent", card.Name)
	}
	parsed, err := url.Parse(card.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return errors.New(errors.CodeDiscovery, "agent card address is malformed", err).
			WithContext("agent", card.Name).
			WithContext("url", card.URL)
	}
	return nil
}
