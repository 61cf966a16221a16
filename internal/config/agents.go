package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// AgentConfig describes one configured research agent, loaded from agents.json.
type AgentConfig struct {
	ID              string   `json:"id"`
	Kind            string   `json:"kind"` // "rss", "simulated", "api"
	Topics          []string `json:"topics"`
	SourceTier      string   `json:"source_tier"` // tier1, tier1b, academic, tier2
	Endpoint        string   `json:"endpoint,omitempty"`
	TimeoutSeconds  int      `json:"timeout_seconds"`
	CapabilityRank  float64  `json:"capability_rank_bonus"`
	SourcePriority  float64  `json:"source_priority"`
	Enabled         bool     `json:"enabled"`
}

// AgentsConfig is the parsed contents of agents.json.
type AgentsConfig struct {
	Agents []AgentConfig `json:"agents"`
}

// DefaultAgentsConfig returns a minimal simulated-agent fallback used when no
// agents.json is present, so the pipeline still has something to fan out to.
func DefaultAgentsConfig() *AgentsConfig {
	return &AgentsConfig{
		Agents: []AgentConfig{
			{ID: "sim-a", Kind: "simulated", Topics: []string{"tech", "geopolitics", "markets"}, SourceTier: "tier2", TimeoutSeconds: 5, CapabilityRank: 0.5, SourcePriority: 0.3, Enabled: true},
			{ID: "sim-b", Kind: "simulated", Topics: []string{"tech", "science"}, SourceTier: "tier1b", TimeoutSeconds: 5, CapabilityRank: 0.6, SourcePriority: 0.5, Enabled: true},
			{ID: "sim-c", Kind: "simulated", Topics: []string{"geopolitics", "markets"}, SourceTier: "tier1", TimeoutSeconds: 5, CapabilityRank: 0.7, SourcePriority: 0.8, Enabled: true},
		},
	}
}

// LoadAgentsConfig reads agents.json from path, falling back to defaults
// when the file is absent.
func LoadAgentsConfig(path string) (*AgentsConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultAgentsConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read agents config: %w", err)
	}
	var cfg AgentsConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse agents config: %w", err)
	}
	return &cfg, nil
}

// PersonaConfig describes one expert-council or editorial-review persona
// loaded from personas.json.
type PersonaConfig struct {
	Name              string             `json:"name"`
	SystemPrompt      string             `json:"system_prompt"`
	DimensionWeights  map[string]float64 `json:"dimension_weights"`
	Influence         float64            `json:"influence"`
}

// PersonasConfig is the parsed contents of personas.json.
type PersonasConfig struct {
	Personas []PersonaConfig `json:"personas"`
}

// DefaultPersonasConfig mirrors the five EXPERT_PERSONAS from
// original_source/agents/experts.py.
func DefaultPersonasConfig() *PersonasConfig {
	return &PersonasConfig{
		Personas: []PersonaConfig{
			{Name: "pragmatist", SystemPrompt: "Judge practical, near-term relevance.",
				DimensionWeights: map[string]float64{"evidence": 0.4, "novelty": 0.2, "preference_fit": 0.3, "prediction_signal": 0.1}, Influence: 1.0},
			{Name: "skeptic", SystemPrompt: "Weigh evidence quality and corroboration heavily.",
				DimensionWeights: map[string]float64{"evidence": 0.6, "novelty": 0.1, "preference_fit": 0.1, "prediction_signal": 0.2}, Influence: 1.2},
			{Name: "futurist", SystemPrompt: "Favor predictive, forward-looking signal.",
				DimensionWeights: map[string]float64{"evidence": 0.2, "novelty": 0.3, "preference_fit": 0.1, "prediction_signal": 0.4}, Influence: 0.9},
			{Name: "generalist", SystemPrompt: "Balance all dimensions evenly.",
				DimensionWeights: map[string]float64{"evidence": 0.25, "novelty": 0.25, "preference_fit": 0.25, "prediction_signal": 0.25}, Influence: 1.0},
			{Name: "curator", SystemPrompt: "Favor what this specific user wants to read.",
				DimensionWeights: map[string]float64{"evidence": 0.2, "novelty": 0.2, "preference_fit": 0.5, "prediction_signal": 0.1}, Influence: 1.0},
		},
	}
}

// LoadPersonasConfig reads personas.json from path, falling back to defaults.
func LoadPersonasConfig(path string) (*PersonasConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultPersonasConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read personas config: %w", err)
	}
	var cfg PersonasConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse personas config: %w", err)
	}
	return &cfg, nil
}
