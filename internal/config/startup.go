// Package config provides configuration loading and startup logging for the
// briefing service.
package config

import (
	"log/slog"
)

// LogStartupConfig logs the server configuration at startup. Sensitive
// values (secrets, keys) are never logged.
func LogStartupConfig(logger *slog.Logger, cfg *Config, dbConnected bool) {
	env := "unknown"
	if cfg != nil && cfg.AppEnv != "" {
		env = cfg.AppEnv
	}

	dbStatus := "not connected"
	if dbConnected {
		dbStatus = "connected"
	}

	anthropicStatus := "disabled"
	if cfg != nil && cfg.AnthropicAPIKey != "" {
		anthropicStatus = "enabled"
	}
	geminiStatus := "disabled"
	if cfg != nil && cfg.GeminiAPIKey != "" {
		geminiStatus = "enabled"
	}
	emailStatus := "disabled"
	if cfg != nil && cfg.ResendAPIKey != "" {
		emailStatus = "enabled"
	}

	logger.Info("briefing service configuration",
		"environment", env,
		"analytics_db", dbStatus,
		"anthropic_llm", anthropicStatus,
		"gemini_llm", geminiStatus,
		"email_delivery", emailStatus,
	)

	if cfg != nil {
		logger.Info("pipeline limits",
			"max_concurrent_requests", cfg.MaxConcurrentRequests,
			"pipeline_timeout_seconds", cfg.PipelineTimeoutSec,
		)
		logger.Info("config files",
			"agents", cfg.AgentsConfigPath,
			"pipelines", cfg.PipelinesConfigPath,
			"personas", cfg.PersonasConfigPath,
		)
	}
}
