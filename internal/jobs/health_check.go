package jobs

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexroessner/newsfeed/internal/config"
)

// DefaultHealthCheckInterval is how often agent endpoint checks run.
const DefaultHealthCheckInterval = 5 * time.Minute

// AgentStatus is the health status of a monitored research agent endpoint.
type AgentStatus string

const (
	AgentStatusOperational AgentStatus = "operational"
	AgentStatusDegraded    AgentStatus = "degraded"
	AgentStatusOutage      AgentStatus = "outage"
)

// AgentCheck records a single health check result for a research agent.
type AgentCheck struct {
	AgentID        string
	Status         AgentStatus
	ResponseTimeMs int
	Error          string
	CheckedAt      time.Time
}

// EndpointChecker performs a health check against a named endpoint.
type EndpointChecker interface {
	CheckEndpoint(ctx context.Context, agentID, endpoint string) AgentCheck
}

// HTTPEndpointChecker checks agent endpoints with a plain HTTP GET. Simulated
// agents have no endpoint and are reported operational without a network call.
type HTTPEndpointChecker struct {
	client *http.Client
}

// NewHTTPEndpointChecker builds a checker with the given request timeout.
func NewHTTPEndpointChecker(timeout time.Duration) *HTTPEndpointChecker {
	return &HTTPEndpointChecker{client: &http.Client{Timeout: timeout}}
}

// CheckEndpoint implements EndpointChecker.
func (c *HTTPEndpointChecker) CheckEndpoint(ctx context.Context, agentID, endpoint string) AgentCheck {
	check := AgentCheck{AgentID: agentID, CheckedAt: time.Now()}

	if endpoint == "" {
		check.Status = AgentStatusOperational
		return check
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		check.Status = AgentStatusOutage
		check.Error = err.Error()
		return check
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	check.ResponseTimeMs = int(time.Since(start).Milliseconds())
	if err != nil {
		check.Status = AgentStatusOutage
		check.Error = err.Error()
		return check
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		check.Status = AgentStatusOutage
	case resp.StatusCode >= 400:
		check.Status = AgentStatusDegraded
	default:
		check.Status = AgentStatusOperational
	}
	return check
}

// AgentHealthJob periodically probes every configured agent's endpoint so a
// degraded or unreachable source surfaces before it trips the optimizer's
// circuit breaker mid-request.
type AgentHealthJob struct {
	checker EndpointChecker
	agents  []config.AgentConfig
	logger  *slog.Logger
}

// NewAgentHealthJob creates a health job over the given agent roster.
func NewAgentHealthJob(checker EndpointChecker, agents []config.AgentConfig, logger *slog.Logger) *AgentHealthJob {
	return &AgentHealthJob{checker: checker, agents: agents, logger: logger}
}

// RunOnce probes every enabled agent and returns checked/failed counts.
func (j *AgentHealthJob) RunOnce(ctx context.Context) (checked, failed int) {
	for _, agent := range j.agents {
		if !agent.Enabled {
			continue
		}
		check := j.checker.CheckEndpoint(ctx, agent.ID, agent.Endpoint)
		checked++
		if check.Status != AgentStatusOperational {
			failed++
			j.logger.Warn("agent endpoint unhealthy",
				"agent_id", check.AgentID, "status", check.Status,
				"response_time_ms", check.ResponseTimeMs, "error", check.Error)
		}
	}
	return checked, failed
}

// RunScheduled runs agent health checks immediately, then on a fixed
// interval, until ctx is cancelled.
func (j *AgentHealthJob) RunScheduled(ctx context.Context, interval time.Duration) {
	j.logRun(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("agent health job stopped")
			return
		case <-ticker.C:
			j.logRun(ctx)
		}
	}
}

func (j *AgentHealthJob) logRun(ctx context.Context) {
	checked, failed := j.RunOnce(ctx)
	j.logger.Info("agent health check complete", "checked", checked, "failed", failed)
}
