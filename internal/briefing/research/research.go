// Package research fans a ResearchTask out across configured research
// agents — RSS feeds, simulated sources — collecting their candidates
// concurrently with per-agent timeout and panic isolation so one bad
// feed can never stall or crash the rest of the briefing pipeline.
package research

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/alexroessner/newsfeed/internal/briefing/optimizer"
	"github.com/alexroessner/newsfeed/internal/config"
	"github.com/alexroessner/newsfeed/internal/models"
)

// Agent discovers candidates for a task. Implementations must respect
// ctx cancellation; the fan-out imposes its own per-agent timeout on
// top of whatever the agent does internally.
type Agent interface {
	ID() string
	Run(ctx context.Context, task models.ResearchTask, topK int) ([]models.Candidate, error)
}

// RSSAgent discovers candidates by parsing a configured RSS/Atom feed
// and keeping only entries relevant to the task's weighted topics.
type RSSAgent struct {
	cfg    config.AgentConfig
	parser *gofeed.Parser
}

// NewRSSAgent builds an RSSAgent for cfg, which must carry a non-empty Endpoint.
func NewRSSAgent(cfg config.AgentConfig) *RSSAgent {
	return &RSSAgent{cfg: cfg, parser: gofeed.NewParser()}
}

func (a *RSSAgent) ID() string { return a.cfg.ID }

// Run fetches and parses the feed, scoring each entry against the
// task's topics and keeping the topK highest-scoring matches.
func (a *RSSAgent) Run(ctx context.Context, task models.ResearchTask, topK int) ([]models.Candidate, error) {
	feed, err := a.parser.ParseURLWithContext(a.cfg.Endpoint, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", a.cfg.Endpoint, err)
	}

	var candidates []models.Candidate
	for _, item := range feed.Items {
		topic, weight := bestTopicMatch(item.Title+" "+item.Description, task.WeightedTopics, a.cfg.Topics)
		if topic == "" {
			continue
		}
		summary := item.Description
		if len(summary) > 500 {
			summary = summary[:500]
		}
		published := time.Now().UTC()
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC()
		}
		c := models.NewCandidate(
			candidateID(a.cfg.ID, item.GUID, item.Link),
			item.Title, summary, item.Link,
			a.cfg.ID, topic, a.cfg.ID,
			0.5+0.3*weight, 0.5, 0.5, 0.4,
		)
		c.CreatedAt = published
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Evidence > candidates[j].Evidence
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

// bestTopicMatch finds the weighted topic most present in text among the
// agent's configured capability topics, returning ("", 0) if none match.
func bestTopicMatch(text string, weightedTopics map[string]float64, capableTopics []string) (string, float64) {
	lower := strings.ToLower(text)
	best := ""
	bestWeight := 0.0
	for _, topic := range capableTopics {
		weight, ok := weightedTopics[topic]
		if !ok {
			continue
		}
		needle := strings.ReplaceAll(topic, "_", " ")
		if strings.Contains(lower, needle) && weight > bestWeight {
			best = topic
			bestWeight = weight
		}
	}
	if best == "" && len(capableTopics) > 0 {
		for topic, weight := range weightedTopics {
			if containsTopic(capableTopics, topic) && weight > bestWeight {
				best = topic
				bestWeight = weight
			}
		}
	}
	return best, bestWeight
}

func containsTopic(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func candidateID(agentID, guid, link string) string {
	if guid != "" {
		return agentID + ":" + guid
	}
	return agentID + ":" + link
}

// SimulatedAgent fabricates plausible candidates for topics it's
// configured to cover, used in place of a live feed for development,
// testing, and as an always-available fallback source.
type SimulatedAgent struct {
	cfg config.AgentConfig
	rng *rand.Rand
}

// NewSimulatedAgent builds a SimulatedAgent seeded from cfg's ID so the
// titles and scores it produces are deterministic across runs with the same
// agent configuration. Candidate IDs and timestamps embed the current time
// and differ between runs.
func NewSimulatedAgent(cfg config.AgentConfig) *SimulatedAgent {
	seed := int64(0)
	for _, r := range cfg.ID {
		seed = seed*31 + int64(r)
	}
	return &SimulatedAgent{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

func (a *SimulatedAgent) ID() string { return a.cfg.ID }

func (a *SimulatedAgent) Run(ctx context.Context, task models.ResearchTask, topK int) ([]models.Candidate, error) {
	var candidates []models.Candidate
	for _, topic := range a.cfg.Topics {
		weight, covered := task.WeightedTopics[topic]
		if !covered || weight <= 0 {
			continue
		}
		n := topK
		if n > 3 {
			n = 3
		}
		for i := 0; i < n; i++ {
			select {
			case <-ctx.Done():
				return candidates, ctx.Err()
			default:
			}
			evidence := 0.4 + a.rng.Float64()*0.5
			novelty := 0.3 + a.rng.Float64()*0.6
			id := fmt.Sprintf("%s:%s:%d:%d", a.cfg.ID, topic, time.Now().UnixNano(), i)
			c := models.NewCandidate(
				id,
				fmt.Sprintf("%s development #%d in %s", strings.Title(strings.ReplaceAll(topic, "_", " ")), i+1, a.cfg.ID),
				fmt.Sprintf("Simulated research finding on %s from %s.", topic, a.cfg.ID),
				"", a.cfg.ID, topic, a.cfg.ID,
				evidence, novelty, weight, 0.3+a.rng.Float64()*0.4,
			)
			candidates = append(candidates, c)
		}
	}
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

// BuildAgent constructs the Agent implementation matching cfg.Kind.
func BuildAgent(cfg config.AgentConfig) Agent {
	switch cfg.Kind {
	case "rss":
		return NewRSSAgent(cfg)
	default:
		return NewSimulatedAgent(cfg)
	}
}

// Fleet fans a task out across agents concurrently, isolating each
// agent's timeout, panics, and circuit-breaker state so one misbehaving
// source never affects another.
type Fleet struct {
	agents  []Agent
	timeout time.Duration
	breaker *optimizer.CircuitBreaker
	log     *slog.Logger
}

// NewFleet builds a Fleet over agents with a shared per-agent timeout
// and circuit breaker.
func NewFleet(agents []Agent, timeout time.Duration, breaker *optimizer.CircuitBreaker, logger *slog.Logger) *Fleet {
	return &Fleet{agents: agents, timeout: timeout, breaker: breaker, log: logger}
}

// AgentResult is one agent's contribution to a fan-out round.
type AgentResult struct {
	AgentID    string
	Candidates []models.Candidate
	Err        error
	Latency    time.Duration
}

// Run executes every agent concurrently against task, skipping agents
// whose circuit breaker is open, and returns each agent's result
// (including errors) so the caller can audit per-agent contribution
// without losing candidates from agents that succeeded.
func (f *Fleet) Run(ctx context.Context, task models.ResearchTask, topK int) []AgentResult {
	results := make([]AgentResult, 0, len(f.agents))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, agent := range f.agents {
		agent := agent
		if f.breaker != nil && !f.breaker.AllowRequest(agent.ID()) {
			mu.Lock()
			results = append(results, AgentResult{AgentID: agent.ID(), Err: fmt.Errorf("circuit open for %s", agent.ID())})
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			result := f.runOne(ctx, agent, task, topK)
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		}()
	}

	wg.Wait()
	return results
}

func (f *Fleet) runOne(ctx context.Context, agent Agent, task models.ResearchTask, topK int) (result AgentResult) {
	result.AgentID = agent.ID()
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan struct{})
	var candidates []models.Candidate
	var runErr error

	go func() {
		defer func() {
			if r := recover(); r != nil {
				runErr = fmt.Errorf("agent %s panicked: %v", agent.ID(), r)
			}
			close(done)
		}()
		candidates, runErr = agent.Run(ctx, task, topK)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		runErr = fmt.Errorf("agent %s timed out: %w", agent.ID(), ctx.Err())
	}

	result.Latency = time.Since(start)
	result.Candidates = candidates
	result.Err = runErr

	if f.breaker != nil {
		if runErr != nil {
			f.breaker.RecordFailure(agent.ID())
		} else {
			f.breaker.RecordSuccess(agent.ID())
		}
	}
	if runErr != nil && f.log != nil {
		f.log.Warn("research agent failed", "agent_id", agent.ID(), "error", runErr)
	}
	return result
}
