// Package engine wires together every pipeline stage — research
// fan-out, intelligence enrichment, expert council selection, article
// enrichment, narrative clustering, geo-risk and trend analysis, and
// editorial review — into the single request/response operation the
// API layer calls.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alexroessner/newsfeed/internal/briefing/audit"
	"github.com/alexroessner/newsfeed/internal/briefing/clustering"
	"github.com/alexroessner/newsfeed/internal/briefing/corroboration"
	"github.com/alexroessner/newsfeed/internal/briefing/credibility"
	"github.com/alexroessner/newsfeed/internal/briefing/delivery"
	"github.com/alexroessner/newsfeed/internal/briefing/diversity"
	"github.com/alexroessner/newsfeed/internal/briefing/enrichment"
	"github.com/alexroessner/newsfeed/internal/briefing/experts"
	"github.com/alexroessner/newsfeed/internal/briefing/feedback"
	"github.com/alexroessner/newsfeed/internal/briefing/georisk"
	"github.com/alexroessner/newsfeed/internal/briefing/optimizer"
	"github.com/alexroessner/newsfeed/internal/briefing/orchestrator"
	"github.com/alexroessner/newsfeed/internal/briefing/persistence"
	"github.com/alexroessner/newsfeed/internal/briefing/research"
	"github.com/alexroessner/newsfeed/internal/briefing/review"
	"github.com/alexroessner/newsfeed/internal/briefing/trends"
	"github.com/alexroessner/newsfeed/internal/briefing/urgency"
	"github.com/alexroessner/newsfeed/internal/config"
	"github.com/alexroessner/newsfeed/internal/models"
)

// defaultMaxConcurrentRequests and defaultPipelineTimeout back New's
// backpressure semaphore and deadline when Config leaves them unset.
const (
	defaultMaxConcurrentRequests = 4
	defaultPipelineTimeout       = 120 * time.Second
	busyAcquireWait              = 200 * time.Millisecond
)

// persistedProfiles is the on-disk shape of the "profiles" snapshot
// collection: one entry per known user.
type persistedProfiles map[string]models.UserProfile

// Engine owns every stage of the pipeline and the mutable state
// (profiles, credibility, geo-risk, trends, expert influence) that
// persists across requests.
type Engine struct {
	mu sync.Mutex

	pipelineCfg *config.LivePipelinesConfig
	agentCfgs   []config.AgentConfig

	profiles map[string]*models.UserProfile

	orchestrator *orchestrator.Orchestrator
	optimizerAgt *optimizer.Optimizer
	breaker      *optimizer.CircuitBreaker
	council      *experts.Council
	styleReviewer   *review.StyleReviewer
	clarityReviewer *review.ClarityReviewer
	credibility     *credibility.Tracker
	urgencyDetector *urgency.Detector
	georiskTracker  *georisk.Tracker
	trendTracker    *trends.Tracker
	enricher        *enrichment.Enricher
	audit           *audit.Trail
	store           *persistence.Store
	dispatcher      *delivery.Dispatcher

	sem             chan struct{}
	pipelineTimeout time.Duration

	log *slog.Logger
}

// Config bundles everything New needs beyond the pipeline config, kept
// as a struct since the list of collaborators is long and mostly
// optional.
type Config struct {
	PipelineConfig *config.LivePipelinesConfig
	AgentConfigs   []config.AgentConfig
	PersonaConfigs []config.PersonaConfig
	Enricher       *enrichment.Enricher
	LLMVoter       experts.LLMVoter
	LLMRewriter    review.LLMRewriter
	Store          *persistence.Store
	Dispatcher     *delivery.Dispatcher

	// MaxConcurrentRequests bounds how many pipelines may run at once;
	// HandleRequest returns ErrBusy when no permit frees up within
	// busyAcquireWait. Zero or negative falls back to
	// defaultMaxConcurrentRequests.
	MaxConcurrentRequests int
	// PipelineTimeout is the deadline a single HandleRequest call is
	// expected to finish within; it should match the context timeout the
	// caller applies. Zero falls back to defaultPipelineTimeout.
	PipelineTimeout time.Duration

	Logger *slog.Logger
}

// New builds an Engine from cfg, wiring every stage's thresholds from
// the live pipeline config.
func New(cfg Config) *Engine {
	pc := cfg.PipelineConfig.Get()
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxConcurrent := cfg.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentRequests
	}
	pipelineTimeout := cfg.PipelineTimeout
	if pipelineTimeout <= 0 {
		pipelineTimeout = defaultPipelineTimeout
	}

	e := &Engine{
		pipelineCfg:  cfg.PipelineConfig,
		agentCfgs:    cfg.AgentConfigs,
		profiles:     map[string]*models.UserProfile{},
		orchestrator: orchestrator.New(cfg.AgentConfigs, 10),
		optimizerAgt: optimizer.New(optimizer.DefaultThresholds(), pc.FailureThreshold, float64(pc.RecoverySeconds)),
		breaker:      optimizer.NewCircuitBreaker(pc.FailureThreshold, float64(pc.RecoverySeconds)),
		council: experts.NewCouncil(pc.KeepThreshold, pc.ConfidenceMin, pc.ConfidenceMax,
			pc.MinVotesToAccept, cfg.LLMVoter),
		styleReviewer:   review.NewStyleReviewer(cfg.LLMRewriter),
		clarityReviewer: review.NewClarityReviewer(cfg.LLMRewriter),
		credibility:     credibility.NewTracker(),
		urgencyDetector: urgency.NewDetector(pc.VelocityWindowMinutes, pc.BreakingSourceThreshold,
			pc.RecencyElevatedMinutes, pc.WaningNoveltyThreshold),
		georiskTracker: georisk.NewTracker(),
		trendTracker:   trends.NewTracker(pc.BaselineDecay, pc.AnomalyThreshold),
		enricher:       cfg.Enricher,
		audit:          audit.NewTrail(500),
		store:           cfg.Store,
		dispatcher:      cfg.Dispatcher,
		sem:             make(chan struct{}, maxConcurrent),
		pipelineTimeout: pipelineTimeout,
		log:             logger,
	}

	if len(cfg.PersonaConfigs) > 0 {
		e.council.Personas = personasFromConfig(cfg.PersonaConfigs)
	}

	if e.store != nil {
		e.loadState()
	}
	return e
}

// personasFromConfig converts personas.json entries into the expert
// council's vote-weighting shape. Personas with a name the heuristic
// rationale generator doesn't recognize still vote and score normally;
// they just get the generic rationale sentence instead of a specialist one.
func personasFromConfig(cfgs []config.PersonaConfig) []experts.Persona {
	personas := make([]experts.Persona, 0, len(cfgs))
	for _, p := range cfgs {
		personas = append(personas, experts.Persona{
			ID:      p.Name,
			Name:    p.Name,
			Weights: p.DimensionWeights,
		})
	}
	return personas
}

// KnownTopics returns the union of topics covered by the configured research
// agents, for validating free-text feedback commands against real topics.
func (e *Engine) KnownTopics() map[string]bool {
	topics := make(map[string]bool)
	for _, a := range e.agentCfgs {
		for _, t := range a.Topics {
			topics[t] = true
		}
	}
	return topics
}

func (e *Engine) profile(userID string) *models.UserProfile {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := e.profiles[userID]; ok {
		return p
	}
	p := models.DefaultProfile(userID)
	e.profiles[userID] = p
	return p
}

// Request is the inbound briefing request.
type Request struct {
	UserID         string
	Prompt         string
	WeightedTopics map[string]float64
	MaxItems       int
}

// HandleRequest runs the full pipeline for req and returns the
// delivered payload. It rejects with ErrBusy when no pipeline permit is
// free, and aborts with a *TimeoutError (no partial payload) once ctx's
// deadline passes mid-pipeline.
func (e *Engine) HandleRequest(ctx context.Context, req Request) (models.DeliveryPayload, error) {
	if ctx.Err() == context.DeadlineExceeded {
		return models.DeliveryPayload{}, &TimeoutError{After: e.pipelineTimeout}
	}

	select {
	case e.sem <- struct{}{}:
		defer func() { <-e.sem }()
	case <-time.After(busyAcquireWait):
		return models.DeliveryPayload{}, ErrBusy
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return models.DeliveryPayload{}, &TimeoutError{After: e.pipelineTimeout}
		}
		return models.DeliveryPayload{}, ctx.Err()
	}

	pc := e.pipelineCfg.Get()
	profile := e.profile(req.UserID)

	limit := req.MaxItems
	if limit <= 0 {
		limit = profile.MaxItems
	}
	if limit > 10 {
		limit = 10
	}

	task, lifecycle := e.orchestrator.CompileBrief(req.UserID, req.Prompt, *profile, time.Now().UTC())
	if len(req.WeightedTopics) > 0 {
		task.WeightedTopics = req.WeightedTopics
	}
	requestID := task.RequestID

	lifecycle.Advance(orchestrator.StageResearching)
	agentCfgs := e.orchestrator.SelectAgents(task)
	agents := make([]research.Agent, 0, len(agentCfgs))
	for _, cfg := range agentCfgs {
		agents = append(agents, research.BuildAgent(cfg))
	}
	fleet := research.NewFleet(agents, 8*time.Second, e.breaker, e.log)

	start := time.Now()
	topK := 5
	agentResults := fleet.Run(ctx, task, topK)
	researchElapsed := time.Since(start)

	var allCandidates []models.Candidate
	byAgent := map[string]int{}
	for _, r := range agentResults {
		if r.Err != nil {
			e.optimizerAgt.RecordAgentRun(r.AgentID, 0, r.Latency, true)
			continue
		}
		e.optimizerAgt.RecordAgentRun(r.AgentID, len(r.Candidates), r.Latency, false)
		byAgent[r.AgentID] = len(r.Candidates)
		allCandidates = append(allCandidates, r.Candidates...)
	}
	e.orchestrator.RecordResearchResults(lifecycle, len(allCandidates))
	e.optimizerAgt.RecordStageRun("research", researchElapsed, false)

	if err := e.failIfDeadlineExceeded(ctx, lifecycle); err != nil {
		return models.DeliveryPayload{}, err
	}

	perAgentMS := 0.0
	if len(byAgent) > 0 {
		perAgentMS = float64(researchElapsed.Milliseconds()) / float64(len(byAgent))
	}
	for agentID, count := range byAgent {
		e.audit.RecordResearch(requestID, agentID, "", count, perAgentMS)
	}

	allCandidates = keepValid(allCandidates)
	allCandidates = applySourceWeights(allCandidates, profile.SourceWeights)
	allCandidates = filterMutedTopics(allCandidates, profile.MutedTopics)
	allCandidates = boostRegionsOfInterest(allCandidates, profile.RegionsOfInterest)

	intelStart := time.Now()
	allCandidates = e.runIntelligence(allCandidates, pc)
	e.optimizerAgt.RecordStageRun("intelligence", time.Since(intelStart), false)

	if err := e.failIfDeadlineExceeded(ctx, lifecycle); err != nil {
		return models.DeliveryPayload{}, err
	}

	lifecycle.Advance(orchestrator.StageExpertReview)
	weights := models.ScoreWeights{
		Evidence: pc.Weights.Evidence, Novelty: pc.Weights.Novelty,
		PreferenceFit: pc.Weights.PreferenceFit, PredictionSignal: pc.Weights.PredictionSignal,
	}
	now := time.Now().UTC()
	expertStart := time.Now()
	selected, _, debates := e.council.Select(allCandidates, weights, limit, now)
	e.orchestrator.RecordSelection(lifecycle, len(selected))
	e.optimizerAgt.RecordStageRun("expert_council", time.Since(expertStart), false)

	e.recordDebateAudit(requestID, debates, allCandidates, selected)
	for _, c := range selected {
		e.optimizerAgt.RecordAgentSelection(c.DiscoveredBy, 1)
	}

	if err := e.failIfDeadlineExceeded(ctx, lifecycle); err != nil {
		return models.DeliveryPayload{}, err
	}

	if e.enricher != nil {
		enrichStart := time.Now()
		selected = e.enricher.Enrich(ctx, selected)
		e.optimizerAgt.RecordStageRun("article_enrichment", time.Since(enrichStart), false)
	}

	if err := e.failIfDeadlineExceeded(ctx, lifecycle); err != nil {
		return models.DeliveryPayload{}, err
	}

	var threads []models.NarrativeThread
	if pc.Stages.Clustering {
		threads = clustering.Cluster(selected, pc.SimilarityThreshold, pc.CrossSourceFactor, weights, e.credibility.TrustFactor)
	}
	var geoRisks []models.GeoRiskEntry
	if pc.Stages.GeoRisk {
		geoRisks = e.georiskTracker.Assess(allCandidates)
	}
	var trendSnapshots []models.TrendSnapshot
	if pc.Stages.Trends {
		trendSnapshots = e.trendTracker.Observe(allCandidates)
	}

	lifecycle.Advance(orchestrator.StageEditorialReview)
	reviewStart := time.Now()
	reportItems := e.assembleReport(selected, threads, *profile, requestID, pc)
	e.optimizerAgt.RecordStageRun("editorial_review", time.Since(reviewStart), false)

	briefingType := determineBriefingType(selected)
	activeStages := activeStageNames(pc.Stages)

	payload := models.DeliveryPayload{
		UserID:       req.UserID,
		GeneratedAt:  time.Now().UTC(),
		Items:        reportItems,
		BriefingType: briefingType,
		Threads:      threads,
		GeoRisks:     geoRisks,
		Trends:       trendSnapshots,
		Metadata: models.Metadata{
			PipelineHealth: models.PipelineHealth{
				AgentsTotal:        len(agents),
				AgentsContributing: len(byAgent),
				StagesEnabled:      activeStages,
				TotalCandidates:    len(allCandidates),
			},
		},
	}

	lifecycle.Advance(orchestrator.StageFormatting)
	e.orchestrator.RecordCompletion(lifecycle)
	e.audit.RecordDelivery(requestID, req.UserID, len(reportItems), briefingType, lifecycle.TotalElapsed())

	if e.dispatcher != nil {
		e.dispatcher.Deliver(ctx, profile, payload)
	}

	if e.store != nil {
		e.saveState()
	}

	e.log.Info("briefing delivered", "request_id", requestID, "user_id", req.UserID,
		"items", len(reportItems), "briefing_type", briefingType)
	return payload, nil
}

// failIfDeadlineExceeded checks ctx between pipeline stages so a request
// that has already blown its deadline is abandoned immediately instead of
// running further stages and surfacing a partial payload.
func (e *Engine) failIfDeadlineExceeded(ctx context.Context, lifecycle *orchestrator.Lifecycle) error {
	if ctx.Err() != context.DeadlineExceeded {
		return nil
	}
	lifecycle.Fail("timeout")
	return &TimeoutError{After: e.pipelineTimeout}
}

func keepValid(candidates []models.Candidate) []models.Candidate {
	out := candidates[:0]
	for _, c := range candidates {
		if c.Valid() {
			out = append(out, c)
		}
	}
	return out
}

func applySourceWeights(candidates []models.Candidate, sourceWeights map[string]float64) []models.Candidate {
	if len(sourceWeights) == 0 {
		return candidates
	}
	for i := range candidates {
		sw, ok := sourceWeights[candidates[i].Source]
		if !ok || sw == 0 {
			continue
		}
		candidates[i].PreferenceFit = clamp01(candidates[i].PreferenceFit + sw*0.15)
	}
	return candidates
}

func filterMutedTopics(candidates []models.Candidate, muted []string) []models.Candidate {
	if len(muted) == 0 {
		return candidates
	}
	mutedSet := make(map[string]bool, len(muted))
	for _, m := range muted {
		mutedSet[m] = true
	}
	out := candidates[:0]
	for _, c := range candidates {
		if !mutedSet[c.Topic] {
			out = append(out, c)
		}
	}
	return out
}

func boostRegionsOfInterest(candidates []models.Candidate, regions []string) []models.Candidate {
	if len(regions) == 0 {
		return candidates
	}
	roi := make(map[string]bool, len(regions))
	for _, r := range regions {
		roi[normalizeRegion(r)] = true
	}
	for i := range candidates {
		for _, r := range candidates[i].Regions {
			if roi[normalizeRegion(r)] {
				candidates[i].PreferenceFit = clamp01(candidates[i].PreferenceFit + 0.15)
				break
			}
		}
	}
	return candidates
}

func normalizeRegion(r string) string {
	return strings.ReplaceAll(strings.ToLower(r), " ", "_")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (e *Engine) runIntelligence(candidates []models.Candidate, pc *config.PipelinesConfig) []models.Candidate {
	if pc.Stages.Credibility {
		for _, c := range candidates {
			e.credibility.RecordSeen(c.Source)
		}
	}
	if pc.Stages.Corroboration {
		candidates = corroboration.Detect(candidates, pc.SimilarityThreshold)
		for _, c := range candidates {
			for range c.CorroboratedBy {
				e.credibility.RecordCorroboration(c.Source)
			}
		}
	}
	if pc.Stages.Urgency {
		candidates = e.urgencyDetector.Apply(candidates, time.Now().UTC())
	}
	if pc.Stages.Diversity {
		weights := models.ScoreWeights{
			Evidence: pc.Weights.Evidence, Novelty: pc.Weights.Novelty,
			PreferenceFit: pc.Weights.PreferenceFit, PredictionSignal: pc.Weights.PredictionSignal,
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].CompositeScore(weights) > candidates[j].CompositeScore(weights)
		})
		candidates = diversity.Enforce(candidates, pc.MaxPerSource)
	}
	return candidates
}

func (e *Engine) recordDebateAudit(requestID string, debates []models.DebateRecord, all, selected []models.Candidate) {
	selectedIDs := make(map[string]bool, len(selected))
	for _, c := range selected {
		selectedIDs[c.ID] = true
	}
	for _, d := range debates {
		for _, vote := range d.Votes {
			e.audit.RecordVote(requestID, vote.Expert, d.CandidateID, vote.Keep, vote.Confidence,
				vote.Rationale, vote.RiskNote, d.Arbitrated)
		}
	}
	for _, c := range all {
		isSelected := selectedIDs[c.ID]
		reason := "Below vote threshold or deduplicated"
		if isSelected {
			reason = "Accepted by expert council"
		}
		score := c.CompositeScore(models.ScoreWeights{Evidence: 0.4, Novelty: 0.25, PreferenceFit: 0.25, PredictionSignal: 0.1})
		e.audit.RecordSelection(requestID, c.ID, c.Title, isSelected, reason, score)
	}
}

func (e *Engine) assembleReport(selected []models.Candidate, threads []models.NarrativeThread,
	profile models.UserProfile, requestID string, pc *config.PipelinesConfig) []models.ReportItem {

	threadMap := map[string]string{}
	for _, th := range threads {
		for _, c := range th.Candidates {
			threadMap[c.ID] = th.ThreadID
		}
	}

	items := make([]models.ReportItem, 0, len(selected))
	for _, c := range selected {
		credScore := e.credibility.TrustFactor(c.Source)
		offset := 0.15
		confidence := &models.ConfidenceBand{
			Low:            clamp01(credScore - offset),
			Mid:            clamp01(credScore),
			High:           clamp01(credScore + offset),
			KeyAssumptions: e.buildAssumptions(c),
		}

		contrarian := c.ContrarianSignal
		if contrarian == "" && c.Novelty > 0.8 && c.Evidence < 0.6 {
			contrarian = "High novelty but limited evidence, monitor for confirmation."
		}

		item := models.ReportItem{
			Candidate:         c,
			WhyItMatters:      fmt.Sprintf("Aligned with your weighted interest in %s and strong source quality.", c.Topic),
			WhatChanged:       "New cross-source confirmation and discussion momentum since last cycle.",
			PredictiveOutlook: "Market and narrative signals suggest elevated watch priority.",
			AdjacentReads:     adjacentReadPlaceholders(c.Topic, 3),
			Confidence:        confidence,
			ThreadID:          threadMap[c.ID],
			ContrarianNote:    contrarian,
		}
		items = append(items, item)
	}

	for i, item := range items {
		beforeWhy := item.WhyItMatters
		item = e.styleReviewer.Review(item, profile)
		e.audit.RecordReview(requestID, "review_agent_style", item.Candidate.ID, "why_it_matters", beforeWhy, item.WhyItMatters)

		beforeOutlook := item.PredictiveOutlook
		item = e.clarityReviewer.Review(item, profile)
		e.audit.RecordReview(requestID, "review_agent_clarity", item.Candidate.ID, "predictive_outlook", beforeOutlook, item.PredictiveOutlook)

		items[i] = item
	}
	return items
}

func adjacentReadPlaceholders(topic string, n int) []string {
	reads := make([]string, n)
	for i := range reads {
		reads[i] = fmt.Sprintf("Context read %d for %s", i+1, topic)
	}
	return reads
}

func (e *Engine) buildAssumptions(c models.Candidate) []string {
	var assumptions []string
	if len(c.CorroboratedBy) > 0 {
		assumptions = append(assumptions, fmt.Sprintf("Corroborated by %d independent source(s)", len(c.CorroboratedBy)))
	} else {
		assumptions = append(assumptions, "Awaiting independent corroboration")
	}

	reliability := e.credibility.Get(c.Source)
	if reliability.ReliabilityScore >= 0.8 {
		assumptions = append(assumptions, fmt.Sprintf("Source (%s) rated high reliability", c.Source))
	} else if reliability.ReliabilityScore < 0.6 {
		assumptions = append(assumptions, fmt.Sprintf("Source (%s) rated lower reliability, verify independently", c.Source))
	}
	return assumptions
}

func determineBriefingType(selected []models.Candidate) string {
	critical, breaking := 0, 0
	for _, c := range selected {
		switch c.Urgency {
		case models.UrgencyCritical:
			critical++
		case models.UrgencyBreaking:
			breaking++
		}
	}
	if critical >= 1 || breaking >= 2 {
		return "breaking_alert"
	}
	return "morning_digest"
}

func activeStageNames(s config.StageToggles) []string {
	var names []string
	if s.Credibility {
		names = append(names, "credibility")
	}
	if s.Corroboration {
		names = append(names, "corroboration")
	}
	if s.Urgency {
		names = append(names, "urgency")
	}
	if s.Diversity {
		names = append(names, "diversity")
	}
	if s.Clustering {
		names = append(names, "clustering")
	}
	if s.GeoRisk {
		names = append(names, "georisk")
	}
	if s.Trends {
		names = append(names, "trends")
	}
	sort.Strings(names)
	return names
}

// ApplyFeedback parses free-form preference text for userID and applies
// every resulting command to that user's profile.
func (e *Engine) ApplyFeedback(userID, text string, knownTopics map[string]bool) feedback.ParseResult {
	profile := e.profile(userID)
	e.mu.Lock()
	result := feedback.ApplyText(profile, text, knownTopics)
	e.mu.Unlock()

	if len(result.Commands) > 0 {
		detail := make([]string, 0, len(result.Commands))
		for _, cmd := range result.Commands {
			detail = append(detail, fmt.Sprintf("%s=%s", cmd.Action, cmd.Value))
		}
		e.audit.RecordPreference(fmt.Sprintf("feedback-%s", userID), userID, "multi_update", strings.Join(detail, "; "))
		if e.store != nil {
			e.saveState()
		}
	}
	return result
}

// Status reports a snapshot of engine health for operator tooling.
type Status struct {
	AgentCount       int
	OrchestratorMetrics orchestrator.Metrics
	OptimizerHealth     optimizer.HealthReport
	AuditStats          map[string]interface{}
}

// EngineStatus returns a point-in-time health snapshot.
func (e *Engine) EngineStatus() Status {
	return Status{
		AgentCount:          len(e.agentCfgs),
		OrchestratorMetrics:  e.orchestrator.Metrics(),
		OptimizerHealth:      e.optimizerAgt.HealthReport(),
		AuditStats:           e.audit.Stats(),
	}
}

// RecentAuditRequests returns up to limit recently audited request IDs,
// most recent first, for operator inspection.
func (e *Engine) RecentAuditRequests(limit int) []string {
	return e.audit.RecentRequests(limit)
}

// AuditReport renders the human-readable audit trail for requestID.
func (e *Engine) AuditReport(requestID string) string {
	return e.audit.FormatRequestReport(requestID)
}

func (e *Engine) saveState() {
	e.mu.Lock()
	snapshot := make(persistedProfiles, len(e.profiles))
	for uid, p := range e.profiles {
		snapshot[uid] = *p
	}
	e.mu.Unlock()

	if err := e.store.Save("profiles", snapshot); err != nil {
		e.log.Warn("failed to persist profiles", "error", err)
	}
	if err := e.store.Save("credibility", e.credibility.Snapshot()); err != nil {
		e.log.Warn("failed to persist credibility", "error", err)
	}
	if err := e.store.Save("georisk", e.georiskTracker.Snapshot()); err != nil {
		e.log.Warn("failed to persist georisk", "error", err)
	}
}

func (e *Engine) loadState() {
	var profiles persistedProfiles
	if found, err := persistence.Load(e.store, "profiles", &profiles); err == nil && found {
		e.mu.Lock()
		for uid, p := range profiles {
			p := p
			p.Validate()
			e.profiles[uid] = &p
		}
		e.mu.Unlock()
	}

	var sources []models.SourceReliability
	if found, err := persistence.Load(e.store, "credibility", &sources); err == nil && found {
		e.credibility.Restore(sources)
	}

	var geoEntries []models.GeoRiskEntry
	if found, err := persistence.Load(e.store, "georisk", &geoEntries); err == nil && found {
		e.georiskTracker.Restore(geoEntries)
	}
}
