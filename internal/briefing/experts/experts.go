// Package experts runs the multi-persona evaluation council that votes
// each research candidate in or out of the final briefing.
package experts

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alexroessner/newsfeed/internal/models"
)

// Persona describes one expert's specialist weighting over a candidate's
// scoring dimensions. Weights need not sum to 1; Score normalizes by their
// sum so a persona can list only the dimensions it cares about.
type Persona struct {
	ID      string
	Name    string
	Weights map[string]float64
}

var sourceTierScores = map[string]float64{
	"reuters": 0.92, "ap": 0.90, "bbc": 0.88, "guardian": 0.85, "ft": 0.87,
	"aljazeera": 0.78, "arxiv": 0.75, "hackernews": 0.60, "reddit": 0.55,
	"x": 0.50, "gdelt": 0.58, "web": 0.50,
}

var lifecycleScores = map[models.Lifecycle]float64{
	models.LifecycleDeveloping: 0.8,
	models.LifecycleBreaking:   1.0,
	models.LifecycleOngoing:    0.6,
	models.LifecycleWaning:     0.3,
	models.LifecycleResolved:   0.1,
}

var urgencyScores = map[models.Urgency]float64{
	models.UrgencyRoutine:  0.3,
	models.UrgencyElevated: 0.6,
	models.UrgencyBreaking: 0.85,
	models.UrgencyCritical: 1.0,
}

var diverseSources = map[string]bool{
	"aljazeera": true, "arxiv": true, "gdelt": true, "hackernews": true,
}

var tier1Sources = map[string]bool{
	"reuters": true, "ap": true, "bbc": true, "guardian": true, "ft": true,
}

// DefaultPersonas is the standing five-member council: source quality,
// topic relevance, user preference fit, geopolitical risk, and market
// signal. Each reads a different slice of a candidate's scoring surface.
var DefaultPersonas = []Persona{
	{
		ID:   "expert_quality_agent",
		Name: "Source Quality & Evidence Analyst",
		Weights: map[string]float64{
			"evidence": 0.40, "source_tier": 0.30, "corroboration": 0.20, "recency": 0.10,
		},
	},
	{
		ID:   "expert_relevance_agent",
		Name: "Topic Relevance & Novelty Analyst",
		Weights: map[string]float64{
			"novelty": 0.35, "preference_fit": 0.30, "lifecycle": 0.20, "contrarian": 0.15,
		},
	},
	{
		ID:   "expert_preference_fit_agent",
		Name: "User Preference & Decision Utility Analyst",
		Weights: map[string]float64{
			"preference_fit": 0.35, "prediction_signal": 0.25, "urgency": 0.20, "diversity": 0.20,
		},
	},
	{
		ID:   "expert_geopolitical_risk_agent",
		Name: "Geopolitical Risk & Escalation Analyst",
		Weights: map[string]float64{
			"urgency": 0.35, "evidence": 0.25, "regions": 0.25, "novelty": 0.15,
		},
	},
	{
		ID:   "expert_market_signal_agent",
		Name: "Market Signal & Economic Impact Analyst",
		Weights: map[string]float64{
			"prediction_signal": 0.35, "evidence": 0.25, "novelty": 0.20, "preference_fit": 0.20,
		},
	},
}

// LLMVoter is an optional reasoning backend; when configured, Council uses
// it in place of heuristic scoring. It returns keep, confidence, rationale
// and risk note for one persona/candidate pair.
type LLMVoter interface {
	Vote(persona Persona, c models.Candidate) (keep bool, confidence float64, rationale, riskNote string, err error)
}

// Council runs all personas against a candidate set and arbitrates the
// votes into an accept/reject decision per candidate.
type Council struct {
	Personas         []Persona
	KeepThreshold    float64
	ConfidenceMin    float64
	ConfidenceMax    float64
	MinVotesToAccept string // "majority", "unanimous", or a literal integer
	LLM              LLMVoter
}

// NewCouncil builds a Council over the default persona set.
func NewCouncil(keepThreshold, confidenceMin, confidenceMax float64, minVotesToAccept string, llm LLMVoter) *Council {
	return &Council{
		Personas:         DefaultPersonas,
		KeepThreshold:    keepThreshold,
		ConfidenceMin:    confidenceMin,
		ConfidenceMax:    confidenceMax,
		MinVotesToAccept: minVotesToAccept,
		LLM:              llm,
	}
}

// requiredVotes computes how many keep votes a candidate needs to survive,
// given the council's size and its min-votes policy.
func (c *Council) requiredVotes() int {
	n := len(c.Personas)
	if n == 0 {
		return 0
	}
	switch c.MinVotesToAccept {
	case "majority":
		return int(math.Ceil(float64(n) / 2))
	case "unanimous":
		return n
	}
	requested, err := strconv.Atoi(c.MinVotesToAccept)
	if err != nil {
		return int(math.Ceil(float64(n) / 2))
	}
	if requested > n {
		return n
	}
	if requested < 1 {
		return 1
	}
	return requested
}

// dimensionValue evaluates one scoring dimension of a persona's weights
// against a candidate.
func dimensionValue(dimension string, c models.Candidate, now time.Time) float64 {
	switch dimension {
	case "evidence":
		return c.Evidence
	case "novelty":
		return c.Novelty
	case "preference_fit":
		return c.PreferenceFit
	case "prediction_signal":
		return c.PredictionSignal
	case "source_tier":
		if v, ok := sourceTierScores[c.Source]; ok {
			return v
		}
		return 0.50
	case "corroboration":
		return math.Min(1.0, float64(len(c.CorroboratedBy))*0.3+0.2)
	case "recency":
		ageMinutes := now.Sub(c.CreatedAt).Minutes()
		recency := 1.0 - ageMinutes/1440
		if recency < 0.1 {
			recency = 0.1
		}
		return recency
	case "lifecycle":
		if v, ok := lifecycleScores[c.Lifecycle]; ok {
			return v
		}
		return 0.5
	case "contrarian":
		switch {
		case c.ContrarianSignal != "":
			return 0.85
		case c.Novelty > 0.8:
			return 0.65
		default:
			return 0.3
		}
	case "urgency":
		if v, ok := urgencyScores[c.Urgency]; ok {
			return v
		}
		return 0.3
	case "regions":
		return math.Min(1.0, float64(len(c.Regions))*0.3+0.2)
	case "diversity":
		if diverseSources[c.Source] {
			return 0.8
		}
		return 0.4
	default:
		return 0
	}
}

// Score computes persona's weighted read of candidate c, normalized to
// [0,1] by the sum of the weights it actually applied.
func Score(persona Persona, c models.Candidate, now time.Time) float64 {
	score := 0.0
	wSum := 0.0
	for dimension, weight := range persona.Weights {
		score += weight * dimensionValue(dimension, c, now)
		wSum += weight
	}
	if wSum > 0 {
		score /= wSum
	}
	return score
}

func clampConfidence(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func heuristicRationale(persona Persona, c models.Candidate, score float64, keep bool) string {
	switch persona.ID {
	case "expert_quality_agent":
		tier := "tier-2"
		if tier1Sources[c.Source] {
			tier = "tier-1"
		}
		corr := "awaiting corroboration"
		if len(c.CorroboratedBy) > 0 {
			corr = fmt.Sprintf("corroborated by %d source(s)", len(c.CorroboratedBy))
		}
		return fmt.Sprintf("Source quality: %s (%s), evidence=%.2f, %s. Overall quality score: %.2f.",
			tier, c.Source, c.Evidence, corr, score)
	case "expert_relevance_agent":
		verdict := "Fails"
		if keep {
			verdict = "Passes"
		}
		return fmt.Sprintf("Novelty=%.2f, topic fit=%.2f, lifecycle=%s. %s relevance threshold at %.2f.",
			c.Novelty, c.PreferenceFit, c.Lifecycle, verdict, score)
	case "expert_preference_fit_agent":
		return fmt.Sprintf("Preference alignment=%.2f, prediction signal=%.2f, urgency=%s. User utility score: %.2f.",
			c.PreferenceFit, c.PredictionSignal, c.Urgency, score)
	case "expert_geopolitical_risk_agent":
		regions := "unlocalized"
		if len(c.Regions) > 0 {
			regions = strings.Join(c.Regions, ", ")
		}
		return fmt.Sprintf("Regions: %s, urgency=%s, escalation risk score: %.2f.", regions, c.Urgency, score)
	case "expert_market_signal_agent":
		return fmt.Sprintf("Market signal=%.2f, evidence=%.2f. Economic impact score: %.2f.",
			c.PredictionSignal, c.Evidence, score)
	default:
		return fmt.Sprintf("%s evaluated candidate with score %.2f.", persona.ID, score)
	}
}

func riskNote(c models.Candidate, score float64) string {
	switch {
	case score < 0.4:
		return "Low-confidence assessment, recommend additional verification before inclusion."
	case len(c.CorroboratedBy) == 0:
		return "Single-source reporting, may degrade if contradicted by subsequent coverage."
	case c.Urgency == models.UrgencyBreaking || c.Urgency == models.UrgencyCritical:
		return "Fast-moving story, assessment may change rapidly as new information emerges."
	default:
		return "Assessment stable given current evidence and source quality signals."
	}
}

// voteHeuristic casts one persona's ballot using calibrated weighted
// scoring, with no external model call.
func (c *Council) voteHeuristic(persona Persona, candidate models.Candidate, now time.Time) models.DebateVote {
	score := Score(persona, candidate, now)
	keep := score >= c.KeepThreshold
	confidence := clampConfidence(score, c.ConfidenceMin, c.ConfidenceMax)
	return models.DebateVote{
		Expert:     persona.ID,
		Keep:       keep,
		Score:      score,
		Confidence: math.Round(confidence*1000) / 1000,
		Rationale:  heuristicRationale(persona, candidate, score, keep),
		RiskNote:   riskNote(candidate, score),
		ViaLLM:     false,
	}
}

// voteLLM casts one persona's ballot via the configured reasoning backend,
// falling back to the heuristic vote on any error so a flaky model call
// never drops a candidate from the debate entirely.
func (c *Council) voteLLM(persona Persona, candidate models.Candidate, now time.Time) models.DebateVote {
	keep, confidence, rationale, note, err := c.LLM.Vote(persona, candidate)
	if err != nil {
		return c.voteHeuristic(persona, candidate, now)
	}
	return models.DebateVote{
		Expert:     persona.ID,
		Keep:       keep,
		Confidence: clampConfidence(confidence, c.ConfidenceMin, c.ConfidenceMax),
		Rationale:  rationale,
		RiskNote:   note,
		ViaLLM:     true,
	}
}

// Debate runs every persona against candidate and returns the full record
// of votes, already arbitrated against the council's min-votes policy.
func (c *Council) Debate(candidate models.Candidate, now time.Time) models.DebateRecord {
	required := c.requiredVotes()
	votes := make([]models.DebateVote, 0, len(c.Personas))
	keepVotes := 0
	for _, persona := range c.Personas {
		var v models.DebateVote
		if c.LLM != nil {
			v = c.voteLLM(persona, candidate, now)
		} else {
			v = c.voteHeuristic(persona, candidate, now)
		}
		if v.Keep {
			keepVotes++
		}
		votes = append(votes, v)
	}
	return models.DebateRecord{
		CandidateID: candidate.ID,
		Votes:       votes,
		KeepVotes:   keepVotes,
		Required:    required,
		Accepted:    keepVotes >= required,
	}
}

// Select runs the full council debate over candidates and returns the
// accepted subset (ranked by composite score, deduplicated by lowercased
// title), the rejected subset, and every debate record for the audit
// trail.
func (c *Council) Select(candidates []models.Candidate, weights models.ScoreWeights, maxItems int, now time.Time) ([]models.Candidate, []models.Candidate, []models.DebateRecord) {
	records := make([]models.DebateRecord, 0, len(candidates))
	accepted := make(map[string]bool, len(candidates))
	for _, cand := range candidates {
		rec := c.Debate(cand, now)
		records = append(records, rec)
		if rec.Accepted {
			accepted[cand.ID] = true
		}
	}

	ranked := make([]models.Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CompositeScore(weights) > ranked[j].CompositeScore(weights)
	})

	var kept []models.Candidate
	var dropped []models.Candidate
	seenTitles := make(map[string]bool)
	for _, cand := range ranked {
		if !accepted[cand.ID] {
			dropped = append(dropped, cand)
			continue
		}
		key := strings.ToLower(strings.TrimSpace(cand.Title))
		if seenTitles[key] {
			dropped = append(dropped, cand)
			continue
		}
		seenTitles[key] = true
		if maxItems > 0 && len(kept) >= maxItems {
			dropped = append(dropped, cand)
			continue
		}
		kept = append(kept, cand)
	}

	return kept, dropped, records
}
