package urgency

import (
	"testing"
	"time"

	"github.com/alexroessner/newsfeed/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestClassifyDetectsBreakingKeyword(t *testing.T) {
	d := NewDetector(60, 3, 30, 0.2)
	c := models.NewCandidate("1", "BREAKING: market halts trading", "", "", "reuters", "markets", "agent", 0.5, 0.5, 0.5, 0.5)
	u, _ := d.Classify(c, time.Now().UTC())
	assert.Equal(t, models.UrgencyBreaking, u)
}

func TestClassifyDetectsCriticalKeyword(t *testing.T) {
	d := NewDetector(60, 3, 30, 0.2)
	c := models.NewCandidate("1", "Explosion reported near capital", "", "", "reuters", "geopolitics", "agent", 0.5, 0.5, 0.5, 0.5)
	u, _ := d.Classify(c, time.Now().UTC())
	assert.Equal(t, models.UrgencyCritical, u)
}

func TestClassifyVelocityPromotesToBreaking(t *testing.T) {
	d := NewDetector(60, 2, 30, 0.2)
	c := models.NewCandidate("1", "Quarterly earnings report released", "", "", "reuters", "markets", "agent", 0.5, 0.5, 0.5, 0.5)
	c.CorroboratedBy = []string{"ap"}
	u, _ := d.Classify(c, time.Now().UTC())
	assert.Equal(t, models.UrgencyBreaking, u)
}

func TestClassifyWaningLifecycle(t *testing.T) {
	d := NewDetector(60, 3, 30, 0.5)
	c := models.NewCandidate("1", "Ongoing regulatory discussion continues", "", "", "reuters", "markets", "agent", 0.5, 0.1, 0.5, 0.5)
	c.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	_, l := d.Classify(c, time.Now().UTC())
	assert.Equal(t, models.LifecycleWaning, l)
}
