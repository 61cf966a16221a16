package jobs

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies that the scheduled-job goroutines started by
// RunScheduled in this package's tests always exit cleanly once their
// context is cancelled, instead of leaking past the test that started them.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
