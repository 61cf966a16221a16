package engine

import (
	"errors"
	"fmt"
	"time"
)

// ErrBusy is returned by HandleRequest when the engine's counting
// semaphore has no free permit after the bounded acquire wait: the
// pipeline is already running MaxConcurrentRequests requests.
var ErrBusy = errors.New("Busy: no pipeline capacity available, retry later")

// TimeoutError is returned by HandleRequest when a request's pipeline
// does not finish before its configured deadline. No partial payload is
// returned alongside it.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Timeout: pipeline exceeded deadline of %s", e.After)
}
