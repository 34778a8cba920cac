package operations

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sasha-s/go-deadlock"
)

// failureListFormat renders an aggregated failure with first-failure-first ordering.
func failureListFormat(errs []error) string {
	if len(errs) == 1 {
		return fmt.Sprintf("1 failure occurred: %v", errs[0])
	}
	points := make([]string, len(errs))
	for i, err := range errs {
		points[i] = fmt.Sprintf("#%d: %v", i+1, err)
	}
	return fmt.Sprintf("%d failures occurred (in order): %v", len(errs), strings.Join(points, "; "))
}

// failureAccumulator collects every failure of one run, preserving the order in which
// they were recorded. Safe for concurrent use by parallel-group operations.
type failureAccumulator struct {
	mu  deadlock.Mutex
	agg *multierror.Error
}

func newFailureAccumulator() *failureAccumulator {
	return &failureAccumulator{}
}

func (f *failureAccumulator) append(err error) {
	if err == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.agg = multierror.Append(f.agg, err)
	f.agg.ErrorFormat = failureListFormat
}

func (f *failureAccumulator) empty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.agg == nil || len(f.agg.Errors) == 0
}

func (f *failureAccumulator) errorOrNil() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.agg.ErrorOrNil()
}

// UnderlyingFailures returns the ordered list of causes carried by an error returned
// from Run: operation-phase failures first, rollback-phase failures after.
func UnderlyingFailures(err error) []error {
	if err == nil {
		return nil
	}
	var agg *multierror.Error
	if errors.As(err, &agg) {
		return agg.Errors
	}
	return []error{err}
}
