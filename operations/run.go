package operations

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/sync/errgroup"

	"github.com/tkuchel/codex-operations-go/commonerrors"
	"github.com/tkuchel/codex-operations-go/parallelisation"
	"github.com/tkuchel/codex-operations-go/retry"
)

// executionRecord tracks one started operation: its outcome and elapsed time. Only
// started operations are eligible for rollback.
type executionRecord struct {
	operation IOperation
	name      string
	index     int
	outcome   IResult
	err       error
	elapsed   time.Duration
}

// run holds the state of one execution: the definitive operation snapshot, the per-run
// shared context and the failure accumulator.
type run struct {
	orchestrator *Orchestrator
	id           string
	ctx          context.Context
	cancel       context.CancelCauseFunc
	operations   []IOperation
	predicates   map[string]PredicateFunc
	store        *SharedContext
	failures     *failureAccumulator

	mu        deadlock.Mutex
	records   []*executionRecord
	completed int
}

func (o *Orchestrator) newRun(ctx context.Context, initialValues map[string]any) (*run, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, commonerrors.WrapError(commonerrors.ErrUnexpected, err, "could not generate a run ID")
	}
	runCtx, cancel := context.WithCancelCause(ctx)

	o.mu.Lock()
	operations := make([]IOperation, len(o.operations))
	copy(operations, o.operations)
	predicates := make(map[string]PredicateFunc, len(o.predicates))
	for name, predicate := range o.predicates {
		predicates[name] = predicate
	}
	o.cancelRun = cancel
	o.mu.Unlock()
	o.runID.Store(id.String())

	return &run{
		orchestrator: o,
		id:           id.String(),
		ctx:          runCtx,
		cancel:       cancel,
		operations:   operations,
		predicates:   predicates,
		store:        NewSharedContext(initialValues),
		failures:     newFailureAccumulator(),
	}, nil
}

func (r *run) close() {
	r.cancel(nil)
	o := r.orchestrator
	o.mu.Lock()
	o.cancelRun = nil
	o.mu.Unlock()
	o.runID.Store("")
}

// execute drives the run: sequential iteration with parallel-group dispatch, then
// rollback of every started operation when failures were recorded.
func (r *run) execute() ([]*executionRecord, error) {
	o := r.orchestrator
	o.state.Store(string(StateRunning))
	total := len(r.operations)
	if total == 0 {
		o.state.Store(string(StateCompleted))
		return nil, nil
	}
	o.logger.Info("execution started", "run", r.id, "operations", total)
	o.hub.logMessage(LogEvent{RunID: r.id, Message: fmt.Sprintf("execution of %d operations started", total), Timestamp: time.Now()})

	i := 0
	for i < total {
		if err := r.checkpoint(); err != nil {
			r.failures.append(err)
			o.logger.Error(err, "execution aborted", "run", r.id)
			break
		}
		if r.operations[i].Options().AllowParallel() {
			groupEnd := i + 1
			for groupEnd < total && r.operations[groupEnd].Options().AllowParallel() {
				groupEnd++
			}
			groupFailed := r.runParallelGroup(i, groupEnd)
			if groupFailed && o.configuration.HaltOnParallelFailure {
				break
			}
			i = groupEnd
			continue
		}
		record, skipped := r.beginOperation(r.operations[i], i)
		if !skipped {
			err := r.performOperation(record)
			if err != nil && !record.operation.Options().ContinueOnFailure() {
				break
			}
		}
		i++
	}

	records := r.sortedRecords()
	if r.failures.empty() {
		o.state.Store(string(StateCompleted))
		o.logger.Info("execution completed", "run", r.id)
		o.hub.logMessage(LogEvent{RunID: r.id, Message: "execution completed", Timestamp: time.Now()})
		return records, nil
	}

	if len(records) == 0 {
		o.state.Store(string(StateFailed))
		return records, r.failures.errorOrNil()
	}

	o.state.Store(string(StateRollingBack))
	names := make([]string, len(records))
	executed := make([]IOperation, len(records))
	for i, record := range records {
		names[i] = record.name
		executed[i] = record.operation
	}
	o.hub.rollbackStarted(RollbackEvent{RunID: r.id, OperationNames: names, Cause: r.failures.errorOrNil(), Timestamp: time.Now()})
	o.logger.Info("rollback started", "run", r.id, "operations", names)

	coordinator := NewRollbackCoordinator(o.logger, o.configuration.ConcurrentRollback, o.configuration.DefaultRollbackTimeout)
	// compensation must proceed even when the run context was cancelled
	rollbackCtx := context.WithoutCancel(r.ctx)
	if err := coordinator.Rollback(rollbackCtx, r.store, executed); err != nil {
		for _, cause := range UnderlyingFailures(err) {
			r.failures.append(cause)
		}
	}
	o.state.Store(string(StateRolledBack))
	return records, r.failures.errorOrNil()
}

// checkpoint is a cooperative suspension point: it blocks while the orchestrator is
// paused and surfaces cancellation observed between operations.
func (r *run) checkpoint() error {
	if err := r.orchestrator.gate.Wait(r.ctx); err != nil {
		return err
	}
	return parallelisation.DetermineContextError(r.ctx)
}

// beginOperation evaluates the operation's predicate and, unless skipped, records the
// operation as started and notifies subscribers.
func (r *run) beginOperation(operation IOperation, index int) (record *executionRecord, skipped bool) {
	name := operationDisplayName(operation, index)
	if predicate, found := r.predicates[normaliseKey(name)]; found && !predicate(r.store) {
		r.orchestrator.logger.V(1).Info("operation skipped", "run", r.id, "operation", name)
		// skipped operations still advance the tally so progress stays monotonic and
		// reaches 100 when everything else succeeds
		r.advanceProgress(fmt.Sprintf("operation %q skipped", name))
		return nil, true
	}
	record = &executionRecord{operation: operation, name: name, index: index}
	r.mu.Lock()
	r.records = append(r.records, record)
	r.mu.Unlock()
	r.orchestrator.hub.operationStarted(OperationEvent{RunID: r.id, OperationName: name, Index: index, Timestamp: time.Now()})
	return record, false
}

// performOperation executes a started operation with retry and timeout wrapping and
// publishes its completion or failure.
func (r *run) performOperation(record *executionRecord) error {
	o := r.orchestrator
	start := time.Now()
	outcome, err := r.attemptExecute(record)
	record.elapsed = time.Since(start)
	record.outcome = outcome
	if err != nil {
		failure := fmt.Errorf("operation %q failed: %w", record.name, err)
		record.err = failure
		r.failures.append(failure)
		o.hub.operationFailed(OperationEvent{RunID: r.id, OperationName: record.name, Index: record.index, Err: failure, Elapsed: record.elapsed, Timestamp: time.Now()})
		o.logger.Error(err, "operation failed", "run", r.id, "operation", record.name)
		return failure
	}
	o.hub.operationCompleted(OperationEvent{RunID: r.id, OperationName: record.name, Index: record.index, Elapsed: record.elapsed, Timestamp: time.Now()})
	r.advanceProgress(fmt.Sprintf("operation %q completed", record.name))
	return nil
}

// attemptExecute performs up to 1+RetryMax attempts, each bounded by the execute
// timeout through a derived cancellation signal combining the caller context, the
// orchestrator cancellation and the per-attempt timeout.
func (r *run) attemptExecute(record *executionRecord) (IResult, error) {
	o := r.orchestrator
	options := record.operation.Options()
	policy := options.RetryPolicy()
	if policy == nil {
		policy = &o.configuration.Retry
	}
	timeout := options.ExecuteTimeout()
	if timeout <= 0 {
		timeout = o.configuration.DefaultExecuteTimeout
	}
	var outcome IResult
	err := retry.RetryOnAll(r.ctx, o.logger, policy, func() error {
		result, attemptErr := invokeAction(r.ctx, r.store, record.operation.Execute, timeout)
		outcome = result
		return attemptErr
	}, fmt.Sprintf("operation %q failed", record.name))
	if err != nil && policy.Enabled && policy.RetryMax > 0 && commonerrors.None(err, commonerrors.ErrCancelled) {
		err = commonerrors.WrapError(commonerrors.ErrExhausted, err, fmt.Sprintf("operation %q still failing after %d attempts", record.name, policy.Attempts()))
	}
	return outcome, err
}

// runParallelGroup dispatches operations [start, end) concurrently. Start notifications
// fire in registration order; a member failure is recorded but never cancels siblings,
// which are all awaited for deterministic accounting. It reports whether the group
// failed, i.e. whether a member without the continue-on-failure flag failed.
func (r *run) runParallelGroup(start, end int) bool {
	records := make([]*executionRecord, 0, end-start)
	for i := start; i < end; i++ {
		record, skipped := r.beginOperation(r.operations[i], i)
		if !skipped {
			records = append(records, record)
		}
	}
	var g errgroup.Group
	for _, record := range records {
		record := record
		g.Go(func() error {
			err := r.performOperation(record)
			if err != nil && !record.operation.Options().ContinueOnFailure() {
				return err
			}
			return nil
		})
	}
	return g.Wait() != nil
}

// invokeAction runs an action bounded by timeout, converting panics into failures so
// that an operation fault never escapes the orchestrator. The outcome travels over a
// buffered channel: a timed-out action may still be running when this returns, so the
// channel is the only communication with it.
func invokeAction(ctx context.Context, store ISharedContext, action ActionFunc, timeout time.Duration) (IResult, error) {
	outcomes := make(chan IResult, 1)
	err := parallelisation.RunActionWithTimeout(ctx, timeout, func(actionCtx context.Context) (actionErr error) {
		defer func() {
			if recovered := recover(); recovered != nil {
				actionErr = commonerrors.Newf(commonerrors.ErrUnexpected, "action panicked: %v", recovered)
			}
		}()
		result := action(actionCtx, store)
		outcomes <- result
		return resultError(result)
	})
	if err != nil {
		return nil, err
	}
	select {
	case outcome := <-outcomes:
		return outcome, nil
	default:
		return nil, nil
	}
}

func (r *run) advanceProgress(message string) {
	total := len(r.operations)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
	percentage := float64(r.completed) / float64(total) * 100
	// published under the lock so percentages are monotonic even for parallel groups
	r.orchestrator.hub.progressChanged(ProgressEvent{
		RunID:      r.id,
		Percentage: percentage,
		Completed:  r.completed,
		Total:      total,
		Message:    message,
		Timestamp:  time.Now(),
	})
}

func (r *run) sortedRecords() []*executionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	records := make([]*executionRecord, len(r.records))
	copy(records, r.records)
	sort.Slice(records, func(i, j int) bool { return records[i].index < records[j].index })
	return records
}
