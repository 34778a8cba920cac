package operations

import (
	"context"
)

// IResult describes the outcome of one action. It is the only shape the orchestrator
// requires from collaborators; the implementation in this package is a convenience.
type IResult interface {
	// IsSuccess states whether the action succeeded.
	IsSuccess() bool
	// ErrorMessage returns a human readable description of the failure, if any.
	ErrorMessage() string
	// Fault returns the underlying failure, if any.
	Fault() error
}

// ITypedResult is a result carrying a typed success value.
type ITypedResult[T any] interface {
	IResult
	// Value returns the typed value produced by the action.
	Value() T
}

// ISharedContext is a typed key/value store scoped to one execution run, through which
// operations and conditional predicates exchange data. Keys are case-insensitive.
// Implementations must be safe for concurrent use since parallel-group operations may
// write concurrently.
type ISharedContext interface {
	// Set stores value under key, replacing any previous value.
	Set(key string, value any)
	// Get returns the value stored under key or fails with ErrNotFound.
	Get(key string) (any, error)
	// TryGet returns the value stored under key and whether it was found.
	TryGet(key string) (any, bool)
	// Keys returns the stored keys.
	Keys() []string
	// Len returns the number of stored entries.
	Len() int
}

// ActionFunc is an execute or rollback action. It must respect ctx and complete, fail
// or observe cancellation within the timeout enforced by the orchestrator.
type ActionFunc func(ctx context.Context, store ISharedContext) IResult

// PredicateFunc gates whether an operation executes; evaluated against the shared
// context just before the operation would start.
type PredicateFunc func(store ISharedContext) bool

// IOperation is one unit of work with a forward action and a compensating rollback
// action. Operations are read-only once registered.
type IOperation interface {
	// Name returns the operation name; may be blank, in which case the registration
	// order determines its identity.
	Name() string
	// Execute performs the forward action.
	Execute(ctx context.Context, store ISharedContext) IResult
	// Rollback performs the compensating action. It must be idempotent-safe to call
	// even if Execute only partially completed.
	Rollback(ctx context.Context, store ISharedContext) IResult
	// Options returns the execution options of the operation.
	Options() *ExecutionOptions
}

// IExecutionListener receives lifecycle notifications for one orchestrator. Start
// notifications fire in registration order; completion and failure notifications of a
// parallel group may interleave based on real completion time.
type IExecutionListener interface {
	OnOperationStarted(event OperationEvent)
	OnOperationCompleted(event OperationEvent)
	OnOperationFailed(event OperationEvent)
	OnRollbackStarted(event RollbackEvent)
	OnProgressChanged(event ProgressEvent)
	OnLogMessage(event LogEvent)
}

// IOrchestrator sequences registered operations, decides continue-vs-abort policy,
// performs retries with backoff, enforces per-operation timeouts, supports
// pause/resume and conditional skipping, and drives rollback on failure.
// One orchestrator instance executes one run at a time by contract; callers must
// construct a fresh instance per run or serialise runs externally.
type IOrchestrator interface {
	// Register appends operations to the ordered operation list. Named operations must
	// be unique; registration during an in-flight run does not affect that run.
	Register(operation ...IOperation) error
	// RegisterAction builds an operation from the given actions and registers it.
	RegisterAction(name string, execute ActionFunc, rollback ActionFunc, opts ...ExecutionOption) error
	// AddConditionalBranch registers a predicate gating the named operation. At most
	// one predicate per operation name; the last registration wins.
	AddConditionalBranch(operationName string, predicate PredicateFunc) error
	// Run executes the registered operations and returns nil on success or the
	// aggregated failure containing every cause in the order it occurred.
	Run(ctx context.Context) error
	// Pause suspends progression at the next checkpoint. Cooperative: it never
	// preempts an operation mid-execution.
	Pause()
	// Resume releases a paused run.
	Resume()
	// Cancel aborts the in-flight run; rollback still occurs for operations that ran.
	Cancel()
	// State returns the current execution state.
	State() ExecutionState
	// Len returns the number of registered operations.
	Len() int
	// Subscribe registers a lifecycle listener and returns its subscription ID.
	Subscribe(listener IExecutionListener) (string, error)
	// Unsubscribe removes the listener registered under subscriptionID.
	Unsubscribe(subscriptionID string)
	// EmitLog publishes a log notification to all subscribers.
	EmitLog(message string)
}
