package operations

import (
	"context"
	"regexp"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-logr/logr"
	"github.com/sasha-s/go-deadlock"
	"go.uber.org/atomic"

	"github.com/tkuchel/codex-operations-go/commonerrors"
	"github.com/tkuchel/codex-operations-go/parallelisation"
)

// ExecutionState describes where an orchestrator is in its run lifecycle.
type ExecutionState string

const (
	StateIdle        ExecutionState = "idle"
	StateRunning     ExecutionState = "running"
	StateCompleted   ExecutionState = "completed"
	StateFailed      ExecutionState = "failed"
	StateRollingBack ExecutionState = "rolling back"
	StateRolledBack  ExecutionState = "rolled back"
)

var _ IOrchestrator = &Orchestrator{}

// Orchestrator owns an ordered operation list and executes it with all-or-nothing
// semantics: on failure, every operation that started is compensated.
type Orchestrator struct {
	mu            deadlock.Mutex
	configuration Configuration
	logger        logr.Logger
	operations    []IOperation
	names         mapset.Set[string]
	predicates    map[string]PredicateFunc
	hub           *notificationHub
	gate          *parallelisation.Gate
	state         *atomic.String
	runID         *atomic.String
	cancelRun     context.CancelCauseFunc
}

// NewOrchestrator returns an orchestrator following configuration (nil means defaults).
func NewOrchestrator(configuration *Configuration, logger logr.Logger) (*Orchestrator, error) {
	if configuration == nil {
		configuration = DefaultConfiguration()
	}
	if err := configuration.Validate(); err != nil {
		return nil, commonerrors.WrapError(commonerrors.ErrInvalid, err, "invalid orchestrator configuration")
	}
	return &Orchestrator{
		configuration: *configuration,
		logger:        logger,
		names:         mapset.NewSet[string](),
		predicates:    make(map[string]PredicateFunc),
		hub:           newNotificationHub(),
		gate:          parallelisation.NewGate(),
		state:         atomic.NewString(string(StateIdle)),
		runID:         atomic.NewString(""),
	}, nil
}

// reservedNamePattern matches the display names generated for unnamed operations.
var reservedNamePattern = regexp.MustCompile(`^operation-\d+$`)

// Register appends operations to the ordered list. Named operations must be unique
// (case-insensitively); registering during an in-flight run is legal but has no effect
// on that run. The whole batch is validated first, so a rejected call registers nothing.
func (o *Orchestrator) Register(operation ...IOperation) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	names := make([]string, len(operation))
	batch := mapset.NewThreadUnsafeSet[string]()
	for i := range operation {
		op := operation[i]
		if op == nil {
			return commonerrors.UndefinedVariable("operation")
		}
		name := normaliseKey(op.Name())
		if name == "" {
			continue
		}
		if reservedNamePattern.MatchString(name) {
			return commonerrors.Newf(commonerrors.ErrInvalid, "operation name %q is reserved for unnamed operations", op.Name())
		}
		if o.names.Contains(name) || !batch.Add(name) {
			return commonerrors.Newf(commonerrors.ErrConflict, "an operation named %q is already registered", op.Name())
		}
		names[i] = name
	}
	for i := range operation {
		if names[i] != "" {
			o.names.Add(names[i])
		}
		o.operations = append(o.operations, operation[i])
	}
	return nil
}

// RegisterAction builds an operation from the given actions and registers it.
func (o *Orchestrator) RegisterAction(name string, execute ActionFunc, rollback ActionFunc, opts ...ExecutionOption) error {
	op, err := NewOperation(name, execute, rollback, opts...)
	if err != nil {
		return err
	}
	return o.Register(op)
}

// AddConditionalBranch registers predicate under operationName. The last registration
// for a given name wins.
func (o *Orchestrator) AddConditionalBranch(operationName string, predicate PredicateFunc) error {
	if predicate == nil {
		return commonerrors.UndefinedVariable("predicate")
	}
	name := normaliseKey(operationName)
	if name == "" {
		return commonerrors.UndefinedVariable("operation name")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.predicates[name] = predicate
	return nil
}

// Run executes the registered operations. It returns nil when every operation
// succeeded; otherwise it returns the aggregated failure carrying every cause in the
// order it occurred, rollback-phase causes appended after operation-phase causes.
func (o *Orchestrator) Run(ctx context.Context) error {
	_, err := o.executeRun(ctx, nil)
	return err
}

// RunWithInitialValues is the same as Run but seeds the run's shared context.
func (o *Orchestrator) RunWithInitialValues(ctx context.Context, values map[string]any) error {
	_, err := o.executeRun(ctx, values)
	return err
}

// RunTyped executes orchestrator and collects, in registration order, the typed value
// produced by each executed operation. An executed operation producing no T value is
// an ErrInvalid failure of this call only.
func RunTyped[T any](ctx context.Context, orchestrator *Orchestrator) ([]T, error) {
	if orchestrator == nil {
		return nil, commonerrors.UndefinedVariable("orchestrator")
	}
	records, err := orchestrator.executeRun(ctx, nil)
	if err != nil {
		return nil, err
	}
	values := make([]T, 0, len(records))
	for _, record := range records {
		typed, ok := record.outcome.(ITypedResult[T])
		if !ok {
			return nil, commonerrors.Newf(commonerrors.ErrInvalid, "operation %q did not produce a typed result", record.name)
		}
		values = append(values, typed.Value())
	}
	return values, nil
}

// Pause suspends progression at the next checkpoint (between operations and before
// parallel-group dispatch). It never preempts an operation mid-execution.
func (o *Orchestrator) Pause() {
	o.gate.Close()
	o.logger.V(1).Info("execution paused")
}

// Resume releases a paused run.
func (o *Orchestrator) Resume() {
	o.gate.Open()
	o.logger.V(1).Info("execution resumed")
}

// Cancel aborts the in-flight run, if any. Rollback still occurs for every operation
// that already ran.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	cancel := o.cancelRun
	o.mu.Unlock()
	if cancel != nil {
		cancel(commonerrors.New(commonerrors.ErrCancelled, "execution cancelled by caller"))
	}
}

// State returns the current execution state.
func (o *Orchestrator) State() ExecutionState {
	return ExecutionState(o.state.Load())
}

// Len returns the number of registered operations.
func (o *Orchestrator) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.operations)
}

// Subscribe registers a lifecycle listener and returns its subscription ID.
func (o *Orchestrator) Subscribe(listener IExecutionListener) (string, error) {
	return o.hub.subscribe(listener)
}

// Unsubscribe removes the listener registered under subscriptionID.
func (o *Orchestrator) Unsubscribe(subscriptionID string) {
	o.hub.unsubscribe(subscriptionID)
}

// EmitLog publishes a log notification to all subscribers. Operations holding a
// reference to their orchestrator may use it to report progress details.
func (o *Orchestrator) EmitLog(message string) {
	o.hub.logMessage(LogEvent{RunID: o.runID.Load(), Message: message, Timestamp: time.Now()})
}

func (o *Orchestrator) executeRun(ctx context.Context, initialValues map[string]any) ([]*executionRecord, error) {
	r, err := o.newRun(ctx, initialValues)
	if err != nil {
		return nil, err
	}
	defer r.close()
	return r.execute()
}
