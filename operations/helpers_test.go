package operations

import (
	"context"
	"sync"

	"github.com/go-logr/logr"
	"go.uber.org/atomic"
)

// recordingListener captures every notification it receives, in order.
type recordingListener struct {
	mu        sync.Mutex
	started   []OperationEvent
	completed []OperationEvent
	failed    []OperationEvent
	rollbacks []RollbackEvent
	progress  []ProgressEvent
	logs      []LogEvent
}

func (l *recordingListener) OnOperationStarted(event OperationEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started = append(l.started, event)
}

func (l *recordingListener) OnOperationCompleted(event OperationEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.completed = append(l.completed, event)
}

func (l *recordingListener) OnOperationFailed(event OperationEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failed = append(l.failed, event)
}

func (l *recordingListener) OnRollbackStarted(event RollbackEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollbacks = append(l.rollbacks, event)
}

func (l *recordingListener) OnProgressChanged(event ProgressEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.progress = append(l.progress, event)
}

func (l *recordingListener) OnLogMessage(event LogEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logs = append(l.logs, event)
}

func (l *recordingListener) notificationCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.started) + len(l.completed) + len(l.failed) + len(l.rollbacks) + len(l.progress) + len(l.logs)
}

func (l *recordingListener) startedNames() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, len(l.started))
	for i := range l.started {
		names[i] = l.started[i].OperationName
	}
	return names
}

func (l *recordingListener) percentages() []float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	percentages := make([]float64, len(l.progress))
	for i := range l.progress {
		percentages[i] = l.progress[i].Percentage
	}
	return percentages
}

// callbackListener invokes callbacks on completion/failure; used to drive pause and
// cancellation deterministically from within the run goroutine.
type callbackListener struct {
	ListenerBase
	onCompleted func(OperationEvent)
}

func (l *callbackListener) OnOperationCompleted(event OperationEvent) {
	if l.onCompleted != nil {
		l.onCompleted(event)
	}
}

// newTestOrchestrator returns an orchestrator with default configuration and a discard logger.
func newTestOrchestrator(t interface{ Fatalf(string, ...any) }) *Orchestrator {
	o, err := NewOrchestrator(nil, logr.Discard())
	if err != nil {
		t.Fatalf("cannot create orchestrator: %v", err)
	}
	return o
}

// countingAction returns an action incrementing counter and returning result.
func countingAction(counter *atomic.Int32, result IResult) ActionFunc {
	return func(ctx context.Context, store ISharedContext) IResult {
		counter.Inc()
		return result
	}
}

func succeedingAction(counter *atomic.Int32) ActionFunc {
	return countingAction(counter, Success())
}
