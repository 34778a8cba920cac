package operations

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sasha-s/go-deadlock"

	"github.com/tkuchel/codex-operations-go/commonerrors"
)

// OperationEvent notifies about the start, completion or failure of one operation.
type OperationEvent struct {
	RunID         string
	OperationName string
	// Index is the registration position of the operation.
	Index     int
	Err       error
	Elapsed   time.Duration
	Timestamp time.Time
}

// RollbackEvent notifies that compensation started for the operations that ran.
type RollbackEvent struct {
	RunID          string
	OperationNames []string
	Cause          error
	Timestamp      time.Time
}

// ProgressEvent notifies about run progress. Percentages are monotonic non-decreasing
// within one run.
type ProgressEvent struct {
	RunID      string
	Percentage float64
	Completed  int
	Total      int
	Message    string
	Timestamp  time.Time
}

// LogEvent carries a free-form log message emitted through the orchestrator.
type LogEvent struct {
	RunID     string
	Message   string
	Timestamp time.Time
}

// ListenerBase is a no-op IExecutionListener to embed when only some notifications are
// of interest.
type ListenerBase struct{}

func (ListenerBase) OnOperationStarted(OperationEvent)   {}
func (ListenerBase) OnOperationCompleted(OperationEvent) {}
func (ListenerBase) OnOperationFailed(OperationEvent)    {}
func (ListenerBase) OnRollbackStarted(RollbackEvent)     {}
func (ListenerBase) OnProgressChanged(ProgressEvent)     {}
func (ListenerBase) OnLogMessage(LogEvent)               {}

type subscription struct {
	id       string
	listener IExecutionListener
}

// notificationHub fans lifecycle notifications out to subscribers, synchronously and in
// subscription order.
type notificationHub struct {
	mu            deadlock.RWMutex
	subscriptions []subscription
}

func newNotificationHub() *notificationHub {
	return &notificationHub{}
}

func (h *notificationHub) subscribe(listener IExecutionListener) (string, error) {
	if listener == nil {
		return "", commonerrors.UndefinedVariable("listener")
	}
	id, err := uuid.NewV4()
	if err != nil {
		return "", commonerrors.WrapError(commonerrors.ErrUnexpected, err, "could not generate a subscription ID")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscriptions = append(h.subscriptions, subscription{id: id.String(), listener: listener})
	return id.String(), nil
}

func (h *notificationHub) unsubscribe(subscriptionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	kept := h.subscriptions[:0]
	for _, sub := range h.subscriptions {
		if sub.id != subscriptionID {
			kept = append(kept, sub)
		}
	}
	h.subscriptions = kept
}

func (h *notificationHub) listeners() []IExecutionListener {
	h.mu.RLock()
	defer h.mu.RUnlock()
	listeners := make([]IExecutionListener, len(h.subscriptions))
	for i := range h.subscriptions {
		listeners[i] = h.subscriptions[i].listener
	}
	return listeners
}

func (h *notificationHub) operationStarted(event OperationEvent) {
	for _, listener := range h.listeners() {
		listener.OnOperationStarted(event)
	}
}

func (h *notificationHub) operationCompleted(event OperationEvent) {
	for _, listener := range h.listeners() {
		listener.OnOperationCompleted(event)
	}
}

func (h *notificationHub) operationFailed(event OperationEvent) {
	for _, listener := range h.listeners() {
		listener.OnOperationFailed(event)
	}
}

func (h *notificationHub) rollbackStarted(event RollbackEvent) {
	for _, listener := range h.listeners() {
		listener.OnRollbackStarted(event)
	}
}

func (h *notificationHub) progressChanged(event ProgressEvent) {
	for _, listener := range h.listeners() {
		listener.OnProgressChanged(event)
	}
}

func (h *notificationHub) logMessage(event LogEvent) {
	for _, listener := range h.listeners() {
		listener.OnLogMessage(event)
	}
}
