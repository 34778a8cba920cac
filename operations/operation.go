package operations

import (
	"context"
	"fmt"
	"strings"

	"github.com/tkuchel/codex-operations-go/commonerrors"
)

var _ IOperation = &Operation{}

// Operation is the default IOperation implementation, built from action functions.
type Operation struct {
	name     string
	execute  ActionFunc
	rollback ActionFunc
	options  *ExecutionOptions
}

// NewOperation returns an operation named name performing execute, compensated by
// rollback (a nil rollback is a no-op compensation). An operation with no execute
// action is invalid.
func NewOperation(name string, execute ActionFunc, rollback ActionFunc, opts ...ExecutionOption) (*Operation, error) {
	if execute == nil {
		return nil, commonerrors.New(commonerrors.ErrUndefined, "an operation must define an execute action")
	}
	options := WithOptions(opts...)
	if err := options.Validate(); err != nil {
		return nil, err
	}
	return &Operation{
		name:     strings.TrimSpace(name),
		execute:  execute,
		rollback: rollback,
		options:  options,
	}, nil
}

func (op *Operation) Name() string {
	return op.name
}

func (op *Operation) Execute(ctx context.Context, store ISharedContext) IResult {
	return op.execute(ctx, store)
}

func (op *Operation) Rollback(ctx context.Context, store ISharedContext) IResult {
	if op.rollback == nil {
		return Success()
	}
	return op.rollback(ctx, store)
}

func (op *Operation) Options() *ExecutionOptions {
	return op.options
}

// operationDisplayName returns the operation name, or a positional one when unnamed.
func operationDisplayName(operation IOperation, index int) string {
	name := strings.TrimSpace(operation.Name())
	if name == "" {
		return fmt.Sprintf("operation-%d", index+1)
	}
	return name
}
