package commonerrors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	description := faker.Sentence()
	err := New(ErrInvalid, description)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), description)
	assert.Equal(t, ErrTimeout, New(ErrTimeout, ""))
}

func TestWrapError(t *testing.T) {
	cause := errors.New(faker.Word())
	err := WrapError(ErrRollback, cause, "compensation broke")
	assert.ErrorIs(t, err, ErrRollback)
	assert.ErrorIs(t, err, cause)

	err = WrapError(ErrTimeout, nil, "no cause")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestAnyNone(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", ErrCancelled)
	assert.True(t, Any(err, ErrTimeout, ErrCancelled))
	assert.False(t, Any(err, ErrTimeout, ErrNotFound))
	assert.True(t, None(err, ErrTimeout, ErrNotFound))
	assert.False(t, Any(nil, ErrTimeout))
	assert.True(t, Any(nil, nil))
}

func TestIgnore(t *testing.T) {
	assert.NoError(t, Ignore(New(ErrNotFound, faker.Word()), ErrNotFound))
	assert.Error(t, Ignore(New(ErrConflict, faker.Word()), ErrNotFound))
	assert.NoError(t, Ignore(nil, ErrNotFound))
}

func TestConvertContextError(t *testing.T) {
	assert.NoError(t, ConvertContextError(nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, ConvertContextError(ctx.Err()), ErrCancelled)

	tctx, tcancel := context.WithTimeout(context.Background(), 0)
	defer tcancel()
	<-tctx.Done()
	assert.ErrorIs(t, ConvertContextError(tctx.Err()), ErrTimeout)

	// already converted errors are returned untouched
	converted := New(ErrTimeout, faker.Word())
	assert.Equal(t, converted, ConvertContextError(converted))

	plain := errors.New(faker.Word())
	assert.Equal(t, plain, ConvertContextError(plain))
}
