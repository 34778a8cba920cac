package operations

import (
	"testing"

	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkuchel/codex-operations-go/commonerrors"
	"github.com/tkuchel/codex-operations-go/commonerrors/errortest"
)

func TestResult(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		result := Success()
		assert.True(t, result.IsSuccess())
		assert.Empty(t, result.ErrorMessage())
		assert.NoError(t, result.Fault())
	})
	t.Run("failure", func(t *testing.T) {
		cause := commonerrors.New(commonerrors.ErrUnknown, faker.Sentence())
		result := Failure(cause)
		assert.False(t, result.IsSuccess())
		assert.Equal(t, cause.Error(), result.ErrorMessage())
		assert.Equal(t, cause, result.Fault())
	})
	t.Run("failure without a cause still fails", func(t *testing.T) {
		result := Failure(nil)
		assert.False(t, result.IsSuccess())
		errortest.AssertError(t, result.Fault(), commonerrors.ErrUnexpected)
	})
	t.Run("formatted failure", func(t *testing.T) {
		result := Failuref(commonerrors.ErrInvalid, "field %q is off", "name")
		assert.False(t, result.IsSuccess())
		errortest.AssertError(t, result.Fault(), commonerrors.ErrInvalid)
		assert.Contains(t, result.ErrorMessage(), `field "name" is off`)
	})
	t.Run("from error", func(t *testing.T) {
		assert.True(t, FromError(nil).IsSuccess())
		assert.False(t, FromError(commonerrors.ErrUnknown).IsSuccess())
	})
}

func TestTypedResult(t *testing.T) {
	result := SuccessWithValue("deployed")
	assert.True(t, result.IsSuccess())
	assert.Equal(t, "deployed", result.Value())
}

func TestResultError(t *testing.T) {
	assert.NoError(t, resultError(nil))
	assert.NoError(t, resultError(Success()))

	cause := commonerrors.New(commonerrors.ErrUnknown, "broke")
	require.Equal(t, cause, resultError(Failure(cause)))

	// a collaborator result reporting failure with only a message
	err := resultError(&messageOnlyResult{message: "it went sideways"})
	errortest.RequireError(t, err, commonerrors.ErrUnexpected)
	assert.Contains(t, err.Error(), "it went sideways")

	err = resultError(&messageOnlyResult{})
	errortest.RequireError(t, err, commonerrors.ErrUnexpected)
}

type messageOnlyResult struct {
	message string
}

func (r *messageOnlyResult) IsSuccess() bool      { return false }
func (r *messageOnlyResult) ErrorMessage() string { return r.message }
func (r *messageOnlyResult) Fault() error         { return nil }
