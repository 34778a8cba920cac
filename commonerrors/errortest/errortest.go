// Package errortest provides test assertions over the commonerrors taxonomy.
package errortest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkuchel/codex-operations-go/commonerrors"
)

// AssertError asserts that err corresponds to at least one of expectedErrors.
func AssertError(t *testing.T, err error, expectedErrors ...error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, commonerrors.Any(err, expectedErrors...), "error [%v] does not correspond to any of %v", err, expectedErrors)
}

// RequireError is similar to AssertError but fails the test immediately.
func RequireError(t *testing.T, err error, expectedErrors ...error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, commonerrors.Any(err, expectedErrors...), "error [%v] does not correspond to any of %v", err, expectedErrors)
}

// AssertNone asserts that err does not correspond to any of unexpectedErrors.
func AssertNone(t *testing.T, err error, unexpectedErrors ...error) {
	t.Helper()
	assert.True(t, commonerrors.None(err, unexpectedErrors...), "error [%v] corresponds to one of %v", err, unexpectedErrors)
}
