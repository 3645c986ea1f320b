//go:build windows

package executor

import "testing"

// The token membership check depends on how the test process was launched, so
// only the call itself is exercised here.
func TestIsRootDoesNotPanic(t *testing.T) {
	t.Logf("IsRoot() = %v", IsRoot())
}
