//go:build !windows

package executor

import (
	"os"
	"testing"
)

func TestIsRootMatchesEUID(t *testing.T) {
	want := os.Geteuid() == 0
	if got := IsRoot(); got != want {
		t.Errorf("IsRoot() = %v with euid %d, want %v", got, os.Geteuid(), want)
	}
}
