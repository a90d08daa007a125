package testutil

import (
	"os"
	"testing"
)

// RequireVM skips the test if the RTLINK_VM_TEST environment variable is not set.
// Tests that create, modify or delete real interfaces need root and a
// disposable kernel, so they only run where that is guaranteed.
func RequireVM(t *testing.T) {
	t.Helper()
	if os.Getenv("RTLINK_VM_TEST") == "" {
		t.Skip("Skipping test: requires RTLINK_VM_TEST environment")
	}
}
