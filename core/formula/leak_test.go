package formula

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies that evaluation never leaves goroutines behind.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
