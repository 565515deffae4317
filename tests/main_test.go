package tests

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	_ = os.Setenv("RELPICK_TRACKER_TOKEN", "test-token")
	os.Exit(m.Run())
}
