package diag

import "testing"

func TestSample_ReturnsNonZeroGoroutineCount(t *testing.T) {
	s := Sample()
	if s.Goroutines == 0 {
		t.Fatalf("expected at least one goroutine (the test itself), got 0")
	}
}
