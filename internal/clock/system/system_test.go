package system

import (
	"testing"
	"time"
)

func TestNow(t *testing.T) {
	t.Parallel()

	c := New()
	before := time.Now().Add(-time.Second)
	got := c.Now()
	after := time.Now().Add(time.Second)
	if got.Before(before) || got.After(after) {
		t.Fatalf("Now() = %v outside [%v, %v]", got, before, after)
	}
}
