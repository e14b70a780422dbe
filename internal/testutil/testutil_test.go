package testutil

import (
	"os"
	"strings"
	"testing"
)

func TestAssertNoError(t *testing.T) {
	t.Parallel()
	AssertNoError(t, nil)
}

func TestAssertError(t *testing.T) {
	t.Parallel()
	AssertError(t, os.ErrNotExist)
}

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	path := WriteTempFile(t, "coords.txt", BounceFixture)
	data, err := os.ReadFile(path)
	AssertNoError(t, err)
	if string(data) != BounceFixture {
		t.Errorf("content = %q, want %q", data, BounceFixture)
	}
}

func TestBounceFixtureShape(t *testing.T) {
	t.Parallel()

	lines := strings.Split(strings.TrimSpace(BounceFixture), "\n")
	if len(lines) != 5 {
		t.Fatalf("fixture has %d lines, want 5", len(lines))
	}
	for _, l := range lines {
		if strings.Count(l, ",") != 2 {
			t.Errorf("line %q is not a frame,x,y record", l)
		}
	}
}
