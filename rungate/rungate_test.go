package rungate

import (
	"strings"
	"testing"
	"time"
)

func at(h, m int) time.Time {
	return time.Date(2024, 1, 1, h, m, 0, 0, time.UTC)
}

func TestNoGateFileMeansAlwaysAllowed(t *testing.T) {
	g, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !g.Allowed(at(3, 0)) {
		t.Fatal("empty gate should allow everything")
	}
}

func TestForbidWindowBlocks(t *testing.T) {
	g, err := Parse(strings.NewReader("f 22 00 23 59\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g.Allowed(at(22, 30)) {
		t.Fatal("expected 22:30 to be forbidden")
	}
	if !g.Allowed(at(10, 0)) {
		t.Fatal("expected 10:00 to be allowed")
	}
}

func TestAllowWindowRequiresMatch(t *testing.T) {
	g, err := Parse(strings.NewReader("a 09 00 17 00\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !g.Allowed(at(12, 0)) {
		t.Fatal("expected noon to be allowed")
	}
	if g.Allowed(at(20, 0)) {
		t.Fatal("expected 20:00 to be disallowed outside the allow window")
	}
}

func TestCommentsAndBlankLinesIgnored(t *testing.T) {
	_, err := Parse(strings.NewReader("# comment\n\nf 01 00 02 00\n"))
	if err != nil {
		t.Fatalf("Parse should skip comments and blanks: %v", err)
	}
}
