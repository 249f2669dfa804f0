// Package rungate parses and evaluates the optional run-gate file: a
// line-oriented schedule of daily allow/forbid windows the engine polls
// to decide whether it may keep making progress. The line-splitting idiom
// is carried over from how config.Parse reads its own directives.
package rungate

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// window is one daily HH:MM-HH:MM span, inclusive of its endpoints,
// expressed in minutes since midnight.
type window struct {
	startMin, endMin int
}

func (w window) contains(minuteOfDay int) bool {
	if w.startMin <= w.endMin {
		return minuteOfDay >= w.startMin && minuteOfDay <= w.endMin
	}
	// A window that wraps past midnight, e.g. "f 22 00 02 00".
	return minuteOfDay >= w.startMin || minuteOfDay <= w.endMin
}

// Gate holds the parsed allow ("a") and forbid ("f") windows.
type Gate struct {
	allow  []window
	forbid []window
}

// Parse reads a run-gate file's contents: blank lines and
// "#"-prefixed comments are ignored; "f HH MM HH MM" lines declare a
// forbidden daily window; "a HH MM HH MM" lines declare an allowed one.
func Parse(r io.Reader) (*Gate, error) {
	g := &Gate{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 5 {
			return nil, fmt.Errorf("rungate: line %d: expected \"f|a HH MM HH MM\", got %q", lineNo, line)
		}
		w, err := parseWindow(fields[1:])
		if err != nil {
			return nil, fmt.Errorf("rungate: line %d: %w", lineNo, err)
		}
		switch fields[0] {
		case "f":
			g.forbid = append(g.forbid, w)
		case "a":
			g.allow = append(g.allow, w)
		default:
			return nil, fmt.Errorf("rungate: line %d: unknown directive %q", lineNo, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

func parseWindow(fields []string) (window, error) {
	nums := make([]int, 4)
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return window{}, fmt.Errorf("bad time component %q: %w", f, err)
		}
		nums[i] = n
	}
	start := nums[0]*60 + nums[1]
	end := nums[2]*60 + nums[3]
	return window{startMin: start, endMin: end}, nil
}

// Allowed reports whether the engine may run at the given local time
//: if any "a" lines exist, at least one must match; any
// matching "f" line disallows regardless.
func (g *Gate) Allowed(t time.Time) bool {
	minuteOfDay := t.Hour()*60 + t.Minute()

	for _, w := range g.forbid {
		if w.contains(minuteOfDay) {
			return false
		}
	}
	if len(g.allow) == 0 {
		return true
	}
	for _, w := range g.allow {
		if w.contains(minuteOfDay) {
			return true
		}
	}
	return false
}
