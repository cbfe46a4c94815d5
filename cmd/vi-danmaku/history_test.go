package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/lixenwraith/vi-danmaku/journal"
)

func TestPrintHistory(t *testing.T) {
	ctx := context.Background()
	j, err := journal.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()

	var buf bytes.Buffer
	if err := printHistory(ctx, &buf, j, 10); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "no reloads") {
		t.Errorf("empty history = %q", buf.String())
	}

	j.Record(ctx, journal.Reload{Pattern: "a.xml", OK: true, Policy: "discard"})
	j.Record(ctx, journal.Reload{Pattern: "b.xml", Stale: true, Policy: "preserve", Error: "bad expr"})

	buf.Reset()
	if err := printHistory(ctx, &buf, j, 10); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("history lines = %q", lines)
	}
	if !strings.Contains(lines[1], "b.xml") || !strings.Contains(lines[1], "stale") || !strings.Contains(lines[1], "bad expr") {
		t.Errorf("newest row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "a.xml") || !strings.Contains(lines[2], "ok") {
		t.Errorf("oldest row = %q", lines[2])
	}
}
