package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestRecordAndRecent(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "state", "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	ctx := context.Background()
	base := time.Unix(1700000000, 0)
	records := []Reload{
		{At: base, Pattern: "a.xml", OK: true, Policy: "discard"},
		{At: base.Add(time.Second), Pattern: "a.xml", Error: "a.xml: XML syntax error", Policy: "discard"},
		{At: base.Add(2 * time.Second), Pattern: "b.xml", Error: "boom", Stale: true, OK: true, Policy: "preserve"},
	}
	for _, r := range records {
		if err := j.Record(ctx, r); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := j.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Pattern != "b.xml" || !got[0].Stale || got[0].Policy != "preserve" {
		t.Errorf("newest = %+v", got[0])
	}
	if !got[1].At.Equal(base.Add(time.Second)) || got[1].OK {
		t.Errorf("second = %+v", got[1])
	}

	n, err := j.Failures(ctx, "a.xml")
	if err != nil || n != 1 {
		t.Errorf("Failures = %d, %v", n, err)
	}
}

func TestRecordFillsTimestamp(t *testing.T) {
	j, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	before := time.Now()
	if err := j.Record(context.Background(), Reload{Pattern: "x.xml", OK: true}); err != nil {
		t.Fatal(err)
	}
	got, err := j.Recent(context.Background(), 10)
	if err != nil || len(got) != 1 {
		t.Fatalf("Recent = %v, %v", got, err)
	}
	if got[0].At.Before(before.Add(-time.Second)) {
		t.Errorf("timestamp not filled: %v", got[0].At)
	}
}

func TestNilClose(t *testing.T) {
	var j *Journal
	if err := j.Close(); err != nil {
		t.Error(err)
	}
}
