//go:build unix

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestWaitUnlockedWaitsForWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.xml")
	if err := os.WriteFile(path, []byte("<bulletml/>"), 0644); err != nil {
		t.Fatal(err)
	}

	writer, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer writer.Close()
	if err := unix.Flock(int(writer.Fd()), unix.LOCK_EX); err != nil {
		t.Fatalf("flock: %v", err)
	}

	if ExclusiveProbe(path) {
		t.Fatal("lock check succeeded while the writer holds the lock")
	}

	done := make(chan error, 1)
	go func() {
		done <- WaitUnlocked(context.Background(), path, DefaultPollInterval, nil)
	}()

	select {
	case <-done:
		t.Fatal("returned while the file was locked")
	case <-time.After(100 * time.Millisecond):
	}

	if err := unix.Flock(int(writer.Fd()), unix.LOCK_UN); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WaitUnlocked: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("still waiting after the writer released the lock")
	}
}

func TestExclusiveProbeMissingFile(t *testing.T) {
	if ExclusiveProbe(filepath.Join(t.TempDir(), "gone.xml")) {
		t.Error("a missing file must count as locked")
	}
}
