package telemetry

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRecordWritesNDJSON(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	l.Record(Record{Tick: 1, JointAngles: []float64{0.1, 0.2}})
	l.Record(Record{Tick: 2, JointAngles: []float64{0.3, 0.4}})

	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "kinfer_log.ndjson"))
	if err != nil {
		t.Fatalf("open log file: %v", err)
	}
	defer f.Close()

	var ticks []int64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("unmarshal line %q: %v", sc.Text(), err)
		}
		ticks = append(ticks, rec.Tick)
	}
	if len(ticks) != 2 || ticks[0] != 1 || ticks[1] != 2 {
		t.Fatalf("expected ticks [1 2], got %v", ticks)
	}
}

func TestCloseDoesNotHangWhenQueueEmpty(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	done := make(chan struct{})
	go func() {
		l.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Close did not return in time")
	}
}
