package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBatch_RecordOutcome(t *testing.T) {
	b := NewBatch()
	b.RecordOutcome("article", "succeeded", "")
	b.RecordOutcome("article", "succeeded", "")
	b.RecordOutcome("book", "rejected", "duplicate")
	b.RecordOutcome("", "skipped", "parse_error")

	tests := []struct {
		labels []string
		want   float64
	}{
		{[]string{"article", "succeeded", "none"}, 2},
		{[]string{"book", "rejected", "duplicate"}, 1},
		{[]string{"unknown", "skipped", "parse_error"}, 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(b.Records.WithLabelValues(tt.labels...)); got != tt.want {
			t.Errorf("records%v = %v, want %v", tt.labels, got, tt.want)
		}
	}
}

func TestBatch_Independent(t *testing.T) {
	a, b := NewBatch(), NewBatch()
	a.AddTriples(10)
	if got := testutil.ToFloat64(b.TriplesAdded); got != 0 {
		t.Errorf("second batch TriplesAdded = %v, want 0", got)
	}
	if got := testutil.ToFloat64(a.TriplesAdded); got != 10 {
		t.Errorf("TriplesAdded = %v, want 10", got)
	}
}

func TestBatch_WriteTextfile(t *testing.T) {
	b := NewBatch()
	b.RecordOutcome("article", "succeeded", "")
	b.AddTriples(7)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b.Finish(start, start.Add(1500*time.Millisecond))

	path := filepath.Join(t.TempDir(), "ccsg.prom")
	if err := b.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{
		`ccsg_ingest_records_total{kind="article",reason="none",status="succeeded"} 1`,
		"ccsg_ingest_triples_added_total 7",
		"ccsg_ingest_batch_duration_seconds 1.5",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q:\n%s", want, out)
		}
	}
}
