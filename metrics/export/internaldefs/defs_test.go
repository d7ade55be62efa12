package internaldefs

import (
	"testing"

	goToken "github.com/MrEthical07/goToken"
)

func TestCumulativeBucketsPadsShortInput(t *testing.T) {
	got := CumulativeBuckets([]uint64{1, 2})
	want := [BucketCount]uint64{1, 3, 3, 3, 3, 3, 3, 3}
	if got != want {
		t.Fatalf("CumulativeBuckets = %v, want %v", got, want)
	}
	if CumulativeBuckets(nil) != ([BucketCount]uint64{}) {
		t.Fatal("expected zero buckets for nil input")
	}
}

func TestCounterDefsUniqueAndComplete(t *testing.T) {
	seenID := map[goToken.MetricID]bool{}
	seenName := map[string]bool{}
	for _, def := range CounterDefs {
		if seenID[def.ID] || seenName[def.Name] {
			t.Fatalf("duplicate counter definition %+v", def)
		}
		seenID[def.ID] = true
		seenName[def.Name] = true
	}
	for _, def := range HistogramDefs {
		if seenID[def.ID] {
			t.Fatalf("histogram %s reuses a counter id", def.Name)
		}
	}
	if len(CounterDefs) != int(goToken.MetricVerifyLatency) {
		t.Fatalf("expected one counter definition per counter id, got %d", len(CounterDefs))
	}
}
