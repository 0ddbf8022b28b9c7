package classify

import (
	"context"
	"fmt"
	"testing"

	"github.com/fire-triage/backend/internal/utils"
)

// Descriptions whose FNV-64a hash has the top bit set used to drive the
// lookup index negative and panic. Sweep enough inputs to hit both halves
// of the hash space.
func TestMockClassifierTopBitHashes(t *testing.T) {
	mock := MockClassifier{}
	sawTopBit := false
	for i := 0; i < 64; i++ {
		desc := fmt.Sprintf("Не работает приложение %d", i)
		if utils.HashStringToUint64(desc+"|Mass")>>63 == 1 {
			sawTopBit = true
		}
		out, err := mock.Classify(context.Background(), Input{Description: desc, Segment: "Mass"})
		if err != nil {
			t.Fatalf("description %d: %v", i, err)
		}
		if out.Priority < 1 || out.Priority > 10 {
			t.Fatalf("description %d: priority out of range: %d", i, out.Priority)
		}
	}
	if !sawTopBit {
		t.Fatalf("expected at least one top-bit-set hash in the sweep")
	}
}

func TestMockClassifierDeterministic(t *testing.T) {
	mock := MockClassifier{}
	in := Input{Description: "Не приходит выписка", Segment: "VIP"}

	first, err := mock.Classify(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := mock.Classify(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical output for identical input: %+v vs %+v", first, second)
	}
}
