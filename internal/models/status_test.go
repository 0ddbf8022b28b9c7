package models

import "testing"

func TestStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusNew, StatusProcessing},
		{StatusProcessing, StatusDone},
		{StatusProcessing, StatusFailed},
		{StatusFailed, StatusNew},
	}
	for _, tr := range allowed {
		if !tr.from.CanTransition(tr.to) {
			t.Fatalf("expected %s -> %s to be allowed", tr.from, tr.to)
		}
	}

	forbidden := []struct{ from, to Status }{
		{StatusNew, StatusDone},
		{StatusNew, StatusFailed},
		{StatusDone, StatusNew},
		{StatusDone, StatusProcessing},
		{StatusFailed, StatusProcessing},
		{StatusFailed, StatusDone},
		{StatusProcessing, StatusNew},
	}
	for _, tr := range forbidden {
		if tr.from.CanTransition(tr.to) {
			t.Fatalf("expected %s -> %s to be forbidden", tr.from, tr.to)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusNew.Terminal() || StatusProcessing.Terminal() {
		t.Fatalf("NEW and PROCESSING must not be terminal")
	}
	if !StatusDone.Terminal() || !StatusFailed.Terminal() {
		t.Fatalf("DONE and FAILED must be terminal")
	}
}

func TestStatusValid(t *testing.T) {
	if !StatusNew.Valid() {
		t.Fatalf("expected NEW to be valid")
	}
	if Status("ARCHIVED").Valid() {
		t.Fatalf("expected unknown status to be invalid")
	}
}
