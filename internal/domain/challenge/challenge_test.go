package challenge

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusProposed, StatusAccepted},
		{StatusProposed, StatusMaybeLater},
		{StatusProposed, StatusRejected},
		{StatusAccepted, StatusCompletedPending},
		{StatusCompletedPending, StatusCompletedConfirmed},
	}
	for _, tr := range allowed {
		if !CanTransition(tr.from, tr.to) {
			t.Fatalf("expected %s -> %s to be allowed", tr.from, tr.to)
		}
	}
	forbidden := []struct{ from, to Status }{
		{StatusProposed, StatusCompletedConfirmed},
		{StatusProposed, StatusCompletedPending},
		{StatusAccepted, StatusAccepted},
		{StatusAccepted, StatusRejected},
		{StatusMaybeLater, StatusAccepted},
		{StatusRejected, StatusProposed},
		{StatusCompletedConfirmed, StatusProposed},
		{StatusCompletedPending, StatusAccepted},
		{StatusExpired, StatusProposed},
	}
	for _, tr := range forbidden {
		if CanTransition(tr.from, tr.to) {
			t.Fatalf("expected %s -> %s to be forbidden", tr.from, tr.to)
		}
	}
}

func TestExpiredIsUnreachable(t *testing.T) {
	all := []Status{
		StatusProposed, StatusAccepted, StatusMaybeLater, StatusRejected,
		StatusCompletedPending, StatusCompletedConfirmed, StatusExpired,
	}
	for _, from := range all {
		if CanTransition(from, StatusExpired) {
			t.Fatalf("no transition should produce EXPIRED, got %s -> EXPIRED", from)
		}
	}
}

func TestNewSimpleDetails(t *testing.T) {
	if _, err := NewSimpleDetails("movie night", nil); err != nil {
		t.Fatalf("expected valid simple details: %v", err)
	}
	if _, err := NewSimpleDetails("   ", nil); err == nil {
		t.Fatal("expected error for blank title")
	}
}

func TestNewGuidedDetailsRequiresBoundary(t *testing.T) {
	if _, err := NewGuidedDetails("hike", nil, nil, ""); err == nil {
		t.Fatal("expected error for missing boundary")
	}
	d, err := NewGuidedDetails("hike", nil, nil, "no more than two hours")
	if err != nil {
		t.Fatalf("expected valid guided details: %v", err)
	}
	if d.Tier != TierGuided || d.Boundary == nil {
		t.Fatalf("unexpected details: %+v", d)
	}
}

func TestNewCustomDetailsRequiresBoundaries(t *testing.T) {
	if _, err := NewCustomDetails("picnic", nil, nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for missing boundaries")
	}
	if _, err := NewCustomDetails("picnic", nil, nil, nil, []string{"  ", ""}, nil); err == nil {
		t.Fatal("expected error for blank-only boundaries")
	}
	d, err := NewCustomDetails("picnic", nil, nil, nil, []string{"outdoors only", " daylight "}, nil)
	if err != nil {
		t.Fatalf("expected valid custom details: %v", err)
	}
	if len(d.Boundaries) != 2 || d.Boundaries[1] != "daylight" {
		t.Fatalf("expected trimmed boundaries, got %v", d.Boundaries)
	}
}

func TestNewCustomDetailsRejectsUnknownReward(t *testing.T) {
	if _, err := NewCustomDetails("picnic", nil, nil, nil, []string{"outdoors"}, &Reward{Type: "GOLD"}); err == nil {
		t.Fatal("expected error for unknown reward type")
	}
	if _, err := NewCustomDetails("picnic", nil, nil, nil, []string{"outdoors"}, &Reward{Type: RewardCoupon}); err != nil {
		t.Fatalf("expected valid reward: %v", err)
	}
}

func TestDetailsValidateOnEdit(t *testing.T) {
	d, err := NewGuidedDetails("hike", nil, nil, "two hours max")
	if err != nil {
		t.Fatal(err)
	}
	d.Boundary = nil
	if err := d.Validate(); err == nil {
		t.Fatal("expected edited guided details without boundary to fail")
	}
}

func TestEditable(t *testing.T) {
	p := &Proposal{Status: StatusProposed}
	if !p.Editable() {
		t.Fatal("PROPOSED should be editable")
	}
	p.Status = StatusMaybeLater
	if !p.Editable() {
		t.Fatal("MAYBE_LATER should be editable")
	}
	for _, s := range []Status{StatusAccepted, StatusRejected, StatusCompletedPending, StatusCompletedConfirmed, StatusExpired} {
		p.Status = s
		if p.Editable() {
			t.Fatalf("%s should not be editable", s)
		}
	}
}
