package gps

import "testing"

func fixAt(lat, lon float64, quality int) Fix {
	return Fix{Latitude: lat, Longitude: lon, Quality: quality}
}

func TestFilterAcceptsMovement(t *testing.T) {
	tables := []struct {
		name      string
		lat, lon  float64
		wantAcc   bool
		wantState FilterState
	}{
		{"first fix", 48.1173, 11.5167, true, FilterState{LastLatitude: 48.1173, LastLongitude: 11.5167}},
		{"same position", 48.1173, 11.5167, false, FilterState{LastLatitude: 48.1173, LastLongitude: 11.5167}},
		{"below tolerance", 48.1175, 11.5169, false, FilterState{LastLatitude: 48.1173, LastLongitude: 11.5167}},
		{"latitude moved", 48.1193, 11.5167, true, FilterState{LastLatitude: 48.1193, LastLongitude: 11.5167}},
		{"longitude moved", 48.1193, 11.5100, true, FilterState{LastLatitude: 48.1193, LastLongitude: 11.5100}},
	}

	f := NewFilter(1, 0.001)
	for _, table := range tables {
		fix := fixAt(table.lat, table.lon, 1)
		got := f.ShouldAccept(fix)
		if got != table.wantAcc {
			t.Errorf("%s: ShouldAccept = %v, want %v", table.name, got, table.wantAcc)
		}
		if got {
			f.RecordAcceptance(fix)
		}
		if f.State() != table.wantState {
			t.Errorf("%s: state = %+v, want %+v", table.name, f.State(), table.wantState)
		}
	}
}

func TestFilterToleranceIsStrict(t *testing.T) {
	f := NewFilter(0, 0.5)
	f.RecordAcceptance(fixAt(1, 1, 1))

	// A change exactly equal to the tolerance counts as movement.
	if !f.ShouldAccept(fixAt(1.5, 1, 1)) {
		t.Error("delta == tolerance rejected")
	}
	if f.ShouldAccept(fixAt(1.25, 1.25, 1)) {
		t.Error("delta < tolerance accepted")
	}
}

func TestFilterRejectsLowQuality(t *testing.T) {
	f := NewFilter(2, 0.001)
	for i := 1; i <= 5; i++ {
		d := f.Evaluate(fixAt(float64(i), float64(i), 1))
		if d.Accepted() || d.Verdict != RejectLowQuality {
			t.Fatalf("evaluation %d: %+v, want low-quality rejection", i, d)
		}
		if f.State().SkippedLowQuality != i {
			t.Errorf("skipped = %d, want %d", f.State().SkippedLowQuality, i)
		}
		if f.State().LastLatitude != 0 || f.State().LastLongitude != 0 {
			t.Errorf("last position changed on rejection: %+v", f.State())
		}
	}
}

func TestFilterLowQualitySummary(t *testing.T) {
	f := NewFilter(1, 0.001)
	var summaries []int
	for i := 0; i < 3*LowQualitySummaryEvery+5; i++ {
		d := f.Evaluate(fixAt(10, 10, 0))
		if d.Summary {
			summaries = append(summaries, d.Skipped)
		}
	}
	want := []int{120, 240, 360}
	if len(summaries) != len(want) {
		t.Fatalf("summaries = %v, want %v", summaries, want)
	}
	for i := range want {
		if summaries[i] != want[i] {
			t.Errorf("summaries = %v, want %v", summaries, want)
		}
	}
}

func TestFilterResetSession(t *testing.T) {
	f := NewFilter(1, 0.001)
	f.RecordAcceptance(fixAt(5, 6, 1))
	f.Evaluate(fixAt(0, 0, 0))
	f.ResetSession()

	st := f.State()
	if st.SkippedLowQuality != 0 {
		t.Errorf("skipped = %d after reset", st.SkippedLowQuality)
	}
	if st.LastLatitude != 5 || st.LastLongitude != 6 {
		t.Errorf("last position lost on reset: %+v", st)
	}
}

func TestFilterStationaryLeavesStateUnchanged(t *testing.T) {
	f := NewFilter(1, 0.001)
	f.RecordAcceptance(fixAt(48, 11, 1))
	f.Evaluate(fixAt(0, 0, 0))
	before := f.State()

	d := f.Evaluate(fixAt(48.0001, 11.0001, 4))
	if d.Verdict != RejectStationary {
		t.Fatalf("verdict = %v, want stationary", d.Verdict)
	}
	if f.State() != before {
		t.Errorf("state = %+v, want %+v", f.State(), before)
	}
}
