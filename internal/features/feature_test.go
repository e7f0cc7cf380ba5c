package features

import (
	"encoding/json"
	"testing"
)

func TestFeatureZeroValueIsAbsent(t *testing.T) {
	var f Feature
	if f.Present() {
		t.Error("zero value should be absent")
	}
	if f.Or(42) != 42 {
		t.Errorf("Or(42) = %v, want 42", f.Or(42))
	}
}

func TestMeasuredZeroIsNotAbsent(t *testing.T) {
	f := Measured(0)
	if !f.Present() {
		t.Error("a measured zero must be present")
	}
	if f.Or(42) != 0 {
		t.Errorf("Or(42) = %v, want 0", f.Or(42))
	}
}

func TestFeatureJSONRoundTrip(t *testing.T) {
	set := Set{
		DailyDistanceMeters: Measured(1234.5),
		UnlockCount:         Measured(0),
	}
	data, err := json.Marshal(&set)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Set
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !decoded.DailyDistanceMeters.Present() || decoded.DailyDistanceMeters.Value() != 1234.5 {
		t.Errorf("distance = %+v, want present 1234.5", decoded.DailyDistanceMeters)
	}
	if !decoded.UnlockCount.Present() || decoded.UnlockCount.Value() != 0 {
		t.Errorf("unlock count = %+v, want present 0", decoded.UnlockCount)
	}
	if decoded.TimeAtHomePct.Present() {
		t.Error("timeAtHomePct should decode as absent from null")
	}
}

func TestAbsentMarshalsAsNull(t *testing.T) {
	data, err := json.Marshal(Absent())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("absent marshals as %s, want null", data)
	}
}
