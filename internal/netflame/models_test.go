package netflame

import "testing"

func TestStateFromRaw(t *testing.T) {
	tests := []struct {
		raw  int
		want PublicState
	}{
		{-1, StateInvalid},
		{0, StatePowerOff},
		{1, StatePreheat},
		{2, StatePreheat},
		{3, StatePreheat},
		{4, StatePreheat},
		{10, StatePreheat},
		{5, StateHeating},
		{6, StateHeating},
		{7, StatePoweredOn},
		{8, StatePoweringOff},
		{11, StatePoweringOff},
		{-3, StatePoweringOff},
		{-20, StateWaitingProgramLoad},
		{-4, StateAlarmed},
		{99, StateInvalid},
	}
	for _, tt := range tests {
		got := stateFromRaw(tt.raw)
		if got.Public != tt.want {
			t.Errorf("stateFromRaw(%d).Public = %v, want %v", tt.raw, got.Public, tt.want)
		}
		if got.Raw != tt.raw {
			t.Errorf("stateFromRaw(%d).Raw = %d", tt.raw, got.Raw)
		}
		if got.Description == "" {
			t.Errorf("stateFromRaw(%d) has empty description", tt.raw)
		}
	}
}

func TestModeFromRaw(t *testing.T) {
	tests := []struct {
		raw  int
		want string
	}{
		{0, "power mode"},
		{1, "ambient temperature mode"},
		{-1, "error reading mode"},
		{3, "emergency mode"},
	}
	for _, tt := range tests {
		if got := modeFromRaw(tt.raw); got.Description != tt.want {
			t.Errorf("modeFromRaw(%d) = %q, want %q", tt.raw, got.Description, tt.want)
		}
	}
}

func TestAlarmFromCode(t *testing.T) {
	none := alarmFromCode("N")
	if none.Active() {
		t.Error("N should not be active")
	}
	fuel := alarmFromCode("A099")
	if !fuel.Active() || fuel.Description != "stove out of fuel" {
		t.Errorf("A099 = %+v", fuel)
	}
	unknown := alarmFromCode("A123")
	if !unknown.Active() || unknown.Description != "unknown alarm" {
		t.Errorf("A123 = %+v", unknown)
	}
}

func TestPublicStateString(t *testing.T) {
	if got := StatePoweredOn.String(); got != "powered_on" {
		t.Errorf("String() = %q, want powered_on", got)
	}
	if got := PublicState(42).String(); got != "invalid" {
		t.Errorf("String() = %q, want invalid", got)
	}
}
