package discovery

import "testing"

func TestNormalizeMAC(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"aa:bb:cc:dd:ee:ff", "AA:BB:CC:DD:EE:FF"},
		{"AA:BB:CC:DD:EE:FF", "AA:BB:CC:DD:EE:FF"},
		{"aa-bb-cc-dd-ee-ff", "AA:BB:CC:DD:EE:FF"},
		{"aabb.ccdd.eeff", "AA:BB:CC:DD:EE:FF"},
		{"  aa:bb:cc:dd:ee:ff  ", "AA:BB:CC:DD:EE:FF"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeMAC(tt.in); got != tt.want {
			t.Errorf("NormalizeMAC(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatchByMAC(t *testing.T) {
	devices := []*Device{
		{IP: "192.168.68.1", MAC: "11:22:33:44:55:66"},
		{IP: "192.168.68.54", MAC: "AA:BB:CC:DD:EE:FF"},
		{IP: "192.168.68.99"}, // no MAC visible
	}

	if got := matchByMAC(devices, "aa-bb-cc-dd-ee-ff"); got == nil || got.IP != "192.168.68.54" {
		t.Errorf("matchByMAC() = %v, want 192.168.68.54", got)
	}
	if got := matchByMAC(devices, "00:00:00:00:00:00"); got != nil {
		t.Errorf("matchByMAC() = %v, want nil", got)
	}
	if got := matchByMAC(devices, ""); got != nil {
		t.Errorf("matchByMAC(\"\") = %v, want nil", got)
	}
}

func TestSortDevices(t *testing.T) {
	devices := []*Device{
		{IP: "192.168.68.100"},
		{IP: "192.168.68.9"},
		{IP: "192.168.68.54"},
		{IP: "10.0.0.1"},
	}
	sortDevices(devices)

	want := []string{"10.0.0.1", "192.168.68.9", "192.168.68.54", "192.168.68.100"}
	for i, ip := range want {
		if devices[i].IP != ip {
			t.Fatalf("sortDevices()[%d] = %s, want %s", i, devices[i].IP, ip)
		}
	}
}

func TestDeviceString(t *testing.T) {
	d := &Device{IP: "192.168.68.54", MAC: "AA:BB:CC:DD:EE:FF"}
	if got := d.String(); got != "192.168.68.54 (MAC AA:BB:CC:DD:EE:FF)" {
		t.Errorf("String() = %q", got)
	}
	bare := &Device{IP: "192.168.68.54"}
	if got := bare.String(); got != "192.168.68.54 (MAC -)" {
		t.Errorf("String() = %q", got)
	}
	if got := d.BaseURL(); got != "http://192.168.68.54" {
		t.Errorf("BaseURL() = %q", got)
	}
}

func TestNormalizeHostname(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Stove-Controller.local.", "stove-controller"},
		{"stove-controller.local", "stove-controller"},
		{"stove-controller", "stove-controller"},
	}
	for _, tt := range tests {
		if got := normalizeHostname(tt.in); got != tt.want {
			t.Errorf("normalizeHostname(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
