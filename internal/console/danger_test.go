package console

import "testing"

func TestIsDangerous(t *testing.T) {
	tests := []struct {
		endpoint string
		want     bool
	}{
		{"enReboot", true},
		{"enFactoryReset", true},
		{"enFader", false},
		{"enMute", false},
		{"enreboot", false}, // case-sensitive, like all catalog keys
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			if got := IsDangerous(tt.endpoint); got != tt.want {
				t.Errorf("IsDangerous(%q) = %v, want %v", tt.endpoint, got, tt.want)
			}
		})
	}
}

func TestDangerousEndpoints(t *testing.T) {
	got := DangerousEndpoints()
	want := []string{"enFactoryReset", "enReboot"}

	if len(got) != len(want) {
		t.Fatalf("DangerousEndpoints() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DangerousEndpoints()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
