package catalog

import "testing"

func TestSpecKind(t *testing.T) {
	tests := []struct {
		wireType string
		want     Kind
	}{
		{"enPPCFaderMessage", KindFader},
		{"enPPCRotaryMessage", KindRotary},
		{"enPPCSwitchMessage", KindSwitch},
		{"enPPCStringMessage", KindString},
		{"enPPCMeterMessage", KindMeter},
		{"enPPCMysteryMessage", KindOther},
		{"", KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.wireType, func(t *testing.T) {
			spec := EndpointSpec{Type: tt.wireType}
			if got := spec.Kind(); got != tt.want {
				t.Errorf("Kind(%q) = %q, want %q", tt.wireType, got, tt.want)
			}
		})
	}
}

func TestSpecDocumented(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        bool
	}{
		{"real description", "Channel fader level.", true},
		{"placeholder", NoDescription, false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := EndpointSpec{Description: tt.description}
			if got := spec.Documented(); got != tt.want {
				t.Errorf("Documented() = %v, want %v", got, tt.want)
			}
		})
	}
}
