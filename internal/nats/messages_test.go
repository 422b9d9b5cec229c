package nats

import (
	"testing"
)

func TestLedIDFromSubject(t *testing.T) {
	tests := []struct {
		subject string
		want    int
		wantErr bool
	}{
		{"portled.leds.0.set", 0, false},
		{"portled.leds.47.state", 47, false},
		{SubjectLedSet(12), 12, false},
		{"portled.leds.-1.set", 0, true},
		{"portled.leds.abc.set", 0, true},
		{"portled.leds.5", 0, true},
		{"othersvc.ports.5.set", 0, true},
		{"portled.leds", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			got, err := LedIDFromSubject(tt.subject)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSubjects(t *testing.T) {
	tests := map[string]string{
		SubjectLedSet(3):   "portled.leds.3.set",
		SubjectLedState(3): "portled.leds.3.state",
		SubjectLedError(3): "portled.leds.3.error",
	}
	for got, want := range tests {
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}

func TestUnmarshalSetOptionalID(t *testing.T) {
	m, err := UnmarshalSet([]byte(`{"color":"yellow","blink":"slow","reason":"lldp_mismatch"}`))
	if err != nil {
		t.Fatal(err)
	}
	if m.LedID != nil {
		t.Errorf("LedID = %v, want nil", *m.LedID)
	}
	if m.Color != "yellow" || m.Blink != "slow" || m.Reason != "lldp_mismatch" {
		t.Errorf("got %+v", m)
	}

	m, err = UnmarshalSet([]byte(`{"led_id":0,"color":"off"}`))
	if err != nil {
		t.Fatal(err)
	}
	if m.LedID == nil || *m.LedID != 0 {
		t.Errorf("explicit led_id 0 must survive decoding, got %v", m.LedID)
	}
}
