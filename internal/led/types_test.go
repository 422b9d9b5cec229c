package led

import "testing"

func TestParseState(t *testing.T) {
	tests := []struct {
		color   string
		blink   string
		want    State
		wantErr bool
	}{
		{"blue", "off", State{ColorBlue, BlinkOff}, false},
		{"Yellow", "SLOW", State{ColorYellow, BlinkSlow}, false},
		{"yellow", "fast", State{ColorYellow, BlinkFast}, false},
		{"off", "", Off, false},
		{"", "", State{}, true},
		{" ", "slow", State{}, true},
		{"blue", "solid", State{ColorBlue, BlinkOff}, false},
		{"green", "off", State{}, true},
		{"blue", "strobe", State{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.color+"/"+tt.blink, func(t *testing.T) {
			got, err := ParseState(tt.color, tt.blink)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseState() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseState() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBlinkDelay(t *testing.T) {
	tests := map[Blink]string{
		BlinkOff:  "0",
		BlinkSlow: "1000",
		BlinkFast: "500",
		Blink(42): "0",
	}
	for blink, want := range tests {
		if got := blink.Delay(); got != want {
			t.Errorf("%v.Delay() = %q, want %q", blink, got, want)
		}
	}
}

func TestStateString(t *testing.T) {
	if got := Off.String(); got != "off" {
		t.Errorf("Off.String() = %q", got)
	}
	if got := (State{ColorYellow, BlinkFast}).String(); got != "yellow/fast" {
		t.Errorf("String() = %q, want yellow/fast", got)
	}
	if got := Color(5).String(); got != "color(5)" {
		t.Errorf("Color(5).String() = %q", got)
	}
}
