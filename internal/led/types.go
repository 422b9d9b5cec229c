package led

import (
	"errors"
	"fmt"
	"strings"
)

// Color selects which channel of an LED unit is lit.
type Color int

const (
	ColorOff Color = iota
	ColorBlue
	ColorYellow
)

// Blink selects the timer trigger rate of the lit channel.
type Blink int

const (
	BlinkOff Blink = iota
	BlinkSlow
	BlinkFast
)

// State is the (color, blink) pair requested by callers and cached by controllers.
type State struct {
	Color Color
	Blink Blink
}

// Off is the state every controller starts in.
var Off = State{Color: ColorOff, Blink: BlinkOff}

func (c Color) String() string {
	switch c {
	case ColorOff:
		return "off"
	case ColorBlue:
		return "blue"
	case ColorYellow:
		return "yellow"
	default:
		return fmt.Sprintf("color(%d)", int(c))
	}
}

// ParseColor converts "off", "blue" or "yellow" (case-insensitive) to a
// Color. An empty string is an error; turning an LED off must be explicit.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ColorOff, errors.New("LED color is required")
	case "off":
		return ColorOff, nil
	case "blue":
		return ColorBlue, nil
	case "yellow":
		return ColorYellow, nil
	default:
		return ColorOff, fmt.Errorf("unknown LED color %q", s)
	}
}

func (b Blink) String() string {
	switch b {
	case BlinkOff:
		return "off"
	case BlinkSlow:
		return "slow"
	case BlinkFast:
		return "fast"
	default:
		return fmt.Sprintf("blink(%d)", int(b))
	}
}

// ParseBlink converts "off", "slow" or "fast" (case-insensitive) to a Blink.
func ParseBlink(s string) (Blink, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "", "solid":
		return BlinkOff, nil
	case "slow":
		return BlinkSlow, nil
	case "fast":
		return BlinkFast, nil
	default:
		return BlinkOff, fmt.Errorf("unknown LED blink rate %q", s)
	}
}

// Delay returns the value written to delay_on and delay_off for this rate.
// Unknown rates fall back to "0".
func (b Blink) Delay() string {
	switch b {
	case BlinkSlow:
		return "1000"
	case BlinkFast:
		return "500"
	default:
		return "0"
	}
}

// ParseState builds a State from its text forms.
func ParseState(color, blink string) (State, error) {
	c, err := ParseColor(color)
	if err != nil {
		return State{}, err
	}
	b, err := ParseBlink(blink)
	if err != nil {
		return State{}, err
	}
	return State{Color: c, Blink: b}, nil
}

func (s State) String() string {
	if s.Color == ColorOff {
		return "off"
	}
	return s.Color.String() + "/" + s.Blink.String()
}

// Mapping is the record a platform supplies for one physical LED: its index
// and the sysfs base directory of each color channel. An empty path means the
// channel is not configured.
type Mapping struct {
	ID         int    `toml:"id" json:"id"`
	BluePath   string `toml:"blue_path" json:"blue_path"`
	YellowPath string `toml:"yellow_path" json:"yellow_path"`
}
