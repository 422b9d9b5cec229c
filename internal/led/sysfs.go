package led

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const sysfsLEDPath = "/sys/class/leds"

// Attribute files under a channel's base directory.
const (
	fileBrightness    = "brightness"
	fileMaxBrightness = "max_brightness"
	fileTrigger       = "trigger"
	fileDelayOn       = "delay_on"
	fileDelayOff      = "delay_off"

	triggerTimer = "timer"
)

// DefaultBrightnessLimit is the upper bound accepted from max_brightness.
const DefaultBrightnessLimit = 255

// channel is one color emitter of an LED unit.
type channel struct {
	color         Color
	path          string
	maxBrightness int
}

func (c *channel) file(name string) string {
	return filepath.Join(c.path, name)
}

// writeSysfs truncates path and writes value to it. The file is closed on
// every return path; a close error is reported when the write succeeded.
func writeSysfs(path, value string) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = f.WriteString(value)
	return err
}

// readMaxBrightness parses the max_brightness attribute under base and
// checks it against [1, limit].
func readMaxBrightness(base string, limit int) (int, error) {
	path := filepath.Join(base, fileMaxBrightness)
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	value, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	if value < 1 || value > limit {
		return 0, fmt.Errorf("max brightness %d outside [1, %d]", value, limit)
	}
	return value, nil
}
