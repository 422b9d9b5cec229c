package led

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ChannelInfo is what Probe found for one channel.
type ChannelInfo struct {
	Path          string
	MaxBrightness int
	Brightness    int
	Trigger       string // active trigger, "" when unreadable
	Err           error  // set when max_brightness is unusable
}

// Probe reads the attributes of both channels of m without writing
// anything. It is safe to run against LEDs owned by a running service.
func Probe(m Mapping, limit int) (blue, yellow ChannelInfo) {
	return probeChannel(m.BluePath, limit), probeChannel(m.YellowPath, limit)
}

func probeChannel(base string, limit int) ChannelInfo {
	info := ChannelInfo{Path: base}
	if base == "" {
		info.Err = newError(ErrCodeConfig, -1, "", "path not configured", nil)
		return info
	}

	info.MaxBrightness, info.Err = readMaxBrightness(base, limit)
	if data, err := os.ReadFile(filepath.Join(base, fileBrightness)); err == nil {
		info.Brightness, _ = strconv.Atoi(strings.TrimSpace(string(data)))
	}
	if data, err := os.ReadFile(filepath.Join(base, fileTrigger)); err == nil {
		info.Trigger = activeTrigger(string(data))
	}
	return info
}

// activeTrigger extracts the selected entry from a sysfs trigger listing
// such as "none [timer] heartbeat". A plain value is returned as is.
func activeTrigger(listing string) string {
	listing = strings.TrimSpace(listing)
	for _, field := range strings.Fields(listing) {
		if strings.HasPrefix(field, "[") && strings.HasSuffix(field, "]") {
			return strings.Trim(field, "[]")
		}
	}
	return listing
}
