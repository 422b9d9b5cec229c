package led

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/portled/internal/logging"
)

// DefaultDiscoverPattern matches LED class directories such as "port12_led:blue".
// The first submatch is the LED index, the second the color.
var DefaultDiscoverPattern = regexp.MustCompile(`^port(\d+)_led:(blue|yellow)$`)

// Factory builds the Controller for one mapping record.
type Factory func(m Mapping) (Controller, error)

// NewFactory returns a Factory producing sysfs controllers, or no-op
// controllers when dryRun is set.
func NewFactory(dryRun bool, logger logging.Logger, opts ...Option) Factory {
	if dryRun {
		return func(m Mapping) (Controller, error) {
			return newNoop(m.ID, logger), nil
		}
	}
	opts = append([]Option{WithLogger(logger)}, opts...)
	return func(m Mapping) (Controller, error) {
		return NewIO(m, opts...)
	}
}

// SourceConfig selects where mapping records come from. The first
// non-empty source wins: MappingFile, then templates with Count, then a
// directory scan of DiscoverRoot.
type SourceConfig struct {
	MappingFile    string
	Count          int
	BlueTemplate   string
	YellowTemplate string
	TemplateOffset int
	DiscoverRoot   string
}

// LoadMappings resolves the mapping records described by cfg.
func LoadMappings(cfg SourceConfig, logger logging.Logger) ([]Mapping, error) {
	if cfg.MappingFile != "" {
		mappings, err := LoadMappingFile(cfg.MappingFile)
		if err == nil {
			logger.Info("Loaded LED mappings", "source", "file", "path", cfg.MappingFile, "count", len(mappings))
			return mappings, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		logger.Debug("LED mapping file not found", "path", cfg.MappingFile)
	}

	if cfg.Count > 0 {
		mappings, err := ResolveRange(TemplateResolver{
			BlueTemplate:   cfg.BlueTemplate,
			YellowTemplate: cfg.YellowTemplate,
			Offset:         cfg.TemplateOffset,
		}, cfg.Count)
		if err != nil {
			return nil, err
		}
		logger.Info("Loaded LED mappings", "source", "template", "count", len(mappings))
		return mappings, nil
	}

	root := cfg.DiscoverRoot
	if root == "" {
		root = sysfsLEDPath
	}
	mappings, err := Discover(root, DefaultDiscoverPattern, cfg.TemplateOffset)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded LED mappings", "source", "discovery", "root", root, "count", len(mappings))
	return mappings, nil
}

// mappingFile is the on-disk layout of a mapping file:
//
//	[[led]]
//	id = 0
//	blue_path = "/sys/class/leds/port1_led:blue"
//	yellow_path = "/sys/class/leds/port1_led:yellow"
type mappingFile struct {
	LEDs []Mapping `toml:"led"`
}

// LoadMappingFile parses a TOML mapping file. Records are returned sorted by ID.
func LoadMappingFile(path string) ([]Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file mappingFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse LED mapping file %s: %w", path, err)
	}

	seen := make(map[int]bool, len(file.LEDs))
	for _, m := range file.LEDs {
		if m.ID < 0 {
			return nil, fmt.Errorf("LED mapping file %s: negative id %d", path, m.ID)
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("LED mapping file %s: duplicate id %d", path, m.ID)
		}
		seen[m.ID] = true
	}

	sortMappings(file.LEDs)
	return file.LEDs, nil
}

// Discover scans root for LED class directories matching pattern and pairs
// the blue and yellow channels by index. The LED id is the matched number
// minus offset, mirroring TemplateResolver.Offset; names mapping to a
// negative id are ignored. A channel without its partner is still returned
// so that construction reports it as misconfigured.
func Discover(root string, pattern *regexp.Regexp, offset int) ([]Mapping, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	byID := make(map[int]*Mapping)
	for _, entry := range entries {
		match := pattern.FindStringSubmatch(entry.Name())
		if len(match) != 3 {
			continue
		}
		n, convErr := strconv.Atoi(match[1])
		if convErr != nil || n-offset < 0 {
			continue
		}
		id := n - offset

		m, ok := byID[id]
		if !ok {
			m = &Mapping{ID: id}
			byID[id] = m
		}
		path := filepath.Join(root, entry.Name())
		switch match[2] {
		case "blue":
			m.BluePath = path
		case "yellow":
			m.YellowPath = path
		}
	}

	mappings := make([]Mapping, 0, len(byID))
	for _, m := range byID {
		mappings = append(mappings, *m)
	}
	sortMappings(mappings)
	return mappings, nil
}
