package cmd

import (
	"fmt"
	"log/slog"

	"github.com/smazurov/portled/internal/config"
	"github.com/smazurov/portled/internal/led"
	"github.com/smazurov/portled/internal/logging"
	"github.com/spf13/cobra"
)

// DefaultConfigPath is where the service and the one-shot commands look
// for portled.toml.
const DefaultConfigPath = "/etc/portled/portled.toml"

// DefaultNatsURL is used when no nats.url is configured.
const DefaultNatsURL = "nats://127.0.0.1:4222"

// ledOptions is the part of the service configuration the one-shot
// commands share. Flag names follow the field names so config.LoadConfig
// can tell which ones were set explicitly.
type ledOptions struct {
	Config string

	LedsFile            string `toml:"leds.file" env:"LEDS_FILE"`
	LedsCount           int    `toml:"leds.count" env:"LEDS_COUNT"`
	LedsBlueTemplate    string `toml:"leds.blue_template" env:"LEDS_BLUE_TEMPLATE"`
	LedsYellowTemplate  string `toml:"leds.yellow_template" env:"LEDS_YELLOW_TEMPLATE"`
	LedsTemplateOffset  int    `toml:"leds.template_offset" env:"LEDS_TEMPLATE_OFFSET"`
	LedsDiscoverRoot    string `toml:"leds.discover_root" env:"LEDS_DISCOVER_ROOT"`
	LedsBrightnessLimit int    `toml:"leds.brightness_limit" env:"LEDS_BRIGHTNESS_LIMIT"`
	NatsURL             string `toml:"nats.url" env:"NATS_URL"`
	LoggingLevel        string `toml:"logging.level" env:"LOGGING_LEVEL"`
}

func (o *ledOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.Config, "config", "c", DefaultConfigPath, "Path to configuration file")
	f.StringVar(&o.LedsFile, "leds-file", "/etc/portled/leds.toml", "LED mapping file")
	f.IntVar(&o.LedsCount, "leds-count", 0, "Number of LEDs resolved from the path templates")
	f.StringVar(&o.LedsBlueTemplate, "leds-blue-template", "/sys/class/leds/port%d_led:blue", "Blue channel path template")
	f.StringVar(&o.LedsYellowTemplate, "leds-yellow-template", "/sys/class/leds/port%d_led:yellow", "Yellow channel path template")
	f.IntVar(&o.LedsTemplateOffset, "leds-template-offset", 1, "Added to the LED index before formatting templates")
	f.StringVar(&o.LedsDiscoverRoot, "leds-discover-root", "/sys/class/leds", "Directory scanned when no mapping source is configured")
	f.IntVar(&o.LedsBrightnessLimit, "leds-brightness-limit", led.DefaultBrightnessLimit, "Largest accepted max_brightness")
	f.StringVar(&o.NatsURL, "nats-url", DefaultNatsURL, "NATS server of the running service")
	f.StringVar(&o.LoggingLevel, "logging-level", "warn", "Logging level (debug, info, warn, error)")
}

// load merges the config file and environment under the flags and sets up
// logging for a short-lived command. Format and module levels come from the
// [logging] table; the global level honors --logging-level.
func (o *ledOptions) load(cmd *cobra.Command) (*slog.Logger, error) {
	if err := config.LoadConfig(o, cmd); err != nil {
		return nil, err
	}
	logCfg := config.LoadLoggingConfig(o.Config)
	logCfg.Level = o.LoggingLevel
	logging.Initialize(logCfg)
	return logging.GetLogger("cli"), nil
}

func (o *ledOptions) source() led.SourceConfig {
	return led.SourceConfig{
		MappingFile:    o.LedsFile,
		Count:          o.LedsCount,
		BlueTemplate:   o.LedsBlueTemplate,
		YellowTemplate: o.LedsYellowTemplate,
		TemplateOffset: o.LedsTemplateOffset,
		DiscoverRoot:   o.LedsDiscoverRoot,
	}
}

// resolve returns the mapping record of one LED.
func (o *ledOptions) resolve(id int, logger *slog.Logger) (led.Mapping, error) {
	mappings, err := led.LoadMappings(o.source(), logger)
	if err != nil {
		return led.Mapping{}, fmt.Errorf("failed to load LED mappings: %w", err)
	}
	return led.NewStaticResolver(mappings).Resolve(id)
}
