package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/portled/cmd"
	"github.com/smazurov/portled/internal/api"
	"github.com/smazurov/portled/internal/config"
	"github.com/smazurov/portled/internal/events"
	"github.com/smazurov/portled/internal/led"
	"github.com/smazurov/portled/internal/logging"
	"github.com/smazurov/portled/internal/metrics"
	"github.com/smazurov/portled/internal/nats"
	"github.com/smazurov/portled/internal/systemd"
	"github.com/smazurov/portled/internal/version"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"/etc/portled/portled.toml"`

	// Server settings
	Port       string `help:"HTTP listen address" short:"p" default:":8095" toml:"server.port" env:"SERVER_PORT"`
	CORSOrigin string `help:"Access-Control-Allow-Origin value, empty disables CORS" default:"" toml:"server.cors_origin" env:"SERVER_CORS_ORIGIN"`

	// LED settings
	LedsFile            string `help:"LED mapping file (watched for changes)" default:"/etc/portled/leds.toml" toml:"leds.file" env:"LEDS_FILE"`
	LedsCount           int    `help:"Number of LEDs resolved from the path templates when no mapping file exists" default:"0" toml:"leds.count" env:"LEDS_COUNT"`
	LedsBlueTemplate    string `help:"Blue channel path template" default:"/sys/class/leds/port%d_led:blue" toml:"leds.blue_template" env:"LEDS_BLUE_TEMPLATE"`
	LedsYellowTemplate  string `help:"Yellow channel path template" default:"/sys/class/leds/port%d_led:yellow" toml:"leds.yellow_template" env:"LEDS_YELLOW_TEMPLATE"`
	LedsTemplateOffset  int    `help:"Added to the LED index before formatting templates" default:"1" toml:"leds.template_offset" env:"LEDS_TEMPLATE_OFFSET"`
	LedsDiscoverRoot    string `help:"Directory scanned when no other mapping source is configured" default:"/sys/class/leds" toml:"leds.discover_root" env:"LEDS_DISCOVER_ROOT"`
	LedsBrightnessLimit int    `help:"Largest accepted max_brightness" default:"255" toml:"leds.brightness_limit" env:"LEDS_BRIGHTNESS_LIMIT"`
	LedsReloadDebounce  string `help:"Delay before reloading a changed mapping file" default:"500ms" toml:"leds.reload_debounce" env:"LEDS_RELOAD_DEBOUNCE"`
	LedsDryRun          bool   `help:"Track LED state without touching sysfs" default:"false" toml:"leds.dry_run" env:"LEDS_DRY_RUN"`
	LedsOffOnExit       bool   `help:"Turn every LED off on shutdown" default:"true" toml:"leds.off_on_exit" env:"LEDS_OFF_ON_EXIT"`

	// NATS settings
	NatsEnabled      bool   `help:"Accept LED requests over NATS" default:"true" toml:"nats.enabled" env:"NATS_ENABLED"`
	NatsURL          string `help:"NATS server URL" default:"nats://127.0.0.1:4222" toml:"nats.url" env:"NATS_URL"`
	NatsEmbedded     bool   `help:"Run an embedded NATS server" default:"false" toml:"nats.embedded" env:"NATS_EMBEDDED"`
	NatsEmbeddedHost string `help:"Embedded NATS listen host" default:"127.0.0.1" toml:"nats.embedded_host" env:"NATS_EMBEDDED_HOST"`
	NatsEmbeddedPort int    `help:"Embedded NATS listen port" default:"4222" toml:"nats.embedded_port" env:"NATS_EMBEDDED_PORT"`

	// Auth settings
	AuthUsername string `help:"Basic auth username, empty disables auth" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Logging settings
	LoggingLevel  string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingLed    string `help:"LED controller logging level" default:"info" toml:"logging.led" env:"LOGGING_LED"`
	LoggingAPI    string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingHTTP   string `help:"HTTP access logging level" default:"info" toml:"logging.http" env:"LOGGING_HTTP"`
	LoggingNats   string `help:"NATS logging level" default:"info" toml:"logging.nats" env:"LOGGING_NATS"`
	LoggingConfig string `help:"Config watcher logging level" default:"info" toml:"logging.config" env:"LOGGING_CONFIG"`
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			fmt.Fprintln(os.Stderr, "Failed to load config:", loadErr)
		}

		// Modules without a flag of their own, like main, take their level from [logging].
		modules := config.LoadLoggingConfig(opts.Config).Modules
		modules["led"] = opts.LoggingLed
		modules["api"] = opts.LoggingAPI
		modules["http"] = opts.LoggingHTTP
		modules["nats"] = opts.LoggingNats
		modules["config"] = opts.LoggingConfig
		logging.Initialize(logging.Config{
			Level:   opts.LoggingLevel,
			Format:  opts.LoggingFormat,
			Modules: modules,
		})
		logger := logging.GetLogger("main")

		eventBus := events.New()
		ledLogger := logging.GetLogger("led")
		factory := led.NewFactory(opts.LedsDryRun, ledLogger, led.WithBrightnessLimit(opts.LedsBrightnessLimit))
		manager := led.NewManager(factory, eventBus, ledLogger)

		notifier := systemd.NewNotifier(logger)

		debounce, err := time.ParseDuration(opts.LedsReloadDebounce)
		if err != nil {
			debounce = config.DefaultDebounce
		}
		var watcher *config.Watcher[[]led.Mapping]
		if opts.LedsFile != "" {
			watcher = config.NewWatcher(opts.LedsFile, led.LoadMappingFile, logging.GetLogger("config"),
				config.WithDebounce[[]led.Mapping](debounce),
				config.WithErrorHandler[[]led.Mapping](func(err error) {
					logger.Error("LED mapping file rejected, keeping current LEDs", "path", opts.LedsFile, "error", err)
					notifier.Status(fmt.Sprintf("%d LEDs managed, mapping reload failed: %v", manager.Count(), err))
				}))
			watcher.OnReload(func(mappings []led.Mapping) {
				notifier.Reloading()
				manager.Reload(mappings)
				notifier.Ready()
				notifier.Status(fmt.Sprintf("%d LEDs managed", manager.Count()))
			})
		}

		var natsServer *nats.Server
		var bridge *nats.Bridge
		natsLogger := logging.GetLogger("nats")
		if opts.NatsEmbedded {
			natsServer = nats.NewServer(nats.ServerOptions{
				Host:   opts.NatsEmbeddedHost,
				Port:   opts.NatsEmbeddedPort,
				Logger: natsLogger,
			})
		}

		natsURL := opts.NatsURL
		var healthChecks []api.HealthCheck
		if natsServer != nil {
			healthChecks = append(healthChecks, api.HealthCheck{Name: "nats_server", Check: func() (bool, string) {
				return natsServer.IsRunning(), fmt.Sprintf("%d clients", natsServer.NumClients())
			}})
		}
		if opts.NatsEnabled {
			healthChecks = append(healthChecks, api.HealthCheck{Name: "nats_bridge", Check: func() (bool, string) {
				return bridge != nil && bridge.IsConnected(), natsURL
			}})
		}

		server := api.NewServer(&api.Options{
			AuthUsername:      opts.AuthUsername,
			AuthPassword:      opts.AuthPassword,
			CORSOrigin:        opts.CORSOrigin,
			LEDs:              manager,
			EventBus:          eventBus,
			PrometheusHandler: metrics.Handler(),
			HealthChecks:      healthChecks,
		})

		ctx, cancel := context.WithCancel(context.Background())

		// Subcommands run this callback too; anything touching hardware
		// belongs in OnStart.
		hooks.OnStart(func() {
			logger.Info("Starting portled", "version", version.Version, "config", opts.Config, "dry_run", opts.LedsDryRun)

			mappings, err := led.LoadMappings(led.SourceConfig{
				MappingFile:    opts.LedsFile,
				Count:          opts.LedsCount,
				BlueTemplate:   opts.LedsBlueTemplate,
				YellowTemplate: opts.LedsYellowTemplate,
				TemplateOffset: opts.LedsTemplateOffset,
				DiscoverRoot:   opts.LedsDiscoverRoot,
			}, logger)
			if err != nil {
				logger.Error("Failed to load LED mappings, starting with none", "error", err)
			}
			if errs := manager.Reload(mappings); len(errs) > 0 {
				logger.Warn("Some LEDs could not be initialized", "failed", len(errs), "managed", manager.Count())
			}
			manager.Start()

			if watcher != nil {
				if startErr := watcher.Start(ctx); startErr != nil {
					logger.Warn("LED mapping file will not be watched", "path", opts.LedsFile, "error", startErr)
				}
			}

			if natsServer != nil {
				if startErr := natsServer.Start(); startErr != nil {
					logger.Error("Failed to start embedded NATS server", "error", startErr)
					os.Exit(1)
				}
				natsURL = natsServer.ClientURL()
			}
			if opts.NatsEnabled {
				bridge = nats.NewBridge(natsURL, eventBus, natsLogger)
				if startErr := bridge.Start(); startErr != nil {
					logger.Warn("NATS unavailable, LED requests accepted over HTTP only", "url", natsURL, "error", startErr)
				}
			}

			notifier.Ready()
			notifier.Status(fmt.Sprintf("%d LEDs managed", manager.Count()))
			go notifier.RunWatchdog(ctx)

			if startErr := server.Start(opts.Port); startErr != nil {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			notifier.Stopping()

			stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer stopCancel()
			if stopErr := server.Stop(stopCtx); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}

			if bridge != nil {
				bridge.Stop()
			}
			if watcher != nil {
				if stopErr := watcher.Stop(); stopErr != nil {
					logger.Warn("Error stopping mapping file watcher", "error", stopErr)
				}
			}
			cancel()

			manager.Stop()
			if opts.LedsOffOnExit {
				if offErr := manager.OffAll(); offErr != nil {
					logger.Error("Failed to turn LEDs off", "error", offErr)
				}
			}
			if natsServer != nil {
				natsServer.Stop()
			}
		})
	})

	root := cli.Root()
	root.Use = "portled"
	root.Short = "Switch port status LED service"
	root.AddCommand(cmd.CreateSetCmd(), cmd.CreateStatusCmd(), cmd.CreateVersionCmd())

	cli.Run()
}
