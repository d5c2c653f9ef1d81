package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/csheth/logopreview/internal/artifact"
	"github.com/csheth/logopreview/internal/config"
	"github.com/csheth/logopreview/internal/editor"
	"github.com/csheth/logopreview/internal/logger"
	"github.com/csheth/logopreview/internal/preview"
	"github.com/csheth/logopreview/internal/render"
	"github.com/csheth/logopreview/internal/tui"
)

// version is set during build with -ldflags.
var version = "dev"

type globalFlags struct {
	configPath string
	server     string
	timeout    time.Duration
	logLevel   string
	logFile    string
	outputDir  string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	g := &globalFlags{}
	var (
		logo        string
		text        string
		mode        string
		debounce    time.Duration
		noAltScreen bool
		noWatch     bool
	)

	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Live preview of logos placed by a render service",
		Long: `logopreview uploads a logo (an image file, a line of text, or a logo
for the business card) to the render service and shows the result in the
terminal. Offsets and scale re-render after a short pause; the preview
always matches the latest edit.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := g.overrides(cmd)
			if cmd.Flags().Changed("debounce") {
				overrides.Debounce = &debounce
			}
			cfg, closer, err := setup(g, overrides)
			if err != nil {
				return err
			}
			defer closer.Close()

			initialMode, ok := editor.ParseMode(mode)
			if !ok {
				return fmt.Errorf("unknown mode %q (want image, text or card)", mode)
			}
			client, err := render.NewFromEnv(render.Config{Endpoint: cfg.Server.URL, Timeout: cfg.Server.Timeout.Duration})
			if err != nil {
				return err
			}
			store, err := artifact.NewStore(client.HTTP())
			if err != nil {
				return err
			}
			logger.Infof("starting %s %s against %s (cache %s)", config.AppName, version, client.Endpoint(), store.Dir())

			opts := []tea.ProgramOption{}
			if !noAltScreen {
				opts = append(opts, tea.WithAltScreen())
			}
			program := tea.NewProgram(tui.New(tui.Config{
				Renderer: client,
				Store:    store,
				Engine: preview.Options{
					Limits: cfg.Limits(),
					Window: cfg.Preview.Debounce.Duration,
				},
				MaxUpload:   cfg.MaxUploadBytes(),
				OutputDir:   cfg.Output.Dir,
				InitialMode: initialMode,
				InitialFile: logo,
				InitialText: text,
				WatchFiles:  !noWatch,
			}), opts...)
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("terminal user interface: %w", err)
			}
			return nil
		},
	}

	g.register(root)
	flags := root.Flags()
	flags.StringVar(&logo, "logo", "", "logo file to select at startup")
	flags.StringVar(&text, "text", "", "logo text to start with")
	flags.StringVar(&mode, "mode", "image", "starting mode: image, text or card")
	flags.DurationVar(&debounce, "debounce", config.DefaultDebounce, "pause after the last edit before rendering")
	flags.BoolVar(&noAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")
	flags.BoolVar(&noWatch, "no-watch", false, "do not re-render when the logo file changes on disk")

	root.AddCommand(newRenderCommand(g), newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", config.AppName, version)
		},
	}
}

func (g *globalFlags) register(root *cobra.Command) {
	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	pf.StringVar(&g.server, "server", "", "render service URL (default "+config.DefaultServerURL+")")
	pf.DurationVar(&g.timeout, "timeout", config.DefaultTimeout, "render request timeout")
	pf.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&g.logFile, "log-file", "", `log file; "-" for stderr, "off" to disable`)
	pf.StringVar(&g.outputDir, "output-dir", "", "directory exported artifacts are written to")
}

// overrides collects the flags the user actually set.
func (g *globalFlags) overrides(cmd *cobra.Command) *config.Overrides {
	o := &config.Overrides{}
	flags := cmd.Flags()
	if flags.Changed("server") {
		o.Server = &g.server
	}
	if flags.Changed("timeout") {
		o.Timeout = &g.timeout
	}
	if flags.Changed("log-level") {
		o.LogLevel = &g.logLevel
	}
	if flags.Changed("log-file") {
		o.LogFile = &g.logFile
	}
	if flags.Changed("output-dir") {
		o.OutputDir = &g.outputDir
	}
	return o
}

// setup loads the configuration and starts the logger.
func setup(g *globalFlags, overrides *config.Overrides) (*config.Config, io.Closer, error) {
	cfg, err := config.Load(g.configPath, overrides)
	if err != nil {
		return nil, nil, err
	}
	closer, err := logger.Setup(cfg.Logger.Level, cfg.LogPath())
	if err != nil {
		return nil, nil, err
	}
	if cfg.Path != "" {
		logger.Debugf("loaded config from %s", cfg.Path)
	}
	for _, key := range cfg.Unknown {
		logger.Warnf("unknown config key %q in %s", key, filepath.Base(cfg.Path))
	}
	return cfg, closer, nil
}
