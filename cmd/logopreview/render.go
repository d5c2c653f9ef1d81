package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/csheth/logopreview/internal/artifact"
	"github.com/csheth/logopreview/internal/config"
	"github.com/csheth/logopreview/internal/editor"
	"github.com/csheth/logopreview/internal/logger"
	"github.com/csheth/logopreview/internal/preview"
	"github.com/csheth/logopreview/internal/render"
)

// renderOptions are the parameters of one headless render. Nil values
// leave the control at its default.
type renderOptions struct {
	Mode       editor.Mode
	Logo       string
	Text       string
	Horizontal *int
	Vertical   *int
	Scale      *float64
	Override   editor.Axis
	OutDir     string
}

// renderOutcome is what a headless render produced.
type renderOutcome struct {
	Artifact    string
	Exported    string
	DownloadURL string
	Generation  uint64
}

type headlessRenderer interface {
	Preview(ctx context.Context, req preview.Request) preview.Result
	ArtifactURL(name, token string, download bool) string
}

func newRenderCommand(g *globalFlags) *cobra.Command {
	var (
		mode       string
		override   string
		horizontal int
		vertical   int
		scale      float64
		opts       renderOptions
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one logo without the interactive preview",
		Long: `Render sends a single request to the render service, downloads the
artifact and exports it with a YAML manifest of the parameters used.

Examples:
  logopreview render --logo acme.png --horizontal 40 --scale 1.2
  logopreview render --mode text --text "ACME" --out ./exports
  logopreview render --mode card --logo acme.svg`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var ok bool
			if opts.Mode, ok = editor.ParseMode(mode); !ok {
				return fmt.Errorf("unknown mode %q (want image, text or card)", mode)
			}
			if opts.Override, ok = editor.ParseAxis(override); !ok {
				return fmt.Errorf("unknown override %q (want pos or scale)", override)
			}
			flags := cmd.Flags()
			if flags.Changed("horizontal") {
				opts.Horizontal = &horizontal
			}
			if flags.Changed("vertical") {
				opts.Vertical = &vertical
			}
			if flags.Changed("scale") {
				opts.Scale = &scale
			}

			cfg, closer, err := setup(g, g.overrides(cmd))
			if err != nil {
				return err
			}
			defer closer.Close()
			if opts.OutDir == "" {
				opts.OutDir = cfg.Output.Dir
			}

			client, err := render.NewFromEnv(render.Config{Endpoint: cfg.Server.URL, Timeout: cfg.Server.Timeout.Duration})
			if err != nil {
				return err
			}
			store, err := artifact.NewStore(client.HTTP())
			if err != nil {
				return err
			}
			out, err := runRender(cmd.Context(), cfg, client, store, opts)
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), out)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&mode, "mode", "image", "image, text or card")
	flags.StringVar(&opts.Logo, "logo", "", "logo file for image and card modes")
	flags.StringVar(&opts.Text, "text", "", "logo text for text mode")
	flags.IntVar(&horizontal, "horizontal", 0, "horizontal offset in pixels")
	flags.IntVar(&vertical, "vertical", 0, "vertical offset in pixels")
	flags.Float64Var(&scale, "scale", 1.0, "scale factor")
	flags.StringVar(&override, "override", "", `hint which control wins: "pos" or "scale"`)
	flags.StringVarP(&opts.OutDir, "out", "o", "", "export directory (default output.dir)")
	return cmd
}

// runRender drives the same engine the TUI uses through one submit.
func runRender(ctx context.Context, cfg *config.Config, client headlessRenderer, store *artifact.Store, opts renderOptions) (renderOutcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	engine := preview.NewEngine(preview.Options{Limits: cfg.Limits()})
	engine.SwitchMode(opts.Mode)

	if opts.Mode == editor.ModeText {
		engine.EditText(opts.Text)
	} else if opts.Logo != "" {
		file, err := editor.LoadFile(opts.Logo, cfg.MaxUploadBytes())
		if err != nil {
			return renderOutcome{}, err
		}
		engine.SelectFile(file)
	}
	applyControls(engine, opts)

	act, err := engine.Submit()
	if err != nil {
		return renderOutcome{}, err
	}
	result := client.Preview(ctx, act.Request)
	engine.Reconcile(result)
	view := engine.View()
	if view.Phase != preview.PhaseReady {
		return renderOutcome{}, errors.New(view.Error)
	}

	path, err := store.Fetch(ctx, client.ArtifactURL(view.Artifact, view.Token, false), view.Artifact)
	if err != nil {
		engine.ImageFailed(view.Artifact, view.Token, err)
		return renderOutcome{}, fmt.Errorf("download %s: %w", view.Artifact, err)
	}
	engine.ImageLoaded(view.Artifact, view.Token)

	state := engine.State()
	exported, err := artifact.Export(path, opts.OutDir, artifact.NewManifest(state, view.Artifact))
	if err != nil {
		return renderOutcome{}, err
	}
	logger.Infof("exported generation %d to %s", state.Generation, exported)
	return renderOutcome{
		Artifact:    view.Artifact,
		Exported:    exported,
		DownloadURL: client.ArtifactURL(view.Artifact, view.Token, true),
		Generation:  state.Generation,
	}, nil
}

// applyControls sets the requested values. Controls on the override axis
// are applied last so that axis becomes the last changed one.
func applyControls(e *preview.Engine, opts renderOptions) {
	values := map[editor.Control]*float64{}
	if opts.Horizontal != nil {
		v := float64(*opts.Horizontal)
		values[editor.ControlHorizontal] = &v
	}
	if opts.Vertical != nil {
		v := float64(*opts.Vertical)
		values[editor.ControlVertical] = &v
	}
	if opts.Scale != nil {
		values[editor.ControlScale] = opts.Scale
	}

	var deferred []editor.Control
	for _, c := range editor.Controls {
		if opts.Override != editor.AxisNone && c.Axis() == opts.Override {
			deferred = append(deferred, c)
			continue
		}
		if v := values[c]; v != nil {
			e.Slide(c, *v)
		}
	}
	touched := false
	for _, c := range deferred {
		if v := values[c]; v != nil {
			e.Slide(c, *v)
			touched = true
		}
	}
	if !touched && len(deferred) > 0 {
		c := deferred[0]
		e.Slide(c, e.State().Value(c))
	}
}

func printOutcome(w io.Writer, out renderOutcome) {
	fmt.Fprintf(w, "rendered  %s (generation %d)\n", out.Artifact, out.Generation)
	fmt.Fprintf(w, "exported  %s\n", out.Exported)
	fmt.Fprintf(w, "manifest  %s\n", artifact.ManifestPath(out.Exported))
	fmt.Fprintf(w, "download  %s\n", out.DownloadURL)
}
