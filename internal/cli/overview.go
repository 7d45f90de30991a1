package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	sceneio "github.com/stratumviz/stratum/pkg/io"
	"github.com/stratumviz/stratum/pkg/render/nodelink"
)

// overviewOpts holds the command-line flags for the overview command.
type overviewOpts struct {
	output   string // output file path
	format   string // "dot", "svg", "png", or "pdf"
	detailed bool   // include semantic names and numeric labels
	dynamic  bool   // include dynamic layers
}

// overviewFormats is the set of formats the overview command can produce.
var overviewFormats = map[string]bool{"dot": true, "svg": true, "png": true, "pdf": true}

// newOverviewCmd creates the overview command: a node-link diagram of the
// scene's layer structure, without marker geometry.
func newOverviewCmd() *cobra.Command {
	opts := overviewOpts{format: "dot"}

	cmd := &cobra.Command{
		Use:   "overview [scene.json]",
		Short: "Render a node-link diagram of the scene's layers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !overviewFormats[opts.format] {
				return fmt.Errorf("invalid format: %s (must be 'dot', 'svg', 'png', or 'pdf')", opts.format)
			}
			return runOverview(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (defaults to stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, png, pdf")
	cmd.Flags().BoolVarP(&opts.detailed, "detailed", "d", false, "include semantic names and labels")
	cmd.Flags().BoolVar(&opts.dynamic, "dynamic", false, "include dynamic layers")

	return cmd
}

func runOverview(ctx context.Context, input string, opts *overviewOpts) error {
	logger := loggerFromContext(ctx)

	g, err := sceneio.ImportJSON(input)
	if err != nil {
		return err
	}
	logger.Infof("Loaded scene: %d layers", len(g.Layers())+len(g.DynamicLayers()))

	dot := nodelink.ToDOT(g, nodelink.Options{
		Detailed:      opts.detailed,
		DynamicLayers: opts.dynamic,
	})

	var data []byte
	switch opts.format {
	case "dot":
		data = []byte(dot)
	case "svg":
		data, err = nodelink.RenderSVG(dot)
	case "png":
		data, err = nodelink.RenderPNG(dot, pngScale)
	case "pdf":
		data, err = nodelink.RenderPDF(dot)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", opts.format, err)
	}

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return err
	}
	if opts.output != "" {
		printFile(opts.output)
	}
	return nil
}
