package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/stratumviz/stratum/pkg/cache"
	"github.com/stratumviz/stratum/pkg/config"
	"github.com/stratumviz/stratum/pkg/errors"
	sceneio "github.com/stratumviz/stratum/pkg/io"
	"github.com/stratumviz/stratum/pkg/observability"
	"github.com/stratumviz/stratum/pkg/render"
	"github.com/stratumviz/stratum/pkg/render/markers"
	"github.com/stratumviz/stratum/pkg/render/markers/sink"
	"github.com/stratumviz/stratum/pkg/scenegraph"
)

const (
	defaultSize = 800 // default SVG output width in pixels
	defaultSeed = 42  // label jitter seed for reproducible output
	pngScale    = 2.0 // PNG resolution multiplier
)

// markerTTL bounds how long cached marker arrays stay valid.
const markerTTL = 24 * time.Hour

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string   // output file path (or base path for multiple formats)
	formats     []string // output formats: "json", "svg", "png", "pdf"
	configPath  string   // visualizer TOML config path
	size        float64  // SVG/PNG width in pixels
	seed        uint64   // label jitter seed
	noCache     bool     // bypass the marker cache
	noText      bool     // suppress text markers in SVG output
	interactive bool     // pick visible layers interactively before rendering
}

// newRenderCmd creates the render command: scene file in, marker-based
// outputs out.
//
// Default settings:
//   - format: json
//   - size: 800px
//   - seed: 42 (stable label jitter across runs)
//   - caching: on, keyed by scene content and config
func newRenderCmd() *cobra.Command {
	var formatsStr string
	opts := renderOpts{
		size: defaultSize,
		seed: defaultSeed,
	}

	cmd := &cobra.Command{
		Use:   "render [scene.json]",
		Short: "Build markers from a scene file and render them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateRenderFormats(opts.formats); err != nil {
				return err
			}
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), svg, png, pdf (comma-separated)")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "visualizer config TOML (defaults applied when omitted)")
	cmd.Flags().Float64Var(&opts.size, "size", opts.size, "output width in pixels (svg, png)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", opts.seed, "label jitter seed")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the marker cache")
	cmd.Flags().BoolVar(&opts.noText, "no-text", false, "suppress text markers in svg output")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick visible layers interactively")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["json"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{"json"}
	}
	return strings.Split(s, ",")
}

// renderFormats is the set of formats the render command can produce.
// "dot" is valid elsewhere but belongs to the overview command.
var renderFormats = map[string]bool{"json": true, "svg": true, "png": true, "pdf": true}

// validateRenderFormats checks that all requested formats are valid.
func validateRenderFormats(formats []string) error {
	for _, f := range formats {
		if err := errors.ValidateOutputFormat(f); err != nil {
			return err
		}
		if !renderFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'json', 'svg', 'png', or 'pdf')", f)
		}
	}
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .png, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if renderFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// runRender loads the scene and config, builds (or recalls) the marker
// array, and writes every requested format.
func runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	g, err := sceneio.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}
	logger.Infof("Loaded scene: %d layers, %d nodes", len(g.Layers())+len(g.DynamicLayers()), g.NumNodes())

	cfg, err := loadConfig(opts.configPath, g)
	if err != nil {
		return err
	}

	if opts.interactive {
		if err := pickLayers(cfg, g); err != nil {
			return err
		}
	}

	store := newCache(opts.noCache)
	defer store.Close()
	keyer := cache.NewDefaultKeyer()

	arr, markerHash, cached, err := buildMarkers(ctx, g, cfg, store, keyer, cache.Hash(data), opts)
	if err != nil {
		return err
	}
	printStats(len(arr.Markers), len(g.InterlayerEdges()), cached)

	if len(opts.formats) == 1 {
		path := opts.output
		if path == "" {
			path = basePath("", input) + "." + opts.formats[0]
		}
		return writeFormat(ctx, arr, opts.formats[0], path, store, keyer, markerHash, opts)
	}

	base := basePath(opts.output, input)
	for _, format := range opts.formats {
		if err := writeFormat(ctx, arr, format, base+"."+format, store, keyer, markerHash, opts); err != nil {
			return err
		}
	}
	return nil
}

// loadConfig resolves the visualizer config and fills defaults for every
// layer the scene actually contains.
func loadConfig(path string, g *scenegraph.Graph) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	var static, dynamic []scenegraph.LayerID
	for _, l := range g.Layers() {
		static = append(static, l.ID())
	}
	for _, l := range g.DynamicLayers() {
		dynamic = append(dynamic, l.ID())
	}
	cfg.EnsureLayers(static, dynamic)
	return cfg, nil
}

// buildMarkers returns the marker array for the scene, from cache when the
// same scene/config/seed combination was built before. The returned hash
// identifies the marker content for the artifact cache.
func buildMarkers(ctx context.Context, g *scenegraph.Graph, cfg *config.Config, store cache.Cache, keyer cache.Keyer, sceneHash string, opts *renderOpts) (markers.MarkerArray, string, bool, error) {
	logger := loggerFromContext(ctx)

	key := keyer.MarkerKey(sceneHash, cache.MarkerKeyOpts{ConfigHash: cfg.Hash(), Seed: opts.seed})

	if data, hit, err := store.Get(ctx, key); err == nil && hit {
		var arr markers.MarkerArray
		if err := json.Unmarshal(data, &arr); err == nil {
			logger.Debugf("Marker cache hit: %d markers", len(arr.Markers))
			return arr, cache.Hash(data), true, nil
		}
	}

	observability.SetBuilderHooks(newLogBuilderHooks(logger))
	defer observability.Reset()

	prog := newProgress(logger)
	builder := markers.NewBuilder(
		cfg.VisualizerConfig(),
		cfg.LayerConfigs(),
		cfg.DynamicLayerConfigs(),
		cfg.ColormapConfig(),
		markers.WithLabelJitterSeed(int64(opts.seed)),
	)
	arr := builder.BuildAll(ctx, g)
	prog.done(fmt.Sprintf("Built %d markers", len(arr.Markers)))

	data, err := json.Marshal(arr)
	if err != nil {
		return arr, "", false, err
	}
	if err := store.Set(ctx, key, data, markerTTL); err != nil {
		logger.Debugf("Marker cache write failed: %v", err)
	}
	return arr, cache.Hash(data), false, nil
}

// writeFormat renders one output format and writes it to path. Converted
// artifacts (png, pdf) are cached keyed by marker content, so re-running
// the same render skips rsvg-convert.
func writeFormat(ctx context.Context, arr markers.MarkerArray, format, path string, store cache.Cache, keyer cache.Keyer, markerHash string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	convert := format == "png" || format == "pdf"
	var akey string
	if convert && markerHash != "" {
		akey = keyer.ArtifactKey(markerHash, cache.ArtifactKeyOpts{Format: format, Size: opts.size, NoText: opts.noText})
	}

	var data []byte
	if akey != "" {
		if cached, hit, err := store.Get(ctx, akey); err == nil && hit {
			logger.Debugf("Artifact cache hit: %s", format)
			data = cached
		}
	}
	if data == nil {
		var spin *Spinner
		if convert {
			spin = newSpinnerWithContext(ctx, "Converting to "+format)
			spin.Start()
		}
		rendered, err := renderMarkers(arr, format, opts)
		if spin != nil {
			spin.Stop()
		}
		if err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}
		data = rendered
		if akey != "" {
			if err := store.Set(ctx, akey, data, markerTTL); err != nil {
				logger.Debugf("Artifact cache write failed: %v", err)
			}
		}
	}
	logger.Debugf("Generated %s: %d bytes", format, len(data))

	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return err
	}
	printFile(path)
	return nil
}

// renderMarkers dispatches to the sink for the requested format. PNG and PDF
// go through the SVG projection and rsvg-convert.
func renderMarkers(arr markers.MarkerArray, format string, opts *renderOpts) ([]byte, error) {
	svgOpts := []sink.SVGOption{sink.WithSize(opts.size)}
	if opts.noText {
		svgOpts = append(svgOpts, sink.WithoutText())
	}

	switch format {
	case "json":
		return sink.RenderJSON(arr, sink.WithJSONSeed(opts.seed))
	case "svg":
		return sink.RenderSVG(arr, svgOpts...), nil
	case "png":
		return render.ToPNG(sink.RenderSVG(arr, svgOpts...), pngScale)
	case "pdf":
		return render.ToPDF(sink.RenderSVG(arr, svgOpts...))
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// logBuilderHooks streams build progress into the CLI logger.
type logBuilderHooks struct {
	observability.NoopBuilderHooks
	logger *log.Logger
}

func newLogBuilderHooks(l *log.Logger) *logBuilderHooks {
	return &logBuilderHooks{logger: l}
}

func (h *logBuilderHooks) OnLayerComplete(_ context.Context, layer int, markerCount int, d time.Duration) {
	h.logger.Debugf("Layer %d: %d markers (%s)", layer, markerCount, d.Round(time.Millisecond))
}

func (h *logBuilderHooks) OnNodeSkipped(_ context.Context, layer int, reason string) {
	h.logger.Debugf("Layer %d: skipped node (%s)", layer, reason)
}
