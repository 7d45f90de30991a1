package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/stratumviz/stratum/pkg/render"
	"github.com/stratumviz/stratum/pkg/scenegraph"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes semantic names and labels in node labels.
	// When false, only the node symbol is shown.
	Detailed bool

	// DynamicLayers includes dynamic layers as dashed clusters. Retired
	// slots are always omitted.
	DynamicLayers bool
}

// ToDOT converts a scene graph to Graphviz DOT format for node-link
// visualization. Each layer becomes a cluster holding its nodes and edges;
// interlayer edges cross cluster boundaries. The resulting DOT string can be
// rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(g *scenegraph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph scene {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")

	for _, layer := range g.Layers() {
		buf.WriteString("\n")
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", layer.ID())
		fmt.Fprintf(&buf, "    label=\"layer %d\";\n", layer.ID())
		buf.WriteString("    color=grey;\n")
		for _, n := range layer.Nodes() {
			fmt.Fprintf(&buf, "    %q [label=%q%s];\n", n.ID.Symbol(), fmtLabel(n, opts.Detailed), fmtStyle(n))
		}
		for _, e := range layer.Edges() {
			fmt.Fprintf(&buf, "    %q -> %q [dir=none];\n", e.Source.Symbol(), e.Target.Symbol())
		}
		buf.WriteString("  }\n")
	}

	if opts.DynamicLayers {
		for _, layer := range g.DynamicLayers() {
			buf.WriteString("\n")
			fmt.Fprintf(&buf, "  subgraph cluster_dyn_%d {\n", layer.ID())
			fmt.Fprintf(&buf, "    label=\"dynamic layer %d\";\n", layer.ID())
			buf.WriteString("    style=dashed;\n")
			buf.WriteString("    color=grey;\n")
			for _, n := range layer.Nodes() {
				if n == nil {
					continue
				}
				fmt.Fprintf(&buf, "    %q [label=%q, style=\"rounded,filled,dashed\"];\n",
					n.ID.Symbol(), fmtLabel(n, opts.Detailed))
			}
			for _, e := range layer.Edges() {
				fmt.Fprintf(&buf, "    %q -> %q [dir=none];\n", e.Source.Symbol(), e.Target.Symbol())
			}
			buf.WriteString("  }\n")
		}
	}

	buf.WriteString("\n")
	for _, e := range g.InterlayerEdges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source.Symbol(), e.Target.Symbol())
	}
	if opts.DynamicLayers {
		for _, e := range g.DynamicInterlayerEdges() {
			if _, ok := g.Node(e.Source); !ok {
				continue
			}
			if _, ok := g.Node(e.Target); !ok {
				continue
			}
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", e.Source.Symbol(), e.Target.Symbol())
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *scenegraph.Node, detailed bool) string {
	if !detailed {
		return n.ID.Symbol()
	}
	sem, ok := n.Semantic()
	if !ok {
		return n.ID.Symbol()
	}
	parts := []string{n.ID.Symbol()}
	if sem.Name != "" {
		parts = append(parts, sem.Name)
	}
	parts = append(parts, fmt.Sprintf("label: %d", sem.SemanticLabel))
	return strings.Join(parts, "\n")
}

// fmtStyle colors semantic nodes with their stored color so the overview
// mirrors the spatial rendering's palette.
func fmtStyle(n *scenegraph.Node) string {
	sem, ok := n.Semantic()
	if !ok || sem.Color == (scenegraph.Color{}) {
		return ""
	}
	return fmt.Sprintf(", fillcolor=\"#%02x%02x%02x\"", sem.Color.R, sem.Color.G, sem.Color.B)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
