package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/kintree/pkg/graph"
	"github.com/matzehuels/kintree/pkg/layout"
)

const pointsPerInch = 72.0

// Colors shared by the DOT output.
const (
	colorEdge   = "#374151"
	colorSpouse = "#f59e0b"
	colorCustom = "#fef3c7"
	colorMember = "white"
)

// Options configures DOT generation.
type Options struct {
	// Detailed adds the generation and a pinned marker to member labels.
	// When false, only the display label is shown.
	Detailed bool
}

// ToDOT converts a layout to Graphviz DOT with every node pinned at its
// computed position.
func ToDOT(l graph.Layout, opts Options) string {
	sp := l.Spacing
	if sp.IsZero() {
		sp = layout.DefaultSpacing()
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fillcolor=%q, fixedsize=true, width=%s, height=%s, fontsize=14];\n",
		colorMember, num(sp.NodeWidth/pointsPerInch), num(sp.NodeHeight/pointsPerInch))
	fmt.Fprintf(&buf, "  edge [color=%q, penwidth=2];\n", colorEdge)
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, sp, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		attrs := edgeAttrs(e)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n graph.Node, sp layout.Spacing, opts Options) []string {
	if n.IsJunction() {
		return []string{
			"shape=point",
			"width=0.08",
			fmt.Sprintf("color=%q", colorEdge),
			fmt.Sprintf("pos=%q", pin(n.X, n.Y)),
		}
	}
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed)),
		fmt.Sprintf("pos=%q", pin(n.X+sp.NodeWidth/2, n.Y+sp.NodeHeight/2)),
	}
	if n.Custom {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", colorCustom))
	}
	return attrs
}

func fmtLabel(n graph.Node, detailed bool) string {
	label := n.DisplayLabel()
	if !detailed {
		return label
	}
	if n.Custom {
		return label + "\npinned"
	}
	return fmt.Sprintf("%s\ngeneration %d", label, n.Level)
}

func edgeAttrs(e graph.Edge) []string {
	switch layout.EdgeKind(e.Kind) {
	case layout.EdgeSpouse:
		attrs := []string{
			"dir=none",
			"style=dashed",
			fmt.Sprintf("color=%q", colorSpouse),
		}
		if e.Label != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
		}
		return attrs
	case layout.EdgeParentJunction:
		return []string{"dir=none"}
	}
	return nil
}

// pin formats a pinned Graphviz position, flipping y.
func pin(x, y float64) string {
	return num(x) + "," + num(-y) + "!"
}

func num(f float64) string {
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
