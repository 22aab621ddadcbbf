// Package visualization renders machine configuration snapshots as Graphviz
// DOT and Mermaid diagrams. It operates purely on the exported MachineInfo
// snapshot and performs no I/O.
package visualization

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quireio/hsm"
)

// Options configures DOT generation
type Options struct {
	// RankDirection is the graph layout direction: "TB", "LR", "BT" or "RL"
	RankDirection string

	// NodeShape is the Graphviz shape used for state nodes
	NodeShape string

	// ShowGuards annotates guarded transitions with a [guarded] marker
	ShowGuards bool

	// ShowSignatures annotates signature-bound entries with their
	// argument-type signature
	ShowSignatures bool
}

// DefaultOptions returns sensible default options for DOT generation
func DefaultOptions() Options {
	return Options{
		RankDirection:  "TB",
		NodeShape:      "box",
		ShowGuards:     true,
		ShowSignatures: true,
	}
}

// DOT renders the machine snapshot in Graphviz DOT format. Composite states
// become clusters containing their substates; initial substates are marked
// with a dotted edge, internal and ignored entries with self-loops, and
// dynamic transitions with a diamond selector node.
func DOT(info *hsm.MachineInfo, options ...Options) string {
	opts := DefaultOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	g := &dotBuilder{info: info, opts: opts}
	return g.render()
}

type dotBuilder struct {
	info *hsm.MachineInfo
	opts Options

	sb       strings.Builder
	children map[string][]hsm.StateInfo
	clusters int
}

func (g *dotBuilder) render() string {
	g.children = make(map[string][]hsm.StateInfo)
	var roots []hsm.StateInfo
	for _, si := range g.info.States {
		if si.Parent == "" {
			roots = append(roots, si)
			continue
		}
		g.children[si.Parent] = append(g.children[si.Parent], si)
	}

	fmt.Fprintf(&g.sb, "digraph %s {\n", quote("machine_"+g.info.ID))
	fmt.Fprintf(&g.sb, "  rankdir=%s;\n", g.opts.RankDirection)
	fmt.Fprintf(&g.sb, "  node [shape=%s];\n", g.opts.NodeShape)

	for _, root := range roots {
		g.renderState(root, "  ")
	}
	g.sb.WriteString("\n")
	for _, si := range g.info.States {
		g.renderTransitions(si)
	}
	g.sb.WriteString("}\n")
	return g.sb.String()
}

// renderState emits the node for a state, wrapping it and its descendants in
// a cluster when it has substates.
func (g *dotBuilder) renderState(si hsm.StateInfo, indent string) {
	substates := g.children[si.State]
	if len(substates) == 0 {
		fmt.Fprintf(&g.sb, "%s%s%s;\n", indent, quote(si.State), g.nodeAttrs(si))
		return
	}

	sort.Slice(substates, func(i, j int) bool {
		return substates[i].State < substates[j].State
	})
	fmt.Fprintf(&g.sb, "%ssubgraph cluster_%d {\n", indent, g.clusters)
	g.clusters++
	fmt.Fprintf(&g.sb, "%s  label=%s;\n", indent, quote(si.State))
	fmt.Fprintf(&g.sb, "%s  %s%s;\n", indent, quote(si.State), g.nodeAttrs(si))
	for _, sub := range substates {
		g.renderState(sub, indent+"  ")
	}
	fmt.Fprintf(&g.sb, "%s}\n", indent)
}

func (g *dotBuilder) nodeAttrs(si hsm.StateInfo) string {
	if si.State == g.info.CurrentState {
		return " [style=filled]"
	}
	return ""
}

func (g *dotBuilder) renderTransitions(si hsm.StateInfo) {
	if si.InitialSubstate != "" {
		fmt.Fprintf(&g.sb, "  %s -> %s [style=dotted, label=\"initial\"];\n",
			quote(si.State), quote(si.InitialSubstate))
	}
	for i, ti := range si.Transitions {
		label := g.edgeLabel(ti)
		switch ti.Kind {
		case hsm.TransitionFixed, hsm.TransitionReentry:
			fmt.Fprintf(&g.sb, "  %s -> %s [label=%s];\n",
				quote(si.State), quote(ti.Destination), quote(label))
		case hsm.TransitionInternal:
			fmt.Fprintf(&g.sb, "  %s -> %s [style=dashed, label=%s];\n",
				quote(si.State), quote(si.State), quote(label+" / internal"))
		case hsm.TransitionIgnored:
			fmt.Fprintf(&g.sb, "  %s -> %s [style=dotted, label=%s];\n",
				quote(si.State), quote(si.State), quote(label+" / ignore"))
		case hsm.TransitionDynamic:
			selector := fmt.Sprintf("dyn_%s_%d", si.State, i)
			fmt.Fprintf(&g.sb, "  %s [shape=diamond, label=\"?\"];\n", quote(selector))
			fmt.Fprintf(&g.sb, "  %s -> %s [label=%s];\n",
				quote(si.State), quote(selector), quote(label))
		}
	}
}

func (g *dotBuilder) edgeLabel(ti hsm.TransitionInfo) string {
	label := ti.Trigger
	if g.opts.ShowSignatures && ti.Signature != "" {
		label += " " + ti.Signature
	}
	if g.opts.ShowGuards && ti.Guarded {
		label += " [guarded]"
	}
	return label
}

// quote escapes a value as a DOT double-quoted identifier
func quote(value string) string {
	escaped := strings.ReplaceAll(value, "\\", "\\\\")
	escaped = strings.ReplaceAll(escaped, "\"", "\\\"")
	return "\"" + escaped + "\""
}
