package visualization

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quireio/hsm"
)

// Mermaid renders the machine snapshot as a Mermaid stateDiagram-v2.
// Hierarchies become nested state blocks and initial substates become [*]
// markers inside their parent block. Dynamic, internal and ignored entries
// are rendered as annotated self-transitions since their destination is not
// statically known.
func Mermaid(info *hsm.MachineInfo) string {
	children := make(map[string][]hsm.StateInfo)
	var roots []hsm.StateInfo
	for _, si := range info.States {
		if si.Parent == "" {
			roots = append(roots, si)
			continue
		}
		children[si.Parent] = append(children[si.Parent], si)
	}

	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")
	for _, root := range roots {
		writeMermaidState(&sb, root, children, "    ")
	}
	for _, si := range info.States {
		writeMermaidTransitions(&sb, si)
	}
	return sb.String()
}

func writeMermaidState(sb *strings.Builder, si hsm.StateInfo, children map[string][]hsm.StateInfo, indent string) {
	substates := children[si.State]
	if len(substates) == 0 {
		fmt.Fprintf(sb, "%s%s\n", indent, mermaidID(si.State))
		return
	}

	sort.Slice(substates, func(i, j int) bool {
		return substates[i].State < substates[j].State
	})
	fmt.Fprintf(sb, "%sstate %s {\n", indent, mermaidID(si.State))
	if si.InitialSubstate != "" {
		fmt.Fprintf(sb, "%s    [*] --> %s\n", indent, mermaidID(si.InitialSubstate))
	}
	for _, sub := range substates {
		writeMermaidState(sb, sub, children, indent+"    ")
	}
	fmt.Fprintf(sb, "%s}\n", indent)
}

func writeMermaidTransitions(sb *strings.Builder, si hsm.StateInfo) {
	for _, ti := range si.Transitions {
		label := ti.Trigger
		if ti.Guarded {
			label += " [guarded]"
		}
		switch ti.Kind {
		case hsm.TransitionFixed, hsm.TransitionReentry:
			fmt.Fprintf(sb, "    %s --> %s : %s\n",
				mermaidID(si.State), mermaidID(ti.Destination), label)
		case hsm.TransitionDynamic:
			fmt.Fprintf(sb, "    %s --> %s : %s (dynamic)\n",
				mermaidID(si.State), mermaidID(si.State), label)
		case hsm.TransitionInternal:
			fmt.Fprintf(sb, "    %s --> %s : %s (internal)\n",
				mermaidID(si.State), mermaidID(si.State), label)
		case hsm.TransitionIgnored:
			fmt.Fprintf(sb, "    %s --> %s : %s (ignore)\n",
				mermaidID(si.State), mermaidID(si.State), label)
		}
	}
}

// mermaidID sanitizes a state name into a Mermaid-safe identifier
func mermaidID(value string) string {
	replacer := strings.NewReplacer(" ", "_", "-", "_", ":", "_", "{", "", "}", "")
	return replacer.Replace(value)
}
