package hsm

import (
	"fmt"
	"sort"
	"strings"
)

// TransitionKind classifies a trigger-table entry in a configuration
// snapshot.
type TransitionKind int

const (
	// TransitionFixed is a transition to a fixed destination state
	TransitionFixed TransitionKind = iota
	// TransitionReentry exits and re-enters the owning state
	TransitionReentry
	// TransitionDynamic computes its destination at fire time
	TransitionDynamic
	// TransitionInternal runs an action without changing state
	TransitionInternal
	// TransitionIgnored is handled but performs nothing
	TransitionIgnored
)

func (k TransitionKind) String() string {
	switch k {
	case TransitionFixed:
		return "fixed"
	case TransitionReentry:
		return "reentry"
	case TransitionDynamic:
		return "dynamic"
	case TransitionInternal:
		return "internal"
	case TransitionIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// TransitionInfo describes one trigger-table entry. All identities are
// rendered as strings so the snapshot is independent of the machine's type
// parameters.
type TransitionInfo struct {
	Trigger     string
	Destination string // empty for dynamic, internal and ignored entries
	Kind        TransitionKind
	Guarded     bool
	Signature   string // empty for signature-agnostic and zero-argument entries
}

// StateInfo describes one configured state
type StateInfo struct {
	State           string
	Parent          string // empty for root states
	InitialSubstate string // empty when none declared
	HasEntryAction  bool
	HasExitAction   bool
	Transitions     []TransitionInfo
}

// MachineInfo is a point-in-time snapshot of a machine's configuration and
// current state, used by the visualization package and Describe. It is
// diagnostic output, not a persistence format.
type MachineInfo struct {
	ID           string
	CurrentState string
	States       []StateInfo
}

// Info captures a configuration snapshot. States and triggers are sorted by
// their rendered names; entries sharing a trigger keep registration order.
func (m *Machine[S, T]) Info() *MachineInfo {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	info := &MachineInfo{
		ID:           m.id,
		CurrentState: fmt.Sprintf("%v", m.current),
	}
	for _, node := range m.states {
		info.States = append(info.States, stateInfo(node))
	}
	sort.Slice(info.States, func(i, j int) bool {
		return info.States[i].State < info.States[j].State
	})
	return info
}

func stateInfo[S, T comparable](node *StateNode[S, T]) StateInfo {
	si := StateInfo{
		State:          fmt.Sprintf("%v", node.state),
		HasEntryAction: node.entryAction != nil,
		HasExitAction:  node.exitAction != nil,
	}
	if node.parent != nil {
		si.Parent = fmt.Sprintf("%v", node.parent.state)
	}
	if node.hasInitial {
		si.InitialSubstate = fmt.Sprintf("%v", node.initial)
	}

	triggers := make([]T, 0, len(node.behaviours))
	for trigger := range node.behaviours {
		triggers = append(triggers, trigger)
	}
	sort.Slice(triggers, func(i, j int) bool {
		return fmt.Sprintf("%v", triggers[i]) < fmt.Sprintf("%v", triggers[j])
	})

	for _, trigger := range triggers {
		for _, behaviour := range node.behaviours[trigger] {
			ti := TransitionInfo{
				Trigger: fmt.Sprintf("%v", trigger),
				Guarded: behaviour.guarded(),
			}
			if sig, ok := behaviour.argSignature(); ok && len(sig) > 0 {
				ti.Signature = sig.String()
			}
			switch b := behaviour.(type) {
			case *transitionBehaviour[S, T]:
				ti.Destination = fmt.Sprintf("%v", b.destination)
				if b.reentry {
					ti.Kind = TransitionReentry
				} else {
					ti.Kind = TransitionFixed
				}
			case *dynamicBehaviour[S, T]:
				ti.Kind = TransitionDynamic
			case *internalBehaviour[S, T]:
				ti.Kind = TransitionInternal
			case *ignoreBehaviour[S, T]:
				ti.Kind = TransitionIgnored
			}
			si.Transitions = append(si.Transitions, ti)
		}
	}
	return si
}

// Describe returns a human-readable summary of the current state and the
// triggers reachable from it and its ancestors. The format is diagnostic
// only and not guaranteed to be machine-parseable.
func (m *Machine[S, T]) Describe() string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "machine %s: currently in %v\n", m.id, m.current)

	node, ok := m.states[m.current]
	if !ok {
		sb.WriteString("  (state not configured)\n")
		return sb.String()
	}

	sb.WriteString("possible triggers:\n")
	for ; node != nil; node = node.parent {
		describeNode(&sb, node)
	}
	return sb.String()
}

func describeNode[S, T comparable](sb *strings.Builder, node *StateNode[S, T]) {
	si := stateInfo(node)
	for _, ti := range si.Transitions {
		fmt.Fprintf(sb, "  %s", ti.Trigger)
		switch ti.Kind {
		case TransitionFixed, TransitionReentry:
			fmt.Fprintf(sb, " -> %s", ti.Destination)
		default:
			fmt.Fprintf(sb, " (%s)", ti.Kind)
		}
		if ti.Signature != "" {
			fmt.Fprintf(sb, " %s", ti.Signature)
		}
		if ti.Guarded {
			sb.WriteString(" [guarded]")
		}
		fmt.Fprintf(sb, " (on %s)\n", si.State)
	}
}
