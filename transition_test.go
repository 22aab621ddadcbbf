package hsm

import "testing"

func TestTransition_IsReentry(t *testing.T) {
	if !NewTransition("A", "A", "go").IsReentry() {
		t.Error("expected same source and destination to be a reentry")
	}
	if NewTransition("A", "B", "go").IsReentry() {
		t.Error("expected distinct source and destination not to be a reentry")
	}
}

func TestTransition_Args(t *testing.T) {
	tr := NewTransition("A", "B", "go", 1, "x")
	if len(tr.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(tr.Args))
	}
	if tr.Args[0] != 1 || tr.Args[1] != "x" {
		t.Errorf("unexpected args: %v", tr.Args)
	}
}

func TestWalk_SiblingTransition(t *testing.T) {
	rec := NewSequenceRecorder()
	m := NewMachine[string, string]("A")
	m.Configure("A").
		Permit("go", "B").
		OnEntry(rec.Enter("A")).
		OnExit(rec.Exit("A"))
	m.Configure("B").
		OnEntry(rec.Enter("B")).
		OnExit(rec.Exit("B"))

	if err := m.Fire("go"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	AssertState(t, m, "B")
	AssertSequence(t, rec, "<A>B")
}

func TestWalk_InitialSubstateCascade(t *testing.T) {
	rec := NewSequenceRecorder()
	m := NewMachine[string, string]("A")
	m.Configure("A").
		Permit("go", "B").
		OnEntry(rec.Enter("A")).
		OnExit(rec.Exit("A"))
	m.Configure("B").
		InitialTransition("C").
		OnEntry(rec.Enter("B")).
		OnExit(rec.Exit("B"))
	m.Configure("C").
		SubstateOf("B").
		OnEntry(rec.Enter("C")).
		OnExit(rec.Exit("C"))

	if err := m.Fire("go"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	AssertState(t, m, "C")
	AssertSequence(t, rec, "<A>B>C")
}

func TestWalk_NestedInitialSubstateCascade(t *testing.T) {
	rec := NewSequenceRecorder()
	m := NewMachine[string, string]("A")
	m.Configure("A").
		Permit("go", "B").
		OnExit(rec.Exit("A"))
	m.Configure("B").
		InitialTransition("C").
		OnEntry(rec.Enter("B"))
	m.Configure("C").
		SubstateOf("B").
		InitialTransition("D").
		OnEntry(rec.Enter("C"))
	m.Configure("D").
		SubstateOf("C").
		OnEntry(rec.Enter("D"))

	if err := m.Fire("go"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	AssertState(t, m, "D")
	AssertSequence(t, rec, "<A>B>C>D")
}

func TestWalk_ExitClimbsToRoot(t *testing.T) {
	rec := NewSequenceRecorder()
	m := NewMachine[string, string]("C")
	m.Configure("A").
		OnEntry(rec.Enter("A")).
		OnExit(rec.Exit("A"))
	m.Configure("B").
		OnEntry(rec.Enter("B")).
		OnExit(rec.Exit("B"))
	m.Configure("C").
		SubstateOf("B").
		Permit("go", "A").
		OnEntry(rec.Enter("C")).
		OnExit(rec.Exit("C"))

	if err := m.Fire("go"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	AssertState(t, m, "A")
	AssertSequence(t, rec, "<C<B>A")
}

func TestWalk_SiblingsUnderCommonAncestorStayInside(t *testing.T) {
	rec := NewSequenceRecorder()
	m := NewMachine[string, string]("B")
	m.Configure("A").
		OnEntry(rec.Enter("A")).
		OnExit(rec.Exit("A"))
	m.Configure("B").
		SubstateOf("A").
		Permit("go", "C").
		OnEntry(rec.Enter("B")).
		OnExit(rec.Exit("B"))
	m.Configure("C").
		SubstateOf("A").
		OnEntry(rec.Enter("C")).
		OnExit(rec.Exit("C"))

	// The common ancestor A is neither exited nor re-entered.
	if err := m.Fire("go"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	AssertState(t, m, "C")
	AssertSequence(t, rec, "<B>C")
}

func TestWalk_ReentryRunsExitEntryAndCascade(t *testing.T) {
	rec := NewSequenceRecorder()
	m := NewMachine[string, string]("A")
	m.Configure("A").
		PermitReentry("reset").
		InitialTransition("B").
		OnEntry(rec.Enter("A")).
		OnExit(rec.Exit("A"))
	m.Configure("B").
		SubstateOf("A").
		OnEntry(rec.Enter("B")).
		OnExit(rec.Exit("B"))

	if err := m.Fire("reset"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	AssertState(t, m, "B")
	AssertSequence(t, rec, "<A>A>B")
}

func TestWalk_TransitionIntoOwnSubstateSkipsExit(t *testing.T) {
	rec := NewSequenceRecorder()
	m := NewMachine[string, string]("A")
	m.Configure("A").
		Permit("descend", "B").
		OnEntry(rec.Enter("A")).
		OnExit(rec.Exit("A"))
	m.Configure("B").
		SubstateOf("A").
		OnEntry(rec.Enter("B")).
		OnExit(rec.Exit("B"))

	// B lives inside A, so entering it does not leave A.
	if err := m.Fire("descend"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	AssertState(t, m, "B")
	AssertSequence(t, rec, ">B")
}

func TestWalk_TransitionToAncestor(t *testing.T) {
	rec := NewSequenceRecorder()
	m := NewMachine[string, string]("B")
	m.Configure("A").
		OnEntry(rec.Enter("A")).
		OnExit(rec.Exit("A"))
	m.Configure("B").
		SubstateOf("A").
		Permit("ascend", "A").
		OnEntry(rec.Enter("B")).
		OnExit(rec.Exit("B"))

	if err := m.Fire("ascend"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	AssertState(t, m, "A")
	AssertSequence(t, rec, "<B>A")
}

func TestWalk_DynamicDestinationSelector(t *testing.T) {
	m := NewMachine[string, string]("A")
	n := m.Configure("A")
	PermitDynamic1(n, "route", func(i int) string {
		if i > 0 {
			return "B"
		}
		return "C"
	})
	m.Configure("B").Permit("back", "A")
	m.Configure("C").Permit("back", "A")

	if err := m.Fire("route", 1); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	AssertState(t, m, "B")

	if err := m.Fire("back"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if err := m.Fire("route", -1); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	AssertState(t, m, "C")
}

func TestWalk_DynamicZeroArgSelector(t *testing.T) {
	next := "B"
	m := NewMachine[string, string]("A")
	m.Configure("A").PermitDynamic("route", func() string { return next })
	m.Configure("B")
	m.Configure("C")

	if err := m.Fire("route"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	AssertState(t, m, "B")
}
