package hsm

import (
	"testing"
)

type callState int

const (
	offHook callState = iota
	ringing
	connected
	talking
	onHold
	disconnected
)

func (s callState) String() string {
	switch s {
	case offHook:
		return "offHook"
	case ringing:
		return "ringing"
	case connected:
		return "connected"
	case talking:
		return "talking"
	case onHold:
		return "onHold"
	case disconnected:
		return "disconnected"
	}
	return "unknown"
}

type callTrigger int

const (
	dial callTrigger = iota
	answered
	hold
	resume
	hangUp
	mute
)

func (t callTrigger) String() string {
	switch t {
	case dial:
		return "dial"
	case answered:
		return "answered"
	case hold:
		return "hold"
	case resume:
		return "resume"
	case hangUp:
		return "hangUp"
	case mute:
		return "mute"
	}
	return "unknown"
}

type phoneCall struct {
	machine *Machine[callState, callTrigger]
	rec     *SequenceRecorder

	callee string
	muted  bool
}

func newPhoneCall() *phoneCall {
	c := &phoneCall{
		machine: NewMachine[callState, callTrigger](offHook),
		rec:     NewSequenceRecorder(),
	}
	m := c.machine

	off := m.Configure(offHook)
	PermitDynamic1(off, dial, func(callee string) callState {
		c.callee = callee
		return ringing
	})

	m.Configure(ringing).
		Permit(answered, connected).
		Permit(hangUp, disconnected).
		OnEntry(c.rec.Enter("ringing")).
		OnExit(c.rec.Exit("ringing"))

	m.Configure(connected).
		InitialTransition(talking).
		Permit(hangUp, disconnected).
		OnEntry(c.rec.Enter("connected")).
		OnExit(c.rec.Exit("connected"))

	tk := m.Configure(talking).
		SubstateOf(connected).
		Permit(hold, onHold).
		OnEntry(c.rec.Enter("talking")).
		OnExit(c.rec.Exit("talking"))
	InternalTransition1(tk, mute, func(on bool) {
		c.muted = on
	})

	m.Configure(onHold).
		SubstateOf(connected).
		Permit(resume, talking).
		Ignore(hold).
		OnEntry(c.rec.Enter("onHold")).
		OnExit(c.rec.Exit("onHold"))

	m.Configure(disconnected).
		OnEntry(c.rec.Enter("disconnected"))

	return c
}

func TestPhoneCall_FullConversation(t *testing.T) {
	c := newPhoneCall()
	m := c.machine

	if err := m.Fire(dial, "alice"); err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	if c.callee != "alice" {
		t.Errorf("expected callee alice, got %q", c.callee)
	}
	AssertState(t, m, ringing)

	// Answering lands in talking through connected's initial substate.
	if err := m.Fire(answered); err != nil {
		t.Fatalf("answered failed: %v", err)
	}
	AssertState(t, m, talking)
	if !m.IsInState(connected) {
		t.Error("expected talking to count as connected")
	}
	AssertSequence(t, c.rec, ">ringing<ringing>connected>talking")

	// Muting is internal: no state change, no callbacks.
	c.rec.Reset()
	if err := m.Fire(mute, true); err != nil {
		t.Fatalf("mute failed: %v", err)
	}
	if !c.muted {
		t.Error("expected mute action to run")
	}
	AssertState(t, m, talking)
	AssertSequence(t, c.rec, "")

	// Hold moves between siblings without leaving connected.
	if err := m.Fire(hold); err != nil {
		t.Fatalf("hold failed: %v", err)
	}
	AssertState(t, m, onHold)
	AssertSequence(t, c.rec, "<talking>onHold")

	// A second hold is configured as ignored.
	c.rec.Reset()
	if err := m.Fire(hold); err != nil {
		t.Fatalf("repeated hold failed: %v", err)
	}
	AssertState(t, m, onHold)
	AssertSequence(t, c.rec, "")

	if err := m.Fire(resume); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	AssertState(t, m, talking)
	AssertSequence(t, c.rec, "<onHold>talking")

	// Hanging up is inherited from the connected ancestor.
	c.rec.Reset()
	if err := m.Fire(hangUp); err != nil {
		t.Fatalf("hangUp failed: %v", err)
	}
	AssertState(t, m, disconnected)
	AssertSequence(t, c.rec, "<talking<connected>disconnected")
}

func TestPhoneCall_HangUpWhileRinging(t *testing.T) {
	c := newPhoneCall()
	m := c.machine

	if err := m.Fire(dial, "bob"); err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	if err := m.Fire(hangUp); err != nil {
		t.Fatalf("hangUp failed: %v", err)
	}
	AssertState(t, m, disconnected)
}

func TestPhoneCall_DialRequiresCallee(t *testing.T) {
	c := newPhoneCall()

	err := c.machine.Fire(dial)
	AssertFireError(t, err, IsUnhandledTriggerError, "UnhandledTriggerError")
	AssertState(t, c.machine, offHook)
}

func TestPhoneCall_ObserverSeesWholeCall(t *testing.T) {
	c := newPhoneCall()
	obs := NewTestObserver[callState, callTrigger]()
	c.machine.AddObserver(obs)

	if err := c.machine.Fire(dial, "carol"); err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	if err := c.machine.Fire(answered); err != nil {
		t.Fatalf("answered failed: %v", err)
	}

	// dial, answered, plus the initial cascade into talking.
	if len(obs.Transitions) != 3 {
		t.Fatalf("expected 3 transition notifications, got %d", len(obs.Transitions))
	}
	if !obs.Transitions[2].IsInitial() {
		t.Error("expected the last notification to be the initial cascade")
	}
	if obs.Transitions[2].Destination != talking {
		t.Errorf("expected cascade into talking, got %v", obs.Transitions[2].Destination)
	}
}
