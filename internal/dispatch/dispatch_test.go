package dispatch

import (
	"testing"

	"github.com/hubshare/adccore/internal/adc"
)

type recordingHandler struct {
	NoopHandler
	lastKind string
}

func (h *recordingHandler) OnINF(adc.Command) { h.lastKind = "INF" }
func (h *recordingHandler) OnSCH(adc.Command) { h.lastKind = "SCH" }

func TestDispatch_KnownCommand(t *testing.T) {
	h := &recordingHandler{}
	d := &Dispatcher{Handler: h}

	cmd, err := adc.Parse("BINF AAAA NIalice", false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	d.Dispatch(cmd)
	if h.lastKind != "INF" {
		t.Fatalf("lastKind = %q, want INF", h.lastKind)
	}
}

func TestDispatch_UnknownCommandDropped(t *testing.T) {
	h := &recordingHandler{}
	d := &Dispatcher{Handler: h}

	d.DispatchLine("IXYZ", false)
	if h.lastKind != "" {
		t.Fatalf("expected no handler invoked, got %q", h.lastKind)
	}
}

func TestDispatch_ParseErrorSwallowed(t *testing.T) {
	h := &recordingHandler{}
	d := &Dispatcher{Handler: h}

	// Missing from SID for a broadcast command is a ParseError.
	d.DispatchLine("BINF", false)
	if h.lastKind != "" {
		t.Fatalf("expected no handler invoked on parse error, got %q", h.lastKind)
	}
}

func TestDispatch_PostParseCanVeto(t *testing.T) {
	h := &recordingHandler{}
	vetoed := false
	d := &Dispatcher{
		Handler: h,
		PostParse: func(cmd *adc.Command) bool {
			vetoed = true
			return false
		},
	}
	d.DispatchLine("FSCH AAAA +TCP4 ANfoo", false)
	if !vetoed {
		t.Fatal("PostParse was not invoked")
	}
	if h.lastKind != "" {
		t.Fatalf("expected dispatch skipped after PostParse veto, got %q", h.lastKind)
	}
}

func TestDispatch_PostParseSkippedInLegacyMode(t *testing.T) {
	h := &recordingHandler{}
	called := false
	d := &Dispatcher{
		Handler: h,
		PostParse: func(cmd *adc.Command) bool {
			called = true
			return false
		},
	}
	d.DispatchLine("SCH ANfoo", true)
	if called {
		t.Fatal("PostParse should be skipped in legacy/NMDC mode")
	}
	if h.lastKind != "SCH" {
		t.Fatalf("lastKind = %q, want SCH", h.lastKind)
	}
}
