// Package dispatch routes decoded ADC commands to typed handler methods.
package dispatch

import (
	"log"

	"github.com/hubshare/adccore/internal/adc"
)

// CommandKind is a tagged sum over the fixed set of recognized ADC
// commands. KindUnknown is a dedicated variant, not an absence (§9,
// "type-polymorphic dispatch").
type CommandKind int

const (
	KindUnknown CommandKind = iota
	KindSUP
	KindSTA
	KindINF
	KindMSG
	KindSCH
	KindRES
	KindCTM
	KindRCM
	KindGPA
	KindPAS
	KindQUI
	KindGET
	KindGFI
	KindSND
	KindSID
	KindCMD
	KindNAT
	KindRNT
	KindZON
	KindZOF
	KindTCP
	KindPMI
)

// codeToKind maps the 24-bit packed command code (three letters, type
// byte excluded) to its CommandKind. Built once from the fixed command
// list named in §4.B.
var codeToKind = buildCodeTable()

func buildCodeTable() map[uint32]CommandKind {
	m := map[uint32]CommandKind{}
	register := func(letters string, kind CommandKind) {
		var l [3]byte
		copy(l[:], letters)
		f := adc.NewFourcc(adc.TypeClient, l)
		m[f.Code()] = kind
	}
	register("SUP", KindSUP)
	register("STA", KindSTA)
	register("INF", KindINF)
	register("MSG", KindMSG)
	register("SCH", KindSCH)
	register("RES", KindRES)
	register("CTM", KindCTM)
	register("RCM", KindRCM)
	register("GPA", KindGPA)
	register("PAS", KindPAS)
	register("QUI", KindQUI)
	register("GET", KindGET)
	register("GFI", KindGFI)
	register("SND", KindSND)
	register("SID", KindSID)
	register("CMD", KindCMD)
	register("NAT", KindNAT)
	register("RNT", KindRNT)
	register("ZON", KindZON)
	register("ZOF", KindZOF)
	register("TCP", KindTCP)
	register("PMI", KindPMI)
	return m
}

// KindOf returns the CommandKind for a decoded command, or KindUnknown if
// its command code is not in the fixed recognized set.
func KindOf(cmd adc.Command) CommandKind {
	kind, ok := codeToKind[cmd.Fourcc.Code()]
	if !ok {
		return KindUnknown
	}
	return kind
}

// Handler is implemented by a receiver that wants typed callbacks for
// each recognized command. Unknown commands never reach a Handler method.
type Handler interface {
	OnSUP(adc.Command)
	OnSTA(adc.Command)
	OnINF(adc.Command)
	OnMSG(adc.Command)
	OnSCH(adc.Command)
	OnRES(adc.Command)
	OnCTM(adc.Command)
	OnRCM(adc.Command)
	OnGPA(adc.Command)
	OnPAS(adc.Command)
	OnQUI(adc.Command)
	OnGET(adc.Command)
	OnGFI(adc.Command)
	OnSND(adc.Command)
	OnSID(adc.Command)
	OnCMD(adc.Command)
	OnNAT(adc.Command)
	OnRNT(adc.Command)
	OnZON(adc.Command)
	OnZOF(adc.Command)
	OnTCP(adc.Command)
	OnPMI(adc.Command)
}

// Dispatcher routes a decoded Command to the matching Handler method.
type Dispatcher struct {
	Handler Handler

	// PostParse, if set, is invoked after a raw line is decoded and
	// before dispatch. Returning false drops the command without
	// dispatching it. Skipped when DispatchLine is called with nmdc=true.
	PostParse func(*adc.Command) bool

	Logger *log.Logger
}

func (d *Dispatcher) logf(format string, args ...any) {
	if d.Logger != nil {
		d.Logger.Printf(format, args...)
	}
}

// Dispatch routes an already-decoded command. Unknown commands are
// silently dropped (debug-logged).
func (d *Dispatcher) Dispatch(cmd adc.Command) {
	switch KindOf(cmd) {
	case KindSUP:
		d.Handler.OnSUP(cmd)
	case KindSTA:
		d.Handler.OnSTA(cmd)
	case KindINF:
		d.Handler.OnINF(cmd)
	case KindMSG:
		d.Handler.OnMSG(cmd)
	case KindSCH:
		d.Handler.OnSCH(cmd)
	case KindRES:
		d.Handler.OnRES(cmd)
	case KindCTM:
		d.Handler.OnCTM(cmd)
	case KindRCM:
		d.Handler.OnRCM(cmd)
	case KindGPA:
		d.Handler.OnGPA(cmd)
	case KindPAS:
		d.Handler.OnPAS(cmd)
	case KindQUI:
		d.Handler.OnQUI(cmd)
	case KindGET:
		d.Handler.OnGET(cmd)
	case KindGFI:
		d.Handler.OnGFI(cmd)
	case KindSND:
		d.Handler.OnSND(cmd)
	case KindSID:
		d.Handler.OnSID(cmd)
	case KindCMD:
		d.Handler.OnCMD(cmd)
	case KindNAT:
		d.Handler.OnNAT(cmd)
	case KindRNT:
		d.Handler.OnRNT(cmd)
	case KindZON:
		d.Handler.OnZON(cmd)
	case KindZOF:
		d.Handler.OnZOF(cmd)
	case KindTCP:
		d.Handler.OnTCP(cmd)
	case KindPMI:
		d.Handler.OnPMI(cmd)
	default:
		d.logf("dispatch: dropping unrecognized command %s", cmd.Fourcc)
	}
}

// DispatchLine decodes a raw line and dispatches it. A ParseError is
// swallowed (debug-logged) and the line dropped. PostParse is skipped in
// legacy/NMDC mode.
func (d *Dispatcher) DispatchLine(line string, nmdc bool) {
	cmd, err := adc.Parse(line, nmdc)
	if err != nil {
		d.logf("dispatch: dropping unparseable line: %v", err)
		return
	}
	if !nmdc && d.PostParse != nil {
		if !d.PostParse(&cmd) {
			return
		}
	}
	d.Dispatch(cmd)
}
