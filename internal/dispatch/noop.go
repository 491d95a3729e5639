package dispatch

import "github.com/hubshare/adccore/internal/adc"

// NoopHandler implements Handler with empty methods. Embed it in a
// receiver that only cares about a handful of commands.
type NoopHandler struct{}

func (NoopHandler) OnSUP(adc.Command) {}
func (NoopHandler) OnSTA(adc.Command) {}
func (NoopHandler) OnINF(adc.Command) {}
func (NoopHandler) OnMSG(adc.Command) {}
func (NoopHandler) OnSCH(adc.Command) {}
func (NoopHandler) OnRES(adc.Command) {}
func (NoopHandler) OnCTM(adc.Command) {}
func (NoopHandler) OnRCM(adc.Command) {}
func (NoopHandler) OnGPA(adc.Command) {}
func (NoopHandler) OnPAS(adc.Command) {}
func (NoopHandler) OnQUI(adc.Command) {}
func (NoopHandler) OnGET(adc.Command) {}
func (NoopHandler) OnGFI(adc.Command) {}
func (NoopHandler) OnSND(adc.Command) {}
func (NoopHandler) OnSID(adc.Command) {}
func (NoopHandler) OnCMD(adc.Command) {}
func (NoopHandler) OnNAT(adc.Command) {}
func (NoopHandler) OnRNT(adc.Command) {}
func (NoopHandler) OnZON(adc.Command) {}
func (NoopHandler) OnZOF(adc.Command) {}
func (NoopHandler) OnTCP(adc.Command) {}
func (NoopHandler) OnPMI(adc.Command) {}
