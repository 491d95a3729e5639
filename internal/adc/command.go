// Package adc implements the ADC wire command codec: parsing, escaping,
// and serialization of line-oriented hub/peer protocol messages.
package adc

import "fmt"

// Type is the leading type byte of an ADC command line.
type Type byte

const (
	TypeBroadcast    Type = 'B'
	TypeClient       Type = 'C'
	TypeDirect       Type = 'D'
	TypeEcho         Type = 'E'
	TypeFeature      Type = 'F'
	TypeHub          Type = 'H'
	TypeInfo         Type = 'I'
	TypeUDP          Type = 'U'
)

func validType(t Type) bool {
	switch t {
	case TypeBroadcast, TypeClient, TypeDirect, TypeEcho, TypeFeature, TypeHub, TypeInfo, TypeUDP:
		return true
	}
	return false
}

// SID is a 32-bit session identifier. SIDHub (all bits set) denotes the hub.
type SID uint32

const SIDHub SID = 0xFFFFFFFF

// Fourcc packs the type byte and the three command letters into a single
// 32-bit word. Letters() and Code() are two derived views over this one
// canonical integer; neither is stored separately from it (see SPEC_FULL.md
// §3, "union-aliased command code").
type Fourcc uint32

// NewFourcc builds a Fourcc from a type byte and three command letters.
func NewFourcc(typ Type, cmd [3]byte) Fourcc {
	return Fourcc(uint32(typ) | uint32(cmd[0])<<8 | uint32(cmd[1])<<16 | uint32(cmd[2])<<24)
}

// Type returns the leading type byte.
func (f Fourcc) Type() Type { return Type(f & 0xFF) }

// Letters returns the three command letters, in wire order.
func (f Fourcc) Letters() [3]byte {
	return [3]byte{byte(f >> 8), byte(f >> 16), byte(f >> 24)}
}

// Code returns the 24-bit command code (the three letters packed
// little-endian, type byte excluded) used by the dispatcher's lookup table.
func (f Fourcc) Code() uint32 {
	return uint32(f) >> 8
}

func (f Fourcc) String() string {
	l := f.Letters()
	return fmt.Sprintf("%c%c%c%c", f.Type(), l[0], l[1], l[2])
}

// Param is one ordered, possibly-prefixed command parameter.
// A 2-letter prefix with no payload is a bare flag.
type Param struct {
	Name  string // 2-letter code, empty if this param has no recognized prefix
	Value string
}

// Command is a fully decoded ADC line.
type Command struct {
	Fourcc   Fourcc
	From     SID
	To       SID
	Features string // only meaningful when Fourcc.Type() == TypeFeature
	Params   []Param
}

// Cmd returns the three-letter command string, e.g. "INF".
func (c Command) Cmd() string {
	l := c.Fourcc.Letters()
	return string(l[:])
}

// Get returns the value of the nth parameter matching name, by position
// among matches (0 = first match). Duplicates are addressed by position.
func (c Command) Get(name string, nth int) (string, bool) {
	n := 0
	for _, p := range c.Params {
		if p.Name == name {
			if n == nth {
				return p.Value, true
			}
			n++
		}
	}
	return "", false
}

// GetFirst returns the first parameter matching name.
func (c Command) GetFirst(name string) (string, bool) {
	return c.Get(name, 0)
}

// AddParam appends a named parameter.
func (c *Command) AddParam(name, value string) {
	c.Params = append(c.Params, Param{Name: name, Value: value})
}

// AddFlag appends a bare (valueless) parameter.
func (c *Command) AddFlag(name string) {
	c.Params = append(c.Params, Param{Name: name})
}

// AddFeature appends a +XXX (required) or -XXX (excluded) feature token
// to Features. No delimiter is used between tokens (§4.A).
func (c *Command) AddFeature(name string, required bool) {
	sign := byte('+')
	if !required {
		sign = '-'
	}
	c.Features += string(sign) + name
}

// Equal reports whether two commands are identical in every field that
// round-tripping through Serialize/Parse must preserve.
func (c Command) Equal(other Command) bool {
	if c.Fourcc != other.Fourcc || c.From != other.From || c.To != other.To || c.Features != other.Features {
		return false
	}
	if len(c.Params) != len(other.Params) {
		return false
	}
	for i := range c.Params {
		if c.Params[i] != other.Params[i] {
			return false
		}
	}
	return true
}
