package adc

import "strings"

// Serialize renders the command as a newline-terminated ADC line using its
// own From/To addressing. old selects the legacy escape form.
func (c Command) Serialize(old bool) string {
	var b strings.Builder
	c.writeHeader(&b)
	c.writeBody(&b, old)
	b.WriteByte('\n')
	return b.String()
}

// SerializeCID renders the command prefixed with a base32 CID instead of
// the command's own From SID, for outbound broadcast signalling.
func (c Command) SerializeCID(cid string, old bool) string {
	var b strings.Builder
	c.writeHeader(&b)
	b.WriteByte(' ')
	b.WriteString(cid)
	c.writeParams(&b, old)
	b.WriteByte('\n')
	return b.String()
}

// SerializeSID renders the command prefixed with a bare SID instead of the
// command's own From SID.
func (c Command) SerializeSID(sid SID, old bool) string {
	var b strings.Builder
	c.writeHeader(&b)
	b.WriteByte(' ')
	b.WriteString(sid.String())
	c.writeParams(&b, old)
	b.WriteByte('\n')
	return b.String()
}

func (c Command) writeHeader(b *strings.Builder) {
	typ := c.Fourcc.Type()
	letters := c.Fourcc.Letters()
	b.WriteByte(byte(typ))
	b.Write(letters[:])
}

func (c Command) writeBody(b *strings.Builder, old bool) {
	switch c.Fourcc.Type() {
	case TypeBroadcast:
		b.WriteByte(' ')
		b.WriteString(c.From.String())
	case TypeFeature:
		b.WriteByte(' ')
		b.WriteString(c.From.String())
		b.WriteByte(' ')
		b.WriteString(c.Features)
	case TypeDirect, TypeEcho:
		b.WriteByte(' ')
		b.WriteString(c.From.String())
		b.WriteByte(' ')
		b.WriteString(c.To.String())
	}
	c.writeParams(b, old)
}

func (c Command) writeParams(b *strings.Builder, old bool) {
	for _, p := range c.Params {
		b.WriteByte(' ')
		b.WriteString(p.Name)
		b.WriteString(Escape(p.Value, old))
	}
}
