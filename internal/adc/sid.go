package adc

// base32Alphabet is the character set valid SIDs and CIDs are drawn from.
// A SID's wire form is not a base32 *transform* of its integer value —
// it is the 4 raw ASCII bytes of the little-endian uint32, which by
// construction are always drawn from this alphabet.
const base32Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

func isBase32Byte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= '2' && b <= '7')
}

// ParseSID decodes a 4-character SID token.
func ParseSID(s string) (SID, error) {
	if len(s) != 4 {
		return 0, &ParseError{Reason: "SID must be exactly 4 characters", Input: s}
	}
	for i := 0; i < 4; i++ {
		if !isBase32Byte(s[i]) {
			return 0, &ParseError{Reason: "SID contains an invalid character", Input: s}
		}
	}
	return SID(uint32(s[0]) | uint32(s[1])<<8 | uint32(s[2])<<16 | uint32(s[3])<<24), nil
}

// String renders the SID as its 4-character wire token.
func (s SID) String() string {
	return string([]byte{byte(s), byte(s >> 8), byte(s >> 16), byte(s >> 24)})
}
