package adc

import "strings"

func isUpperLetter(b byte) bool { return b >= 'A' && b <= 'Z' }

// Parse decodes a single ADC line (trailing delimiter already stripped).
//
// nmdc selects legacy mode: the leading type byte is absent and is filled
// in as TypeClient.
func Parse(line string, nmdc bool) (Command, error) {
	headerLen := 4
	var typ Type
	if nmdc {
		headerLen = 3
		typ = TypeClient
	}
	if len(line) < headerLen {
		return Command{}, &ParseError{Reason: "line shorter than header", Input: line}
	}

	var cmdLetters string
	if nmdc {
		cmdLetters = line[0:3]
	} else {
		typ = Type(line[0])
		if !validType(typ) {
			return Command{}, &ParseError{Reason: "unknown command type", Input: line}
		}
		cmdLetters = line[1:4]
	}
	for i := 0; i < 3; i++ {
		if !isUpperLetter(cmdLetters[i]) {
			return Command{}, &ParseError{Reason: "command letters must be ASCII uppercase", Input: line}
		}
	}
	var cmd [3]byte
	copy(cmd[:], cmdLetters)

	tokens, err := splitTokens(line[headerLen:])
	if err != nil {
		return Command{}, err
	}

	cmdObj := Command{Fourcc: NewFourcc(typ, cmd)}

	switch typ {
	case TypeBroadcast, TypeFeature:
		if len(tokens) < 1 {
			return Command{}, &ParseError{Reason: "missing from SID", Input: line}
		}
		from, err := ParseSID(tokens[0])
		if err != nil {
			return Command{}, err
		}
		cmdObj.From = from
		tokens = tokens[1:]
		if typ == TypeFeature {
			if len(tokens) < 1 {
				return Command{}, &ParseError{Reason: "missing feature expression", Input: line}
			}
			cmdObj.Features = tokens[0]
			tokens = tokens[1:]
		}
	case TypeDirect, TypeEcho:
		if len(tokens) < 2 {
			return Command{}, &ParseError{Reason: "missing from/to SID", Input: line}
		}
		from, err := ParseSID(tokens[0])
		if err != nil {
			return Command{}, err
		}
		to, err := ParseSID(tokens[1])
		if err != nil {
			return Command{}, err
		}
		cmdObj.From, cmdObj.To = from, to
		tokens = tokens[2:]
	}

	params := make([]Param, 0, len(tokens))
	for _, tok := range tokens {
		name, rawValue := "", tok
		if len(tok) >= 2 && isUpperLetter(tok[0]) && isUpperLetter(tok[1]) {
			name, rawValue = tok[:2], tok[2:]
		}
		value, err := Unescape(rawValue)
		if err != nil {
			return Command{}, err
		}
		params = append(params, Param{Name: name, Value: value})
	}
	cmdObj.Params = params

	return cmdObj, nil
}

// splitTokens splits the header-stripped remainder of a line on single
// spaces, returning nil when there is nothing left to split.
func splitTokens(rest string) ([]string, error) {
	if rest == "" {
		return nil, nil
	}
	if rest[0] != ' ' {
		return nil, &ParseError{Reason: "expected space after header", Input: rest}
	}
	rest = rest[1:]
	if rest == "" {
		return nil, nil
	}
	return strings.Split(rest, " "), nil
}
