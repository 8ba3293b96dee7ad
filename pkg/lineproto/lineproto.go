/*
 * MIT License
 * Copyright (c) 2016 Chris Pavlina
 * Copyright (c) 2026 Crrow
 */

// Package lineproto translates terminal byte streams for the shell
// engine, which speaks strict \n line endings internally and leaves
// all translation to the caller.
//
// Input direction: raw-mode terminals and telnet clients send \r or
// \r\n for Enter, and telnet interleaves IAC command sequences with the
// data. InputFilter normalizes all of that to plain \n and strips the
// IAC traffic, preserving state across arbitrarily chunked reads.
//
// Output direction: terminals want \r\n; ExpandNewlines maps the
// engine's \n accordingly.
package lineproto

// Telnet protocol bytes (RFC 854).
const (
	telnetSE   = 240
	telnetSB   = 250
	telnetWill = 251
	telnetWont = 252
	telnetDo   = 253
	telnetDont = 254
	telnetIAC  = 255
)

const (
	stateData = iota
	stateCR       // just saw \r; swallow a following \n or NUL
	stateIAC      // just saw IAC; next byte is a command
	stateIACOpt   // in WILL/WONT/DO/DONT; next byte is the option
	stateSubneg   // inside IAC SB ... IAC SE
	stateSubnegIAC
)

// InputFilter normalizes one connection's inbound byte stream. The zero
// value is ready to use. Not safe for concurrent use; each connection
// gets its own filter, matching the one-feeder-per-shell discipline.
type InputFilter struct {
	state int
}

// Translate appends the normalized form of src to dst and returns the
// extended slice. State carries over between calls, so a \r\n or IAC
// sequence split across reads is still handled as one unit.
func (f *InputFilter) Translate(dst, src []byte) []byte {
	for _, c := range src {
		switch f.state {
		case stateData:
			switch c {
			case '\r':
				dst = append(dst, '\n')
				f.state = stateCR
			case telnetIAC:
				f.state = stateIAC
			default:
				dst = append(dst, c)
			}

		case stateCR:
			f.state = stateData
			switch c {
			case '\n', 0: // \r\n and telnet's \r NUL already emitted as \n
			case '\r':
				dst = append(dst, '\n')
				f.state = stateCR
			case telnetIAC:
				f.state = stateIAC
			default:
				dst = append(dst, c)
			}

		case stateIAC:
			switch c {
			case telnetIAC:
				// IAC IAC is a literal 0xFF data byte. The engine drops
				// non-ASCII input anyway, but pass it through faithfully.
				dst = append(dst, c)
				f.state = stateData
			case telnetWill, telnetWont, telnetDo, telnetDont:
				f.state = stateIACOpt
			case telnetSB:
				f.state = stateSubneg
			default:
				// Two-byte command (NOP, AYT, ...): discard.
				f.state = stateData
			}

		case stateIACOpt:
			// Option byte of WILL/WONT/DO/DONT: discard.
			f.state = stateData

		case stateSubneg:
			if c == telnetIAC {
				f.state = stateSubnegIAC
			}

		case stateSubnegIAC:
			if c == telnetSE {
				f.state = stateData
			} else {
				f.state = stateSubneg
			}
		}
	}
	return dst
}

// ExpandNewlines appends src to dst with every \n expanded to \r\n and
// returns the extended slice.
func ExpandNewlines(dst, src []byte) []byte {
	for _, c := range src {
		if c == '\n' {
			dst = append(dst, '\r')
		}
		dst = append(dst, c)
	}
	return dst
}
