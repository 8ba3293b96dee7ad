/*
 * MIT License
 * Copyright (c) 2016 Chris Pavlina
 * Copyright (c) 2026 Crrow
 */

package lineproto

import (
	"bytes"
	"testing"
)

func TestTranslate(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"plain", []byte("echo hi"), []byte("echo hi")},
		{"lf passes", []byte("a\nb"), []byte("a\nb")},
		{"cr becomes lf", []byte("echo hi\r"), []byte("echo hi\n")},
		{"crlf collapses", []byte("echo hi\r\n"), []byte("echo hi\n")},
		{"cr nul collapses", []byte{'a', '\r', 0}, []byte("a\n")},
		{"bare crs", []byte("\r\r"), []byte("\n\n")},
		{"cr then data", []byte("a\rb"), []byte("a\nb")},
		{"iac will stripped", []byte{'a', telnetIAC, telnetWill, 1, 'b'}, []byte("ab")},
		{"iac do stripped", []byte{telnetIAC, telnetDo, 34, 'x'}, []byte("x")},
		{"iac nop stripped", []byte{'a', telnetIAC, 241, 'b'}, []byte("ab")},
		{"iac iac literal", []byte{'a', telnetIAC, telnetIAC, 'b'}, []byte{'a', 0xff, 'b'}},
		{"subnegotiation stripped", []byte{'a', telnetIAC, telnetSB, 31, 0, 80, 0, 24, telnetIAC, telnetSE, 'b'}, []byte("ab")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var f InputFilter
			got := f.Translate(nil, tc.in)
			if !bytes.Equal(got, tc.want) {
				t.Errorf("Translate(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

// Translation must be invariant under chunking: splitting the input at
// every possible boundary yields the same output as one pass.
func TestTranslateChunked(t *testing.T) {
	in := []byte{'h', 'i', '\r', '\n', telnetIAC, telnetWill, 1, 'o', 'k', '\r', 0}

	var whole InputFilter
	want := whole.Translate(nil, in)

	for split := 0; split <= len(in); split++ {
		var f InputFilter
		got := f.Translate(nil, in[:split])
		got = f.Translate(got, in[split:])
		if !bytes.Equal(got, want) {
			t.Errorf("split at %d: got %q, want %q", split, got, want)
		}
	}
}

func TestExpandNewlines(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abc", "abc"},
		{"a\nb", "a\r\nb"},
		{"\n\n", "\r\n\r\n"},
		{"already\r\n", "already\r\r\n"},
	}

	for _, tc := range cases {
		got := ExpandNewlines(nil, []byte(tc.in))
		if string(got) != tc.want {
			t.Errorf("ExpandNewlines(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
