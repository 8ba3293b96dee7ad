/*
 * MIT License
 * Copyright (c) 2026 Crrow
 */

// esh-demo runs an interactive esh console on the local terminal, the
// Go twin of the upstream demo_static C example. The terminal is put in
// raw mode so the engine sees individual keystrokes and can do its own
// line editing; type "exit" or press Ctrl-C to leave.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	eshgo "github.com/crrow/esh-go"
	"github.com/crrow/esh-go/pkg/esh"
	"github.com/crrow/esh-go/pkg/lineproto"
)

const ctrlC = 0x03

func main() {
	histSize := flag.Int("hist", 0, "history buffer size (0 disables; needs ESH_HIST_ALLOC MANUAL)")
	flag.Parse()

	sh, err := esh.Init()
	if err != nil {
		log.Fatalf("shell init failed: %v", err)
	}
	if *histSize > 0 {
		sh.SetHistBuf(make([]byte, *histSize))
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		log.Fatalf("raw mode failed: %v", err)
	}
	restore := func() { _ = term.Restore(fd, oldState) }
	defer restore()

	done := false
	sh.RegisterPrintFunc(func(_ *esh.Shell, c byte) {
		// Raw mode needs \r\n on output.
		if c == '\n' {
			os.Stdout.Write([]byte("\r\n"))
			return
		}
		os.Stdout.Write([]byte{c})
	})
	sh.RegisterCommandFunc(func(_ *esh.Shell, args esh.Args) {
		runCommand(os.Stdout, args.Strings(), &done)
	})
	sh.RegisterOverflowFunc(func(_ *esh.Shell, buf []byte) {
		fmt.Printf("\r\nline too long (%d bytes buffered)\r\n", len(buf))
	})

	var filter lineproto.InputFilter
	buf := make([]byte, 64)
	var scratch []byte
	for !done {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			break
		}
		for _, c := range buf[:n] {
			if c == ctrlC {
				done = true
				break
			}
		}
		if done {
			break
		}
		scratch = filter.Translate(scratch[:0], buf[:n])
		sh.RxBytes(scratch)
	}

	restore()
	fmt.Println()
}

// runCommand handles the demo command set. Output uses \n; the print
// path is bypassed here since we write to stdout directly, so expand
// for the raw terminal.
func runCommand(out io.Writer, args []string, done *bool) {
	if len(args) == 0 {
		return
	}

	var buf []byte
	switch args[0] {
	case "exit", "quit":
		*done = true
		return
	case "echo":
		buf = append(buf, strings.Join(args[1:], " ")...)
		buf = append(buf, '\n')
	case "version":
		buf = append(buf, fmt.Sprintf("esh-go %s\n", eshgo.Version)...)
	case "help":
		buf = append(buf, "commands: echo, version, help, exit\n"...)
	default:
		buf = append(buf, fmt.Sprintf("%s: command not found\n", args[0])...)
	}
	out.Write(lineproto.ExpandNewlines(nil, buf))
}

func init() {
	// Pick up ESH_LIB_PATH from a local .env before the engine library
	// is loaded on first use.
	_ = godotenv.Load()
}
