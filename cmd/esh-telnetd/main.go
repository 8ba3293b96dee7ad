/*
 * MIT License
 * Copyright (c) 2026 Crrow
 */

// esh-telnetd serves an esh console over TCP. Connect with any telnet
// client; each connection gets its own shell instance.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	eshgo "github.com/crrow/esh-go"
	"github.com/crrow/esh-go/pkg/shellsrv"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:2323", "listen address")
	histSize := flag.Int("hist", 0, "per-connection history buffer size (0 disables; needs ESH_HIST_ALLOC MANUAL)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	srv, err := shellsrv.Start(shellsrv.Config{
		Addr:     *addr,
		Mux:      demoMux(),
		Logger:   logger,
		HistSize: *histSize,
	})
	if err != nil {
		log.Fatalf("start shell server failed: %v", err)
	}
	defer func() { _ = srv.Close() }()

	fmt.Printf("esh-telnetd listening on %s\n", srv.Addr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	if err = srv.Close(); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// demoMux wires the demo command set: enough to poke at line editing,
// quoting, and history from a telnet session.
func demoMux() *shellsrv.Mux {
	mux := shellsrv.NewMux()

	mux.Handle("echo", func(w io.Writer, args []string) {
		fmt.Fprintln(w, strings.Join(args[1:], " "))
	})

	mux.Handle("argv", func(w io.Writer, args []string) {
		for i, arg := range args {
			fmt.Fprintf(w, "argv[%d] = %q\n", i, arg)
		}
	})

	mux.Handle("version", func(w io.Writer, args []string) {
		fmt.Fprintf(w, "esh-go %s\n", eshgo.Version)
	})

	mux.Handle("help", func(w io.Writer, args []string) {
		fmt.Fprintln(w, "available commands:")
		for _, name := range mux.Commands() {
			fmt.Fprintf(w, "  %s\n", name)
		}
	})

	return mux
}

func init() {
	// Pick up ESH_LIB_PATH and friends from a local .env, if present.
	// The engine library is loaded lazily on first use, after this.
	_ = godotenv.Load()
}
