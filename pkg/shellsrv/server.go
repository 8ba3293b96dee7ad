/*
 * MIT License
 * Copyright (c) 2016 Chris Pavlina
 * Copyright (c) 2026 Crrow
 */

// Package shellsrv exposes esh consoles over TCP: one engine instance
// per connection, engine echo written back to the socket, and parsed
// command lines dispatched through a shared Mux.
//
// The wire side speaks terminal conventions (\r\n, telnet IAC
// tolerated); pkg/lineproto does the translation in both directions.
// Each connection is served by a single goroutine, satisfying the
// engine's one-feeder-per-instance requirement.
package shellsrv

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/crrow/esh-go/pkg/esh"
	"github.com/crrow/esh-go/pkg/lineproto"
)

// Config configures a Server. Zero values get sane defaults.
type Config struct {
	// Addr is the TCP listen address. Use 127.0.0.1:0 for an ephemeral
	// port.
	Addr string

	// Mux routes command lines. Defaults to an empty mux (every command
	// reports not found).
	Mux *Mux

	// Logger receives connection lifecycle events. Defaults to a nop
	// logger.
	Logger *zap.Logger

	// HistSize, when positive, gives each connection's shell a manual
	// history buffer of that many bytes. Requires an engine built with
	// ESH_HIST_ALLOC MANUAL; a no-op otherwise.
	HistSize int
}

// Server accepts TCP connections and runs a shell session on each.
type Server struct {
	ln       net.Listener
	mux      *Mux
	log      *zap.Logger
	histSize int

	connsMu sync.Mutex
	conns   map[net.Conn]struct{}

	stopped atomic.Bool
	wg      sync.WaitGroup
}

// Start creates and runs a server bound to cfg.Addr.
func Start(cfg Config) (*Server, error) {
	if cfg.Mux == nil {
		cfg.Mux = NewMux()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, err
	}

	s := &Server{
		ln:       ln,
		mux:      cfg.Mux,
		log:      cfg.Logger,
		histSize: cfg.HistSize,
		conns:    make(map[net.Conn]struct{}),
	}

	s.wg.Add(1)
	go s.acceptLoop()
	return s, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Close stops accepting, closes all live connections, and waits for
// their goroutines to finish. The per-connection engine instances are
// not destroyed; esh has no teardown, so they are left to the pool or
// the leak the engine was configured for.
func (s *Server) Close() error {
	if s.stopped.Swap(true) {
		return nil
	}

	err := s.ln.Close()

	s.connsMu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.connsMu.Unlock()

	s.wg.Wait()
	return err
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if !s.stopped.Load() {
				s.log.Warn("accept failed", zap.Error(err))
			}
			return
		}

		s.connsMu.Lock()
		s.conns[conn] = struct{}{}
		s.connsMu.Unlock()

		s.wg.Add(1)
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.connsMu.Lock()
		delete(s.conns, conn)
		s.connsMu.Unlock()
		_ = conn.Close()
	}()

	remote := conn.RemoteAddr().String()

	sh, err := esh.Init()
	if err != nil {
		s.log.Warn("shell init failed", zap.String("remote", remote), zap.Error(err))
		fmt.Fprintf(conn, "shell unavailable: %v\r\n", err)
		return
	}
	s.log.Info("session opened", zap.String("remote", remote))
	defer s.log.Info("session closed", zap.String("remote", remote))

	se := &session{mux: s.mux}
	sh.RegisterPrint(se)
	sh.RegisterCommand(se)
	sh.RegisterOverflow(se)
	if s.histSize > 0 {
		sh.SetHistBuf(make([]byte, s.histSize))
	}

	var filter lineproto.InputFilter
	buf := make([]byte, 512)
	var scratch []byte
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			scratch = filter.Translate(scratch[:0], buf[:n])
			sh.RxBytes(scratch)
			if werr := se.flush(conn); werr != nil {
				s.log.Debug("write failed", zap.String("remote", remote), zap.Error(werr))
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// session buffers engine output between Rx batches and bridges command
// dispatch. It implements the esh handler interfaces; all callbacks run
// synchronously on the connection goroutine, so no locking is needed.
type session struct {
	mux *Mux
	out []byte // pending output, engine-style \n endings
}

func (se *session) OnPrint(_ *esh.Shell, c byte) {
	se.out = append(se.out, c)
}

func (se *session) OnCommand(_ *esh.Shell, args esh.Args) {
	se.mux.Dispatch(se, args.Strings())
}

func (se *session) OnOverflow(_ *esh.Shell, buf []byte) {
	se.out = append(se.out, fmt.Sprintf("\nline too long (%d bytes buffered), discarded\n", len(buf))...)
}

// Write collects command handler output; part of the io.Writer the Mux
// hands to handlers.
func (se *session) Write(p []byte) (int, error) {
	se.out = append(se.out, p...)
	return len(p), nil
}

func (se *session) flush(conn net.Conn) error {
	if len(se.out) == 0 {
		return nil
	}
	wire := lineproto.ExpandNewlines(nil, se.out)
	se.out = se.out[:0]
	_, err := conn.Write(wire)
	return err
}
