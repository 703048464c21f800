// Package server exposes a painting canvas over SSH: every session gets a
// full screen view of the shared map and a brush of its own.
package server

import (
	"context"
	"fmt"
	"io"
	"sync"
	"unicode/utf8"

	"github.com/gliderlabs/ssh"
	"go.uber.org/zap"

	"wang-painter/internal/canvas"
	"wang-painter/internal/logger"
	"wang-painter/internal/render"
)

// SSHServer wraps the SSH listener and canvas loop integration.
type SSHServer struct {
	loop    *canvas.Loop
	addr    string
	hostKey string
	log     *zap.Logger

	mu     sync.Mutex
	server *ssh.Server
}

// NewSSHServer creates a new SSH server bound to the given address.
func NewSSHServer(ctx context.Context, addr string, hostKey string, loop *canvas.Loop) *SSHServer {
	return &SSHServer{
		loop:    loop,
		addr:    addr,
		hostKey: hostKey,
		log:     logger.L(ctx).Named("ssh"),
	}
}

// Start begins listening for SSH connections. It blocks until the server
// is shut down.
func (s *SSHServer) Start() error {
	server := &ssh.Server{
		Addr: s.addr,
		Handler: func(sess ssh.Session) {
			s.handleSession(sess)
		},
	}

	// Set host key
	if err := server.SetOption(ssh.HostKeyFile(s.hostKey)); err != nil {
		return fmt.Errorf("set host key: %w", err)
	}

	s.mu.Lock()
	s.server = server
	s.mu.Unlock()

	s.log.Info("SSH server listening", zap.String("addr", s.addr))
	err := server.ListenAndServe()
	if err == ssh.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting sessions and waits for open ones to end or
// ctx to expire.
func (s *SSHServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.mu.Unlock()
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

func (s *SSHServer) handleSession(sess ssh.Session) {
	// Require PTY
	ptyReq, winCh, ok := sess.Pty()
	if !ok {
		fmt.Fprintln(sess, "Error: PTY required. Use: ssh -t ...")
		return
	}

	username := sess.User()
	if username == "" {
		username = "Anonymous"
	}

	// Register with the loop (username = identity)
	viewerID, renderCh := s.loop.AddViewer(username)

	log := s.log.With(zap.String("viewer", viewerID), zap.String("remote", sess.RemoteAddr().String()))
	log.Info("viewer connected")
	defer func() {
		s.loop.RemoveViewer(viewerID)
		log.Info("viewer disconnected")
	}()

	// Terminal dimensions
	termW := ptyReq.Window.Width
	termH := ptyReq.Window.Height
	var termMu sync.Mutex

	engine := render.NewEngine(termW, termH)

	// Setup terminal
	io.WriteString(sess, render.EnableAltScreen())
	io.WriteString(sess, render.HideCursor())
	io.WriteString(sess, render.ClearScreen())
	defer func() {
		io.WriteString(sess, render.ShowCursor())
		io.WriteString(sess, render.DisableAltScreen())
	}()

	inputCh := s.loop.InputChan()
	quitCh := make(chan struct{})

	// Goroutine: read input
	go func() {
		buf := make([]byte, 64)
		for {
			n, err := sess.Read(buf)
			if err != nil {
				close(quitCh)
				return
			}
			for _, ev := range parseInput(buf[:n]) {
				if ev.Action == canvas.ActionQuit {
					close(quitCh)
					return
				}
				ev.ViewerID = viewerID
				select {
				case inputCh <- ev:
				default:
				}
			}
		}
	}()

	// Goroutine: handle window resizes
	go func() {
		for win := range winCh {
			termMu.Lock()
			termW = win.Width
			termH = win.Height
			termMu.Unlock()
		}
	}()

	// Main render loop: read from render channel
	for {
		select {
		case <-quitCh:
			return
		case <-sess.Context().Done():
			return
		case state, ok := <-renderCh:
			if !ok {
				return
			}

			termMu.Lock()
			w, h := termW, termH
			termMu.Unlock()

			output := engine.Render(frameFor(state, viewerID), w, h)
			if len(output) > 0 {
				io.WriteString(sess, output)
			}
		}
	}
}

// frameFor builds what viewer id sees of state.
func frameFor(state canvas.State, id string) render.Frame {
	f := render.Frame{
		Map:     state.Map,
		Set:     state.Set,
		Oracle:  state.Oracle,
		Invalid: state.Invalid,
		Viewers: len(state.Viewers),
	}
	if v, ok := state.Viewer(id); ok {
		f.Cursor = v.Cursor
		f.BrushColor = v.Color
		f.BrushMode = v.Mode.String()
		f.Status = v.Status
	}
	return f
}

// parseInput converts raw bytes into viewer input events.
// Handles WASD, arrow key escape sequences, digits, space, R, Q, and Ctrl-C.
func parseInput(data []byte) []canvas.InputEvent {
	var events []canvas.InputEvent
	add := func(a canvas.Action) {
		events = append(events, canvas.InputEvent{Action: a})
	}
	i := 0
	for i < len(data) {
		// Check for escape sequences (arrow keys)
		if i+2 < len(data) && data[i] == 0x1b && data[i+1] == '[' {
			switch data[i+2] {
			case 'A':
				add(canvas.ActionUp)
			case 'B':
				add(canvas.ActionDown)
			case 'C':
				add(canvas.ActionRight)
			case 'D':
				add(canvas.ActionLeft)
			}
			i += 3
			continue
		}

		// Single byte inputs
		r, size := utf8.DecodeRune(data[i:])
		switch r {
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			// Pick the color and paint with it at once.
			events = append(events, canvas.InputEvent{Action: canvas.ActionColor, Color: int(r - '0')})
			add(canvas.ActionPaint)
		case 'w', 'W':
			add(canvas.ActionUp)
		case 's', 'S':
			add(canvas.ActionDown)
		case 'a', 'A':
			add(canvas.ActionLeft)
		case 'd', 'D':
			add(canvas.ActionRight)
		case ' ', '\r':
			add(canvas.ActionPaint)
		case 'r', 'R':
			add(canvas.ActionRegenerate)
		case 'q', 'Q':
			add(canvas.ActionQuit)
		case 3: // Ctrl-C
			add(canvas.ActionQuit)
		}
		i += size
	}
	return events
}
