//go:build linux

package daemon

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/777genius/claude-notifier/internal/logging"
	"github.com/777genius/claude-notifier/internal/notification"
)

// PostFunc hands a decoded payload to the consumer loop. It must not block.
type PostFunc func(notification.Payload) bool

// Listener owns the ingestion endpoint. The accept goroutine only queues
// connections, keeping the kernel backlog empty; a single reader drains the
// queue so payloads reach the consumer in acceptance order. The queue and
// its reader outlive restarts.
type Listener struct {
	path        string
	readTimeout time.Duration
	post        PostFunc

	conns      *mailbox
	stopRead   chan struct{}
	readerDone chan struct{}
	readerOnce sync.Once

	mu      sync.Mutex
	ln      net.Listener
	gen     uint64
	closed  bool
	state   EndpointState
	serving sync.WaitGroup
}

// NewListener creates a listener for path. Start must be called to bind.
func NewListener(path string, readTimeout time.Duration, post PostFunc) *Listener {
	if readTimeout <= 0 {
		readTimeout = 5 * time.Second
	}
	return &Listener{
		path:        path,
		readTimeout: readTimeout,
		post:        post,
		conns:       newMailbox(),
		stopRead:    make(chan struct{}),
		readerDone:  make(chan struct{}),
	}
}

// Path returns the endpoint path.
func (l *Listener) Path() string {
	return l.path
}

// Start binds the endpoint for the first time. Its error is fatal to the daemon.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return net.ErrClosed
	}
	return l.startLocked()
}

// Restart closes any live socket, removes the endpoint file and binds again.
// It is idempotent and safe to call while the accept goroutine is mid-accept.
func (l *Listener) Restart() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return net.ErrClosed
	}

	l.stopLocked()
	_ = os.Remove(l.path)
	l.state.Restarts++

	if err := l.startLocked(); err != nil {
		logging.Error("endpoint restart failed: %v", err)
		return err
	}
	logging.Info("endpoint restarted on %s", l.path)
	return nil
}

// Close stops accepting and removes the endpoint file. Connections already
// accepted are still read before it returns.
func (l *Listener) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.stopLocked()
	_ = os.Remove(l.path)
	l.mu.Unlock()

	l.serving.Wait()
	l.conns.Close()
	close(l.stopRead)
	l.readerOnce.Do(func() { close(l.readerDone) })
	<-l.readerDone
	return nil
}

// State returns a snapshot of the endpoint state.
func (l *Listener) State() EndpointState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Listener) recordHealthCheck(at time.Time, healthy bool) {
	l.mu.Lock()
	l.state.LastHealthCheck = at
	l.state.Healthy = healthy
	l.mu.Unlock()
}

func (l *Listener) startLocked() error {
	ln, err := listenUnix(l.path, ListenBacklog)
	if err != nil {
		l.state.Listening = false
		return err
	}
	l.ln = ln
	l.gen++
	l.state.Listening = true

	l.readerOnce.Do(func() { go l.read() })
	l.serving.Add(1)
	go l.serve(ln, l.gen)
	return nil
}

func (l *Listener) stopLocked() {
	if l.ln != nil {
		_ = l.ln.Close()
		l.ln = nil
	}
	l.gen++
	l.state.Listening = false
}

func (l *Listener) isCurrent(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.closed && l.gen == gen
}

func (l *Listener) serve(ln net.Listener, gen uint64) {
	defer l.serving.Done()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if !l.isCurrent(gen) {
				return
			}
			logging.Error("accept on %s failed: %v", l.path, err)
			go func() {
				_ = l.Restart()
			}()
			return
		}
		if !l.conns.Put(conn) {
			conn.Close()
			return
		}
	}
}

// read serves queued connections one at a time until Close, then drains
// whatever is left.
func (l *Listener) read() {
	defer close(l.readerDone)

	for {
		for {
			m, ok := l.conns.Take()
			if !ok {
				break
			}
			l.handle(m.(net.Conn))
		}

		select {
		case <-l.stopRead:
			for {
				m, ok := l.conns.Take()
				if !ok {
					return
				}
				l.handle(m.(net.Conn))
			}
		case <-l.conns.Wait():
		}
	}
}

// handle reads one payload and closes the connection.
func (l *Listener) handle(conn net.Conn) {
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(l.readTimeout)); err != nil {
		logging.Warn("failed to set read deadline: %v", err)
	}

	data, err := io.ReadAll(io.LimitReader(conn, MaxPayloadSize))
	if err != nil && len(data) == 0 {
		logging.Warn("failed to read payload: %v", err)
		return
	}
	if len(data) == 0 {
		// health probes connect and close without writing
		return
	}

	p, err := notification.DecodePayload(data)
	if err != nil {
		logging.Warn("dropping malformed payload (%d bytes): %v", len(data), err)
		return
	}
	if !l.post(p) {
		logging.Warn("consumer loop stopped, payload dropped")
	}
}

// listenUnix binds a stream socket at path with an explicit backlog. Any file
// left at path is removed first.
func listenUnix(path string, backlog int) (net.Listener, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Debug("remove stale endpoint %s: %v", path, err)
	}

	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create socket: %w", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to bind %s: %w", path, err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to listen on %s: %w", path, err)
	}

	f := os.NewFile(uintptr(fd), path)
	defer f.Close()
	ln, err := net.FileListener(f)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap socket: %w", err)
	}
	return ln, nil
}
