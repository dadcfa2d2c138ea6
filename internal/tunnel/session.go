package tunnel

import (
	"errors"
	"io"
	"net"
	"sync"

	"github.com/pgnc/pgnc-upload/pkg/pgnc"
	"golang.org/x/crypto/ssh"
)

// Session is an open tunnel. It forwards every connection accepted on its
// loopback listener to the remote endpoint over the SSH client.
type Session struct {
	client     *ssh.Client
	listener   net.Listener
	remoteAddr string
	logger     pgnc.Logger

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool

	closeOnce sync.Once
	closeErr  error
	wg        sync.WaitGroup
}

var _ pgnc.Tunnel = (*Session)(nil)

func newSession(client *ssh.Client, listener net.Listener, remoteAddr string, logger pgnc.Logger) *Session {
	s := &Session{
		client:     client,
		listener:   listener,
		remoteAddr: remoteAddr,
		logger:     logger,
		conns:      make(map[net.Conn]struct{}),
	}
	s.wg.Add(1)
	go s.acceptLoop()
	return s
}

// LocalPort returns the loopback port clients should connect to.
func (s *Session) LocalPort() int {
	if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// LocalAddr returns the loopback address the session listens on.
func (s *Session) LocalAddr() net.Addr {
	return s.listener.Addr()
}

// Close stops accepting, drops open forwards and closes the SSH client.
// It waits for all forwarding goroutines and is safe to call repeatedly.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		conns := make([]net.Conn, 0, len(s.conns))
		for c := range s.conns {
			conns = append(conns, c)
		}
		s.mu.Unlock()

		var errs []error
		if s.listener != nil {
			if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				errs = append(errs, err)
			}
		}
		for _, c := range conns {
			c.Close()
		}
		if s.client != nil {
			if err := s.client.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				errs = append(errs, err)
			}
		}

		s.wg.Wait()
		s.closeErr = errors.Join(errs...)
		s.logger.Verbose("Tunnel closed")
	})
	return s.closeErr
}

func (s *Session) acceptLoop() {
	defer s.wg.Done()
	for {
		local, err := s.listener.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				s.logger.Error("Tunnel listener stopped: %v", err)
			}
			return
		}
		if !s.track(local) {
			local.Close()
			return
		}
		s.wg.Add(1)
		go s.forward(local)
	}
}

func (s *Session) forward(local net.Conn) {
	defer s.wg.Done()
	defer s.untrack(local)

	remote, err := s.client.Dial("tcp", s.remoteAddr)
	if err != nil {
		s.logger.Error("Tunnel forward to %s failed: %v", s.remoteAddr, err)
		local.Close()
		return
	}
	if !s.track(remote) {
		remote.Close()
		local.Close()
		return
	}
	defer s.untrack(remote)

	var pumps sync.WaitGroup
	pumps.Add(2)
	go pipe(&pumps, remote, local)
	go pipe(&pumps, local, remote)
	pumps.Wait()
}

// pipe copies until either side fails, then closes both so the opposite pump
// unblocks.
func pipe(wg *sync.WaitGroup, dst, src net.Conn) {
	defer wg.Done()
	_, _ = io.Copy(dst, src)
	dst.Close()
	src.Close()
}

func (s *Session) track(c net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Session) untrack(c net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c)
}
