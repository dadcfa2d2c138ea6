package tunnel

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/pgnc/pgnc-upload/internal/files/filesystem"
	"github.com/pgnc/pgnc-upload/pkg/pgnc"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Manager opens tunnels through a bastion host.
type Manager struct {
	fs     filesystem.FileSystemProvider
	logger pgnc.Logger
}

var _ pgnc.TunnelOpener = (*Manager)(nil)

// NewManager creates a Manager that reads key files through fs.
func NewManager(fs filesystem.FileSystemProvider, logger pgnc.Logger) *Manager {
	if fs == nil {
		panic("fs cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Manager{fs: fs, logger: logger}
}

// Open authenticates to the bastion, checks that it forwards to the remote
// endpoint and starts serving a loopback listener. On error nothing is left
// open.
func (m *Manager) Open(ctx context.Context, cfg pgnc.TunnelConfig) (pgnc.Tunnel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	signer, err := m.loadSigner(cfg.PrivateKeyPath)
	if err != nil {
		return nil, err
	}

	hostKeyCallback, err := m.hostKeyCallback(cfg)
	if err != nil {
		return nil, err
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = pgnc.DefaultConnectTimeout
	}

	bastionAddr := net.JoinHostPort(cfg.BastionHost, strconv.Itoa(cfg.BastionPort))
	remoteAddr := net.JoinHostPort(cfg.RemoteHost, strconv.Itoa(cfg.RemotePort))

	client, err := m.dial(ctx, bastionAddr, &ssh.ClientConfig{
		User:            cfg.BastionUser,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}, timeout)
	if err != nil {
		return nil, err
	}

	if err := checkForward(ctx, client, remoteAddr, timeout); err != nil {
		client.Close()
		return nil, err
	}

	listener, err := net.Listen("tcp", net.JoinHostPort(pgnc.LocalBindHost, "0"))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w: %w", pgnc.LocalBindHost, pgnc.ErrConnectionFailed, err)
	}

	s := newSession(client, listener, remoteAddr, m.logger)
	m.logger.Verbose("Tunnel open: %s -> %s via %s", s.LocalAddr(), remoteAddr, bastionAddr)
	return s, nil
}

func (m *Manager) loadSigner(path string) (ssh.Signer, error) {
	pemBytes, err := m.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPrivateKey, err)
	}

	signer, err := ssh.ParsePrivateKey(pemBytes)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("%w: %s is passphrase protected", ErrPrivateKey, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrPrivateKey, path, err)
	}
	return signer, nil
}

func (m *Manager) hostKeyCallback(cfg pgnc.TunnelConfig) (ssh.HostKeyCallback, error) {
	if cfg.KnownHostsPath != "" {
		cb, err := knownhosts.New(cfg.KnownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load known hosts %s: %w: %w", cfg.KnownHostsPath, pgnc.ErrInvalidConfig, err)
		}
		return cb, nil
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		m.logger.Info("Warning: host key of %s is not verified (%s %s); set KNOWN_HOSTS to verify it",
			hostname, key.Type(), ssh.FingerprintSHA256(key))
		return nil
	}, nil
}

// dial performs the TCP connect and the SSH handshake. Both honor ctx.
func (m *Manager) dial(ctx context.Context, addr string, config *ssh.ClientConfig, timeout time.Duration) (*ssh.Client, error) {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, pgnc.Interrupted(ctxErr)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrBastionUnreachable, addr, err)
	}

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	_ = conn.SetDeadline(time.Now().Add(timeout))
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, pgnc.Interrupted(ctxErr)
		}
		return nil, classifyHandshakeError(addr, err)
	}
	_ = conn.SetDeadline(time.Time{})

	return ssh.NewClient(c, chans, reqs), nil
}

func classifyHandshakeError(addr string, err error) error {
	var keyErr *knownhosts.KeyError
	if errors.As(err, &keyErr) {
		if len(keyErr.Want) == 0 {
			return fmt.Errorf("%w: host key of %s is not in known hosts: %w", ErrBastionAuth, addr, err)
		}
		return fmt.Errorf("%w: host key of %s does not match known hosts: %w", ErrBastionAuth, addr, err)
	}

	if strings.Contains(err.Error(), "unable to authenticate") {
		return fmt.Errorf("%w: %s rejected the key: %w", ErrBastionAuth, addr, err)
	}

	return fmt.Errorf("%w: ssh handshake with %s: %w", ErrBastionUnreachable, addr, err)
}

// checkForward opens and immediately closes one forwarded channel so a
// refusal surfaces during Open instead of on the first database connect.
func checkForward(ctx context.Context, client *ssh.Client, remoteAddr string, timeout time.Duration) error {
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch, err := client.DialContext(dialCtx, "tcp", remoteAddr)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return pgnc.Interrupted(ctxErr)
		}
		return fmt.Errorf("%w: %s: %w", ErrForwardRejected, remoteAddr, err)
	}
	return ch.Close()
}
