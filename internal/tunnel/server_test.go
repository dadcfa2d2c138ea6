package tunnel

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

// testBastion is an in-process SSH server that accepts one authorized key and
// forwards direct-tcpip channels to a single allowed address.
type testBastion struct {
	t        *testing.T
	listener net.Listener
	hostKey  ssh.Signer
	allowed  string

	wg sync.WaitGroup
}

func newTestBastion(t *testing.T, authorized ssh.PublicKey, allowed string) *testBastion {
	t.Helper()

	_, hostPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	hostSigner, err := ssh.NewSignerFromKey(hostPriv)
	require.NoError(t, err)

	config := &ssh.ServerConfig{
		PublicKeyCallback: func(_ ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if bytes.Equal(key.Marshal(), authorized.Marshal()) {
				return nil, nil
			}
			return nil, errors.New("unknown key")
		},
	}
	config.AddHostKey(hostSigner)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	b := &testBastion{t: t, listener: l, hostKey: hostSigner, allowed: allowed}
	b.wg.Add(1)
	go b.serve(config)
	t.Cleanup(b.close)
	return b
}

func (b *testBastion) port() int {
	return b.listener.Addr().(*net.TCPAddr).Port
}

func (b *testBastion) close() {
	b.listener.Close()
	b.wg.Wait()
}

func (b *testBastion) serve(config *ssh.ServerConfig) {
	defer b.wg.Done()
	for {
		conn, err := b.listener.Accept()
		if err != nil {
			return
		}
		b.wg.Add(1)
		go b.handle(conn, config)
	}
}

func (b *testBastion) handle(conn net.Conn, config *ssh.ServerConfig) {
	defer b.wg.Done()
	sconn, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		conn.Close()
		return
	}
	defer sconn.Close()
	go ssh.DiscardRequests(reqs)

	for newCh := range chans {
		if newCh.ChannelType() != "direct-tcpip" {
			newCh.Reject(ssh.UnknownChannelType, "unsupported")
			continue
		}
		var target struct {
			Host     string
			Port     uint32
			OrigHost string
			OrigPort uint32
		}
		if err := ssh.Unmarshal(newCh.ExtraData(), &target); err != nil {
			newCh.Reject(ssh.ConnectionFailed, "bad payload")
			continue
		}
		addr := net.JoinHostPort(target.Host, strconv.Itoa(int(target.Port)))
		if addr != b.allowed {
			newCh.Reject(ssh.Prohibited, "forward to "+addr+" denied")
			continue
		}
		backend, err := net.Dial("tcp", addr)
		if err != nil {
			newCh.Reject(ssh.ConnectionFailed, err.Error())
			continue
		}
		ch, chReqs, err := newCh.Accept()
		if err != nil {
			backend.Close()
			continue
		}
		go ssh.DiscardRequests(chReqs)
		go func() {
			_, _ = io.Copy(ch, backend)
			ch.Close()
		}()
		go func() {
			_, _ = io.Copy(backend, ch)
			backend.Close()
		}()
	}
}

// startEcho runs a TCP echo server and returns its address.
func startEcho(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			c, err := l.Accept()
			if err != nil {
				return
			}
			go func() {
				defer c.Close()
				_, _ = io.Copy(c, c)
			}()
		}
	}()
	t.Cleanup(func() {
		l.Close()
		wg.Wait()
	})
	return l.Addr().String()
}

// newClientKey returns an OpenSSH encoded private key and its public half.
func newClientKey(t *testing.T) ([]byte, ssh.PublicKey) {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	block, err := ssh.MarshalPrivateKey(priv, "test")
	require.NoError(t, err)

	signer, err := ssh.NewSignerFromKey(priv)
	require.NoError(t, err)

	return pem.EncodeToMemory(block), signer.PublicKey()
}

// freePort returns a loopback port nothing listens on.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}
