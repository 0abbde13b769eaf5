package filesystem

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// ErrNoAuthMethods is returned when neither an SSH agent nor a usable key is available.
var ErrNoAuthMethods = errors.New("no SSH authentication methods available (tried SSH agent and default keys)")

const defaultDialTimeout = 30 * time.Second

// Remote describes where to connect.
type Remote struct {
	Host string
	Port int
	User string

	// KnownHostsFile is checked when it exists; defaults to ~/.ssh/known_hosts.
	KnownHostsFile string

	// Timeout bounds the TCP dial and SSH handshake.
	Timeout time.Duration
}

// Address returns host:port.
func (r Remote) Address() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// String renders the remote as user@host:port.
func (r Remote) String() string {
	return r.User + "@" + r.Address()
}

// SFTPConnection holds an SSH connection and the SFTP session on top of it.
type SFTPConnection struct {
	remote     Remote
	sshClient  *ssh.Client
	sftpClient *sftp.Client
	agentConn  net.Conn
}

// Connect dials the remote, authenticating with the SSH agent and then the
// default keys in ~/.ssh.
func Connect(remote Remote) (*SFTPConnection, error) {
	auth, agentConn := sshAuthMethods()
	if len(auth) == 0 {
		return nil, ErrNoAuthMethods
	}

	hostKeys, err := hostKeyCallback(remote.KnownHostsFile)
	if err != nil {
		closeQuietly(agentConn)

		return nil, err
	}

	timeout := remote.Timeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}

	config := &ssh.ClientConfig{
		User:            remote.User,
		Auth:            auth,
		HostKeyCallback: hostKeys,
		Timeout:         timeout,
	}

	sshClient, err := ssh.Dial("tcp", remote.Address(), config)
	if err != nil {
		closeQuietly(agentConn)

		return nil, fmt.Errorf("SSH connection to %s failed: %w", remote, err)
	}

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		closeQuietly(agentConn)

		return nil, fmt.Errorf("SFTP session creation failed: %w", err)
	}

	return &SFTPConnection{
		remote:     remote,
		sshClient:  sshClient,
		sftpClient: sftpClient,
		agentConn:  agentConn,
	}, nil
}

// Client returns the SFTP client.
func (c *SFTPConnection) Client() *sftp.Client {
	return c.sftpClient
}

// Remote returns where the connection points.
func (c *SFTPConnection) Remote() Remote {
	return c.remote
}

// Close closes the SFTP session, then the SSH connection and the agent socket.
// The first error wins.
func (c *SFTPConnection) Close() error {
	var errs []error

	if c.sftpClient != nil {
		errs = append(errs, c.sftpClient.Close())
	}

	if c.sshClient != nil {
		errs = append(errs, c.sshClient.Close())
	}

	if c.agentConn != nil {
		errs = append(errs, c.agentConn.Close())
	}

	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("failed to close connection to %s: %w", c.remote, err)
		}
	}

	return nil
}

func closeQuietly(conn net.Conn) {
	if conn != nil {
		_ = conn.Close()
	}
}

// hostKeyCallback verifies against a known_hosts file when one exists.
// Without one every host key is accepted.
func hostKeyCallback(file string) (ssh.HostKeyCallback, error) {
	if file == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // No home directory, nothing to verify against
		}

		file = filepath.Join(home, ".ssh", "known_hosts")
	}

	if _, err := os.Stat(file); err != nil {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // No known_hosts file to verify against
	}

	callback, err := knownhosts.New(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load known hosts from %s: %w", file, err)
	}

	return callback, nil
}

// sshAuthMethods returns the agent (when SSH_AUTH_SOCK is reachable) followed
// by any unencrypted default keys. The agent connection is returned so the
// caller can close it.
func sshAuthMethods() ([]ssh.AuthMethod, net.Conn) {
	var methods []ssh.AuthMethod

	agentConn := dialAgent()
	if agentConn != nil {
		methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(agentConn).Signers))
	}

	if signers := defaultKeySigners(); len(signers) > 0 {
		methods = append(methods, ssh.PublicKeys(signers...))
	}

	return methods, agentConn
}

func dialAgent() net.Conn {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil
	}

	conn, err := net.Dial("unix", socket)
	if err != nil {
		return nil
	}

	return conn
}

// defaultKeySigners loads ~/.ssh/id_ed25519, id_ecdsa and id_rsa, skipping
// missing and passphrase-protected keys.
func defaultKeySigners() []ssh.Signer {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	var signers []ssh.Signer

	for _, name := range []string{"id_ed25519", "id_ecdsa", "id_rsa"} {
		keyData, err := os.ReadFile(filepath.Join(home, ".ssh", name)) // #nosec G304 - fixed key locations
		if err != nil {
			continue
		}

		signer, err := ssh.ParsePrivateKey(keyData)
		if err != nil {
			continue
		}

		signers = append(signers, signer)
	}

	return signers
}
