package sensors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SSHConfig locates the sensor hub and its database file.
type SSHConfig struct {
	Host string
	Port int
	User string
	// KeyFile is the private key for auth; when empty the usual
	// ~/.ssh/id_ed25519 and ~/.ssh/id_rsa are tried.
	KeyFile string
	// KnownHostsFile defaults to ~/.ssh/known_hosts. Host key checking is
	// always on; there is no insecure mode because this runs unattended.
	KnownHostsFile string
	DatabasePath   string
	DialTimeout    time.Duration
}

// SSHSource queries the remote database by running the sqlite3 CLI in JSON
// mode over one SSH session per invocation.
type SSHSource struct {
	cfg    SSHConfig
	client *ssh.Client
}

func NewSSHSource(cfg SSHConfig) (*SSHSource, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("ssh host is required")
	}
	if strings.TrimSpace(cfg.User) == "" {
		return nil, errors.New("ssh user is required")
	}
	if strings.TrimSpace(cfg.DatabasePath) == "" {
		return nil, errors.New("database path is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 22
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}

	signer, err := loadSigner(cfg.KeyFile)
	if err != nil {
		return nil, err
	}
	hostKeys, err := hostKeyCallback(cfg.KnownHostsFile)
	if err != nil {
		return nil, err
	}

	client, err := ssh.Dial("tcp", net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port)), &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeys,
		Timeout:         cfg.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("ssh dial %s: %w", cfg.Host, err)
	}
	return &SSHSource{cfg: cfg, client: client}, nil
}

func (s *SSHSource) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *SSHSource) CheckIns(ctx context.Context, since time.Time) ([]CheckIn, error) {
	sess, err := s.client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("ssh session: %w", err)
	}
	defer sess.Close()

	cmd := fmt.Sprintf("sqlite3 -json %s %q", s.cfg.DatabasePath, checkInQuery(since))

	// x/crypto/ssh sessions have no context plumbing; close the session when
	// the context ends so Output unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = sess.Close()
		case <-done:
		}
	}()

	out, err := sess.Output(cmd)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, fmt.Errorf("remote query: %w", err)
	}
	return decodeRows(out)
}

// decodeRows parses sqlite3 -json output. An empty result set prints
// nothing at all (not "[]"), so blank output means zero rows.
func decodeRows(out []byte) ([]CheckIn, error) {
	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return nil, nil
	}

	var raw []struct {
		MAC       string `json:"mac"`
		Location  string `json:"location"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, fmt.Errorf("parse query output: %w", err)
	}

	rows := make([]CheckIn, 0, len(raw))
	for _, r := range raw {
		ts, err := parseTimestamp(r.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", r.Timestamp, err)
		}
		rows = append(rows, CheckIn{MAC: r.MAC, Location: r.Location, Timestamp: ts})
	}
	return rows, nil
}

func loadSigner(keyFile string) (ssh.Signer, error) {
	candidates := []string{keyFile}
	if strings.TrimSpace(keyFile) == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home for ssh key: %w", err)
		}
		candidates = []string{
			filepath.Join(home, ".ssh", "id_ed25519"),
			filepath.Join(home, ".ssh", "id_rsa"),
		}
	}

	var lastErr error
	for _, path := range candidates {
		pem, err := os.ReadFile(path)
		if err != nil {
			lastErr = err
			continue
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			lastErr = fmt.Errorf("parse key %s: %w", path, err)
			continue
		}
		return signer, nil
	}
	return nil, fmt.Errorf("no usable ssh key: %w", lastErr)
}

func hostKeyCallback(knownHostsFile string) (ssh.HostKeyCallback, error) {
	path := knownHostsFile
	if strings.TrimSpace(path) == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home for known_hosts: %w", err)
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}
	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("load known_hosts %s: %w", path, err)
	}
	return cb, nil
}
