package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/vk/originci/internal/ctxlog"
)

// SSHConfig describes how to reach a remote build or test host.
type SSHConfig struct {
	// Host is host or host:port; port 22 is assumed when absent.
	Host    string
	User    string
	KeyFile string
	// KnownHostsFile enables host key checking when set.
	KnownHostsFile string
	DialTimeout    time.Duration
	// Dir is used when a Command carries no directory.
	Dir string
}

// SSH runs commands on a remote host. A single connection is opened on
// first use and shared by concurrent callers, each getting its own session.
type SSH struct {
	cfg SSHConfig

	mu     sync.Mutex
	client *ssh.Client
}

// NewSSH returns a runner for cfg. No connection is made until Run.
func NewSSH(cfg SSHConfig) *SSH {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 30 * time.Second
	}
	if _, _, err := net.SplitHostPort(cfg.Host); err != nil {
		cfg.Host = net.JoinHostPort(cfg.Host, "22")
	}
	return &SSH{cfg: cfg}
}

func (s *SSH) clientConfig() (*ssh.ClientConfig, error) {
	key, err := os.ReadFile(s.cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read ssh key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ssh key %s: %w", s.cfg.KeyFile, err)
	}

	hostKeys := ssh.InsecureIgnoreHostKey()
	if s.cfg.KnownHostsFile != "" {
		hostKeys, err = knownhosts.New(s.cfg.KnownHostsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load known hosts: %w", err)
		}
	}

	return &ssh.ClientConfig{
		User:            s.cfg.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeys,
		Timeout:         s.cfg.DialTimeout,
	}, nil
}

func (s *SSH) connect(ctx context.Context) (*ssh.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	cfg, err := s.clientConfig()
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Info("Connecting to remote host.", "host", s.cfg.Host, "user", s.cfg.User)
	client, err := ssh.Dial("tcp", s.cfg.Host, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", s.cfg.Host, err)
	}
	s.client = client
	return client, nil
}

// Run executes cmd in a new session on the remote host.
func (s *SSH) Run(ctx context.Context, cmd Command) (Result, error) {
	if cmd.Line == "" {
		return Result{}, fmt.Errorf("empty command line")
	}

	client, err := s.connect(ctx)
	if err != nil {
		return Result{}, err
	}
	session, err := client.NewSession()
	if err != nil {
		return Result{}, fmt.Errorf("failed to open ssh session: %w", err)
	}
	defer session.Close()

	line := cmd.Line
	dir := s.cfg.Dir
	if cmd.Dir != "" {
		dir = cmd.Dir
	}
	if dir != "" {
		line = "cd " + Quote(dir) + " && " + line
	}

	var output lockedBuffer
	session.Stdout = &output
	session.Stderr = &output

	runCtx, cancel := withTimeout(ctx, cmd.Timeout)
	defer cancel()

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Running remote command.", "host", s.cfg.Host, "command", line, "timeout", cmd.Timeout)

	start := time.Now()
	if err := session.Start(line); err != nil {
		return Result{}, fmt.Errorf("failed to start remote command: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	select {
	case <-runCtx.Done():
		_ = session.Signal(ssh.SIGKILL)
		_ = session.Close()
		<-done
		if ctx.Err() != nil {
			return Result{}, fmt.Errorf("remote command cancelled: %w", ctx.Err())
		}
		logger.Warn("Remote command timed out.", "host", s.cfg.Host, "command", cmd.Line, "timeout", cmd.Timeout)
		return Result{Output: output.String(), ExitCode: -1, TimedOut: true, Duration: time.Since(start)}, nil
	case err = <-done:
	}

	res := Result{Output: output.String(), Duration: time.Since(start)}
	if err != nil {
		var exitErr *ssh.ExitError
		if !errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("remote command failed: %w", err)
		}
		res.ExitCode = exitErr.ExitStatus()
	}
	return res, nil
}

// Close drops the shared connection, if any.
func (s *SSH) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

// lockedBuffer serializes writes from the stdout and stderr copiers.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
