// Package supersim launches a local supersim, a set of interop L2s backed by anvil,
// for the end-to-end tests.
package supersim

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/xchain-flashloan/config"
)

const (
	DefaultBinary         = "supersim"
	DefaultL1Port         = 8545
	DefaultL2StartingPort = 9545
	DefaultL2ChainID      = 901
	DefaultStartTimeout   = 30 * time.Second
)

// chain names supersim gives its default L2s
var l2Names = []string{"supersimL2A", "supersimL2B"}

type Supersim struct {
	binary       string
	args         map[string]string
	flags        []string
	startTimeout time.Duration
	l2StartPort  int

	proc   *exec.Cmd
	logger log.Logger
	wg     sync.WaitGroup
}

type Option func(*Supersim)

func WithBinary(path string) Option {
	return func(s *Supersim) {
		s.binary = path
	}
}

func WithL1Port(port int) Option {
	return func(s *Supersim) {
		s.args["--l1.port"] = strconv.Itoa(port)
	}
}

func WithL2StartingPort(port int) Option {
	return func(s *Supersim) {
		s.l2StartPort = port
		s.args["--l2.starting.port"] = strconv.Itoa(port)
	}
}

// WithAutorelay lets supersim relay every L2-to-L2 message itself.
func WithAutorelay() Option {
	return func(s *Supersim) {
		s.flags = append(s.flags, "--interop.autorelay")
	}
}

func WithStartTimeout(d time.Duration) Option {
	return func(s *Supersim) {
		s.startTimeout = d
	}
}

func NewSupersim(logger log.Logger, opts ...Option) (*Supersim, error) {
	s := &Supersim{
		binary: DefaultBinary,
		args: map[string]string{
			"--l1.port":          strconv.Itoa(DefaultL1Port),
			"--l2.starting.port": strconv.Itoa(DefaultL2StartingPort),
		},
		startTimeout: DefaultStartTimeout,
		l2StartPort:  DefaultL2StartingPort,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := exec.LookPath(s.binary); err != nil {
		return nil, fmt.Errorf("%s not found in PATH: %w", s.binary, err)
	}
	return s, nil
}

func (s *Supersim) commandArgs() []string {
	var args []string
	keys := make([]string, 0, len(s.args))
	for k := range s.args {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		args = append(args, k, s.args[k])
	}
	return append(args, s.flags...)
}

// Start runs supersim and blocks until every L2 answers eth_chainId.
func (s *Supersim) Start(ctx context.Context) error {
	proc := exec.Command(s.binary, s.commandArgs()...)
	stdout, err := proc.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := proc.StderrPipe()
	if err != nil {
		return err
	}
	s.proc = proc
	if err := proc.Start(); err != nil {
		return err
	}
	s.wg.Add(2)
	go s.outputStream(stdout)
	go s.outputStream(stderr)

	ctx, cancel := context.WithTimeout(ctx, s.startTimeout)
	defer cancel()
	if err := WaitReady(ctx, s.L2URLs(), 250*time.Millisecond); err != nil {
		_ = s.Stop()
		return fmt.Errorf("supersim did not start in time: %w", err)
	}
	s.logger.Info("Supersim ready", "l2s", s.L2URLs())
	return nil
}

func (s *Supersim) Stop() error {
	if s.proc == nil || s.proc.Process == nil {
		return nil
	}
	if err := s.proc.Process.Signal(os.Interrupt); err != nil {
		return err
	}
	// make sure the output streams close
	defer s.wg.Wait()
	err := s.proc.Wait()
	s.proc = nil
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && !exitErr.Exited() {
		// killed by the interrupt
		return nil
	}
	return err
}

func (s *Supersim) outputStream(stream io.ReadCloser) {
	defer s.wg.Done()
	scanner := bufio.NewScanner(stream)
	for scanner.Scan() {
		s.logger.Debug("[SUPERSIM] " + scanner.Text())
	}
}

func (s *Supersim) L2URLs() []string {
	urls := make([]string, len(l2Names))
	for i := range l2Names {
		urls[i] = fmt.Sprintf("http://127.0.0.1:%d", s.l2StartPort+i)
	}
	return urls
}

// ChainConfigs describes the L2s of the running supersim.
func (s *Supersim) ChainConfigs() []config.ChainConfig {
	urls := s.L2URLs()
	out := make([]config.ChainConfig, len(l2Names))
	for i, name := range l2Names {
		out[i] = config.ChainConfig{Name: name, RPC: urls[i], ChainID: uint64(DefaultL2ChainID + i)}
	}
	return out
}

// WaitReady polls every RPC until it answers eth_chainId, or the context ends.
func WaitReady(ctx context.Context, urls []string, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	pending := slices.Clone(urls)
	for {
		pending = slices.DeleteFunc(pending, func(url string) bool {
			return ping(ctx, url) == nil
		})
		if len(pending) == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: waiting for %v", ctx.Err(), pending)
		case <-ticker.C:
		}
	}
}

func ping(ctx context.Context, url string) error {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return err
	}
	defer client.Close()
	_, err = client.ChainID(ctx)
	return err
}
