// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/kakadu-engine/kbuild/internal/config"
	"github.com/kakadu-engine/kbuild/internal/shader"
)

type (
	staticConfigProvider struct {
		cfg *config.Config
		err error
	}

	recordingInvoker struct {
		mu    sync.Mutex
		calls [][]string
		// failing holds program base names whose validation fails.
		failing map[string]bool
	}

	cliResult struct {
		stdout string
		stderr string
		err    error
	}
)

func (p *staticConfigProvider) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	if p.err != nil {
		return nil, p.err
	}
	cfg := *p.cfg
	return &cfg, nil
}

func (r *recordingInvoker) Invoke(_ context.Context, _ string, args []string) (shader.InvokeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, args)

	base := filepath.Base(args[0])
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if r.failing[stem] {
		return shader.InvokeResult{ExitCode: 2, Stdout: []byte("ERROR: " + base + ": link failed")}, nil
	}
	return shader.InvokeResult{}, nil
}

// configWith returns defaults adjusted by mutate.
func configWith(mutate func(*config.Config)) *config.Config {
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

// runCLI executes the root command with args against the given config and
// invoker, capturing output.
func runCLI(t *testing.T, cfg *config.Config, inv shader.Invoker, args ...string) cliResult {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app, err := NewApp(Dependencies{
		Config:  &staticConfigProvider{cfg: cfg},
		Invoker: inv,
		Stdout:  &stdout,
		Stderr:  &stderr,
	})
	if err != nil {
		t.Fatalf("NewApp() error: %v", err)
	}

	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err = root.ExecuteContext(context.Background())
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}
