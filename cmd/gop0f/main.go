// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	p0f "github.com/blinklabs-io/gop0f"
	"github.com/blinklabs-io/gop0f/internal/config"
	"github.com/blinklabs-io/gop0f/internal/log"
	"github.com/spf13/cobra"
)

// Set at build time with -ldflags
var version = "dev"

// app holds the state shared by all subcommands
type app struct {
	stdout     io.Writer
	stderr     io.Writer
	configFile string
	cfg        *config.Config
	logger     *slog.Logger
	logCloser  io.Closer
}

func newApp(stdout io.Writer, stderr io.Writer) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
	}
}

func (a *app) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gop0f",
		Short: "Query the p0f passive fingerprinting daemon",
		Long: `gop0f asks a running p0f daemon what it knows about hosts it has seen on the network.
The daemon must be started with its API socket enabled (p0f -s PATH).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "config file path (YAML)")
	flags.StringP("socket", "s", "", "p0f API socket path (default /var/run/p0f.sock)")
	flags.Duration("timeout", 0, "timeout for each query (default 5s)")
	flags.StringP("output", "o", "", "output format: text, json, or cbor (default text)")
	flags.String("log-level", "", "log level: debug, info, warn, or error (default info)")
	flags.String("log-format", "", "log format: text or json (default text)")
	cmd.AddCommand(
		a.queryCommand(),
		a.inboundCommand(),
		a.outboundCommand(),
	)
	return cmd
}

// setup loads the configuration once the flags are parsed and starts logging
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger, logCloser, err := log.Init(cfg.Log, a.stderr)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.logCloser = logCloser
	return nil
}

func (a *app) close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

func (a *app) connect() (*p0f.Connection, error) {
	conn, err := p0f.Connect(
		a.cfg.Socket,
		p0f.WithLogger(a.logger),
		p0f.WithTimeout(a.cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to p0f daemon at %s: %w", a.cfg.Socket, err)
	}
	return conn, nil
}

func (a *app) printer() *printer {
	return newPrinter(a.stdout, a.cfg.Output)
}

// sleep waits for the specified duration or until the context is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a := newApp(os.Stdout, os.Stderr)
	err := a.rootCommand().ExecuteContext(ctx)
	a.close()
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
}
