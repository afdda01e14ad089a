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
	"net"
	"net/netip"

	p0f "github.com/blinklabs-io/gop0f"
	"github.com/spf13/cobra"
)

func (a *app) outboundCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbound",
		Short: "Connect to a TCP server and look it up",
		Long: `outbound opens a TCP connection to the target. Once the daemon has seen the handshake
it prints what the daemon knows about the target host.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runOutbound(cmd.Context())
		},
	}
	cmd.Flags().String("target", "", "TCP address to connect to (default 45.79.112.203:4242)")
	cmd.Flags().Duration("delay", 0, "time to wait after connecting before the query (default 1s)")
	return cmd
}

func (a *app) runOutbound(ctx context.Context) error {
	target, err := netip.ParseAddrPort(a.cfg.Outbound.Target)
	if err != nil {
		return fmt.Errorf("invalid target %q: %w", a.cfg.Outbound.Target, err)
	}
	conn, err := a.connect()
	if err != nil {
		return err
	}
	defer conn.Close()
	dialer := net.Dialer{Timeout: a.cfg.Timeout}
	remote, err := dialer.DialContext(ctx, "tcp", target.String())
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", target, err)
	}
	defer remote.Close()
	a.logger.Info("connected", "target", target.String())
	return a.lookup(ctx, conn, a.printer(), target.Addr().Unmap())
}

// lookup waits for the configured delay so the daemon can fingerprint the handshake, then queries addr
func (a *app) lookup(ctx context.Context, conn *p0f.Connection, out *printer, addr netip.Addr) error {
	if err := sleep(ctx, a.cfg.Delay); err != nil {
		return err
	}
	resp, err := conn.QueryContext(ctx, addr)
	if err != nil {
		return fmt.Errorf("query for %s failed: %w", addr, err)
	}
	return out.Print(addr, resp)
}
