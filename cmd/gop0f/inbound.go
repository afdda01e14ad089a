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
	"errors"
	"fmt"
	"net"
	"net/netip"

	"github.com/spf13/cobra"
)

func (a *app) inboundCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inbound",
		Short: "Accept TCP connections and look up each client",
		Long: `inbound listens for TCP connections. For each one it waits for the daemon to see the
handshake, then prints what the daemon knows about the connecting host.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			listener, err := net.Listen("tcp", a.cfg.Inbound.Listen)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", a.cfg.Inbound.Listen, err)
			}
			defer listener.Close()
			return a.serveInbound(cmd.Context(), listener)
		},
	}
	cmd.Flags().String("listen", "", "TCP address to listen on (default 127.0.0.1:6666)")
	cmd.Flags().Int("count", 0, "number of connections to handle before exiting, 0 for no limit (default 1)")
	cmd.Flags().Duration("delay", 0, "time to wait after accepting before the query (default 1s)")
	return cmd
}

func (a *app) serveInbound(ctx context.Context, listener net.Listener) error {
	conn, err := a.connect()
	if err != nil {
		return err
	}
	defer conn.Close()
	// Unblock Accept when interrupted
	stop := context.AfterFunc(ctx, func() {
		_ = listener.Close()
	})
	defer stop()
	out := a.printer()
	for handled := 0; a.cfg.Inbound.Count == 0 || handled < a.cfg.Inbound.Count; handled++ {
		a.logger.Info("waiting for connection", "listen", listener.Addr().String())
		client, err := listener.Accept()
		if err != nil {
			// Interrupted
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}
		addrPort, err := netip.ParseAddrPort(client.RemoteAddr().String())
		if err != nil {
			_ = client.Close()
			return fmt.Errorf("unexpected remote address %s: %w", client.RemoteAddr(), err)
		}
		addr := addrPort.Addr().Unmap()
		a.logger.Info("connection accepted", "remote", addrPort.String())
		err = errors.Join(
			a.lookup(ctx, conn, out, addr),
			client.Close(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}
