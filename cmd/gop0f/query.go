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
	"fmt"
	"net/netip"

	"github.com/spf13/cobra"
)

func (a *app) queryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "query ADDRESS...",
		Short: "Look up one or more IP addresses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addrs := make([]netip.Addr, 0, len(args))
			for _, arg := range args {
				addr, err := netip.ParseAddr(arg)
				if err != nil {
					return fmt.Errorf("invalid address %q: %w", arg, err)
				}
				addrs = append(addrs, addr)
			}
			conn, err := a.connect()
			if err != nil {
				return err
			}
			defer conn.Close()
			out := a.printer()
			for _, addr := range addrs {
				resp, err := conn.QueryContext(cmd.Context(), addr)
				if err != nil {
					return fmt.Errorf("query for %s failed: %w", addr, err)
				}
				if err := out.Print(addr, resp); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
