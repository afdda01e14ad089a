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
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/netip"
	"strings"
	"time"

	"github.com/blinklabs-io/gop0f/cbor"
	"github.com/blinklabs-io/gop0f/internal/config"
	"github.com/blinklabs-io/gop0f/protocol"
)

// record is the machine-readable form of one lookup. Response is null when the daemon has no match
type record struct {
	Address  string             `json:"address"  cbor:"address"`
	Response *protocol.Response `json:"response" cbor:"response"`
}

type printer struct {
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, format string) *printer {
	return &printer{
		w:      w,
		format: format,
	}
}

// Print writes the result of a lookup in the configured format
func (p *printer) Print(addr netip.Addr, resp *protocol.Response) error {
	switch p.format {
	case config.OutputJson:
		return json.NewEncoder(p.w).Encode(record{Address: addr.String(), Response: resp})
	case config.OutputCbor:
		data, err := cbor.Encode(record{Address: addr.String(), Response: resp})
		if err != nil {
			return fmt.Errorf("failed to encode CBOR: %w", err)
		}
		_, err = fmt.Fprintln(p.w, hex.EncodeToString(data))
		return err
	default:
		_, err := io.WriteString(p.w, formatText(addr, resp))
		return err
	}
}

func formatText(addr netip.Addr, resp *protocol.Response) string {
	var sb strings.Builder
	if resp == nil {
		fmt.Fprintf(&sb, "%s: no match\n", addr)
		return sb.String()
	}
	fmt.Fprintf(&sb, "%s:\n", addr)
	line := func(name string, val any) {
		fmt.Fprintf(&sb, "  %-18s %v\n", name, val)
	}
	line("first seen", resp.FirstSeen.Format(time.RFC3339))
	line("last seen", resp.LastSeen.Format(time.RFC3339))
	line("connections", resp.TotalConn)
	if resp.Uptime != nil {
		line("uptime", *resp.Uptime)
	}
	if resp.UpModDays > 0 {
		line("uptime wraps after", fmt.Sprintf("%d days", resp.UpModDays/(24*time.Hour)))
	}
	if resp.LastNat != nil {
		line("last NAT", resp.LastNat.Format(time.RFC3339))
	}
	if resp.LastChg != nil {
		line("last OS change", resp.LastChg.Format(time.RFC3339))
	}
	if resp.Distance != nil {
		line("distance", *resp.Distance)
	}
	if resp.BadSw != nil {
		line("software mismatch", *resp.BadSw)
	}
	if resp.OsName != nil {
		os := *resp.OsName
		if resp.OsFlavor != nil {
			os += " " + *resp.OsFlavor
		}
		line("os", fmt.Sprintf("%s (%s)", os, resp.OsMatchQuality))
	}
	if resp.HttpName != nil {
		http := *resp.HttpName
		if resp.HttpFlavor != nil {
			http += " " + *resp.HttpFlavor
		}
		line("http software", http)
	}
	if resp.LinkType != nil {
		line("link", *resp.LinkType)
	}
	if resp.Language != nil {
		line("language", *resp.Language)
	}
	return sb.String()
}
