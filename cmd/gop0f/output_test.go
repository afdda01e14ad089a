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
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/netip"
	"strings"
	"testing"

	"github.com/blinklabs-io/gop0f/cbor"
	"github.com/blinklabs-io/gop0f/internal/config"
	"github.com/blinklabs-io/gop0f/internal/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var outputAddr = netip.MustParseAddr("192.0.2.10")

func TestPrintText(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, config.OutputText)
	require.NoError(t, p.Print(outputAddr, test.NewResponse()))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "192.0.2.10:\n"))
	for _, expected := range []string{
		"2023-11-14T22:13:20Z",
		"2023-11-14T23:13:20Z",
		"1h30m0s",
		"49 days",
		"os_difference",
		"Linux 2.2.x-3.x (fuzzy)",
	} {
		assert.Contains(t, out, expected)
	}
	// Absent fields are left out
	assert.NotContains(t, out, "last NAT")
	assert.NotContains(t, out, "language")
}

func TestPrintTextNoMatch(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, config.OutputText)
	require.NoError(t, p.Print(outputAddr, nil))
	assert.Equal(t, "192.0.2.10: no match\n", buf.String())
}

func TestPrintJson(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, config.OutputJson)
	require.NoError(t, p.Print(outputAddr, test.NewResponse()))
	require.NoError(t, p.Print(netip.MustParseAddr("2001:db8::1"), nil))
	dec := json.NewDecoder(&buf)
	var first map[string]any
	require.NoError(t, dec.Decode(&first))
	assert.Equal(t, "192.0.2.10", first["address"])
	resp, ok := first["response"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "fuzzy", resp["os_match_quality"])
	assert.Equal(t, "os_difference", resp["bad_sw"])
	assert.Equal(t, "Linux", resp["os_name"])
	var second map[string]any
	require.NoError(t, dec.Decode(&second))
	assert.Equal(t, "2001:db8::1", second["address"])
	assert.Nil(t, second["response"])
}

func TestPrintCbor(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, config.OutputCbor)
	expected := test.NewResponse()
	require.NoError(t, p.Print(outputAddr, expected))
	data, err := hex.DecodeString(strings.TrimSpace(buf.String()))
	require.NoError(t, err)
	var rec record
	_, err = cbor.Decode(data, &rec)
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.10", rec.Address)
	require.NotNil(t, rec.Response)
	assert.True(t, expected.FirstSeen.Equal(rec.Response.FirstSeen))
	assert.Equal(t, expected.OsName, rec.Response.OsName)
	assert.Equal(t, expected.OsMatchQuality, rec.Response.OsMatchQuality)
	assert.Equal(t, expected.BadSw, rec.Response.BadSw)
}
