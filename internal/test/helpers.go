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

// Package test holds fixtures shared by the tests of other packages
package test

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/blinklabs-io/gop0f/protocol"
)

// DecodeHexString is a helper function for tests that decodes hex strings. It doesn't return
// an error value, which makes it usable inline.
func DecodeHexString(hexData string) []byte {
	// Strip off any leading/trailing whitespace in hex string
	hexData = strings.TrimSpace(hexData)
	decoded, err := hex.DecodeString(hexData)
	if err != nil {
		panic(fmt.Sprintf("error decoding hex: %s", err))
	}
	return decoded
}

// NewResponse returns a populated response that survives an encode/decode round trip unchanged
func NewResponse() *protocol.Response {
	uptime := 90 * time.Minute
	lastChg := time.Unix(1700002000, 0).UTC()
	distance := int16(11)
	badSw := protocol.SoftwareMismatchOsDifference
	osName := "Linux"
	osFlavor := "2.2.x-3.x"
	return &protocol.Response{
		FirstSeen:      time.Unix(1700000000, 0).UTC(),
		LastSeen:       time.Unix(1700003600, 0).UTC(),
		TotalConn:      3,
		Uptime:         &uptime,
		UpModDays:      49 * 24 * time.Hour,
		LastChg:        &lastChg,
		Distance:       &distance,
		BadSw:          &badSw,
		OsMatchQuality: protocol.MatchQualityFuzzy,
		OsName:         &osName,
		OsFlavor:       &osFlavor,
	}
}
