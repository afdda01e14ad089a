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

// Package protocol implements the binary record format used by the p0f API socket.
//
// A client sends a fixed-size request naming a single IP address and the daemon
// answers with a fixed-size response describing what it has observed about that
// host. All multi-byte integers are in the host's native byte order, since the
// API socket is local to the machine running the daemon.
package protocol

import (
	"encoding/binary"
)

const (
	RequestMagic  uint32 = 0x50304601
	ResponseMagic uint32 = 0x50304602

	RequestSize  = 21
	ResponseSize = 232

	// Maximum length of a text field, not counting the NUL terminator
	StrMax = 31
	// Size of a text slot on the wire
	StrSize = StrMax + 1
)

// Address family tags
const (
	AddressIpv4 uint8 = 0x04
	AddressIpv6 uint8 = 0x06
)

// Mismatch codes for the bad_sw field
const (
	BadSwNone             uint8 = 0x00
	BadSwOsDifference     uint8 = 0x01
	BadSwOutrightMismatch uint8 = 0x02
)

// Match quality codes for the os_match_q field
const (
	MatchNormal       uint8 = 0x00
	MatchFuzzy        uint8 = 0x01
	MatchGeneric      uint8 = 0x02
	MatchFuzzyGeneric uint8 = 0x03
)

// Sentinel values marking absent optional fields
const (
	absentUint32   uint32 = 0
	absentDistance int16  = -1
)

// Field names used in decode errors and serialized output
const (
	FieldMagic      = "magic"
	FieldStatus     = "status"
	FieldFirstSeen  = "first_seen"
	FieldLastSeen   = "last_seen"
	FieldTotalConn  = "total_conn"
	FieldUptimeMin  = "uptime_min"
	FieldUpModDays  = "up_mod_days"
	FieldLastNat    = "last_nat"
	FieldLastChg    = "last_chg"
	FieldDistance   = "distance"
	FieldBadSw      = "bad_sw"
	FieldOsMatchQ   = "os_match_q"
	FieldOsName     = "os_name"
	FieldOsFlavor   = "os_flavor"
	FieldHttpName   = "http_name"
	FieldHttpFlavor = "http_flavor"
	FieldLinkType   = "link_type"
	FieldLanguage   = "language"
	FieldAddress    = "address"
)

// byteOrder is the order used for every integer on the wire. The daemon writes
// its in-memory structs directly to the socket
var byteOrder = binary.NativeEndian
