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

package protocol

import (
	"fmt"
	"time"

	"github.com/blinklabs-io/gop0f/cbor"
	"github.com/jinzhu/copier"
)

// Status is the status code of a response
type Status uint32

const (
	StatusBadQuery Status = 0x00
	StatusOk       Status = 0x10
	StatusNoMatch  Status = 0x20
)

func (s Status) String() string {
	switch s {
	case StatusBadQuery:
		return "BadQuery"
	case StatusOk:
		return "Ok"
	case StatusNoMatch:
		return "NoMatch"
	default:
		return fmt.Sprintf("Status(0x%02x)", uint32(s))
	}
}

// SoftwareMismatch describes a disagreement between the OS detected from the
// TCP/IP stack and the OS claimed by higher level traffic such as an HTTP User-Agent
type SoftwareMismatch uint8

const (
	SoftwareMismatchOsDifference SoftwareMismatch = SoftwareMismatch(BadSwOsDifference)
	SoftwareMismatchOutright     SoftwareMismatch = SoftwareMismatch(BadSwOutrightMismatch)
)

// NewSoftwareMismatch maps a bad_sw code to a SoftwareMismatch. The "none" code
// maps to nil
func NewSoftwareMismatch(code uint8) (*SoftwareMismatch, error) {
	var ret SoftwareMismatch
	switch code {
	case BadSwNone:
		return nil, nil
	case BadSwOsDifference:
		ret = SoftwareMismatchOsDifference
	case BadSwOutrightMismatch:
		ret = SoftwareMismatchOutright
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownCode, code)
	}
	return &ret, nil
}

func (s SoftwareMismatch) String() string {
	switch s {
	case SoftwareMismatchOsDifference:
		return "os_difference"
	case SoftwareMismatchOutright:
		return "outright_mismatch"
	default:
		return fmt.Sprintf("SoftwareMismatch(0x%02x)", uint8(s))
	}
}

func (s SoftwareMismatch) MarshalText() ([]byte, error) {
	switch s {
	case SoftwareMismatchOsDifference, SoftwareMismatchOutright:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownCode, uint8(s))
	}
}

func (s *SoftwareMismatch) UnmarshalText(data []byte) error {
	switch string(data) {
	case SoftwareMismatchOsDifference.String():
		*s = SoftwareMismatchOsDifference
	case SoftwareMismatchOutright.String():
		*s = SoftwareMismatchOutright
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCode, data)
	}
	return nil
}

func (s SoftwareMismatch) MarshalCBOR() ([]byte, error) {
	return cbor.Encode(uint8(s))
}

func (s *SoftwareMismatch) UnmarshalCBOR(data []byte) error {
	var code uint8
	if _, err := cbor.Decode(data, &code); err != nil {
		return err
	}
	tmp, err := NewSoftwareMismatch(code)
	if err != nil {
		return err
	}
	if tmp == nil {
		return fmt.Errorf("%w: 0x%02x", ErrUnknownCode, code)
	}
	*s = *tmp
	return nil
}

// MatchQuality describes how the daemon matched the OS signature
type MatchQuality uint8

const (
	MatchQualityNormal       MatchQuality = MatchQuality(MatchNormal)
	MatchQualityFuzzy        MatchQuality = MatchQuality(MatchFuzzy)
	MatchQualityGeneric      MatchQuality = MatchQuality(MatchGeneric)
	MatchQualityFuzzyGeneric MatchQuality = MatchQuality(MatchFuzzyGeneric)
)

// NewMatchQuality maps an os_match_q code to a MatchQuality
func NewMatchQuality(code uint8) (MatchQuality, error) {
	switch code {
	case MatchNormal:
		return MatchQualityNormal, nil
	case MatchFuzzy:
		return MatchQualityFuzzy, nil
	case MatchGeneric:
		return MatchQualityGeneric, nil
	case MatchFuzzyGeneric:
		return MatchQualityFuzzyGeneric, nil
	default:
		return 0, fmt.Errorf("%w: 0x%02x", ErrUnknownCode, code)
	}
}

// Fuzzy returns true if the signature match was not exact
func (q MatchQuality) Fuzzy() bool {
	return q == MatchQualityFuzzy || q == MatchQualityFuzzyGeneric
}

// Generic returns true if the matched signature was a generic one
func (q MatchQuality) Generic() bool {
	return q == MatchQualityGeneric || q == MatchQualityFuzzyGeneric
}

func (q MatchQuality) String() string {
	switch q {
	case MatchQualityNormal:
		return "normal"
	case MatchQualityFuzzy:
		return "fuzzy"
	case MatchQualityGeneric:
		return "generic"
	case MatchQualityFuzzyGeneric:
		return "fuzzy_generic"
	default:
		return fmt.Sprintf("MatchQuality(0x%02x)", uint8(q))
	}
}

func (q MatchQuality) MarshalText() ([]byte, error) {
	if _, err := NewMatchQuality(uint8(q)); err != nil {
		return nil, err
	}
	return []byte(q.String()), nil
}

func (q *MatchQuality) UnmarshalText(data []byte) error {
	for _, tmp := range []MatchQuality{
		MatchQualityNormal,
		MatchQualityFuzzy,
		MatchQualityGeneric,
		MatchQualityFuzzyGeneric,
	} {
		if string(data) == tmp.String() {
			*q = tmp
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownCode, data)
}

func (q MatchQuality) MarshalCBOR() ([]byte, error) {
	return cbor.Encode(uint8(q))
}

func (q *MatchQuality) UnmarshalCBOR(data []byte) error {
	var code uint8
	if _, err := cbor.Decode(data, &code); err != nil {
		return err
	}
	tmp, err := NewMatchQuality(code)
	if err != nil {
		return err
	}
	*q = tmp
	return nil
}

// Response is the decoded answer to a successful query. Optional fields are nil
// when the daemon has no data for them
type Response struct {
	// First and last time a connection from the host was observed
	FirstSeen time.Time `json:"first_seen" cbor:"first_seen"`
	LastSeen  time.Time `json:"last_seen"  cbor:"last_seen"`
	// Total number of connections observed
	TotalConn uint32 `json:"total_conn" cbor:"total_conn"`
	// Estimated host uptime
	Uptime *time.Duration `json:"uptime" cbor:"uptime"`
	// Period after which the host's uptime counter wraps around
	UpModDays time.Duration `json:"up_mod_days" cbor:"up_mod_days"`
	// Last time NAT or a load balancer was suspected
	LastNat *time.Time `json:"last_nat" cbor:"last_nat"`
	// Last time the host's OS signature changed
	LastChg *time.Time `json:"last_chg" cbor:"last_chg"`
	// Network hop distance
	Distance       *int16            `json:"distance"         cbor:"distance"`
	BadSw          *SoftwareMismatch `json:"bad_sw"           cbor:"bad_sw"`
	OsMatchQuality MatchQuality      `json:"os_match_quality" cbor:"os_match_quality"`
	OsName         *string           `json:"os_name"          cbor:"os_name"`
	OsFlavor       *string           `json:"os_flavor"        cbor:"os_flavor"`
	// OS and flavor implied by the HTTP User-Agent
	HttpName   *string `json:"http_name"   cbor:"http_name"`
	HttpFlavor *string `json:"http_flavor" cbor:"http_flavor"`
	// Link type inferred from the MTU
	LinkType *string `json:"link_type" cbor:"link_type"`
	// Language from HTTP Accept-Language
	Language *string `json:"language" cbor:"language"`
}

// Clone returns a deep copy of the response. The copy shares no pointer fields with the original
func (r *Response) Clone() (*Response, error) {
	ret := &Response{}
	if err := copier.CopyWithOption(ret, r, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	return ret, nil
}
