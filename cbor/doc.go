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

// Package cbor provides CBOR encoding/decoding for fingerprint records handed to
// downstream consumers.
//
// This package wraps github.com/fxamacker/cbor/v2 with fixed options:
//   - map keys are sorted using the core deterministic ordering, so identical
//     records always encode to identical bytes
//   - time.Time values are encoded as integer seconds since the epoch, matching
//     the resolution of the p0f API
//
// Types that need a specific wire representation implement MarshalCBOR and
// UnmarshalCBOR and call Encode and Decode from this package:
//
//	func (q MatchQuality) MarshalCBOR() ([]byte, error) {
//	    return cbor.Encode(uint8(q))
//	}
package cbor
