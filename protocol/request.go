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
	"net/netip"
)

// EncodeRequest builds the request record for a query about addr. IPv4-mapped
// IPv6 addresses keep the IPv6 family, so callers holding a mapped address for an
// IPv4 host should call Unmap first
func EncodeRequest(addr netip.Addr) ([]byte, error) {
	if !addr.IsValid() {
		return nil, ErrInvalidAddress
	}
	ret := make([]byte, 0, RequestSize)
	ret = byteOrder.AppendUint32(ret, RequestMagic)
	if addr.Is4() {
		octets := addr.As4()
		ret = append(ret, AddressIpv4)
		ret = append(ret, octets[:]...)
		// Pad the address field out to 16 bytes
		ret = append(ret, make([]byte, 12)...)
	} else {
		octets := addr.As16()
		ret = append(ret, AddressIpv6)
		ret = append(ret, octets[:]...)
	}
	return ret, nil
}

// DecodeRequest parses a request record and returns the address being queried
func DecodeRequest(data []byte) (netip.Addr, error) {
	if len(data) > RequestSize {
		return netip.Addr{}, fmt.Errorf(
			"%w: request is %d bytes, expected %d",
			ErrInvalidData,
			len(data),
			RequestSize,
		)
	}
	c := newCursor(data)
	magic, err := c.readUint32(FieldMagic)
	if err != nil {
		return netip.Addr{}, err
	}
	if magic != RequestMagic {
		return netip.Addr{}, ErrInvalidMagic
	}
	family, err := c.readUint8(FieldAddress)
	if err != nil {
		return netip.Addr{}, err
	}
	addrData, ok := c.readFixed(16)
	if !ok {
		return netip.Addr{}, newDecodeError(FieldAddress, ErrMissingData)
	}
	switch family {
	case AddressIpv4:
		return netip.AddrFrom4([4]byte(addrData[:4])), nil
	case AddressIpv6:
		return netip.AddrFrom16([16]byte(addrData)), nil
	default:
		return netip.Addr{}, newDecodeError(
			FieldAddress,
			fmt.Errorf("%w: family 0x%02x", ErrUnknownCode, family),
		)
	}
}
