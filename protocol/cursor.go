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

// cursor reads fixed-size chunks sequentially from a buffer. All bounds
// checking for record decoding happens here
type cursor struct {
	buf []byte
	pos int
}

func newCursor(buf []byte) *cursor {
	return &cursor{buf: buf}
}

// readFixed returns the next n bytes and advances past them. It returns false
// without advancing if fewer than n bytes remain
func (c *cursor) readFixed(n int) ([]byte, bool) {
	if n < 0 || len(c.buf)-c.pos < n {
		return nil, false
	}
	ret := c.buf[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return ret, true
}

// remaining returns the unread tail of the buffer without advancing
func (c *cursor) remaining() []byte {
	return c.buf[c.pos:]
}

func (c *cursor) offset() int {
	return c.pos
}

func (c *cursor) readUint8(field string) (uint8, error) {
	data, ok := c.readFixed(1)
	if !ok {
		return 0, newDecodeError(field, ErrMissingData)
	}
	return data[0], nil
}

func (c *cursor) readUint32(field string) (uint32, error) {
	data, ok := c.readFixed(4)
	if !ok {
		return 0, newDecodeError(field, ErrMissingData)
	}
	return byteOrder.Uint32(data), nil
}

func (c *cursor) readInt16(field string) (int16, error) {
	data, ok := c.readFixed(2)
	if !ok {
		return 0, newDecodeError(field, ErrMissingData)
	}
	// #nosec G115 -- reinterpreting the wire bits as signed
	return int16(byteOrder.Uint16(data)), nil
}
