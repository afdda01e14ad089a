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
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorReadFixed(t *testing.T) {
	c := newCursor([]byte{0x01, 0x02, 0x03, 0x04, 0x05})
	data, ok := c.readFixed(2)
	require.True(t, ok)
	assert.Equal(t, []byte{0x01, 0x02}, data)
	assert.Equal(t, 2, c.offset())
	assert.Equal(t, []byte{0x03, 0x04, 0x05}, c.remaining())
	// Not enough data left
	data, ok = c.readFixed(4)
	assert.False(t, ok)
	assert.Nil(t, data)
	assert.Equal(t, 2, c.offset(), "failed read should not advance")
	data, ok = c.readFixed(3)
	require.True(t, ok)
	assert.Equal(t, []byte{0x03, 0x04, 0x05}, data)
	assert.Empty(t, c.remaining())
	_, ok = c.readFixed(1)
	assert.False(t, ok)
	// Zero length reads always succeed
	_, ok = c.readFixed(0)
	assert.True(t, ok)
}

func TestCursorReadFixedNegative(t *testing.T) {
	c := newCursor([]byte{0x01})
	_, ok := c.readFixed(-1)
	assert.False(t, ok)
	assert.Equal(t, 0, c.offset())
}

func TestCursorReadFixedNoAliasGrowth(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03}
	c := newCursor(buf)
	data, ok := c.readFixed(1)
	require.True(t, ok)
	// Appending to a returned chunk must not clobber the rest of the buffer
	_ = append(data, 0xff)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, buf)
}

func TestCursorTypedReads(t *testing.T) {
	buf := binary.NativeEndian.AppendUint32(nil, 0xdeadbeef)
	buf = binary.NativeEndian.AppendUint16(buf, 0xffff)
	buf = append(buf, 0x7f)
	c := newCursor(buf)
	u32, err := c.readUint32("a")
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), u32)
	i16, err := c.readInt16("b")
	require.NoError(t, err)
	assert.Equal(t, int16(-1), i16)
	u8, err := c.readUint8("c")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x7f), u8)
	_, err = c.readUint8("d")
	require.ErrorIs(t, err, ErrMissingData)
	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "d", decodeErr.Field)
}

func TestReadStringAbsentAdvancesSlot(t *testing.T) {
	buf := make([]byte, StrSize*2)
	copy(buf[StrSize:], "Linux")
	c := newCursor(buf)
	val, err := readString(c, FieldOsName)
	require.NoError(t, err)
	assert.Nil(t, val)
	assert.Equal(t, StrSize, c.offset())
	val, err = readString(c, FieldOsFlavor)
	require.NoError(t, err)
	require.NotNil(t, val)
	assert.Equal(t, "Linux", *val)
	assert.Equal(t, StrSize*2, c.offset())
}

func TestReadStringTruncated(t *testing.T) {
	// An absent slot must still be fully present on the wire
	c := newCursor(make([]byte, StrSize-1))
	_, err := readString(c, FieldLanguage)
	require.ErrorIs(t, err, ErrMissingData)
	assert.Contains(t, err.Error(), FieldLanguage)
	c = newCursor(nil)
	_, err = readString(c, FieldLanguage)
	require.ErrorIs(t, err, ErrMissingData)
}

func TestReadStringUnterminated(t *testing.T) {
	buf := make([]byte, StrSize)
	for i := range buf {
		buf[i] = 'x'
	}
	c := newCursor(buf)
	val, err := readString(c, FieldOsName)
	require.NoError(t, err)
	require.NotNil(t, val)
	assert.Len(t, *val, StrSize)
}

func TestReadStringEmbeddedNul(t *testing.T) {
	buf := make([]byte, StrSize)
	copy(buf, []byte{'a', 'b', 0, 'c', 0xff})
	c := newCursor(buf)
	val, err := readString(c, FieldLinkType)
	require.NoError(t, err)
	require.NotNil(t, val)
	// Only the trailing padding is removed
	assert.Equal(t, "ab\x00c\uFFFD", *val)
	assert.Equal(t, StrSize, c.offset())
}

func TestWireResponseSize(t *testing.T) {
	assert.Equal(t, ResponseSize, binary.Size(wireResponse{}))
}
