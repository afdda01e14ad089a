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
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"
)

const day = 24 * time.Hour

// wireResponse mirrors the response record as the daemon lays it out in memory
type wireResponse struct {
	Magic      uint32
	Status     uint32
	FirstSeen  uint32
	LastSeen   uint32
	TotalConn  uint32
	UptimeMin  uint32
	UpModDays  uint32
	LastNat    uint32
	LastChg    uint32
	Distance   int16
	BadSw      uint8
	OsMatchQ   uint8
	OsName     [StrSize]byte
	OsFlavor   [StrSize]byte
	HttpName   [StrSize]byte
	HttpFlavor [StrSize]byte
	LinkType   [StrSize]byte
	Language   [StrSize]byte
}

// DecodeResponse parses a response record. It returns nil with no error when the
// daemon has no data for the queried address. Decoding stops at the first invalid
// field and never returns a partial response
func DecodeResponse(data []byte) (*Response, error) {
	if len(data) > ResponseSize {
		return nil, fmt.Errorf(
			"%w: response is %d bytes, expected %d",
			ErrInvalidData,
			len(data),
			ResponseSize,
		)
	}
	c := newCursor(data)
	magic, err := c.readUint32(FieldMagic)
	if err != nil {
		return nil, err
	}
	if magic != ResponseMagic {
		return nil, ErrInvalidMagic
	}
	status, err := c.readUint32(FieldStatus)
	if err != nil {
		return nil, err
	}
	switch Status(status) {
	case StatusBadQuery:
		return nil, ErrBadQuery
	case StatusNoMatch:
		return nil, nil
	case StatusOk:
	default:
		return nil, newDecodeError(
			FieldStatus,
			fmt.Errorf("%w: 0x%02x", ErrUnknownCode, status),
		)
	}
	resp := &Response{}
	if resp.FirstSeen, err = readTimestamp(c, FieldFirstSeen); err != nil {
		return nil, err
	}
	if resp.LastSeen, err = readTimestamp(c, FieldLastSeen); err != nil {
		return nil, err
	}
	if resp.TotalConn, err = c.readUint32(FieldTotalConn); err != nil {
		return nil, err
	}
	uptimeMin, err := c.readUint32(FieldUptimeMin)
	if err != nil {
		return nil, err
	}
	if uptimeMin != absentUint32 {
		uptime, err := toDuration(FieldUptimeMin, uptimeMin, time.Minute)
		if err != nil {
			return nil, err
		}
		resp.Uptime = &uptime
	}
	upModDays, err := c.readUint32(FieldUpModDays)
	if err != nil {
		return nil, err
	}
	if resp.UpModDays, err = toDuration(FieldUpModDays, upModDays, day); err != nil {
		return nil, err
	}
	if resp.LastNat, err = readOptionalTimestamp(c, FieldLastNat); err != nil {
		return nil, err
	}
	if resp.LastChg, err = readOptionalTimestamp(c, FieldLastChg); err != nil {
		return nil, err
	}
	distance, err := c.readInt16(FieldDistance)
	if err != nil {
		return nil, err
	}
	if distance != absentDistance {
		resp.Distance = &distance
	}
	badSw, err := c.readUint8(FieldBadSw)
	if err != nil {
		return nil, err
	}
	if resp.BadSw, err = NewSoftwareMismatch(badSw); err != nil {
		return nil, newDecodeError(FieldBadSw, err)
	}
	matchQ, err := c.readUint8(FieldOsMatchQ)
	if err != nil {
		return nil, err
	}
	if resp.OsMatchQuality, err = NewMatchQuality(matchQ); err != nil {
		return nil, newDecodeError(FieldOsMatchQ, err)
	}
	for _, slot := range []struct {
		field string
		dest  **string
	}{
		{FieldOsName, &resp.OsName},
		{FieldOsFlavor, &resp.OsFlavor},
		{FieldHttpName, &resp.HttpName},
		{FieldHttpFlavor, &resp.HttpFlavor},
		{FieldLinkType, &resp.LinkType},
		{FieldLanguage, &resp.Language},
	} {
		if *slot.dest, err = readString(c, slot.field); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func readTimestamp(c *cursor, field string) (time.Time, error) {
	val, err := c.readUint32(field)
	if err != nil {
		return time.Time{}, err
	}
	return toTimestamp(field, val)
}

func readOptionalTimestamp(c *cursor, field string) (*time.Time, error) {
	val, err := c.readUint32(field)
	if err != nil {
		return nil, err
	}
	if val == absentUint32 {
		return nil, nil
	}
	ret, err := toTimestamp(field, val)
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

// toTimestamp converts seconds since the epoch to a time. The daemon's clock is a
// signed 32-bit time_t, so anything above that range is rejected instead of being
// wrapped around to a date before 1970
func toTimestamp(field string, val uint32) (time.Time, error) {
	if val > math.MaxInt32 {
		return time.Time{}, newDecodeError(
			field,
			fmt.Errorf("%w: %d", ErrTimestampOutOfRange, val),
		)
	}
	return time.Unix(int64(val), 0).UTC(), nil
}

func toDuration(field string, val uint32, unit time.Duration) (time.Duration, error) {
	if int64(val) > math.MaxInt64/int64(unit) {
		return 0, newDecodeError(
			field,
			fmt.Errorf("%w: %d", ErrDurationOutOfRange, val),
		)
	}
	return time.Duration(val) * unit, nil
}

// readString consumes a text slot. A slot whose first byte is NUL is absent, but
// it still occupies its full width on the wire. Otherwise the whole slot is kept
// with trailing NUL padding removed
func readString(c *cursor, field string) (*string, error) {
	tail := c.remaining()
	if len(tail) == 0 {
		return nil, newDecodeError(field, ErrMissingData)
	}
	absent := tail[0] == 0
	data, ok := c.readFixed(StrSize)
	if !ok {
		return nil, newDecodeError(field, ErrMissingData)
	}
	if absent {
		return nil, nil
	}
	ret := strings.TrimRight(strings.ToValidUTF8(string(data), "\uFFFD"), "\x00")
	return &ret, nil
}

// EncodeResponse builds a response record as the daemon would send it. The
// response is only used with StatusOk. Durations are truncated to whole minutes
// (uptime) and days (up_mod_days), and strings to StrMax bytes
func EncodeResponse(status Status, resp *Response) ([]byte, error) {
	w := wireResponse{
		Magic:    ResponseMagic,
		Status:   uint32(status),
		Distance: absentDistance,
	}
	if status == StatusOk {
		if resp == nil {
			return nil, fmt.Errorf("%w: no response for status %s", ErrInvalidData, status)
		}
		if err := w.fill(resp); err != nil {
			return nil, err
		}
	}
	buf := bytes.NewBuffer(make([]byte, 0, ResponseSize))
	if err := binary.Write(buf, byteOrder, &w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w *wireResponse) fill(resp *Response) error {
	var err error
	if w.FirstSeen, err = fromTimestamp(FieldFirstSeen, resp.FirstSeen); err != nil {
		return err
	}
	if w.LastSeen, err = fromTimestamp(FieldLastSeen, resp.LastSeen); err != nil {
		return err
	}
	w.TotalConn = resp.TotalConn
	if resp.Uptime != nil {
		if w.UptimeMin, err = fromDuration(FieldUptimeMin, *resp.Uptime, time.Minute); err != nil {
			return err
		}
	}
	if w.UpModDays, err = fromDuration(FieldUpModDays, resp.UpModDays, day); err != nil {
		return err
	}
	if resp.LastNat != nil {
		if w.LastNat, err = fromTimestamp(FieldLastNat, *resp.LastNat); err != nil {
			return err
		}
	}
	if resp.LastChg != nil {
		if w.LastChg, err = fromTimestamp(FieldLastChg, *resp.LastChg); err != nil {
			return err
		}
	}
	if resp.Distance != nil {
		w.Distance = *resp.Distance
	}
	if resp.BadSw != nil {
		if _, err := NewSoftwareMismatch(uint8(*resp.BadSw)); err != nil {
			return newDecodeError(FieldBadSw, err)
		}
		w.BadSw = uint8(*resp.BadSw)
	}
	if _, err := NewMatchQuality(uint8(resp.OsMatchQuality)); err != nil {
		return newDecodeError(FieldOsMatchQ, err)
	}
	w.OsMatchQ = uint8(resp.OsMatchQuality)
	putString(&w.OsName, resp.OsName)
	putString(&w.OsFlavor, resp.OsFlavor)
	putString(&w.HttpName, resp.HttpName)
	putString(&w.HttpFlavor, resp.HttpFlavor)
	putString(&w.LinkType, resp.LinkType)
	putString(&w.Language, resp.Language)
	return nil
}

// fromTimestamp converts a time to seconds since the epoch. The zero time maps to 0
func fromTimestamp(field string, t time.Time) (uint32, error) {
	if t.IsZero() {
		return 0, nil
	}
	secs := t.Unix()
	if secs < 0 || secs > math.MaxInt32 {
		return 0, newDecodeError(
			field,
			fmt.Errorf("%w: %s", ErrTimestampOutOfRange, t),
		)
	}
	return uint32(secs), nil
}

func fromDuration(field string, d time.Duration, unit time.Duration) (uint32, error) {
	val := d / unit
	if val < 0 || val > math.MaxUint32 {
		return 0, newDecodeError(
			field,
			fmt.Errorf("%w: %s", ErrDurationOutOfRange, d),
		)
	}
	return uint32(val), nil
}

func putString(dest *[StrSize]byte, val *string) {
	if val == nil {
		return
	}
	// The final byte is always left as the NUL terminator
	copy(dest[:StrMax], *val)
}
