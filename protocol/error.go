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
	"errors"
	"fmt"
)

var (
	// ErrInvalidMagic is returned when a record does not start with the expected magic value.
	// This means the peer is not speaking the p0f API or the stream is out of sync
	ErrInvalidMagic = errors.New("invalid magic")
	// ErrBadQuery is returned when the daemon rejected the request as malformed
	ErrBadQuery = errors.New("bad query")
	// ErrTimestampOutOfRange is returned when a timestamp field cannot be represented
	ErrTimestampOutOfRange = errors.New("timestamp out of range")
	// ErrDurationOutOfRange is returned when a duration field does not fit in a time.Duration
	ErrDurationOutOfRange = errors.New("duration out of range")
	// ErrMissingData is returned when the buffer ends before a field could be read
	ErrMissingData = errors.New("missing data")
	// ErrInvalidData is returned when a record does not have its fixed size
	ErrInvalidData = errors.New("invalid data")
	// ErrUnknownCode is returned for a status, family, mismatch or match-quality code
	// outside its defined set
	ErrUnknownCode = errors.New("unknown code")
	// ErrInvalidAddress is returned when a query address is not a valid IPv4 or IPv6 address
	ErrInvalidAddress = errors.New("invalid address")
)

// DecodeError identifies the record field that could not be decoded
type DecodeError struct {
	Field string
	Err   error
}

func newDecodeError(field string, err error) *DecodeError {
	return &DecodeError{
		Field: field,
		Err:   err,
	}
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
