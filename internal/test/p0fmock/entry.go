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

package p0fmock

import (
	"net/netip"

	"github.com/blinklabs-io/gop0f/protocol"
)

type EntryType int

const (
	EntryTypeNone   EntryType = 0
	EntryTypeInput  EntryType = 1
	EntryTypeOutput EntryType = 2
	EntryTypeClose  EntryType = 3
)

type ConversationEntry struct {
	Type EntryType
	// Address expected in an input request. Any valid request matches if unset
	Address netip.Addr
	// Status and response to encode for an output entry
	Status   protocol.Status
	Response *protocol.Response
	// Raw bytes to send for an output entry. This overrides Status and Response
	OutputData []byte
}

// ConversationEntryInputAny is a pre-defined conversation entry that matches any valid request
var ConversationEntryInputAny = ConversationEntry{
	Type: EntryTypeInput,
}

// ConversationEntryNoMatch is a pre-defined conversation entry for a "no match" response
var ConversationEntryNoMatch = ConversationEntry{
	Type:   EntryTypeOutput,
	Status: protocol.StatusNoMatch,
}

// ConversationEntryBadQuery is a pre-defined conversation entry for a "bad query" response
var ConversationEntryBadQuery = ConversationEntry{
	Type:   EntryTypeOutput,
	Status: protocol.StatusBadQuery,
}

// ConversationEntryClose is a pre-defined conversation entry that closes the connection
var ConversationEntryClose = ConversationEntry{
	Type: EntryTypeClose,
}

// NewConversationEntryInput returns a conversation entry that expects a request for the specified address
func NewConversationEntryInput(addr netip.Addr) ConversationEntry {
	return ConversationEntry{
		Type:    EntryTypeInput,
		Address: addr,
	}
}

// NewConversationEntryResponse returns a conversation entry that sends a successful response
func NewConversationEntryResponse(resp *protocol.Response) ConversationEntry {
	return ConversationEntry{
		Type:     EntryTypeOutput,
		Status:   protocol.StatusOk,
		Response: resp,
	}
}

// NewConversationEntryRaw returns a conversation entry that sends the provided bytes as-is
func NewConversationEntryRaw(data []byte) ConversationEntry {
	return ConversationEntry{
		Type:       EntryTypeOutput,
		OutputData: data,
	}
}
