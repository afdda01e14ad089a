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

// Package p0fmock provides a scripted stand-in for the p0f daemon's API socket
package p0fmock

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/blinklabs-io/gop0f/protocol"
)

// Connection mocks a connection to the p0f daemon
type Connection struct {
	mockConn     net.Conn
	conn         net.Conn
	conversation []ConversationEntry
	errorChan    chan error
	doneChan     chan struct{}
	onceClose    sync.Once
}

// NewConnection returns a new Connection with the provided conversation entries
func NewConnection(conversation []ConversationEntry) net.Conn {
	c := &Connection{
		conversation: conversation,
		errorChan:    make(chan error, 1),
		doneChan:     make(chan struct{}),
	}
	c.conn, c.mockConn = net.Pipe()
	// Start async conversation handler
	go c.asyncLoop()
	return c
}

// ErrorChan returns the channel for errors from the conversation handler. It is closed when the
// conversation ends
func (c *Connection) ErrorChan() <-chan error {
	return c.errorChan
}

// Read provides a proxy to the client-side connection's Read function. This is needed to satisfy the net.Conn interface
func (c *Connection) Read(b []byte) (n int, err error) {
	return c.conn.Read(b)
}

// Write provides a proxy to the client-side connection's Write function. This is needed to satisfy the net.Conn interface
func (c *Connection) Write(b []byte) (n int, err error) {
	return c.conn.Write(b)
}

// Close closes both sides of the connection. This is needed to satisfy the net.Conn interface
func (c *Connection) Close() error {
	var err error
	c.onceClose.Do(func() {
		close(c.doneChan)
		if tmpErr := c.conn.Close(); tmpErr != nil {
			err = tmpErr
		}
		if tmpErr := c.mockConn.Close(); tmpErr != nil && err == nil {
			err = tmpErr
		}
	})
	return err
}

// LocalAddr provides a proxy to the client-side connection's LocalAddr function. This is needed to satisfy the net.Conn interface
func (c *Connection) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// RemoteAddr provides a proxy to the client-side connection's RemoteAddr function. This is needed to satisfy the net.Conn interface
func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// SetDeadline provides a proxy to the client-side connection's SetDeadline function. This is needed to satisfy the net.Conn interface
func (c *Connection) SetDeadline(t time.Time) error {
	return c.conn.SetDeadline(t)
}

// SetReadDeadline provides a proxy to the client-side connection's SetReadDeadline function. This is needed to satisfy the net.Conn interface
func (c *Connection) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// SetWriteDeadline provides a proxy to the client-side connection's SetWriteDeadline function. This is needed to satisfy the net.Conn interface
func (c *Connection) SetWriteDeadline(t time.Time) error {
	return c.conn.SetWriteDeadline(t)
}

func (c *Connection) asyncLoop() {
	defer close(c.errorChan)
	for _, entry := range c.conversation {
		var err error
		switch entry.Type {
		case EntryTypeInput:
			err = c.processInputEntry(entry)
		case EntryTypeOutput:
			err = c.processOutputEntry(entry)
		case EntryTypeClose:
			_ = c.Close()
			return
		default:
			err = fmt.Errorf(
				"unknown conversation entry type: %d: %#v",
				entry.Type,
				entry,
			)
		}
		if err != nil {
			// Errors caused by the client closing the connection early are not reported
			select {
			case <-c.doneChan:
			default:
				c.errorChan <- err
			}
			return
		}
	}
}

func (c *Connection) processInputEntry(entry ConversationEntry) error {
	buf := make([]byte, protocol.RequestSize)
	if _, err := io.ReadFull(c.mockConn, buf); err != nil {
		return fmt.Errorf("read error: %w", err)
	}
	addr, err := protocol.DecodeRequest(buf)
	if err != nil {
		return fmt.Errorf("decode error: %w", err)
	}
	if entry.Address.IsValid() && addr != entry.Address {
		return fmt.Errorf(
			"request address did not match expected value: expected %s, got %s",
			entry.Address,
			addr,
		)
	}
	return nil
}

func (c *Connection) processOutputEntry(entry ConversationEntry) error {
	data := entry.OutputData
	if data == nil {
		var err error
		data, err = protocol.EncodeResponse(entry.Status, entry.Response)
		if err != nil {
			return fmt.Errorf("encode error: %w", err)
		}
	}
	if _, err := c.mockConn.Write(data); err != nil {
		if errors.Is(err, io.ErrClosedPipe) {
			return fmt.Errorf("client closed connection before reading response: %w", err)
		}
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}
