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

// Package p0f implements a client for the API socket of the p0f passive
// fingerprinting daemon.
//
// The daemon watches network traffic and builds a profile of every host it sees.
// A client connects to its local API socket and asks about one IP address at a
// time. Each query is a single fixed-size request followed by a single fixed-size
// response, which is decoded by the protocol package.
//
// This package is the main entry point into this library. The protocol package
// can be used on its own for callers that manage their own transport.
package p0f

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/blinklabs-io/gop0f/protocol"
)

var (
	// ErrIO is returned when writing the request or reading the response fails
	ErrIO = errors.New("io error")
	// ErrConnectionClosed is returned for queries on a connection that has been closed
	ErrConnectionClosed = errors.New("connection closed")
	// ErrNotConnected is returned for queries on a connection that was never established
	ErrNotConnected = errors.New("not connected")
)

// The Connection type is a wrapper around a net.Conn object that handles queries to the p0f daemon
// over that connection. Queries are serialized, so only one request is outstanding at a time
type Connection struct {
	conn      net.Conn
	logger    *slog.Logger
	timeout   time.Duration
	mutex     sync.Mutex
	closed    bool
	onceClose sync.Once
}

// NewConnection returns a new Connection object with the specified options. If no connection is provided,
// the Dial() function can be used to create one later
func NewConnection(options ...ConnectionOptionFunc) (*Connection, error) {
	c := &Connection{}
	// Apply provided options functions
	for _, option := range options {
		option(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "p0f")
	return c, nil
}

// Connect establishes a connection to the daemon's API socket at the specified path
func Connect(path string, options ...ConnectionOptionFunc) (*Connection, error) {
	c, err := NewConnection(options...)
	if err != nil {
		return nil, err
	}
	if err := c.Dial("unix", path); err != nil {
		return nil, err
	}
	return c, nil
}

// Dial will establish a connection using the specified protocol and address. These parameters are
// passed to the [net.Dial] func. An error will be returned if the connection fails or a connection
// was already established
func (c *Connection) Dial(proto string, address string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.conn != nil {
		return errors.New("a connection was already established")
	}
	if c.closed {
		return ErrConnectionClosed
	}
	conn, err := net.Dial(proto, address)
	if err != nil {
		return err
	}
	c.conn = conn
	c.logger.Debug(
		"connected to p0f daemon",
		"proto",
		proto,
		"address",
		address,
	)
	return nil
}

// Close will shutdown the connection to the daemon
func (c *Connection) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.close()
}

// close must be called with the mutex held
func (c *Connection) close() error {
	var err error
	c.onceClose.Do(func() {
		c.closed = true
		if c.conn != nil {
			err = c.conn.Close()
		}
	})
	return err
}

// Query asks the daemon about the specified address. It returns nil with no error if the daemon
// has not seen any traffic from the address
func (c *Connection) Query(addr netip.Addr) (*protocol.Response, error) {
	return c.QueryContext(context.Background(), addr)
}

// QueryIP is a convenience wrapper around Query for callers with a [net.IP]. An IPv4
// address in its 16-byte form is queried as IPv4
func (c *Connection) QueryIP(ip net.IP) (*protocol.Response, error) {
	if ip4 := ip.To4(); ip4 != nil {
		ip = ip4
	}
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return nil, fmt.Errorf("%w: %v", protocol.ErrInvalidAddress, ip)
	}
	return c.Query(addr)
}

// QueryContext is like Query, but the request and response use the context deadline, if any, in addition
// to the connection timeout
func (c *Connection) QueryContext(ctx context.Context, addr netip.Addr) (*protocol.Response, error) {
	request, err := protocol.EncodeRequest(addr)
	if err != nil {
		return nil, err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return nil, ErrConnectionClosed
	}
	if c.conn == nil {
		return nil, ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := c.exchange(ctx, request)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", err, ctxErr)
		}
		// The state of the stream is unknown after a failed exchange, so the connection can't be reused
		_ = c.close()
		return nil, err
	}
	resp, err := protocol.DecodeResponse(data)
	if err != nil {
		if errors.Is(err, protocol.ErrInvalidMagic) {
			_ = c.close()
		}
		return nil, err
	}
	c.logger.Debug(
		"received p0f response",
		"address",
		addr.String(),
		"match",
		resp != nil,
	)
	return resp, nil
}

// exchange writes the request and reads back exactly one response record
func (c *Connection) exchange(ctx context.Context, request []byte) ([]byte, error) {
	deadline, ok := ctx.Deadline()
	if c.timeout > 0 {
		timeoutDeadline := time.Now().Add(c.timeout)
		if !ok || timeoutDeadline.Before(deadline) {
			deadline = timeoutDeadline
			ok = true
		}
	}
	if ok {
		if err := c.conn.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("%w: set deadline: %w", ErrIO, err)
		}
	}
	// Unblock the write or read if the context is canceled
	canceled := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Now())
		close(canceled)
	})
	defer func() {
		resetDeadline := ok
		if !stop() {
			// The cancellation may have raced with the end of the exchange, so its
			// deadline must land before the reset
			<-canceled
			resetDeadline = true
		}
		if resetDeadline {
			_ = c.conn.SetDeadline(time.Time{})
		}
	}()
	// Writes on a net.Conn either send the whole buffer or return an error
	if _, err := c.conn.Write(request); err != nil {
		return nil, fmt.Errorf("%w: write request: %w", ErrIO, err)
	}
	response := make([]byte, protocol.ResponseSize)
	// We use ReadFull because it guarantees to read the expected number of bytes or
	// return an error
	if _, err := io.ReadFull(c.conn, response); err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrIO, err)
	}
	return response, nil
}
