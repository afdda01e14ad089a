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
	"io"
	"net"
	"net/netip"
	"sync"

	"github.com/blinklabs-io/gop0f/protocol"
)

// Daemon answers queries on a listener from a fixed table of host profiles. Addresses
// that are not in the table get a "no match" response and malformed requests get a
// "bad query" response
type Daemon struct {
	listener  net.Listener
	responses map[netip.Addr]*protocol.Response
	mutex     sync.Mutex
	conns     map[net.Conn]struct{}
	waitGroup sync.WaitGroup
	onceClose sync.Once
	closed    bool
	queries   int
}

// NewDaemon starts serving the provided responses on the listener
func NewDaemon(listener net.Listener, responses map[netip.Addr]*protocol.Response) *Daemon {
	d := &Daemon{
		listener:  listener,
		responses: make(map[netip.Addr]*protocol.Response, len(responses)),
		conns:     make(map[net.Conn]struct{}),
	}
	for addr, resp := range responses {
		d.responses[addr] = resp
	}
	d.waitGroup.Add(1)
	go d.acceptLoop()
	return d
}

// Addr returns the listener's address
func (d *Daemon) Addr() net.Addr {
	return d.listener.Addr()
}

// Queries returns the number of requests answered so far
func (d *Daemon) Queries() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.queries
}

// Close stops the listener, drops any open connections, and waits for all handlers to exit
func (d *Daemon) Close() error {
	var err error
	d.onceClose.Do(func() {
		err = d.listener.Close()
		d.mutex.Lock()
		d.closed = true
		for conn := range d.conns {
			_ = conn.Close()
		}
		d.mutex.Unlock()
		d.waitGroup.Wait()
	})
	return err
}

func (d *Daemon) acceptLoop() {
	defer d.waitGroup.Done()
	for {
		conn, err := d.listener.Accept()
		if err != nil {
			return
		}
		d.mutex.Lock()
		// Close may have already walked the connection list
		if d.closed {
			d.mutex.Unlock()
			_ = conn.Close()
			return
		}
		d.conns[conn] = struct{}{}
		d.waitGroup.Add(1)
		d.mutex.Unlock()
		go d.handleConnection(conn)
	}
}

func (d *Daemon) handleConnection(conn net.Conn) {
	defer d.waitGroup.Done()
	defer func() {
		d.mutex.Lock()
		delete(d.conns, conn)
		d.mutex.Unlock()
		_ = conn.Close()
	}()
	buf := make([]byte, protocol.RequestSize)
	for {
		if _, err := io.ReadFull(conn, buf); err != nil {
			return
		}
		data, err := d.answer(buf)
		if err != nil {
			return
		}
		if _, err := conn.Write(data); err != nil {
			return
		}
	}
}

func (d *Daemon) answer(request []byte) ([]byte, error) {
	d.mutex.Lock()
	d.queries++
	d.mutex.Unlock()
	addr, err := protocol.DecodeRequest(request)
	if err != nil {
		return protocol.EncodeResponse(protocol.StatusBadQuery, nil)
	}
	resp, ok := d.responses[addr]
	if !ok {
		return protocol.EncodeResponse(protocol.StatusNoMatch, nil)
	}
	return protocol.EncodeResponse(protocol.StatusOk, resp)
}
