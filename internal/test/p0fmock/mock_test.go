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

package p0fmock_test

import (
	"io"
	"net"
	"net/netip"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/blinklabs-io/gop0f/internal/test"
	"github.com/blinklabs-io/gop0f/internal/test/p0fmock"
	"github.com/blinklabs-io/gop0f/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func query(t *testing.T, conn net.Conn, addr netip.Addr) (*protocol.Response, error) {
	t.Helper()
	request, err := protocol.EncodeRequest(addr)
	require.NoError(t, err)
	_, err = conn.Write(request)
	require.NoError(t, err)
	buf := make([]byte, protocol.ResponseSize)
	_, err = io.ReadFull(conn, buf)
	require.NoError(t, err)
	return protocol.DecodeResponse(buf)
}

// Basic test of conversation mock functionality
func TestBasic(t *testing.T) {
	defer goleak.VerifyNone(t)
	addr := netip.MustParseAddr("192.0.2.10")
	expected := test.NewResponse()
	mockConn := p0fmock.NewConnection(
		[]p0fmock.ConversationEntry{
			p0fmock.NewConversationEntryInput(addr),
			p0fmock.NewConversationEntryResponse(expected),
			p0fmock.ConversationEntryInputAny,
			p0fmock.ConversationEntryNoMatch,
		},
	)
	resp, err := query(t, mockConn, addr)
	require.NoError(t, err)
	assert.Equal(t, expected, resp)
	resp, err = query(t, mockConn, netip.MustParseAddr("2001:db8::1"))
	require.NoError(t, err)
	assert.Nil(t, resp)
	// The conversation is complete, so the error channel closes without an error
	err, ok := <-mockConn.(*p0fmock.Connection).ErrorChan()
	assert.False(t, ok)
	assert.NoError(t, err)
	require.NoError(t, mockConn.Close())
}

func TestAddressMismatch(t *testing.T) {
	defer goleak.VerifyNone(t)
	mockConn := p0fmock.NewConnection(
		[]p0fmock.ConversationEntry{
			p0fmock.NewConversationEntryInput(netip.MustParseAddr("192.0.2.10")),
			p0fmock.ConversationEntryNoMatch,
		},
	)
	request, err := protocol.EncodeRequest(netip.MustParseAddr("192.0.2.11"))
	require.NoError(t, err)
	_, err = mockConn.Write(request)
	require.NoError(t, err)
	err = <-mockConn.(*p0fmock.Connection).ErrorChan()
	assert.ErrorContains(t, err, "did not match")
	require.NoError(t, mockConn.Close())
}

func TestCloseEntry(t *testing.T) {
	defer goleak.VerifyNone(t)
	mockConn := p0fmock.NewConnection(
		[]p0fmock.ConversationEntry{
			p0fmock.ConversationEntryInputAny,
			p0fmock.ConversationEntryClose,
		},
	)
	request, err := protocol.EncodeRequest(netip.MustParseAddr("192.0.2.10"))
	require.NoError(t, err)
	_, err = mockConn.Write(request)
	require.NoError(t, err)
	_, err = mockConn.Read(make([]byte, protocol.ResponseSize))
	assert.Error(t, err)
}

func TestDaemon(t *testing.T) {
	defer goleak.VerifyNone(t)
	listener, err := net.Listen("unix", filepath.Join(t.TempDir(), "p0f.sock"))
	require.NoError(t, err)
	known := netip.MustParseAddr("192.0.2.10")
	expected := test.NewResponse()
	daemon := p0fmock.NewDaemon(
		listener,
		map[netip.Addr]*protocol.Response{known: expected},
	)
	defer daemon.Close()
	conn, err := net.Dial("unix", daemon.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	resp, err := query(t, conn, known)
	require.NoError(t, err)
	assert.Equal(t, expected, resp)
	// An IPv4-mapped address is a different host to the daemon
	resp, err = query(t, conn, netip.MustParseAddr("::ffff:192.0.2.10"))
	require.NoError(t, err)
	assert.Nil(t, resp)
	resp, err = query(t, conn, netip.MustParseAddr("192.0.2.99"))
	require.NoError(t, err)
	assert.Nil(t, resp)
	// A request with the wrong magic gets a "bad query" answer
	_, err = conn.Write(make([]byte, protocol.RequestSize))
	require.NoError(t, err)
	buf := make([]byte, protocol.ResponseSize)
	_, err = io.ReadFull(conn, buf)
	require.NoError(t, err)
	_, err = protocol.DecodeResponse(buf)
	assert.ErrorIs(t, err, protocol.ErrBadQuery)
	assert.Equal(t, 4, daemon.Queries())
}

// lateListener hands out a single connection only after it has been closed
type lateListener struct {
	closing   chan struct{}
	onceClose sync.Once
	accepted  bool
	client    net.Conn
}

func (l *lateListener) Accept() (net.Conn, error) {
	<-l.closing
	if l.accepted {
		return nil, net.ErrClosed
	}
	l.accepted = true
	// Give Close time to walk the connection list first
	time.Sleep(20 * time.Millisecond)
	server, client := net.Pipe()
	l.client = client
	return server, nil
}

func (l *lateListener) Close() error {
	l.onceClose.Do(func() { close(l.closing) })
	return nil
}

func (l *lateListener) Addr() net.Addr {
	return &net.UnixAddr{Name: "late", Net: "unix"}
}

func TestDaemonCloseWithLateConnection(t *testing.T) {
	defer goleak.VerifyNone(t)
	listener := &lateListener{closing: make(chan struct{})}
	daemon := p0fmock.NewDaemon(listener, nil)
	done := make(chan error, 1)
	go func() {
		done <- daemon.Close()
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for daemon to close")
	}
	// The late connection was dropped by the daemon
	require.NotNil(t, listener.client)
	_, err := listener.client.Read(make([]byte, 1))
	assert.Error(t, err)
	require.NoError(t, listener.client.Close())
}
