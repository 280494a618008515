package gobolt

import (
	"context"
	"net"
	"strconv"
	"testing"

	"github.com/cleishm/gobolt/arena"
	"github.com/cleishm/gobolt/internal/chunking"
)

func TestHandshakeAgreesOnSupportedVersion(t *testing.T) {
	client, server := newTestConnPair(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		var proposal [16]byte
		if _, err := readFull(server, proposal[:]); err != nil {
			t.Errorf("server read proposal: %v", err)
			return
		}
		want := handshakeProposal()
		if proposal != want {
			t.Errorf("proposal = % X, want % X", proposal, want)
		}
		if _, err := server.Write(proposal[0:4]); err != nil {
			t.Errorf("server write chosen version: %v", err)
		}
	}()

	v, err := handshake(client)
	if err != nil {
		t.Fatalf("handshake: %v", err)
	}
	if v.String() != "1.0" {
		t.Fatalf("negotiated version = %v, want 1.0", v)
	}
	<-done
}

func TestHandshakeRejectsUnsupportedVersion(t *testing.T) {
	client, server := newTestConnPair(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		var proposal [16]byte
		_, _ = readFull(server, proposal[:])
		_, _ = server.Write([]byte{0x00, 0x00, 0x00, 0x09})
	}()

	if _, err := handshake(client); err == nil {
		t.Fatalf("expected an error for an unsupported negotiated version")
	}
	<-done
}

func TestHandshakeRejectsNullVersion(t *testing.T) {
	client, server := newTestConnPair(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		var proposal [16]byte
		_, _ = readFull(server, proposal[:])
		_, _ = server.Write([]byte{0x00, 0x00, 0x00, 0x00})
	}()

	if _, err := handshake(client); err == nil {
		t.Fatalf("expected an error when the server rejects every candidate")
	}
	<-done
}

// listenForOneDial starts a loopback listener and returns the parsed
// Target to dial it plus the accepted server-side net.Conn, handed
// over a channel once Dial connects.
func listenForOneDial(t *testing.T) (*Target, <-chan net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("SplitHostPort: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("Atoi: %v", err)
	}

	serverCh := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			t.Errorf("Accept: %v", err)
			serverCh <- nil
			return
		}
		serverCh <- conn
	}()
	return &Target{Host: host, Port: port}, serverCh
}

// serveHandshakeAndInit plays the server side of Dial: negotiate
// version 1.0, reply to INIT with either success or failure, then (on
// success) honor the RESET the deferred Connection.Close sends.
func serveHandshakeAndInit(t *testing.T, conn net.Conn, initOK bool) {
	t.Helper()
	var proposal [16]byte
	if _, err := readFull(conn, proposal[:]); err != nil {
		t.Errorf("server read handshake: %v", err)
		return
	}
	if _, err := conn.Write(proposal[0:4]); err != nil {
		t.Errorf("server write chosen version: %v", err)
		return
	}

	srv := &scriptedServer{
		t:    t,
		w:    chunking.NewWriter(conn),
		r:    chunking.NewReader(conn),
		pool: arena.NewPool(0),
	}

	tag, _ := srv.recv()
	if tag.String() != "INIT" {
		t.Errorf("tag = %v, want INIT", tag)
		return
	}
	if !initOK {
		srv.failure("Neo.ClientError.Security.Unauthorized", "bad credentials")
		return
	}
	srv.success(nil)

	tag, _ = srv.recv()
	if tag.String() != "RESET" {
		t.Errorf("tag = %v, want RESET (from the deferred Close)", tag)
		return
	}
	srv.success(nil)
}

func TestDialSucceedsAndInitializesSession(t *testing.T) {
	target, serverCh := listenForOneDial(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn := <-serverCh
		if conn == nil {
			return
		}
		defer conn.Close()
		serveHandshakeAndInit(t, conn, true)
	}()

	conn, err := Dial(context.Background(), target, WithBasicAuth("neo4j", "secret"))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if conn.IsDefunct() {
		t.Fatalf("freshly dialed connection should not be defunct")
	}
	// Close synchronously, before waiting on done: it sends the RESET
	// the server script above expects, so waiting first would deadlock.
	if err := conn.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	<-done
}

func TestDialInitFailureReportsInvalidCredentials(t *testing.T) {
	target, serverCh := listenForOneDial(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn := <-serverCh
		if conn == nil {
			return
		}
		defer conn.Close()
		serveHandshakeAndInit(t, conn, false)
	}()

	_, err := Dial(context.Background(), target, WithBasicAuth("neo4j", "wrong"))
	if !IsKind(err, KindInvalidCredentials) {
		t.Fatalf("err kind = %v, want InvalidCredentials", KindOf(err))
	}
	<-done
}
