// Package server implements vigil's preview server: a minimal GET-only
// HTTP/1.1 static file server over a raw TCP listener.
//
// The server deliberately stays below net/http: it parses only the request
// line, answers exactly one request per connection, and always closes. It
// shares nothing with the watch loop beyond the document root on disk.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/conneroisu/vigil/internal/config"
	"github.com/conneroisu/vigil/internal/logging"
	"golang.org/x/net/netutil"
)

// maxRequestBytes bounds how much of a request the server reads before
// parsing the request line.
const maxRequestBytes = 4096

// connTimeout is the per-connection read/write deadline. Well-formed clients
// never notice it.
const connTimeout = 10 * time.Second

// RequestLine is the only part of an inbound request the server inspects
type RequestLine struct {
	Method string
	Path   string
}

// StaticServer serves files from a document root
type StaticServer struct {
	host     string
	port     int
	root     string
	maxConns int
	logger   logging.Logger

	listener net.Listener
	ready    chan struct{}
	mutex    sync.RWMutex
}

// New creates a static file server from the server configuration
func New(cfg config.ServerConfig, logger logging.Logger) *StaticServer {
	if logger == nil {
		logger = logging.NewLogger(nil)
	}
	return &StaticServer{
		host:     cfg.Host,
		port:     cfg.Port,
		root:     cfg.Root,
		maxConns: cfg.MaxConns,
		logger:   logger.WithComponent("server"),
		ready:    make(chan struct{}),
	}
}

// Ready returns a channel that is closed once the listener is bound and
// accepting connections. It is never closed when the bind fails.
func (s *StaticServer) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the listener's address, or "" before Run has bound it. Useful
// when the configured port is 0.
func (s *StaticServer) Addr() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run binds the listener and accepts connections until the context is
// cancelled. A bind failure is the one fatal startup condition: without the
// port the server cannot run at all, so the error is returned immediately.
// Each accepted connection is handled in its own goroutine; connections share
// no mutable state with each other.
func (s *StaticServer) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.host, fmt.Sprintf("%d", s.port))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	listener = netutil.LimitListener(listener, s.maxConns)

	s.mutex.Lock()
	s.listener = listener
	s.mutex.Unlock()
	close(s.ready)

	s.logger.Info(ctx, "serving", "addr", listener.Addr().String(), "root", s.root)

	// Unblock Accept on cancellation.
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.logger.Info(ctx, "server stopped")
				return nil
			}
			s.logger.Warn(ctx, err, "accept failed")
			continue
		}
		go s.handleConn(ctx, conn)
	}
}

// handleConn answers exactly one request and closes. Malformed requests and
// read errors close the connection without a response.
func (s *StaticServer) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(connTimeout))

	buf := make([]byte, maxRequestBytes)
	n, err := conn.Read(buf)
	if err != nil && n == 0 {
		return
	}

	request, ok := parseRequestLine(buf[:n])
	if !ok {
		return
	}

	status, contentType, body := s.route(request)
	if status >= 500 {
		s.logger.Error(ctx, nil, "request failed",
			"method", request.Method, "path", request.Path, "status", status)
	} else {
		s.logger.Debug(ctx, "request",
			"method", request.Method, "path", request.Path, "status", status)
	}

	writeResponse(conn, status, contentType, body)
}

// parseRequestLine extracts METHOD and path from the first line of a request
func parseRequestLine(raw []byte) (RequestLine, bool) {
	line := string(raw)
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return RequestLine{}, false
	}
	return RequestLine{Method: fields[0], Path: fields[1]}, true
}

// route resolves a request to a status, content type, and body
func (s *StaticServer) route(request RequestLine) (int, string, []byte) {
	if request.Method != "GET" {
		return 405, "text/plain", []byte("405 Method Not Allowed")
	}

	path := request.Path
	if path == "/" {
		path = "/index.html"
	}

	filePath, ok := s.resolve(path)
	if !ok {
		return 404, "text/plain", []byte("404 Not Found")
	}

	// Pretty URL: /about serves /about.html when /about itself is absent.
	if !fileExists(filePath) {
		if strings.HasSuffix(path, ".html") {
			return 404, "text/plain", []byte("404 Not Found")
		}
		fallback, ok := s.resolve(path + ".html")
		if !ok || !fileExists(fallback) {
			return 404, "text/plain", []byte("404 Not Found")
		}
		filePath = fallback
	}

	body, err := os.ReadFile(filePath)
	if err != nil {
		return 500, "text/plain", []byte("500 Internal Server Error")
	}

	return 200, ResolveContentType(filePath), body
}

// resolve joins the request path onto the document root and rejects any path
// that escapes it. Escape attempts are answered as 404, indistinguishable
// from files that do not exist.
func (s *StaticServer) resolve(path string) (string, bool) {
	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return "", false
	}

	filePath := filepath.Join(rootAbs, filepath.FromSlash(path))
	if filePath != rootAbs && !strings.HasPrefix(filePath, rootAbs+string(filepath.Separator)) {
		return "", false
	}
	return filePath, true
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

var statusText = map[int]string{
	200: "OK",
	404: "Not Found",
	405: "Method Not Allowed",
	500: "Internal Server Error",
}

// writeResponse writes one complete HTTP/1.1 response and leaves the
// connection to be closed by the caller. Every response carries
// Connection: close; the server never reuses a connection.
func writeResponse(conn net.Conn, status int, contentType string, body []byte) {
	fmt.Fprintf(conn, "HTTP/1.1 %d %s\r\nContent-Type: %s\r\nContent-Length: %d\r\nConnection: close\r\n\r\n",
		status, statusText[status], contentType, len(body))
	conn.Write(body)
}
