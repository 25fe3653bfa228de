package server

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/vigil/internal/config"
)

// startServer binds a test server on an ephemeral port and returns its
// address. The server stops when the test ends.
func startServer(t *testing.T, root string) string {
	t.Helper()

	srv := New(config.ServerConfig{
		Host:     "127.0.0.1",
		Port:     0,
		Root:     root,
		MaxConns: 16,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	select {
	case <-srv.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("server never bound")
	}
	return srv.Addr()
}

// response holds the parsed pieces of one raw HTTP exchange
type response struct {
	status  int
	headers map[string]string
	body    string
}

func roundTrip(t *testing.T, addr, raw string) response {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte(raw))
	require.NoError(t, err)

	reader := bufio.NewReader(conn)
	statusLine, err := reader.ReadString('\n')
	require.NoError(t, err)

	var proto string
	var status int
	_, err = fmt.Sscanf(statusLine, "%s %d", &proto, &status)
	require.NoError(t, err, "bad status line %q", statusLine)
	require.Equal(t, "HTTP/1.1", proto)

	headers := make(map[string]string)
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		key, value, ok := strings.Cut(line, ": ")
		require.True(t, ok, "bad header line %q", line)
		headers[key] = value
	}

	body, err := io.ReadAll(reader)
	require.NoError(t, err)

	return response{status: status, headers: headers, body: string(body)}
}

func get(t *testing.T, addr, path string) response {
	return roundTrip(t, addr, "GET "+path+" HTTP/1.1\r\nHost: test\r\n\r\n")
}

func docRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"index.html":   "<html>home</html>",
		"about.html":   "<html>about</html>",
		"css/site.css": "body { margin: 0 }",
		"data.json":    `{"ok":true}`,
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func TestServeFile(t *testing.T) {
	addr := startServer(t, docRoot(t))

	resp := get(t, addr, "/index.html")

	assert.Equal(t, 200, resp.status)
	assert.Equal(t, "text/html", resp.headers["Content-Type"])
	assert.Equal(t, "close", resp.headers["Connection"])
	assert.Equal(t, fmt.Sprint(len(resp.body)), resp.headers["Content-Length"])
	assert.Equal(t, "<html>home</html>", resp.body)
}

func TestRootRewritesToIndex(t *testing.T) {
	addr := startServer(t, docRoot(t))

	resp := get(t, addr, "/")

	assert.Equal(t, 200, resp.status)
	assert.Equal(t, "<html>home</html>", resp.body)
}

func TestPrettyURLFallback(t *testing.T) {
	addr := startServer(t, docRoot(t))

	pretty := get(t, addr, "/about")
	direct := get(t, addr, "/about.html")

	assert.Equal(t, 200, pretty.status)
	assert.Equal(t, 200, direct.status)
	assert.Equal(t, direct.body, pretty.body)
	assert.Equal(t, "text/html", pretty.headers["Content-Type"])
}

func TestContentTypes(t *testing.T) {
	addr := startServer(t, docRoot(t))

	css := get(t, addr, "/css/site.css")
	assert.Equal(t, 200, css.status)
	assert.Equal(t, "text/css", css.headers["Content-Type"])

	jsonResp := get(t, addr, "/data.json")
	assert.Equal(t, 200, jsonResp.status)
	assert.Equal(t, "application/json", jsonResp.headers["Content-Type"])
}

func TestMissingFile(t *testing.T) {
	addr := startServer(t, docRoot(t))

	resp := get(t, addr, "/nope.xyz")

	assert.Equal(t, 404, resp.status)
	assert.Equal(t, "text/plain", resp.headers["Content-Type"])
}

func TestMissingHTMLGetsNoDoubleSuffix(t *testing.T) {
	addr := startServer(t, docRoot(t))

	// /missing.html must not fall back to /missing.html.html.
	resp := get(t, addr, "/missing.html")
	assert.Equal(t, 404, resp.status)
}

func TestUnreadableFileAnswersServerError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses file permissions")
	}

	root := docRoot(t)
	locked := filepath.Join(root, "locked.html")
	require.NoError(t, os.WriteFile(locked, []byte("<html>locked</html>"), 0644))
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { os.Chmod(locked, 0644) })

	addr := startServer(t, root)

	// The file stats fine but cannot be read, which is the read-error
	// path between the existence check and serving.
	resp := get(t, addr, "/locked.html")
	assert.Equal(t, 500, resp.status)
	assert.Equal(t, "text/plain", resp.headers["Content-Type"])
	assert.Equal(t, "close", resp.headers["Connection"])
	assert.NotContains(t, resp.body, "locked</html>")
}

func TestMethodNotAllowed(t *testing.T) {
	addr := startServer(t, docRoot(t))

	for _, method := range []string{"POST", "PUT", "DELETE", "HEAD"} {
		resp := roundTrip(t, addr, method+" / HTTP/1.1\r\nHost: test\r\n\r\n")
		assert.Equal(t, 405, resp.status, "method %s", method)
		assert.Equal(t, "close", resp.headers["Connection"])
	}
}

func TestTraversalAnswersNotFound(t *testing.T) {
	root := docRoot(t)
	secret := filepath.Join(filepath.Dir(root), "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("secret"), 0644))
	t.Cleanup(func() { os.Remove(secret) })

	addr := startServer(t, root)

	for _, path := range []string{
		"/../secret.txt",
		"/a/../../secret.txt",
		"/../../../../etc/passwd",
	} {
		resp := get(t, addr, path)
		assert.Equal(t, 404, resp.status, "path %s", path)
		assert.NotContains(t, resp.body, "secret")
	}
}

func TestMalformedRequestClosesSilently(t *testing.T) {
	addr := startServer(t, docRoot(t))

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("GARBAGE\r\n\r\n"))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	data, _ := io.ReadAll(conn)
	assert.Empty(t, data, "malformed request must get no response")
}

func TestConnectionClosesAfterResponse(t *testing.T) {
	addr := startServer(t, docRoot(t))

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("GET /index.html HTTP/1.1\r\nHost: test\r\n\r\n"))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, err = io.ReadAll(conn)
	assert.NoError(t, err, "server should close the connection cleanly")
}

func TestConcurrentConnections(t *testing.T) {
	addr := startServer(t, docRoot(t))

	results := make(chan int, 10)
	for i := 0; i < 10; i++ {
		go func() {
			resp := get(t, addr, "/index.html")
			results <- resp.status
		}()
	}

	for i := 0; i < 10; i++ {
		select {
		case status := <-results:
			assert.Equal(t, 200, status)
		case <-time.After(10 * time.Second):
			t.Fatal("concurrent request timed out")
		}
	}
}

func TestBindFailureIsFatal(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	port := listener.Addr().(*net.TCPAddr).Port
	srv := New(config.ServerConfig{Host: "127.0.0.1", Port: port, Root: t.TempDir(), MaxConns: 1}, nil)

	err = srv.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to bind")

	select {
	case <-srv.Ready():
		t.Fatal("ready must not be signaled when the bind fails")
	default:
	}
}

func TestReadySignaledAfterBind(t *testing.T) {
	srv := New(config.ServerConfig{Host: "127.0.0.1", Port: 0, Root: t.TempDir(), MaxConns: 1}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	select {
	case <-srv.Ready():
		assert.NotEmpty(t, srv.Addr())
	case <-time.After(5 * time.Second):
		t.Fatal("ready was never signaled")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestParseRequestLine(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected RequestLine
		ok       bool
	}{
		{"full request line", "GET /index.html HTTP/1.1\r\nHost: x\r\n\r\n", RequestLine{"GET", "/index.html"}, true},
		{"no protocol token", "GET /\r\n", RequestLine{"GET", "/"}, true},
		{"bare newline", "POST /form\nrest", RequestLine{"POST", "/form"}, true},
		{"single token", "GARBAGE\r\n", RequestLine{}, false},
		{"empty", "", RequestLine{}, false},
		{"whitespace only", "   \r\n", RequestLine{}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			request, ok := parseRequestLine([]byte(tc.raw))
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, request)
			}
		})
	}
}
