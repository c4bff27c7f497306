package main

import (
	"io"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return strconv.Itoa(port)
}

func TestServeMetrics(t *testing.T) {
	port := freePort(t)
	url := "http://127.0.0.1:" + port + "/metrics"
	stop := serveMetrics(port)

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil || resp.StatusCode != http.StatusOK {
			return false
		}
		body = string(b)
		return true
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, body, "inventory_dispatch_in_flight")

	stop()
	_, err := http.Get(url)
	assert.Error(t, err)
}

func TestRun_MetricsPort(t *testing.T) {
	c, _ := newCLI(t)

	code, out, errOut := c.run("-metrics-port", freePort(t), "health")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "is up")

	for _, port := range []string{"abc", "0", "70000"} {
		code, _, errOut = c.run("-metrics-port", port, "health")
		assert.Equal(t, exitUsage, code, port)
		assert.Contains(t, errOut, "invalid metrics port")
	}
}
