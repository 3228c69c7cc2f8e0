package server_test

import (
	"encoding/json"
	"net"
	"net/http/httptest"
	"testing"
	"time"

	"tinyflow/core/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtilsApp(t *testing.T) {
	app := server.NewUtilsApp("1.2.3")

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var h server.Health
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&h))
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, "1.2.3", h.Version)

	resp, err = app.Test(httptest.NewRequest("GET", "/version", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestPing(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	app := server.NewUtilsApp("dev")
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	h, err := server.Ping("http://"+ln.Addr().String(), 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, "dev", h.Version)
}

func TestPing_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = server.Ping("http://"+addr, 500*time.Millisecond)
	assert.Error(t, err)
}
