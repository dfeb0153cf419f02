package main

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/hiCozyty/zmq-bridge/server/test"
	zmq "github.com/pebbe/zmq4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

const prefix = "ZMQBRIDGE_"

func freePort(t *testing.T) int {
	t.Helper()

	l, err := net.ListenTCP("tcp", &net.TCPAddr{
		IP:   net.ParseIP("127.0.0.1"),
		Port: 0,
	})
	require.NoError(t, err, "listener")

	port := l.Addr().(*net.TCPAddr).Port
	l.Close()

	return port
}

func newPeer(t *testing.T) (*zmq.Socket, string) {
	t.Helper()

	peer, err := zmq.NewSocket(zmq.PAIR)
	require.NoError(t, err)

	require.NoError(t, peer.SetLinger(0))
	require.NoError(t, peer.SetRcvtimeo(5*time.Second))
	require.NoError(t, peer.Bind("tcp://127.0.0.1:*"))

	endpoint, err := peer.GetLastEndpoint()
	require.NoError(t, err)

	return peer, endpoint
}

func setTLSEnv(t *testing.T) {
	t.Helper()

	certFile, keyFile := test.WriteSelfSignedCert(t, t.TempDir())
	os.Setenv(prefix+"TLS_CERT", certFile)
	os.Setenv(prefix+"TLS_KEY", keyFile)
}

func TestStartMissingConfig(t *testing.T) {
	test.ClearEnvPrefix(t, prefix)
	os.Setenv(prefix+"BIND_PORT", "0")
	log := test.NewLogger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := start(ctx, log, []string{"-c", "/missing/file.yml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestStartMissingTLS(t *testing.T) {
	test.ClearEnvPrefix(t, prefix)
	os.Setenv(prefix+"BIND_PORT", "0")
	log := test.NewLogger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := start(ctx, log, []string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load tls")
}

func TestStartUnreachableTransport(t *testing.T) {
	test.ClearEnvPrefix(t, prefix)
	setTLSEnv(t)

	port := freePort(t)

	os.Setenv(prefix+"BIND_HOST", "127.0.0.1")
	os.Setenv(prefix+"BIND_PORT", strconv.Itoa(port))
	os.Setenv(prefix+"TRANSPORT_ADDRESS", "tcp://127.0.0.1:1")
	os.Setenv(prefix+"TRANSPORT_CONNECT_TIMEOUT", "200ms")
	log := test.NewLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := start(ctx, log, []string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial transport")

	// Nothing is listening on the websocket port.
	_, err = net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), time.Second)
	assert.Error(t, err)
}

func TestStartWrongPort(t *testing.T) {
	test.ClearEnvPrefix(t, prefix)
	setTLSEnv(t)

	peer, endpoint := newPeer(t)
	defer peer.Close()

	os.Setenv(prefix+"BIND_PORT", "100000")
	os.Setenv(prefix+"TRANSPORT_ADDRESS", endpoint)
	log := test.NewLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := start(ctx, log, []string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
}

func TestStart(t *testing.T) {
	test.ClearEnvPrefix(t, prefix)
	setTLSEnv(t)

	peer, endpoint := newPeer(t)
	defer peer.Close()

	port := freePort(t)
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))

	os.Setenv(prefix+"BIND_HOST", "127.0.0.1")
	os.Setenv(prefix+"BIND_PORT", strconv.Itoa(port))
	os.Setenv(prefix+"TRANSPORT_ADDRESS", endpoint)
	log := test.NewLogger()

	timeoutCtx, cancelTimeout := context.WithTimeout(context.Background(), 10*time.Second)
	ctx, cancel := context.WithCancel(timeoutCtx)

	defer cancelTimeout()
	defer cancel()

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		err := start(ctx, log, []string{})
		errCh <- err
	}()

	client := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	defer client.CloseIdleConnections()

	var (
		r   *http.Response
		err error
	)

	// Keep trying until the server finally starts.
	for i := 0; i < 100; i++ {
		r, err = client.Get("https://" + addr + "/probes/liveness")

		if err != nil {
			time.Sleep(20 * time.Millisecond)

			continue
		}

		r.Body.Close()

		break
	}

	require.NoError(t, err)
	assert.Equal(t, 200, r.StatusCode)

	ws, _, err := websocket.Dial(timeoutCtx, "wss://"+addr+"/ws", &websocket.DialOptions{
		HTTPClient: client,
	})
	require.NoError(t, err, "dial websocket")

	defer ws.Close(websocket.StatusNormalClosure, "")

	require.NoError(t, ws.Write(timeoutCtx, websocket.MessageText, []byte("subscribe:ETHUSDT")))

	request, err := peer.Recv(0)
	require.NoError(t, err)
	assert.Equal(t, "subscribe:ETHUSDT", request)

	_, err = peer.Send("ok", 0)
	require.NoError(t, err)

	_, err = peer.Send("tick:ETHUSDT:3000", 0)
	require.NoError(t, err)

	// The reply stays on the server, clients only see the tick.
	typ, data, err := ws.Read(timeoutCtx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageText, typ)
	assert.Equal(t, "tick:ETHUSDT:3000", string(data))

	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-timeoutCtx.Done():
		require.Fail(t, "timed out")
	}
}
