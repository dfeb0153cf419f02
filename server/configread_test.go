package server_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/hiCozyty/zmq-bridge/server"
	"github.com/hiCozyty/zmq-bridge/server/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	c, err := server.ReadConfig([]string{})
	assert.Nil(t, err, "error reading config")
	assert.Equal(t, "0.0.0.0", c.BindHost)
	assert.Equal(t, 8443, c.BindPort)
	assert.Equal(t, "/ws", c.WSPath)
	assert.Equal(t, "tcp://127.0.0.1:5555", c.Transport.Address)
	assert.Equal(t, time.Duration(0), c.Transport.Linger)
	assert.Equal(t, true, c.Transport.Immediate)
	assert.Equal(t, 1000, c.Transport.SendHWM)
	assert.Equal(t, 1000, c.Transport.RecvHWM)
	assert.Equal(t, 256, c.Session.SendBuffer)
	assert.Equal(t, 64, c.Session.RelayBuffer)
	assert.Equal(t, "", c.Prometheus.AccessToken)
}

func TestReadConfigFiles(t *testing.T) {
	var c server.Config
	err := server.ReadConfigFiles([]string{"config_example.yml"}, &c)
	assert.Nil(t, err, "Error should be nil")
	assert.Equal(t, "127.0.0.1", c.BindHost)
	assert.Equal(t, 9443, c.BindPort)
	assert.Equal(t, "/stream", c.WSPath)
	assert.Equal(t, "test.pem", c.TLS.Cert)
	assert.Equal(t, "test.key", c.TLS.Key)
	assert.Equal(t, server.TransportConfig{
		Address:        "tcp://10.0.0.5:5555",
		Linger:         100 * time.Millisecond,
		Immediate:      false,
		SendHWM:        500,
		RecvHWM:        2000,
		ConnectTimeout: 2 * time.Second,
		SendTimeout:    250 * time.Millisecond,
		ReplyTimeout:   3 * time.Second,
		PollInterval:   10 * time.Millisecond,
	}, c.Transport)
	assert.Equal(t, server.SessionConfig{
		SendBuffer:   32,
		RelayBuffer:  8,
		WriteTimeout: 2 * time.Second,
		PingInterval: 30 * time.Second,
		ReadLimit:    4096,
	}, c.Session)
	assert.Equal(t, "at1234", c.Prometheus.AccessToken)
}

func TestReadConfigFiles_Error(t *testing.T) {
	var c server.Config
	err := server.ReadConfigFiles([]string{"config_missing.yml"}, &c)
	require.NotNil(t, err, "error should be defined")
	assert.Regexp(t, "no such file", err.Error())
}

func TestReadYAML_error(t *testing.T) {
	yaml := "gfakjhglakjhlakdhgl"
	reader := strings.NewReader(yaml)
	var c server.Config
	err := server.ReadConfigYAML(reader, &c)
	require.NotNil(t, err, "err should be defined")
	assert.Regexp(t, "decode yaml", err.Error())
}

func TestReadYAML_unknownField(t *testing.T) {
	reader := strings.NewReader("transport:\n  adress: tcp://127.0.0.1:5555\n")
	var c server.Config
	err := server.ReadConfigYAML(reader, &c)
	require.NotNil(t, err, "err should be defined")
	assert.Regexp(t, "adress", err.Error())
}

func TestReadFromEnv(t *testing.T) {
	prefix := "ZMQBRIDGETEST_"
	test.ClearEnvPrefix(t, prefix)
	os.Setenv(prefix+"BIND_HOST", "127.0.0.1")
	os.Setenv(prefix+"BIND_PORT", "9443")
	os.Setenv(prefix+"WS_PATH", "/stream")
	os.Setenv(prefix+"TLS_CERT", "test.pem")
	os.Setenv(prefix+"TLS_KEY", "test.key")
	os.Setenv(prefix+"TRANSPORT_ADDRESS", "tcp://10.0.0.5:5555")
	os.Setenv(prefix+"TRANSPORT_LINGER", "100ms")
	os.Setenv(prefix+"TRANSPORT_IMMEDIATE", "false")
	os.Setenv(prefix+"TRANSPORT_SEND_HWM", "500")
	os.Setenv(prefix+"TRANSPORT_RECV_HWM", "2000")
	os.Setenv(prefix+"TRANSPORT_CONNECT_TIMEOUT", "2s")
	os.Setenv(prefix+"TRANSPORT_SEND_TIMEOUT", "250ms")
	os.Setenv(prefix+"TRANSPORT_REPLY_TIMEOUT", "3s")
	os.Setenv(prefix+"TRANSPORT_POLL_INTERVAL", "10ms")
	os.Setenv(prefix+"SESSION_SEND_BUFFER", "32")
	os.Setenv(prefix+"SESSION_RELAY_BUFFER", "8")
	os.Setenv(prefix+"SESSION_WRITE_TIMEOUT", "2s")
	os.Setenv(prefix+"SESSION_PING_INTERVAL", "30s")
	os.Setenv(prefix+"SESSION_READ_LIMIT", "4096")
	os.Setenv(prefix+"PROMETHEUS_ACCESS_TOKEN", "at1234")

	var c server.Config
	server.InitConfig(&c)
	server.ReadConfigFromEnv(prefix, &c)

	assert.Equal(t, "127.0.0.1", c.BindHost)
	assert.Equal(t, 9443, c.BindPort)
	assert.Equal(t, "/stream", c.WSPath)
	assert.Equal(t, "test.pem", c.TLS.Cert)
	assert.Equal(t, "test.key", c.TLS.Key)
	assert.Equal(t, "tcp://10.0.0.5:5555", c.Transport.Address)
	assert.Equal(t, 100*time.Millisecond, c.Transport.Linger)
	assert.Equal(t, false, c.Transport.Immediate)
	assert.Equal(t, 500, c.Transport.SendHWM)
	assert.Equal(t, 2000, c.Transport.RecvHWM)
	assert.Equal(t, 2*time.Second, c.Transport.ConnectTimeout)
	assert.Equal(t, 250*time.Millisecond, c.Transport.SendTimeout)
	assert.Equal(t, 3*time.Second, c.Transport.ReplyTimeout)
	assert.Equal(t, 10*time.Millisecond, c.Transport.PollInterval)
	assert.Equal(t, 32, c.Session.SendBuffer)
	assert.Equal(t, 8, c.Session.RelayBuffer)
	assert.Equal(t, 2*time.Second, c.Session.WriteTimeout)
	assert.Equal(t, 30*time.Second, c.Session.PingInterval)
	assert.Equal(t, int64(4096), c.Session.ReadLimit)
	assert.Equal(t, "at1234", c.Prometheus.AccessToken)

	t.Run("invalid values keep previous", func(t *testing.T) {
		test.ClearEnvPrefix(t, prefix)

		os.Setenv(prefix+"BIND_PORT", "not-a-port")
		os.Setenv(prefix+"TRANSPORT_REPLY_TIMEOUT", "soon")
		os.Setenv(prefix+"TRANSPORT_IMMEDIATE", "yes")

		var c server.Config
		server.InitConfig(&c)
		server.ReadConfigFromEnv(prefix, &c)

		assert.Equal(t, 8443, c.BindPort)
		assert.Equal(t, 5*time.Second, c.Transport.ReplyTimeout)
		assert.Equal(t, true, c.Transport.Immediate)
	})
}
