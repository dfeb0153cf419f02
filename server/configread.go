package server

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/juju/errors"
	"gopkg.in/yaml.v2"
)

func ReadConfigFile(filename string, c *Config) (err error) {
	f, err := os.Open(filename)
	if err != nil {
		return errors.Annotatef(err, "read config file: %s", filename)
	}

	defer f.Close()

	err = ReadConfigYAML(f, c)

	return errors.Annotatef(err, "read yaml config: %s", filename)
}

func ReadConfigFiles(filenames []string, c *Config) (err error) {
	for _, filename := range filenames {
		err = ReadConfigFile(filename, c)
		if err != nil {
			return errors.Trace(err)
		}
	}

	return nil
}

func InitConfig(c *Config) {
	c.BindHost = "0.0.0.0"
	c.BindPort = 8443
	c.WSPath = "/ws"

	c.Transport.Address = "tcp://127.0.0.1:5555"
	c.Transport.Linger = 0
	c.Transport.Immediate = true
	c.Transport.SendHWM = 1000
	c.Transport.RecvHWM = 1000
	c.Transport.ConnectTimeout = 5 * time.Second
	c.Transport.SendTimeout = time.Second
	c.Transport.ReplyTimeout = 5 * time.Second
	c.Transport.PollInterval = 20 * time.Millisecond

	c.Session.SendBuffer = 256
	c.Session.RelayBuffer = 64
	c.Session.WriteTimeout = 5 * time.Second
	c.Session.PingInterval = 15 * time.Second
	c.Session.ReadLimit = 64 * 1024
}

func ReadConfig(filenames []string) (c Config, err error) {
	InitConfig(&c)
	err = ReadConfigFiles(filenames, &c)
	ReadConfigFromEnv("ZMQBRIDGE_", &c)

	return c, errors.Trace(err)
}

func ReadConfigYAML(reader io.Reader, c *Config) error {
	decoder := yaml.NewDecoder(reader)
	decoder.SetStrict(true)

	if err := decoder.Decode(c); err != nil {
		return errors.Annotatef(err, "decode yaml")
	}

	return nil
}

func ReadConfigFromEnv(prefix string, c *Config) {
	setEnvString(&c.BindHost, prefix+"BIND_HOST")
	setEnvInt(&c.BindPort, prefix+"BIND_PORT")
	setEnvString(&c.WSPath, prefix+"WS_PATH")
	setEnvString(&c.TLS.Cert, prefix+"TLS_CERT")
	setEnvString(&c.TLS.Key, prefix+"TLS_KEY")

	setEnvString(&c.Transport.Address, prefix+"TRANSPORT_ADDRESS")
	setEnvDuration(&c.Transport.Linger, prefix+"TRANSPORT_LINGER")
	setEnvBool(&c.Transport.Immediate, prefix+"TRANSPORT_IMMEDIATE")
	setEnvInt(&c.Transport.SendHWM, prefix+"TRANSPORT_SEND_HWM")
	setEnvInt(&c.Transport.RecvHWM, prefix+"TRANSPORT_RECV_HWM")
	setEnvDuration(&c.Transport.ConnectTimeout, prefix+"TRANSPORT_CONNECT_TIMEOUT")
	setEnvDuration(&c.Transport.SendTimeout, prefix+"TRANSPORT_SEND_TIMEOUT")
	setEnvDuration(&c.Transport.ReplyTimeout, prefix+"TRANSPORT_REPLY_TIMEOUT")
	setEnvDuration(&c.Transport.PollInterval, prefix+"TRANSPORT_POLL_INTERVAL")

	setEnvInt(&c.Session.SendBuffer, prefix+"SESSION_SEND_BUFFER")
	setEnvInt(&c.Session.RelayBuffer, prefix+"SESSION_RELAY_BUFFER")
	setEnvDuration(&c.Session.WriteTimeout, prefix+"SESSION_WRITE_TIMEOUT")
	setEnvDuration(&c.Session.PingInterval, prefix+"SESSION_PING_INTERVAL")
	setEnvInt64(&c.Session.ReadLimit, prefix+"SESSION_READ_LIMIT")

	setEnvString(&c.Prometheus.AccessToken, prefix+"PROMETHEUS_ACCESS_TOKEN")
}

func setEnvString(dest *string, name string) {
	value := os.Getenv(name)
	if value != "" {
		*dest = value
	}
}

func setEnvInt(dest *int, name string) {
	value, err := strconv.Atoi(os.Getenv(name))
	if err == nil {
		*dest = value
	}
}

func setEnvInt64(dest *int64, name string) {
	value, err := strconv.ParseInt(os.Getenv(name), 10, 64)
	if err == nil {
		*dest = value
	}
}

func setEnvDuration(dest *time.Duration, name string) {
	value, err := time.ParseDuration(os.Getenv(name))
	if err == nil {
		*dest = value
	}
}

func setEnvBool(dest *bool, name string) {
	val := os.Getenv(name)

	// Only set the boolean value when the environment variable is explicitly set
	// to either 'true' or 'false', to prevent resetting the pointer value to
	// false when there is no environment variable defined.
	switch val {
	case "true":
		*dest = true
	case "false":
		*dest = false
	}
}
