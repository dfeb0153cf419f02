package server

import "time"

type TLSConfig struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type TransportConfig struct {
	// Address of the ZeroMQ PAIR peer, for example tcp://127.0.0.1:5555.
	Address string `yaml:"address"`

	Linger    time.Duration `yaml:"linger"`
	Immediate bool          `yaml:"immediate"`
	SendHWM   int           `yaml:"send_hwm"`
	RecvHWM   int           `yaml:"recv_hwm"`

	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	SendTimeout    time.Duration `yaml:"send_timeout"`
	ReplyTimeout   time.Duration `yaml:"reply_timeout"`
	PollInterval   time.Duration `yaml:"poll_interval"`
}

type SessionConfig struct {
	SendBuffer   int           `yaml:"send_buffer"`
	RelayBuffer  int           `yaml:"relay_buffer"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	PingInterval time.Duration `yaml:"ping_interval"`
	ReadLimit    int64         `yaml:"read_limit"`
}

type PrometheusConfig struct {
	AccessToken string `yaml:"access_token"`
}

type Config struct {
	BindHost   string           `yaml:"bind_host"`
	BindPort   int              `yaml:"bind_port"`
	WSPath     string           `yaml:"ws_path"`
	TLS        TLSConfig        `yaml:"tls"`
	Transport  TransportConfig  `yaml:"transport"`
	Session    SessionConfig    `yaml:"session"`
	Prometheus PrometheusConfig `yaml:"prometheus"`
}
