package server

import "strconv"

// Config holds the network endpoints of the tinyflow services.
type Config struct {
	// Port is the port where the API server listens.
	Port int `mapstructure:"port" default:"1024"`
	// Address is the hostname clients use to reach the servers.
	Address string `mapstructure:"address" default:"localhost"`
	// UtilsPort is the port of the auxiliary utility server (health, version).
	UtilsPort int `mapstructure:"utils_port" default:"2048"`
	// ApiKey is the secret key required to access the API. Without it the
	// API serves read-only routes only.
	ApiKey string `mapstructure:"api_key" default:""`
}

const (
	MinPort = 1
	MaxPort = 65535
)

// ValidPort reports whether p is a usable TCP port number.
func ValidPort(p int) bool {
	return p >= MinPort && p <= MaxPort
}

// ListenAddr returns the bind address of the API server.
func (c Config) ListenAddr() string {
	return ":" + strconv.Itoa(c.Port)
}

// UtilsListenAddr returns the bind address of the utility server.
func (c Config) UtilsListenAddr() string {
	return ":" + strconv.Itoa(c.UtilsPort)
}

// UtilsURL returns the base URL of the utility server as seen by clients.
func (c Config) UtilsURL() string {
	return "http://" + c.Address + ":" + strconv.Itoa(c.UtilsPort)
}

// APIURL returns the base URL of the API server as seen by clients.
func (c Config) APIURL() string {
	return "http://" + c.Address + ":" + strconv.Itoa(c.Port)
}
