package rediskv

import "time"

// Config configures the connection to a Redis server.
type Config struct {
	Host     string
	Port     int
	Password string
	Database int

	PoolSize     int
	MinIdleConns int
	MaxRetries   int

	DialTimeout     time.Duration
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
}

// DefaultConfig returns sane connection defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            6379,
		Database:        0,
		PoolSize:        10,
		MinIdleConns:    2,
		MaxRetries:      3,
		DialTimeout:     5 * time.Second,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
	}
}
