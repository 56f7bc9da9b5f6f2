// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// BindListenAddr replaces the host part of a listen address when it is of the
// form ":PORT" or empty. Explicit host:port values are left untouched.
// Supports "if:<name>" to bind to the first non-loopback IPv4 of an interface.
func BindListenAddr(listenAddr, bind string) (string, error) {
	if bind == "" {
		return listenAddr, nil
	}

	if listenAddr == "" || listenAddr[0] == ':' {
		port := listenAddr
		if port == "" {
			port = ":0"
		}

		host := bind
		if len(bind) > 3 && bind[:3] == "if:" {
			ifName := bind[3:]
			iface, err := net.InterfaceByName(ifName)
			if err != nil {
				return "", fmt.Errorf("resolve interface %q: %w", ifName, err)
			}
			addrs, err := iface.Addrs()
			if err != nil {
				return "", fmt.Errorf("list addrs for %q: %w", ifName, err)
			}
			found := false
			for _, a := range addrs {
				var ip net.IP
				switch v := a.(type) {
				case *net.IPNet:
					ip = v.IP
				case *net.IPAddr:
					ip = v.IP
				}
				if ip == nil || ip.IsLoopback() || ip.To4() == nil {
					continue
				}
				host = ip.String()
				found = true
				break
			}
			if !found {
				return "", fmt.Errorf("no suitable IPv4 on interface %q", ifName)
			}
		}

		return net.JoinHostPort(host, port[1:]), nil
	}

	return listenAddr, nil
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	// ListenAddr is the address to listen on (e.g., ":9000")
	ListenAddr string

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout time.Duration

	// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header's keys and values
	MaxHeaderBytes int

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown
	ShutdownTimeout time.Duration
}

const (
	// Default server timeouts
	defaultReadTimeout     = 60 * time.Second
	defaultWriteTimeout    = 0 // 0 = no timeout; playlist bodies stream out unbounded
	defaultIdleTimeout     = 120 * time.Second
	defaultMaxHeaderBytes  = 1 << 20 // 1 MB
	defaultShutdownTimeout = 15 * time.Second

	envServerReadTimeout     = "TTVGATE_SERVER_READ_TIMEOUT"
	envServerWriteTimeout    = "TTVGATE_SERVER_WRITE_TIMEOUT"
	envServerIdleTimeout     = "TTVGATE_SERVER_IDLE_TIMEOUT"
	envServerMaxHeaderBytes  = "TTVGATE_SERVER_MAX_HEADER_BYTES"
	envServerShutdownTimeout = "TTVGATE_SERVER_SHUTDOWN_TIMEOUT"
)

// ParseServerConfigForApp resolves server config with explicit precedence:
// ENV > AppConfig (YAML + merged defaults) > built-in default.
func ParseServerConfigForApp(cfg AppConfig) ServerConfig {
	base := cfg.Server
	if base.ReadTimeout <= 0 {
		base.ReadTimeout = defaultReadTimeout
	}
	if base.WriteTimeout < 0 {
		base.WriteTimeout = defaultWriteTimeout
	}
	if base.IdleTimeout <= 0 {
		base.IdleTimeout = defaultIdleTimeout
	}
	if base.MaxHeaderBytes <= 0 {
		base.MaxHeaderBytes = defaultMaxHeaderBytes
	}
	if base.ShutdownTimeout <= 0 {
		base.ShutdownTimeout = defaultShutdownTimeout
	}

	listen := strings.TrimSpace(cfg.ListenAddr)
	if listen == "" {
		listen = defaultListenAddr
	}

	maxHeaderBytes := ParseInt(envServerMaxHeaderBytes, base.MaxHeaderBytes)
	if maxHeaderBytes <= 0 {
		maxHeaderBytes = base.MaxHeaderBytes
	}

	shutdownTimeout := ParseDuration(envServerShutdownTimeout, base.ShutdownTimeout)
	if shutdownTimeout < 3*time.Second {
		shutdownTimeout = 3 * time.Second
	}

	return ServerConfig{
		ListenAddr:      listen,
		ReadTimeout:     ParseDuration(envServerReadTimeout, base.ReadTimeout),
		WriteTimeout:    ParseDuration(envServerWriteTimeout, base.WriteTimeout),
		IdleTimeout:     ParseDuration(envServerIdleTimeout, base.IdleTimeout),
		MaxHeaderBytes:  maxHeaderBytes,
		ShutdownTimeout: shutdownTimeout,
	}
}
