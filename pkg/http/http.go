package http

import (
	"time"
)

// Http holds the HTTP server configuration.
type Http struct {
	Host            string
	Port            int
	ContextPath     string
	AccessLog       bool
	ExposeMetrics   bool
	ReadTimeout     int
	WriteTimeout    int
	IdleTimeout     int
	ShutdownTimeout int
	// BaseURL is the externally reachable URL, used when building the
	// approval links embedded in emails.
	BaseURL string
	Auth    Auth
}

// Auth holds token-signing configuration.
type Auth struct {
	SecretKey     string
	AccessExpire  time.Duration
	RefreshExpire time.Duration
}
