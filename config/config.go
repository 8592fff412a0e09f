package config

import (
	"time"

	"github.com/ardanlabs/conf/v3"
)

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type Cors struct {
	Origin string
}

type DB struct {
	User         string `conf:"default:postgres"`
	Password     string `conf:"default:postgres,mask"`
	Host         string `conf:"default:localhost:5432"`
	Name         string `conf:"default:lms"`
	MaxIdleConns int    `conf:"default:0"`
	MaxOpenConns int    `conf:"default:0"`
	DisableTLS   bool   `conf:"default:true"`
	Migrate      bool   `conf:"default:true"`
}

type Auth struct {
	SessionLifetime time.Duration `conf:"default:24h"`
	OTPTimeout      time.Duration `conf:"default:5m"`
	OTPBurst        int           `conf:"default:3"`
	OTPInterval     time.Duration `conf:"default:1m"`
}

type Paypal struct {
	ClientID string
	Secret   string `conf:"mask"`
	URL      string `conf:"default:https://api-m.sandbox.paypal.com"`
}

type Stripe struct {
	APISecret     string `conf:"mask"`
	WebhookSecret string `conf:"mask"`
	SuccessURL    string `conf:"default:http://localhost:8080/success"`
	CancelURL     string `conf:"default:http://localhost:8080/cancel"`
}

type OauthProvider struct {
	Client      string
	Secret      string `conf:"mask"`
	URL         string `conf:"default:https://accounts.google.com"`
	RedirectURL string `conf:"default:http://localhost:8000/auth/oauth-callback/google"`
}

type Oauth struct {
	Google           OauthProvider
	DiscoveryTimeout time.Duration `conf:"default:10s"`
	LoginRedirectURL string        `conf:"default:http://localhost:8080"`
}

type Config struct {
	conf.Version
	Web    Web
	Cors   Cors
	DB     DB
	Auth   Auth
	Paypal Paypal
	Stripe Stripe
	Oauth  Oauth
}
