package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "vestia"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App         AppConfig
	Redis       RedisConfig
	MercadoPago MercadoPagoConfig
	Andreani    AndreaniConfig
	Resend      ResendConfig
	Checkout    CheckoutConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Andreani.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env           string `envconfig:"VESTIA_APP_ENV" required:"true"`
	Port          string `envconfig:"VESTIA_APP_PORT" required:"true"`
	LogLevel      string `envconfig:"VESTIA_LOG_LEVEL" default:"info"`
	LogWarnStack  bool   `envconfig:"VESTIA_LOG_WARN_STACK" default:"false"`
	SiteURL       string `envconfig:"VESTIA_SITE_URL"`
	DebugCheckout bool   `envconfig:"VESTIA_DEBUG_CHECKOUT" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// PublicSiteURL returns the configured site origin when it is a resolvable
// public http(s) URL. Local origins return empty: the payment provider
// rejects non-public return URLs.
func (a AppConfig) PublicSiteURL() string {
	raw := strings.TrimRight(strings.TrimSpace(a.SiteURL), "/")
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return ""
	}
	return raw
}

type RedisConfig struct {
	URL          string        `envconfig:"VESTIA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VESTIA_REDIS_ADDR"`
	Password     string        `envconfig:"VESTIA_REDIS_PASSWORD"`
	DB           int           `envconfig:"VESTIA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VESTIA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VESTIA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VESTIA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VESTIA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VESTIA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type MercadoPagoConfig struct {
	AccessToken string        `envconfig:"VESTIA_MP_ACCESS_TOKEN"`
	PublicKey   string        `envconfig:"VESTIA_MP_PUBLIC_KEY"`
	BaseURL     string        `envconfig:"VESTIA_MP_BASE_URL" default:"https://api.mercadopago.com"`
	Timeout     time.Duration `envconfig:"VESTIA_MP_TIMEOUT" default:"15s"`
}

// Configured reports whether the server-side credential is present. Payment
// paths fail fast when it is not; they never degrade silently.
func (m MercadoPagoConfig) Configured() bool {
	return strings.TrimSpace(m.AccessToken) != ""
}

type AndreaniConfig struct {
	APIKey         string        `envconfig:"VESTIA_ANDREANI_API_KEY"`
	Env            string        `envconfig:"VESTIA_ANDREANI_ENV" default:"sandbox"`
	UseMock        bool          `envconfig:"VESTIA_ANDREANI_USE_MOCK" default:"false"`
	ContractNumber string        `envconfig:"VESTIA_ANDREANI_CONTRACT" default:"400006711"`
	OriginPostal   string        `envconfig:"VESTIA_ANDREANI_ORIGIN_POSTAL" default:"1000"`
	Timeout        time.Duration `envconfig:"VESTIA_ANDREANI_TIMEOUT" default:"10s"`
}

func (a AndreaniConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(a.Env)) {
	case "sandbox", "production":
		return nil
	default:
		return fmt.Errorf("andreani env must be %q or %q", "sandbox", "production")
	}
}

func (a AndreaniConfig) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(a.Env), "production")
}

type ResendConfig struct {
	APIKey     string        `envconfig:"VESTIA_RESEND_API_KEY"`
	From       string        `envconfig:"VESTIA_RESEND_FROM" default:"ventas@vestia.ar"`
	OwnerEmail string        `envconfig:"VESTIA_OWNER_EMAIL"`
	Timeout    time.Duration `envconfig:"VESTIA_RESEND_TIMEOUT" default:"10s"`
}

type CheckoutConfig struct {
	IncludeReviewStep bool          `envconfig:"VESTIA_CHECKOUT_REVIEW_STEP" default:"true"`
	PaymentMode       string        `envconfig:"VESTIA_CHECKOUT_PAYMENT_MODE" default:"redirect"`
	SessionTTL        time.Duration `envconfig:"VESTIA_CHECKOUT_SESSION_TTL" default:"2h"`
	WebhookDedupTTL   time.Duration `envconfig:"VESTIA_WEBHOOK_DEDUP_TTL" default:"48h"`
	CartTTL           time.Duration `envconfig:"VESTIA_CART_TTL" default:"720h"`
}

func (c CheckoutConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.PaymentMode)) {
	case "redirect", "embedded":
		return nil
	default:
		return fmt.Errorf("checkout payment mode must be %q or %q", "redirect", "embedded")
	}
}

func (c CheckoutConfig) IsEmbedded() bool {
	return strings.EqualFold(strings.TrimSpace(c.PaymentMode), "embedded")
}
