package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

const DefaultJWTSecret = "your-secret-key"

// Config is read once at startup and passed by value.
type Config struct {
	DatabaseURL      string        `env:"DATABASE_URL,default=sqlite:./wallet.db"`
	JWTSecret        string        `env:"JWT_SECRET,default=your-secret-key"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET"`
	ServerHost       string        `env:"SERVER_HOST,default=127.0.0.1"`
	ServerPort       string        `env:"SERVER_PORT,default=9999"`
	RequireAuth      string        `env:"REQUIRE_AUTH,default=false"`
	RedisURL         string        `env:"REDIS_URL"`
	PriceCacheTTL    time.Duration `env:"PRICE_CACHE_TTL,default=5m"`
	AuthRateLimit    float64       `env:"AUTH_RATE_LIMIT,default=5"`
	AuthRateBurst    int           `env:"AUTH_RATE_BURST,default=10"`
	TrustedProxies   string        `env:"TRUSTED_PROXIES"`
	LogLevel         string        `env:"LOG_LEVEL,default=info"`
	LogFormat        string        `env:"LOG_FORMAT,default=text"`
	DBLogLevel       string        `env:"DB_LOG_LEVEL,default=warn"`
}

// LoadDotEnv loads .env files when present. Variables already in the
// environment win.
func LoadDotEnv(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Load decodes the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	return cfg, nil
}

// RefreshSecret falls back to the access secret.
func (c Config) RefreshSecret() string {
	if c.JWTRefreshSecret != "" {
		return c.JWTRefreshSecret
	}
	return c.JWTSecret
}

func (c Config) AuthRequired() bool {
	v := strings.TrimSpace(c.RequireAuth)
	return strings.EqualFold(v, "true") || v == "1"
}

// TrustedProxyList splits TRUSTED_PROXIES (comma separated IPs or CIDRs) and
// rejects entries that are neither.
func (c Config) TrustedProxyList() ([]string, error) {
	var out []string
	for _, p := range strings.Split(c.TrustedProxies, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if net.ParseIP(p) == nil {
			if _, _, err := net.ParseCIDR(p); err != nil {
				return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q", p)
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// Addr is host:port for the listener. An unparseable host becomes
// 127.0.0.1; the port must be an integer.
func (c Config) Addr() (string, error) {
	host := strings.TrimSpace(c.ServerHost)
	if net.ParseIP(host) == nil {
		host = "127.0.0.1"
	}
	port, err := strconv.Atoi(strings.TrimSpace(c.ServerPort))
	if err != nil {
		return "", fmt.Errorf("invalid SERVER_PORT %q: %w", c.ServerPort, err)
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

// NewRedis connects to redisURL and pings it.
func NewRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return rdb, nil
}
