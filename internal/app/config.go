package app

import (
	"strings"
	"time"

	"github.com/dhruvmojila/memory-api/internal/platform/envutil"
)

type Config struct {
	Port            string
	Environment     string
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	AllowOrigins    []string
	RateLimit       int
	RateLimitWindow time.Duration
}

func LoadConfig() Config {
	origins := []string{}
	if raw := envutil.String("CORS_ALLOW_ORIGINS", ""); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	return Config{
		Port:            envutil.String("PORT", "8080"),
		Environment:     envutil.String("APP_ENV", "development"),
		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL:  envutil.Seconds("ACCESS_TOKEN_TTL", time.Hour),
		AllowOrigins:    origins,
		RateLimit:       envutil.Int("RATE_LIMIT_PER_MINUTE", 60),
		RateLimitWindow: time.Minute,
	}
}
