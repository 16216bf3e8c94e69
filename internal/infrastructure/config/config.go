package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/sethvargo/go-envconfig"

	"github.com/aioutlet/admin-service/internal/core/domain"
)

type Config struct {
	Port        string `env:"PORT,         default=3008" validate:"required,numeric"`
	Host        string `env:"HOST,         default=0.0.0.0"`
	Env         string `env:"ENV,          default=development" validate:"oneof=development test staging production"`
	LogLevel    string `env:"LOG_LEVEL,    default=info"`
	ServiceName string `env:"SERVICE_NAME, default=admin-service"`
	APIVersion  string `env:"API_VERSION,  default=1.0.0"`

	JWT       JWTConfig
	Services  ServicesConfig
	HTTP      HTTPConfig
	RateLimit RateLimitConfig
	Vault     VaultConfig
	Mongo     MongoConfig
	Redis     RedisConfig

	AdminRoles        []string `env:"ADMIN_ROLES,         default=admin"`
	LowStockThreshold int      `env:"LOW_STOCK_THRESHOLD, default=10" validate:"min=1"`
}

type JWTConfig struct {
	Secret     string `env:"JWT_SECRET"`
	SecretName string `env:"JWT_SECRET_NAME, default=JWT_SECRET"`
	Issuer     string `env:"JWT_ISSUER"`
	Audience   string `env:"JWT_AUDIENCE"`
}

type ServicesConfig struct {
	UserURL    string `env:"USER_SERVICE_URL,    default=http://localhost:3002" validate:"required,url"`
	OrderURL   string `env:"ORDER_SERVICE_URL,   default=http://localhost:3004" validate:"required,url"`
	ProductURL string `env:"PRODUCT_SERVICE_URL, default=http://localhost:3001" validate:"required,url"`
	ReviewURL  string `env:"REVIEW_SERVICE_URL,  default=http://localhost:3010" validate:"required,url"`

	UpstreamTimeout    time.Duration `env:"UPSTREAM_TIMEOUT,     default=10s"`
	HealthCheckTimeout time.Duration `env:"HEALTH_CHECK_TIMEOUT, default=3s"`
}

type HTTPConfig struct {
	CORSOrigins []string `env:"CORS_ORIGIN, default=http://localhost:3000"`
	BodyLimit   string   `env:"BODY_LIMIT,  default=1M"`
}

type RateLimitConfig struct {
	Enabled           bool          `env:"ENABLE_RATE_LIMITING,           default=true"`
	Window            time.Duration `env:"RATE_LIMIT_WINDOW,              default=15m"`
	MaxRequests       int           `env:"RATE_LIMIT_MAX_REQUESTS,        default=1000"`
	UserManagementMax int           `env:"RATE_LIMIT_USER_MANAGEMENT_MAX, default=50"`
}

type VaultConfig struct {
	Addr       string        `env:"VAULT_ADDR"`
	Token      string        `env:"VAULT_TOKEN"`
	SecretPath string        `env:"VAULT_SECRET_PATH, default=secret/data/admin-service"`
	Timeout    time.Duration `env:"VAULT_TIMEOUT,     default=5s"`
}

// MongoConfig is optional; when URI is empty readiness skips the database.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=admin_service"`
}

// RedisConfig is optional; when Addr is empty rate limits are kept in memory.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Addr is the listen address.
func (c *Config) Addr() string { return c.Host + ":" + c.Port }

// Roles parses AdminRoles into domain roles.
func (c *Config) Roles() []domain.Role {
	roles := make([]domain.Role, 0, len(c.AdminRoles))
	for _, s := range c.AdminRoles {
		if r, ok := domain.ParseRole(s); ok {
			roles = append(roles, r)
		}
	}
	return roles
}

// Validate checks struct tags and cross-field rules and reports every
// problem at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if err := validator.New().Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				result = multierror.Append(result, fmt.Errorf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			result = multierror.Append(result, err)
		}
	}

	if len(c.AdminRoles) == 0 {
		result = multierror.Append(result, fmt.Errorf("ADMIN_ROLES must name at least one role"))
	}
	for _, s := range c.AdminRoles {
		if _, ok := domain.ParseRole(s); !ok {
			result = multierror.Append(result, fmt.Errorf("ADMIN_ROLES: unknown role %q", s))
		}
	}
	if c.Services.UpstreamTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("UPSTREAM_TIMEOUT must be positive"))
	}
	if c.Services.HealthCheckTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("HEALTH_CHECK_TIMEOUT must be positive"))
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Window <= 0 {
			result = multierror.Append(result, fmt.Errorf("RATE_LIMIT_WINDOW must be positive"))
		}
		if c.RateLimit.MaxRequests <= 0 || c.RateLimit.UserManagementMax <= 0 {
			result = multierror.Append(result, fmt.Errorf("rate limit maximums must be positive"))
		}
	}
	if c.Vault.Addr == "" && c.JWT.Secret == "" && c.IsProduction() {
		result = multierror.Append(result, fmt.Errorf("JWT_SECRET or VAULT_ADDR is required in production"))
	}

	return result.ErrorOrNil()
}

// FromEnv reads and validates configuration from the process environment.
func FromEnv(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
