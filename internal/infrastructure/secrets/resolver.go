// Package secrets resolves named secrets from Vault, falling back to values
// supplied by configuration and then to the process environment.
package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/aioutlet/admin-service/internal/core/ports"
)

var _ ports.SecretResolver = (*Resolver)(nil)

// ErrNotFound is returned when no source knows the secret.
var ErrNotFound = errors.New("secret not found")

// VaultConfig enables the Vault source when Address is set. Zero values fall
// back to the Vault client defaults, which also honour the VAULT_* variables.
type VaultConfig struct {
	Address string
	Token   string
	// Path is the logical path of a KV secret, e.g. "secret/data/admin-service".
	Path    string
	Timeout time.Duration
}

func (c VaultConfig) assign(apiCFG *api.Config) {
	if c.Address != "" {
		apiCFG.Address = c.Address
	}
	if c.Timeout > 0 {
		apiCFG.Timeout = c.Timeout
	}
	// the resolver degrades to the fallback sources instead of retrying
	apiCFG.MaxRetries = 0
}

// Resolver looks a secret up in Vault first, then in Fallback, then in the
// environment. Vault problems are logged and never surface to the caller.
type Resolver struct {
	vault    *api.Client
	path     string
	fallback map[string]string
	lookup   func(string) (string, bool)
	log      zerolog.Logger
}

// NewResolver builds a resolver. fallback holds values already known from
// configuration, keyed by secret name.
func NewResolver(cfg VaultConfig, fallback map[string]string, log zerolog.Logger) (*Resolver, error) {
	r := &Resolver{
		path:     strings.TrimPrefix(cfg.Path, "/"),
		fallback: fallback,
		lookup:   os.LookupEnv,
		log:      log.With().Str("component", "secrets").Logger(),
	}
	if cfg.Address == "" {
		return r, nil
	}

	apiCFG := api.DefaultConfig()
	if apiCFG.Error != nil {
		return nil, errors.Wrap(apiCFG.Error, "vault default config")
	}
	cfg.assign(apiCFG)

	c, err := api.NewClient(apiCFG)
	if err != nil {
		return nil, errors.Wrap(err, "create vault client")
	}
	if cfg.Token != "" {
		c.SetToken(cfg.Token)
	}
	r.vault = c
	return r, nil
}

// Resolve returns the named secret.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	if r.vault != nil && r.path != "" {
		v, err := r.readVault(ctx, name)
		switch {
		case err != nil:
			r.log.Warn().Err(err).Str("secret", name).Msg("vault lookup failed, falling back to environment")
		case v != "":
			r.log.Debug().Str("secret", name).Str("source", "vault").Msg("secret resolved")
			return v, nil
		}
	}

	if v := r.fallback[name]; v != "" {
		r.log.Debug().Str("secret", name).Str("source", "config").Msg("secret resolved")
		return v, nil
	}
	if v, ok := r.lookup(name); ok && v != "" {
		r.log.Debug().Str("secret", name).Str("source", "env").Msg("secret resolved")
		return v, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// readVault reads the configured KV path and returns the field called name.
// Both KV v2 (nested "data") and KV v1 layouts are understood.
func (r *Resolver) readVault(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sec, err := r.vault.Logical().Read(r.path)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", r.path)
	}
	if sec == nil || sec.Data == nil {
		return "", nil
	}

	data := sec.Data
	if nested, ok := sec.Data["data"].(map[string]interface{}); ok {
		data = nested
	}

	switch v := data[name].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", errors.Errorf("secret %s is %T, not a string", name, v)
	}
}
