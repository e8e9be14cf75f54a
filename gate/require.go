package gate

import (
	"context"
	"errors"
	"fmt"
)

// ErrFeatureDenied is returned when access is denied and no custom error is
// provided.
var ErrFeatureDenied = errors.New("feature access denied")

// DeniedError carries the denied feature and its access payload; it unwraps
// to ErrFeatureDenied.
type DeniedError struct {
	Feature string
	Access  Access
}

func (e DeniedError) Error() string {
	if e.Feature == "" {
		return ErrFeatureDenied.Error()
	}
	return fmt.Sprintf("%s: %s", ErrFeatureDenied.Error(), e.Feature)
}

func (e DeniedError) Unwrap() error {
	return ErrFeatureDenied
}

// RequireOption configures Require behavior.
type RequireOption func(*requireConfig)

type requireConfig struct {
	requiredTier string
	deniedErr    error
	errorMapper  func(error) error
	fallbacks    []string
}

// WithRequiredTier forwards an advisory tier requirement to the checker.
func WithRequiredTier(tier string) RequireOption {
	return func(c *requireConfig) {
		if c == nil {
			return
		}
		c.requiredTier = tier
	}
}

// WithDeniedError sets the error returned when access is denied.
func WithDeniedError(err error) RequireOption {
	return func(c *requireConfig) {
		if c == nil {
			return
		}
		c.deniedErr = err
	}
}

// WithErrorMapper transforms checker errors before returning them.
func WithErrorMapper(mapper func(error) error) RequireOption {
	return func(c *requireConfig) {
		if c == nil {
			return
		}
		c.errorMapper = mapper
	}
}

// WithFallbackKeys allows alternate feature keys to grant access when the
// primary key is denied.
func WithFallbackKeys(keys ...string) RequireOption {
	return func(c *requireConfig) {
		if c == nil {
			return
		}
		c.fallbacks = append(c.fallbacks, keys...)
	}
}

// Require checks an entitlement and returns an error when access is denied.
// If checker is nil, Require returns nil.
func Require(ctx context.Context, checker Checker, feature string, opts ...RequireOption) error {
	if checker == nil {
		return nil
	}

	cfg := &requireConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	access, err := checker.Check(ctx, feature, cfg.requiredTier)
	if err != nil {
		return mapRequireErr(cfg, err)
	}
	if access.HasAccess {
		return nil
	}

	for _, fallback := range cfg.fallbacks {
		alt, err := checker.Check(ctx, fallback, "")
		if err != nil {
			return mapRequireErr(cfg, err)
		}
		if alt.HasAccess {
			return nil
		}
	}

	if cfg.deniedErr != nil {
		return cfg.deniedErr
	}

	return DeniedError{Feature: feature, Access: access}
}

func mapRequireErr(cfg *requireConfig, err error) error {
	if err == nil {
		return nil
	}
	if cfg != nil && cfg.errorMapper != nil {
		return cfg.errorMapper(err)
	}
	return err
}
