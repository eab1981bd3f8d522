package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Credentials resolves the generation service credential. An override (taken from
// the environment by the config layer) wins over the stored value.
type Credentials struct {
	kv       *KV
	key      string
	override string
}

// NewCredentials binds a stored key name and an optional override.
func NewCredentials(kv *KV, key, override string) *Credentials {
	return &Credentials{kv: kv, key: key, override: strings.TrimSpace(override)}
}

// Credential returns the credential, or "" when none is configured.
func (c *Credentials) Credential(ctx context.Context) (string, error) {
	v, _, err := c.Lookup(ctx)
	return v, err
}

// Lookup returns the credential and where it came from: "env", "store" or "".
func (c *Credentials) Lookup(ctx context.Context) (value, source string, err error) {
	if c.override != "" {
		return c.override, "env", nil
	}
	if c.kv == nil {
		return "", "", nil
	}
	v, err := c.kv.Get(ctx, c.key)
	if errors.Is(err, ErrNotFound) {
		return "", "", nil
	}
	if err != nil {
		return "", "", err
	}
	return v, "store", nil
}

// Save persists a credential. Blank values are rejected.
func (c *Credentials) Save(ctx context.Context, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("API key is empty")
	}
	if c.kv == nil {
		return fmt.Errorf("no credential store configured")
	}
	return c.kv.Set(ctx, c.key, value)
}

// Clear removes the stored credential.
func (c *Credentials) Clear(ctx context.Context) error {
	if c.kv == nil {
		return nil
	}
	return c.kv.Delete(ctx, c.key)
}

// Key returns the store key name.
func (c *Credentials) Key() string { return c.key }

// Mask renders a credential for display, keeping only its last four characters.
func Mask(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}
