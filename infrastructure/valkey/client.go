package valkey

import (
	"context"
	"fmt"
	"strings"
	"time"

	valkeylib "github.com/valkey-io/valkey-go"
)

const (
	// DefaultConnectTimeout is the maximum time to wait for initial connection
	DefaultConnectTimeout = 5 * time.Second
)

// Config holds the configuration for creating a Valkey client
type Config struct {
	Address        string
	Password       string
	DB             int
	KeyPrefix      string
	ConnectTimeout time.Duration
}

// Client wraps the valkey-go client with key prefixing and lock helpers.
type Client struct {
	inner     valkeylib.Client
	keyPrefix string
}

// releaseScript deletes the lock only when it is still held by the caller.
var releaseScript = valkeylib.NewLuaScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewClient connects and pings Valkey. The caller must Close it.
func NewClient(cfg Config) (*Client, error) {
	opts := valkeylib.ClientOption{
		InitAddress: []string{cfg.Address},
		SelectDB:    cfg.DB,
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	inner, err := valkeylib.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = DefaultConnectTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := inner.Do(ctx, inner.B().Ping().Build()).Error(); err != nil {
		inner.Close()
		return nil, fmt.Errorf("failed to ping valkey (timeout: %v): %w", timeout, err)
	}

	prefix := cfg.KeyPrefix
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}

	return &Client{
		inner:     inner,
		keyPrefix: prefix,
	}, nil
}

func (c *Client) Inner() valkeylib.Client {
	return c.inner
}

func (c *Client) Close() {
	if c.inner != nil {
		c.inner.Close()
	}
}

// Key constructs a prefixed key from the given parts.
// Example: Key("lock", "publisher") -> "groomflo:lock:publisher"
func (c *Client) Key(parts ...string) string {
	if len(parts) == 0 {
		return strings.TrimSuffix(c.keyPrefix, ":")
	}
	return c.keyPrefix + strings.Join(parts, ":")
}

func (c *Client) Ping(ctx context.Context) error {
	return c.inner.Do(ctx, c.inner.B().Ping().Build()).Error()
}

// TryLock sets key to owner if absent, expiring after ttl.
// It returns false without error when somebody else holds the lock.
func (c *Client) TryLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	err := c.inner.Do(ctx, c.inner.B().Set().Key(key).Value(owner).Nx().Ex(ttl).Build()).Error()
	if err != nil {
		if IsNil(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Unlock releases key if it is still owned by owner.
func (c *Client) Unlock(ctx context.Context, key, owner string) error {
	return releaseScript.Exec(ctx, c.inner, []string{key}, []string{owner}).Error()
}

// IsNil checks if an error returned by the client represents a Valkey NIL response.
func IsNil(err error) bool {
	return valkeylib.IsValkeyNil(err)
}
