package slack

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// DefaultCacheTTL is the default TTL for the user name cache
const DefaultCacheTTL = 10 * time.Minute

// cacheEntry holds a cached user name with expiration
type cacheEntry struct {
	name      string
	expiresAt time.Time
}

// client implements Service interface
type client struct {
	api      *slack.Client
	apiURL   string
	cacheTTL time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// Option is a functional option for client configuration
type Option func(*client)

// WithCacheTTL sets the TTL for the user name cache
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *client) {
		c.cacheTTL = ttl
	}
}

// WithAPIURL points the client at another Slack API endpoint
func WithAPIURL(url string) Option {
	return func(c *client) {
		c.apiURL = url
	}
}

// New creates a new Slack service with the provided bot token
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	c := &client{
		cacheTTL: DefaultCacheTTL,
		cache:    make(map[string]cacheEntry),
	}

	for _, opt := range opts {
		opt(c)
	}

	var apiOpts []slack.Option
	if c.apiURL != "" {
		apiOpts = append(apiOpts, slack.OptionAPIURL(c.apiURL))
	}
	c.api = slack.New(token, apiOpts...)

	return c, nil
}

func (c *client) PostMessage(ctx context.Context, channelID string, blocks []slack.Block, text string) (string, error) {
	_, ts, err := c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to post message", goerr.V("channel_id", channelID))
	}
	return ts, nil
}

func (c *client) GetUserName(ctx context.Context, userID string) (string, error) {
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.cache[userID]
	c.mu.RUnlock()
	if ok && entry.expiresAt.After(now) {
		return entry.name, nil
	}

	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return "", goerr.Wrap(err, "failed to get user info", goerr.V("user_id", userID))
	}

	name := user.RealName
	if name == "" {
		name = user.Name
	}

	c.mu.Lock()
	c.cache[userID] = cacheEntry{name: name, expiresAt: now.Add(c.cacheTTL)}
	c.mu.Unlock()

	return name, nil
}
