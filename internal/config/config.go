package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ubiquity-os/onboarding-bot/internal/actions"
)

// Fork-wait strategy names accepted in the config file
const (
	WaitStrategyDelay = "delay"
	WaitStrategyPoll  = "poll"
)

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// GitHubConfig holds the two token identities the bot acts with
type GitHubConfig struct {
	// BotToken authenticates the elevated/installation identity
	BotToken string `yaml:"bot_token"`

	// UserToken authenticates the acting end user
	UserToken string `yaml:"user_token"`

	// ActingUsername is the login the user token belongs to
	ActingUsername string `yaml:"acting_username"`
}

// ForkWaitConfig selects how the bot waits for fork provisioning
type ForkWaitConfig struct {
	// Strategy is "delay" (fixed wait) or "poll" (existence probe with backoff)
	Strategy string `yaml:"strategy"`

	// DelaySeconds is the fixed wait duration for the delay strategy.
	// Unset means the 5 second default; an explicit 0 disables the wait.
	DelaySeconds *int `yaml:"delay_seconds"`

	// MaxPollSeconds caps the total polling time for the poll strategy
	MaxPollSeconds int `yaml:"max_poll_seconds"`
}

// DemoConfig holds demo-flow tunables
type DemoConfig struct {
	// WalletAddress is posted in the scripted /wallet comment
	WalletAddress string `yaml:"wallet_address"`

	ForkWait ForkWaitConfig `yaml:"fork_wait"`
}

// Config holds all configuration parsed from the config file and environment
type Config struct {
	HTTP   *HTTPConfig  `yaml:"http"`
	GitHub GitHubConfig `yaml:"github"`
	Demo   DemoConfig   `yaml:"demo"`
}

// Load reads the config file, applies environment overrides for secrets,
// and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config yaml: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides secrets from the environment so tokens can stay out
// of the config file
func (c *Config) applyEnv() {
	if v := os.Getenv("GITHUB_BOT_TOKEN"); v != "" {
		c.GitHub.BotToken = v
	}
	if v := os.Getenv("GITHUB_USER_TOKEN"); v != "" {
		c.GitHub.UserToken = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.GitHub.BotToken == "" {
		return errors.New("bot token is required\n" +
			"  → Action: set github.bot_token in the config file or GITHUB_BOT_TOKEN in the environment")
	}
	if c.GitHub.UserToken == "" {
		return errors.New("user token is required\n" +
			"  → Action: set github.user_token in the config file or GITHUB_USER_TOKEN in the environment")
	}
	if c.GitHub.ActingUsername == "" {
		return errors.New("acting username is required\n" +
			"  → Action: set github.acting_username to the login the user token belongs to")
	}

	switch c.Demo.ForkWait.Strategy {
	case "", WaitStrategyDelay, WaitStrategyPoll:
	default:
		return fmt.Errorf("unknown fork wait strategy %q\n"+
			"  → Action: set demo.fork_wait.strategy to %q or %q",
			c.Demo.ForkWait.Strategy, WaitStrategyDelay, WaitStrategyPoll)
	}

	if d := c.Demo.ForkWait.DelaySeconds; d != nil && *d < 0 {
		return fmt.Errorf("fork wait delay must not be negative, got %d", *d)
	}
	if c.Demo.ForkWait.MaxPollSeconds < 0 {
		return fmt.Errorf("fork wait poll cap must not be negative, got %d", c.Demo.ForkWait.MaxPollSeconds)
	}

	return nil
}

// HTTPAddr returns the listen address, defaulting to :8080
func (c *Config) HTTPAddr() string {
	if c.HTTP == nil || c.HTTP.Addr == "" {
		return ":8080"
	}
	return c.HTTP.Addr
}

// ForkWaitStrategy returns the configured strategy, defaulting to delay
func (c *Config) ForkWaitStrategy() string {
	if c.Demo.ForkWait.Strategy == "" {
		return WaitStrategyDelay
	}
	return c.Demo.ForkWait.Strategy
}

// ForkDelay returns the fixed wait duration, defaulting to 5 seconds
// when unset. An explicit zero means no wait.
func (c *Config) ForkDelay() time.Duration {
	if c.Demo.ForkWait.DelaySeconds == nil {
		return actions.DefaultForkDelay
	}
	return time.Duration(*c.Demo.ForkWait.DelaySeconds) * time.Second
}

// MaxPollWait returns the polling cap, defaulting to 30 seconds
func (c *Config) MaxPollWait() time.Duration {
	if c.Demo.ForkWait.MaxPollSeconds == 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Demo.ForkWait.MaxPollSeconds) * time.Second
}
