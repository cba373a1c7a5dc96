// Package config provides YAML-based configuration loading for Trestle.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Trestle configuration, loaded from config.yaml.
type Config struct {
	Discord   DiscordConfig   `yaml:"discord"`
	Database  DatabaseConfig  `yaml:"database"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Alerts    AlertsConfig    `yaml:"alerts"`
	Rolesync  RolesyncConfig  `yaml:"rolesync"`
	Contract  ContractConfig  `yaml:"contract"`
}

// DiscordConfig holds the bot token and target guild.
type DiscordConfig struct {
	Token   string `yaml:"token"`
	GuildID string `yaml:"guild_id"`
}

// DatabaseConfig holds connection settings for the MySQL server.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// DashboardConfig holds settings for the read-only ops HTTP server.
type DashboardConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// AlertsConfig holds the Slack webhook used for role-sync failure alerts.
type AlertsConfig struct {
	SlackWebhookURL string `yaml:"slack_webhook_url"`
}

// RolesyncConfig controls the scheduled bulk role resync.
type RolesyncConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
}

// ContractConfig holds lifecycle tunables.
type ContractConfig struct {
	RulesTimeoutSec int `yaml:"rules_timeout_sec"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Discord.Token == "" {
		c.Discord.Token = os.Getenv("TRESTLE_DISCORD_TOKEN")
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.User == "" {
		c.Database.User = "root"
	}
	if c.Database.Database == "" {
		c.Database.Database = "trestle"
	}
	if c.Dashboard.Addr == "" {
		c.Dashboard.Addr = "127.0.0.1:8480"
	}
	if c.Rolesync.Cron == "" {
		c.Rolesync.Cron = "0 4 * * *"
	}
	if c.Contract.RulesTimeoutSec == 0 {
		c.Contract.RulesTimeoutSec = 600
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Discord.Token == "" {
		errs = append(errs, "discord.token is required")
	}
	if c.Discord.GuildID == "" {
		errs = append(errs, "discord.guild_id is required")
	}
	if c.Contract.RulesTimeoutSec < 0 {
		errs = append(errs, "contract.rules_timeout_sec must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
