package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validYAML = `
discord:
  token: abc123
  guild_id: "900000000000000001"
database:
  host: db.internal
  port: 3307
  database: trestle_prod
dashboard:
  enabled: true
  addr: ":9090"
alerts:
  slack_webhook_url: https://hooks.slack.com/services/T/B/X
rolesync:
  enabled: true
  cron: "30 3 * * *"
contract:
  rules_timeout_sec: 300
`

func TestParse_Valid(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Discord.Token != "abc123" {
		t.Errorf("token = %q", cfg.Discord.Token)
	}
	if cfg.Discord.GuildID != "900000000000000001" {
		t.Errorf("guild id = %q", cfg.Discord.GuildID)
	}
	if cfg.Database.Host != "db.internal" || cfg.Database.Port != 3307 {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Dashboard.Addr != ":9090" {
		t.Errorf("dashboard addr = %q", cfg.Dashboard.Addr)
	}
	if cfg.Rolesync.Cron != "30 3 * * *" {
		t.Errorf("rolesync cron = %q", cfg.Rolesync.Cron)
	}
	if cfg.Contract.RulesTimeoutSec != 300 {
		t.Errorf("rules timeout = %d", cfg.Contract.RulesTimeoutSec)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("discord:\n  token: t\n  guild_id: g\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Host != "127.0.0.1" {
		t.Errorf("default host = %q", cfg.Database.Host)
	}
	if cfg.Database.Port != 3306 {
		t.Errorf("default port = %d", cfg.Database.Port)
	}
	if cfg.Database.User != "root" {
		t.Errorf("default user = %q", cfg.Database.User)
	}
	if cfg.Database.Database != "trestle" {
		t.Errorf("default database = %q", cfg.Database.Database)
	}
	if cfg.Dashboard.Addr != "127.0.0.1:8480" {
		t.Errorf("default dashboard addr = %q", cfg.Dashboard.Addr)
	}
	if cfg.Rolesync.Cron != "0 4 * * *" {
		t.Errorf("default cron = %q", cfg.Rolesync.Cron)
	}
	if cfg.Contract.RulesTimeoutSec != 600 {
		t.Errorf("default rules timeout = %d", cfg.Contract.RulesTimeoutSec)
	}
}

func TestParse_MissingToken(t *testing.T) {
	// Make sure the env fallback doesn't mask the failure.
	t.Setenv("TRESTLE_DISCORD_TOKEN", "")

	_, err := Parse([]byte("discord:\n  guild_id: g\n"))
	if err == nil {
		t.Fatal("expected error for missing token")
	}
	if !strings.Contains(err.Error(), "discord.token is required") {
		t.Errorf("error = %v", err)
	}
}

func TestParse_TokenFromEnv(t *testing.T) {
	t.Setenv("TRESTLE_DISCORD_TOKEN", "env-token")

	cfg, err := Parse([]byte("discord:\n  guild_id: g\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Discord.Token != "env-token" {
		t.Errorf("token = %q, want env-token", cfg.Discord.Token)
	}
}

func TestParse_MissingGuild(t *testing.T) {
	_, err := Parse([]byte("discord:\n  token: t\n"))
	if err == nil {
		t.Fatal("expected error for missing guild id")
	}
	if !strings.Contains(err.Error(), "discord.guild_id is required") {
		t.Errorf("error = %v", err)
	}
}

func TestParse_NegativeRulesTimeout(t *testing.T) {
	_, err := Parse([]byte("discord:\n  token: t\n  guild_id: g\ncontract:\n  rules_timeout_sec: -5\n"))
	if err == nil {
		t.Fatal("expected error for negative rules timeout")
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("discord: [not a map"))
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(validYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Database != "trestle_prod" {
		t.Errorf("database = %q", cfg.Database.Database)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
