package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("BOT_PREFIX", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Bot.Prefix != "!" || cfg.Bot.ManagerRole != "Ticket Bot Manager" || cfg.Bot.TitleMaxLength != 100 {
		t.Fatalf("unexpected bot defaults %+v", cfg.Bot)
	}
	if cfg.Store.Backend != "file" || cfg.Store.FilePath != "data.json" {
		t.Fatalf("unexpected store defaults %+v", cfg.Store)
	}
	if cfg.Session.IdleTimeout() != 0 {
		t.Fatalf("sessions must never expire by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BOT_ALLOWED_ROLES", "11, 22")
	t.Setenv("BOT_PERMISSIONS", "VIEW_CHANNEL")
	t.Setenv("SESSION_IDLE_TIMEOUT_SECONDS", "90")
	t.Setenv("BOT_DELETE_ERROR_MESSAGES", "false")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Bot.AllowedRoles) != 2 || cfg.Bot.AllowedRoles[1] != 22 {
		t.Fatalf("unexpected roles %v", cfg.Bot.AllowedRoles)
	}
	if len(cfg.Bot.Permissions) != 1 {
		t.Fatalf("unexpected permissions %v", cfg.Bot.Permissions)
	}
	if cfg.Session.IdleTimeout().Seconds() != 90 {
		t.Fatalf("unexpected idle timeout %v", cfg.Session.IdleTimeout())
	}
	if cfg.Bot.ErrorDeleteDelay() != 0 {
		t.Fatalf("disabled error deletion must yield zero delay")
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "s3")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error")
	}
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("POSTGRES_DSN", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected missing dsn error")
	}
}

func TestInvalidRoleList(t *testing.T) {
	t.Setenv("BOT_ALLOWED_ROLES", "admin")
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}
