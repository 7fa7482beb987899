package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/medstock")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Error("expected development mode by default")
	}
	if cfg.DBMaxConns != 20 || cfg.DBMinConns != 5 {
		t.Errorf("unexpected pool defaults: max=%d min=%d", cfg.DBMaxConns, cfg.DBMinConns)
	}
	if cfg.AutomaticLotIn || cfg.AutomaticLotOut || cfg.LotWithCost {
		t.Error("expected all lot flags off by default")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error without DATABASE_URL")
	}
}

func TestLoadStockFlags(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/medstock")
	t.Setenv("AUTOMATIC_LOT_IN", "true")
	t.Setenv("LOT_WITH_COST", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.AutomaticLotIn {
		t.Error("expected AutomaticLotIn on")
	}
	if cfg.AutomaticLotOut {
		t.Error("expected AutomaticLotOut off")
	}
	if !cfg.LotWithCost {
		t.Error("expected LotWithCost on")
	}
}

func TestLoadRefusesProductionWithoutSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/medstock")
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected Load to fail in production without JWT_SECRET")
	}

	t.Setenv("JWT_SECRET", "secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("expected production mode")
	}
}

func TestValidateRequiresSecretOutsideDev(t *testing.T) {
	cfg := &Config{Env: "production"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error without JWT_SECRET in production")
	}

	cfg.JWTSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidatePoolBounds(t *testing.T) {
	cfg := &Config{Env: "development", DBMaxConns: 5, DBMinConns: 10}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error when min exceeds max")
	}
}
