package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_BetterStackRequiresEndpointWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("BETTERSTACK_ENABLED", "true")
	t.Setenv("BETTERSTACK_ENDPOINT", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when BETTERSTACK_ENABLED=true without BETTERSTACK_ENDPOINT")
	}
}

func TestLoad_DefaultsByEnv(t *testing.T) {
	t.Run("prod disables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=false in prod by default")
		}
	})

	t.Run("dev enables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=true in dev by default")
		}
	})
}

func TestLoad_StorageDriverValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORAGE_DRIVER", "mysql")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid STORAGE_DRIVER")
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Run("defaults to wildcard", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("CORS_ALLOWED_ORIGINS", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected CORSAllowedOrigins: %v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("splits and trims csv", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://crickarena.app, https://staging.crickarena.app ,")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORSAllowedOrigins: %v", cfg.CORSAllowedOrigins)
		}
		if cfg.CORSAllowedOrigins[1] != "https://staging.crickarena.app" {
			t.Fatalf("unexpected second origin: %q", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("CACHE_TTL", "90s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.CacheEnabled {
		t.Fatalf("expected CacheEnabled=false")
	}
	if cfg.CacheTTL != 90*time.Second {
		t.Fatalf("unexpected CacheTTL: %s", cfg.CacheTTL)
	}
}

func TestLoad_AuthModeValidation(t *testing.T) {
	t.Run("rejects unknown mode", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("AUTH_MODE", "oauth")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid AUTH_MODE")
		}
	})

	t.Run("jwt requires secret", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("AUTH_MODE", "jwt")
		t.Setenv("JWT_SECRET", "")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error when AUTH_MODE=jwt without JWT_SECRET")
		}
	})

	t.Run("jwt mode parses", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("AUTH_MODE", "JWT")
		t.Setenv("JWT_SECRET", "secret-123")
		t.Setenv("JWT_ISSUER", "crickarena")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.AuthMode != AuthModeJWT {
			t.Fatalf("unexpected AuthMode: %q", cfg.AuthMode)
		}
		if cfg.JWTIssuer != "crickarena" {
			t.Fatalf("unexpected JWTIssuer: %q", cfg.JWTIssuer)
		}
	})
}

func TestLoad_SheetRequiresIDWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SHEET_ENABLED", "true")
	t.Setenv("SHEET_ID", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when SHEET_ENABLED=true without SHEET_ID")
	}
}

func TestLoad_CricketDataConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CRICKETDATA_ENABLED", "true")
	t.Setenv("CRICKETDATA_API_KEY", "key-123")
	t.Setenv("CRICKETDATA_TIMEOUT", "12s")
	t.Setenv("CRICKETDATA_MAX_RETRIES", "4")
	t.Setenv("CRICKETDATA_REQUESTS_PER_MINUTE", "30")
	t.Setenv("CRICKETDATA_CIRCUIT_FAILURE_COUNT", "7")
	t.Setenv("CRICKETDATA_CIRCUIT_OPEN_TIMEOUT", "45s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.CricketDataEnabled {
		t.Fatalf("expected CricketDataEnabled=true")
	}
	if cfg.CricketDataAPIKey != "key-123" {
		t.Fatalf("unexpected CricketDataAPIKey")
	}
	if cfg.CricketDataTimeout != 12*time.Second {
		t.Fatalf("unexpected CricketDataTimeout: %s", cfg.CricketDataTimeout)
	}
	if cfg.CricketDataMaxRetries != 4 {
		t.Fatalf("unexpected CricketDataMaxRetries: %d", cfg.CricketDataMaxRetries)
	}
	if cfg.CricketDataRequestsPerMinute != 30 {
		t.Fatalf("unexpected CricketDataRequestsPerMinute: %d", cfg.CricketDataRequestsPerMinute)
	}
	if cfg.CricketDataCircuit.FailureThreshold != 7 {
		t.Fatalf("unexpected circuit failure threshold: %d", cfg.CricketDataCircuit.FailureThreshold)
	}
	if cfg.CricketDataCircuit.OpenTimeout != 45*time.Second {
		t.Fatalf("unexpected circuit open timeout: %s", cfg.CricketDataCircuit.OpenTimeout)
	}
}

func TestLoad_QStashConfigParsing(t *testing.T) {
	t.Run("requires token and target when enabled", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("QSTASH_ENABLED", "true")
		t.Setenv("QSTASH_TOKEN", "")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error when QSTASH_ENABLED=true without QSTASH_TOKEN")
		}
	})

	t.Run("parses full config", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("QSTASH_ENABLED", "true")
		t.Setenv("QSTASH_TOKEN", "qstash-token")
		t.Setenv("QSTASH_TARGET_BASE_URL", "https://api.crickarena.app")
		t.Setenv("QSTASH_RETRIES", "5")
		t.Setenv("INTERNAL_JOB_TOKEN", "job-token")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.QStashToken != "qstash-token" {
			t.Fatalf("unexpected QStashToken")
		}
		if cfg.QStashTargetBaseURL != "https://api.crickarena.app" {
			t.Fatalf("unexpected QStashTargetBaseURL: %q", cfg.QStashTargetBaseURL)
		}
		if cfg.QStashRetries != 5 {
			t.Fatalf("unexpected QStashRetries: %d", cfg.QStashRetries)
		}
		if cfg.InternalJobToken != "job-token" {
			t.Fatalf("unexpected InternalJobToken")
		}
	})
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")
	t.Setenv("APP_SERVICE_NAME", "fantasy-cricket-api")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "fantasy-cricket-api" {
		t.Fatalf("unexpected PyroscopeAppName: %q", cfg.PyroscopeAppName)
	}
}
