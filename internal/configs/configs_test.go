package configs

import "testing"

// setRequiredStorageEnv fills in the S3 settings every configuration needs.
func setRequiredStorageEnv(t *testing.T) {
	t.Helper()
	t.Setenv("S3_BUCKET_NAME", "educonnect-test")
	t.Setenv("S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("S3_ACCESS_KEY_ID", "minio")
	t.Setenv("S3_SECRET_ACCESS_KEY", "minio123")
}

// TestLoadConfigDevelopmentDefaults verifies the safe defaults applied when
// only the storage settings are provided.
func TestLoadConfigDevelopmentDefaults(t *testing.T) {
	setRequiredStorageEnv(t)
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("PORT", "")
	t.Setenv("POW_DIFFICULTY", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ASSISTANT_BASE_URL", "")
	t.Setenv("ASSISTANT_MODEL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("Expected development environment, got %q", cfg.Environment)
	}
	if cfg.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Port)
	}
	if cfg.PowDifficulty != 4 {
		t.Errorf("Expected default PoW difficulty 4, got %d", cfg.PowDifficulty)
	}
	if cfg.JWTSecret == "" {
		t.Error("Expected a development fallback JWT secret")
	}
	if cfg.DatabaseDSN == "" {
		t.Error("Expected a development fallback database DSN")
	}
	if cfg.AssistantBaseURL != "" {
		t.Error("Expected assistant disabled by default")
	}
	if cfg.AssistantModel != "gpt-4o-mini" {
		t.Errorf("Expected default assistant model, got %q", cfg.AssistantModel)
	}
}

// TestLoadConfigProductionRequiresSecrets verifies non-development
// environments fail fast without explicit secrets.
func TestLoadConfigProductionRequiresSecrets(t *testing.T) {
	setRequiredStorageEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error when JWT_SECRET is missing in production")
	}

	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error when DATABASE_URL is missing in production")
	}
}

// TestLoadConfigRequiresStorage verifies missing S3 settings are rejected.
func TestLoadConfigRequiresStorage(t *testing.T) {
	setRequiredStorageEnv(t)
	t.Setenv("S3_BUCKET_NAME", "")

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error when S3_BUCKET_NAME is missing")
	}
}

// TestLoadConfigRejectsBadPort covers unparsable and out-of-range ports.
func TestLoadConfigRejectsBadPort(t *testing.T) {
	setRequiredStorageEnv(t)

	t.Setenv("PORT", "not-a-number")
	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error for an unparsable port")
	}

	t.Setenv("PORT", "80")
	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error for a privileged port")
	}
}

// TestLoadConfigParsesOrigins verifies comma-separated origins are split and trimmed.
func TestLoadConfigParsesOrigins(t *testing.T) {
	setRequiredStorageEnv(t)
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com ,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("Expected 2 origins, got %v", cfg.AllowedOrigins)
	}
	if cfg.AllowedOrigins[0] != "https://app.example.com" || cfg.AllowedOrigins[1] != "https://admin.example.com" {
		t.Errorf("Origins not trimmed as expected: %v", cfg.AllowedOrigins)
	}
}
