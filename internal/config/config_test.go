// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "test-agora.yaml")
	if err := os.WriteFile(tmpFile, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return tmpFile
}

func TestLoad_CompareFullStruct(t *testing.T) {
	yamlContent := `
databasePath: "/var/lib/agora"
bindAddr: "127.0.0.1"
apiPort: 9000
metricsPort: 9001
jwtSecret: "s3cret"
runMode: "dev"
shutdownTimeout: "10s"
cycleInterval: "24h"
decayCheckInterval: "30m"
schedulerPollInterval: "500ms"
governanceAccount: "gov.test"
funds:
  allies.fund: alliance
settings:
  decay.pct: "12.5"
tracing: true
`
	expected := &Config{
		DatabasePath:          "/var/lib/agora",
		BindAddr:              "127.0.0.1",
		APIPort:               9000,
		APIMaxRequestsPerIP:   32,
		MetricsPort:           9001,
		JWTSecret:             "s3cret",
		RunMode:               RunModeDev,
		ShutdownTimeout:       "10s",
		CycleInterval:         "24h",
		DecayCheckInterval:    "30m",
		SchedulerPollInterval: "500ms",
		GovernanceAccount:     "gov.test",
		Funds:                 map[string]string{"allies.fund": "alliance"},
		Settings:              map[string]string{"decay.pct": "12.5"},
		Tracing:               true,
	}

	actual, err := LoadConfig(writeConfig(t, yamlContent))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf(
			"Loaded config does not match expected.\nActual: %+v\nExpected: %+v",
			actual,
			expected,
		)
	}
	if got := actual.APIListenAddress(); got != "127.0.0.1:9000" {
		t.Errorf("unexpected API listen address: %s", got)
	}
	if got := actual.CycleIntervalDuration(); got != 24*time.Hour {
		t.Errorf("unexpected cycle interval: %s", got)
	}
	settings, err := actual.SettingValues()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !settings["decay.pct"].Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("unexpected setting value: %s", settings["decay.pct"])
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("AGORA_DATABASE_PATH", "/tmp/agora-env")
	t.Setenv("AGORA_API_PORT", "0")
	t.Setenv("AGORA_RUN_MODE", "serve")
	t.Setenv("AGORA_API_CORS_ORIGINS", "https://a.example,https://b.example")
	cfg, err := LoadConfig(writeConfig(t, "apiPort: 9000\n"))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.DatabasePath != "/tmp/agora-env" {
		t.Errorf("expected env database path, got %q", cfg.DatabasePath)
	}
	if cfg.APIListenAddress() != "" {
		t.Errorf("expected API to be disabled, got %q", cfg.APIListenAddress())
	}
	if !reflect.DeepEqual(cfg.APICorsOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Errorf("unexpected CORS origins: %v", cfg.APICorsOrigins)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "run mode", content: "runMode: load\n"},
		{name: "duration", content: "runMode: dev\ncycleInterval: weekly\n"},
		{name: "negative duration", content: "runMode: dev\nshutdownTimeout: -5s\n"},
		{name: "setting", content: "runMode: dev\nsettings:\n  decay.pct: lots\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, test.content)); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestRunMode(t *testing.T) {
	if !RunModeDev.IsDevMode() || RunModeServe.IsDevMode() {
		t.Errorf("unexpected dev mode result")
	}
	if RunMode("load").Valid() {
		t.Errorf("expected load to be invalid")
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Fatalf("expected nil config from empty context")
	}
	cfg := DefaultConfig()
	ctx := WithContext(context.Background(), cfg)
	if FromContext(ctx) != cfg {
		t.Errorf("config not found in context")
	}
}
