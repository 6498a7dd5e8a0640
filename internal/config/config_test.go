package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"leadline/internal/config"
)

const sampleYAML = `team:
  name: acme

inbound:
  token: hook-token

employees:
  - id: emp-1
    name: 김철수
  - id: emp-2
    name: 박영희

parser:
  markers: ["■", "●"]
  labels:
    address: ["현장주소"]

webhooks:
  - url: https://example.com/hook
    secret: s3
    events: ["project.completed"]
`

func TestFromYAML(t *testing.T) {
	cfg, err := config.FromYAML([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Team.Name != "acme" {
		t.Fatalf("team %q", cfg.Team.Name)
	}
	if cfg.Inbound.Token != "hook-token" {
		t.Fatalf("token %q", cfg.Inbound.Token)
	}
	if len(cfg.Employees) != 2 {
		t.Fatalf("employees %v", cfg.Employees)
	}
	if emp, ok := cfg.EmployeeByID("emp-2"); !ok || emp.Name != "박영희" {
		t.Fatalf("lookup: %v %v", emp, ok)
	}
	if _, ok := cfg.EmployeeByID("emp-9"); ok {
		t.Fatalf("unexpected roster hit")
	}
	if len(cfg.Parser.Labels["address"]) != 1 {
		t.Fatalf("labels %v", cfg.Parser.Labels)
	}
	if len(cfg.Webhooks) != 1 || cfg.Webhooks[0].URL == "" {
		t.Fatalf("webhooks %v", cfg.Webhooks)
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing employee id", "employees:\n  - name: x\n"},
		{"duplicate employee id", "employees:\n  - id: a\n  - id: a\n"},
		{"unknown parser field", "parser:\n  labels:\n    bogus: [\"x\"]\n"},
		{"webhook without url", "webhooks:\n  - secret: s\n"},
	}
	for _, tc := range cases {
		if _, err := config.FromYAML([]byte(tc.yaml)); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestLoadOptional(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.LoadOptional(dir)
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if len(cfg.Employees) != 0 {
		t.Fatalf("default config not empty: %v", cfg)
	}

	if err := os.WriteFile(filepath.Join(dir, "leadline.yml"), []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err = config.LoadOptional(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Team.Name != "acme" {
		t.Fatalf("team %q", cfg.Team.Name)
	}
}

func TestGenerateDefaultParses(t *testing.T) {
	cfg, err := config.FromYAML([]byte(config.GenerateDefault("acme")))
	if err != nil {
		t.Fatalf("generated config invalid: %v", err)
	}
	if cfg.Team.Name != "acme" {
		t.Fatalf("team %q", cfg.Team.Name)
	}
}
