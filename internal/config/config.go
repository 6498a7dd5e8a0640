package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config models leadline.yml.
type Config struct {
	Team struct {
		Name string `yaml:"name"`
	} `yaml:"team"`
	Inbound struct {
		// Token is the shared secret the messenger sends with each
		// webhook delivery. Empty disables the check.
		Token string `yaml:"token"`
	} `yaml:"inbound"`
	Employees []Employee      `yaml:"employees"`
	Parser    ParserConfig    `yaml:"parser"`
	Webhooks  []WebhookConfig `yaml:"webhooks"`
}

type Employee struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// ParserConfig tunes the message parser for format revisions that ship
// before the binary does.
type ParserConfig struct {
	Markers []string            `yaml:"markers"`
	Labels  map[string][]string `yaml:"labels"`
}

// WebhookConfig is one outbound event subscription.
type WebhookConfig struct {
	URL            string   `yaml:"url"`
	Secret         string   `yaml:"secret"`
	Events         []string `yaml:"events"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	Enabled        *bool    `yaml:"enabled"`
}

// Load reads and validates config from the workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns the defaults if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "leadline.yml")
}

// Default returns a usable empty config.
func Default() *Config {
	return &Config{}
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	seen := map[string]bool{}
	for i, emp := range c.Employees {
		if emp.ID == "" {
			return fmt.Errorf("employees[%d].id is required", i)
		}
		if seen[emp.ID] {
			return fmt.Errorf("employee id %s is duplicated", emp.ID)
		}
		seen[emp.ID] = true
	}
	for field := range c.Parser.Labels {
		if !knownParserFields[field] {
			return fmt.Errorf("parser.labels references unknown field %s", field)
		}
	}
	for i, hook := range c.Webhooks {
		if hook.URL == "" {
			return fmt.Errorf("webhooks[%d].url is required", i)
		}
	}
	return nil
}

var knownParserFields = map[string]bool{
	"site_name":         true,
	"construction_type": true,
	"building_type":     true,
	"address":           true,
	"units":             true,
	"customer_type":     true,
	"contact":           true,
	"contact_name":      true,
	"source":            true,
	"inquiry":           true,
}

// EmployeeByID looks up a roster entry.
func (c *Config) EmployeeByID(id string) (Employee, bool) {
	for _, emp := range c.Employees {
		if emp.ID == id {
			return emp, true
		}
	}
	return Employee{}, false
}

// GenerateDefault returns default config YAML for a new workspace.
func GenerateDefault(teamName string) string {
	return fmt.Sprintf(defaultTemplate, teamName)
}

const defaultTemplate = `team:
  name: %s

inbound:
  token: ""

employees: []

parser:
  markers: []
  labels: {}

webhooks: []
`
