package mcp

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerSpec describes how to launch one tool server process.
type ServerSpec struct {
	Command string            `json:"command" yaml:"command"`
	Args    []string          `json:"args" yaml:"args"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
}

// Config is the tool server map handed to MCP clients and process
// supervisors. Env values may carry ${VAR} placeholders that stay
// intact until Resolved is called.
type Config struct {
	Servers map[string]ServerSpec `json:"mcpServers" yaml:"mcpServers"`
}

// DefaultConfig returns the built-in server map: the five tool
// categories served by the trademesh binary itself, plus the
// third-party servers the trading roles reference by name.
func DefaultConfig() Config {
	self := func(category string, env map[string]string) ServerSpec {
		return ServerSpec{
			Command: "trademesh",
			Args:    []string{"tools", "--serve", category},
			Env:     env,
		}
	}

	return Config{
		Servers: map[string]ServerSpec{
			// third-party tools
			"code": {
				Command: "npx",
				Args:    []string{"-y", "@e2b/mcp-server"},
				Env:     map[string]string{"E2B_API_KEY": "${E2B_API_KEY}"},
			},
			"sequential-thinking": {
				Command: "npx",
				Args:    []string{"-y", "@modelcontextprotocol/server-sequential-thinking"},
			},
			"terminal": {
				Command: "uvx",
				Args:    []string{"terminal_controller"},
			},

			// trademesh tools
			"search": self("search", map[string]string{
				"GOOGLE_API_KEY": "${GOOGLE_API_KEY}",
				"GOOGLE_CSE_ID":  "${GOOGLE_CSE_ID}",
			}),
			"browser-use": self("browser-use", nil),
			"document": self("document", map[string]string{
				"DATALAB_API_KEY": "${DATALAB_API_KEY}",
			}),
			"vision": self("vision", map[string]string{
				"GEMINI_API_KEY": "${GEMINI_API_KEY}",
			}),
			"think": self("think", map[string]string{
				"API_KEY":  "${API_KEY}",
				"BASE_URL": "${BASE_URL}",
			}),
		},
	}
}

// LoadConfig reads a server map from a YAML file. Placeholders are not
// expanded here.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read mcp config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse mcp config: %w", err)
	}

	return cfg, nil
}

// Resolved returns a copy of the config with ${VAR} placeholders in env
// values expanded from the process environment.
func (c Config) Resolved() Config {
	out := Config{Servers: make(map[string]ServerSpec, len(c.Servers))}

	for name, spec := range c.Servers {
		resolved := ServerSpec{
			Command: spec.Command,
			Args:    append([]string(nil), spec.Args...),
		}

		if spec.Env != nil {
			resolved.Env = make(map[string]string, len(spec.Env))
			for k, v := range spec.Env {
				resolved.Env[k] = os.ExpandEnv(v)
			}
		}

		out.Servers[name] = resolved
	}

	return out
}
