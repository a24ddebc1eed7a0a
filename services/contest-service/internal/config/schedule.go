package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// PromptSchedule maps period keys to prompts, e.g.
//
//	prompts:
//	  "2026-10-16": "Alien Invasion"
type PromptSchedule struct {
	Prompts map[string]string `yaml:"prompts"`
}

// LoadPromptSchedule reads a YAML schedule. An empty path yields an empty schedule.
func LoadPromptSchedule(path string) (*PromptSchedule, error) {
	schedule := &PromptSchedule{Prompts: map[string]string{}}
	if path == "" {
		return schedule, nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt schedule: %w", err)
	}
	if err := yaml.Unmarshal(buf, schedule); err != nil {
		return nil, fmt.Errorf("failed to parse prompt schedule: %w", err)
	}
	if schedule.Prompts == nil {
		schedule.Prompts = map[string]string{}
	}
	return schedule, nil
}
