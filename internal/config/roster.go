package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Roster is the employee status table shown on the dashboard index.
type Roster struct {
	Title     string           `yaml:"title" env-default:"Employee Status"`
	Columns   []string         `yaml:"columns"`
	Employees []EmployeeConfig `yaml:"employees"`
}

type EmployeeConfig struct {
	Name       string `yaml:"name"`
	Department string `yaml:"department"`
	Status     string `yaml:"status"`
}

func MustLoadRoster(configPath string) *Roster {
	roster, err := LoadRoster(configPath)
	if err != nil {
		panic(err.Error())
	}
	return roster
}

func LoadRoster(configPath string) (*Roster, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("roster file not found: %s", configPath)
	}

	var roster Roster
	if err := cleanenv.ReadConfig(configPath, &roster); err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	if len(roster.Columns) == 0 {
		roster.Columns = []string{"Name", "Department", "Status"}
	}

	return &roster, nil
}
