// Package fleet exposes the read-only vending machine catalog shown on
// the console's fleet screen. The catalog ships embedded in the binary;
// no capability gates it.
package fleet

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed machines.yaml
var catalogYAML []byte

type Status string

const (
	StatusOperational Status = "operational"
	StatusMaintenance Status = "maintenance"
	StatusOffline     Status = "offline"
)

type Machine struct {
	ID       string `yaml:"id"`
	Location string `yaml:"location"`
	City     string `yaml:"city"`
	Status   Status `yaml:"status"`
}

// Address renders the machine's placement as a single display line.
func (m Machine) Address() string {
	return fmt.Sprintf("%s, %s", m.Location, m.City)
}

type catalogFile struct {
	Machines []Machine `yaml:"machines"`
}

// Load parses the embedded catalog, sorted by machine id.
func Load() ([]Machine, error) {
	var f catalogFile
	if err := yaml.Unmarshal(catalogYAML, &f); err != nil {
		return nil, fmt.Errorf("parse machine catalog: %w", err)
	}
	for i, m := range f.Machines {
		if m.ID == "" {
			return nil, fmt.Errorf("machine catalog entry %d: missing id", i)
		}
		switch m.Status {
		case StatusOperational, StatusMaintenance, StatusOffline:
		default:
			return nil, fmt.Errorf("machine %s: unknown status %q", m.ID, m.Status)
		}
	}
	sort.Slice(f.Machines, func(i, j int) bool { return f.Machines[i].ID < f.Machines[j].ID })
	return f.Machines, nil
}
