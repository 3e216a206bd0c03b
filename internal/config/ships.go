package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/law-makers/shiptrack/pkg/models"
)

// ErrNoShips is returned for a ship list without entries
var ErrNoShips = errors.New("no ships configured")

// LoadShips reads and validates the fleet from a JSON array file
func LoadShips(path string) ([]models.ShipConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ships file: %w", err)
	}
	return ParseShips(data)
}

// ParseShips validates a JSON array of ship entries
func ParseShips(data []byte) ([]models.ShipConfig, error) {
	var ships []models.ShipConfig
	if err := json.Unmarshal(data, &ships); err != nil {
		return nil, fmt.Errorf("parse ships file: %w", err)
	}
	if len(ships) == 0 {
		return nil, ErrNoShips
	}

	seen := make(map[string]int, len(ships))
	for i := range ships {
		s := &ships[i]
		s.SiteID = strings.TrimSpace(s.SiteID)
		s.VesselID = strings.TrimSpace(s.VesselID)
		s.Name = strings.TrimSpace(s.Name)

		var missing []string
		if s.SiteID == "" {
			missing = append(missing, "ship_id")
		}
		if s.VesselID == "" {
			missing = append(missing, "vessel_id")
		}
		if s.Name == "" {
			missing = append(missing, "name")
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("ship entry %d: missing %s", i, strings.Join(missing, ", "))
		}
		if j, dup := seen[s.VesselID]; dup {
			return nil, fmt.Errorf("ship entry %d: vessel_id %q already used by entry %d", i, s.VesselID, j)
		}
		seen[s.VesselID] = i
	}
	return ships, nil
}

// SelectShips keeps the ships whose name or vessel id is in names,
// preserving file order. An empty names list selects every ship.
func SelectShips(ships []models.ShipConfig, names []string) ([]models.ShipConfig, error) {
	if len(names) == 0 {
		return ships, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(strings.TrimSpace(n))] = false
	}

	var out []models.ShipConfig
	for _, s := range ships {
		selected := false
		for _, k := range []string{strings.ToLower(s.Name), strings.ToLower(s.VesselID)} {
			if _, ok := want[k]; ok {
				want[k] = true
				selected = true
			}
		}
		if selected {
			out = append(out, s)
		}
	}
	for n, matched := range want {
		if !matched {
			return nil, fmt.Errorf("no configured ship named %q", n)
		}
	}
	return out, nil
}
