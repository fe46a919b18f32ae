package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"frostadvisor/internal/logging"
	"frostadvisor/internal/types"
)

// Embedded defaults, used when no catalog paths are configured. Explicit
// paths always win so operators can ship corrected tables without a
// rebuild.
//
//go:embed data/heroes.json
var defaultHeroesJSON []byte

//go:embed data/lineups.json
var defaultLineupsJSON []byte

type heroesFile struct {
	Heroes []types.HeroEntry `json:"heroes"`
}

type lineupsFile struct {
	Modes map[string]types.LineupTemplate `json:"modes"`
}

// Load reads both catalog tables. Empty paths use the embedded defaults.
// Any failure is returned to the caller; catalog load failure is fatal at
// process startup.
func Load(heroesPath, lineupsPath string) (*Catalog, error) {
	timer := logging.StartTimer(logging.CategoryCatalog, "catalog.Load")
	defer timer.Stop()

	heroesData, src, err := readSource(heroesPath, defaultHeroesJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to read hero catalog: %w", err)
	}
	logging.Catalog("loading hero catalog from %s", src)

	lineupsData, src, err := readSource(lineupsPath, defaultLineupsJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to read lineup catalog: %w", err)
	}
	logging.Catalog("loading lineup templates from %s", src)

	var hf heroesFile
	if err := json.Unmarshal(heroesData, &hf); err != nil {
		return nil, fmt.Errorf("failed to parse hero catalog: %w", err)
	}
	if len(hf.Heroes) == 0 {
		return nil, fmt.Errorf("hero catalog is empty")
	}

	var lf lineupsFile
	if err := json.Unmarshal(lineupsData, &lf); err != nil {
		return nil, fmt.Errorf("failed to parse lineup catalog: %w", err)
	}
	if len(lf.Modes) == 0 {
		return nil, fmt.Errorf("lineup catalog is empty")
	}

	c := &Catalog{
		heroes:    make(map[string]types.HeroEntry, len(hf.Heroes)),
		templates: make(map[string]types.LineupTemplate, len(lf.Modes)),
	}

	for _, h := range hf.Heroes {
		if h.Name == "" {
			return nil, fmt.Errorf("hero catalog entry with empty name")
		}
		key := strings.ToLower(h.Name)
		if _, dup := c.heroes[key]; dup {
			return nil, fmt.Errorf("duplicate hero catalog entry: %s", h.Name)
		}
		c.heroes[key] = h
		c.heroNames = append(c.heroNames, h.Name)
	}

	for key, tpl := range lf.Modes {
		if err := validateTemplate(key, tpl); err != nil {
			return nil, err
		}
		c.templates[strings.ToLower(key)] = tpl
		c.modeKeys = append(c.modeKeys, key)
	}
	sort.Strings(c.modeKeys)

	logging.Catalog("catalog loaded: %d heroes, %d lineup modes", len(c.heroes), len(c.templates))
	return c, nil
}

func readSource(path string, fallback []byte) ([]byte, string, error) {
	if path == "" {
		return fallback, "embedded defaults", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return data, path, nil
}

func validateTemplate(key string, tpl types.LineupTemplate) error {
	if len(tpl.Slots) == 0 {
		return fmt.Errorf("lineup template %q has no slots", key)
	}

	leads := 0
	for _, slot := range tpl.Slots {
		if slot.IsLead {
			leads++
		}
		if len(slot.Preferred) == 0 {
			return fmt.Errorf("lineup template %q has a slot with no preferred list", key)
		}
	}
	if leads > 1 {
		return fmt.Errorf("lineup template %q has %d lead slots, at most one allowed", key, leads)
	}

	sum := tpl.TroopRatio.Infantry + tpl.TroopRatio.Lancer + tpl.TroopRatio.Marksman
	if sum != 100 {
		return fmt.Errorf("lineup template %q troop ratio sums to %d, want 100", key, sum)
	}
	return nil
}
