package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// GroupFile is the on-disk shape of an owner roster:
//
//	groups:
//	  ATL1: ["Telecaller 3", "Telecaller 4"]
//	  TL2:  ["Telecaller 5"]
type GroupFile struct {
	Groups map[string][]string `yaml:"groups"`
}

var defaultGroups = map[string][]string{
	"Admin": {
		"Timir Chakraborty", "Jhuma Roy Chowdhury", "Nilanjan Bhattacherjee",
		"Barnali Bhattacherjee", "Twinkle Barua", "Surajit Mukherjee",
		"Paritosh Debbarma", "Group Leader", "Harendranath Ghosh",
		"Admin ", "Edutrack",
	},
	"ATL1": {
		"Telecaller 3", "Telecaller 4", "Telecaller 15", "Telecaller 16",
		"Telecaller 17", "Telecaller 22", "Telecaller 25", "Telecaller 27",
		"Telecaller 28", "Telecaller 49", "Telecaller 63", "Telecaller 65",
	},
	"TL1": {
		"Telecaller 1", "Telecaller 12", "Telecaller 19", "Telecaller 21",
		"Telecaller 26", "Telecaller 41", "Telecaller 48", "Telecaller 53",
		"Telecaller 55", "Telecaller 56", "Telecaller 60", "Telecaller 62",
		"Telecaller 64", "Telecaller 66", "TCE Mousumi",
	},
	"TL2": {
		"Telecaller 5", "Telecaller 6", "Telecaller 7", "Telecaller 13",
		"Telecaller 23", "Telecaller 45", "Telecaller 46", "Telecaller 50",
		"Telecaller 51", "Telecaller 52", "Telecaller 54", "Telecaller 57",
		"Telecaller 58", "Telecaller 59", "Telecaller 67",
	},
}

// DefaultGroupTable returns a fresh owner -> group map of the built-in roster.
// Keys are matched verbatim, including the trailing space in "Admin ".
func DefaultGroupTable() map[string]string {
	t, _ := invert(defaultGroups)
	return t
}

// LoadGroupTable reads a roster file. An empty path yields the built-in table.
func LoadGroupTable(path string) (map[string]string, error) {
	if path == "" {
		return DefaultGroupTable(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read groups file: %w", err)
	}
	return ParseGroupTable(b)
}

func ParseGroupTable(b []byte) (map[string]string, error) {
	var gf GroupFile
	if err := yaml.Unmarshal(b, &gf); err != nil {
		return nil, fmt.Errorf("parse groups file: %w", err)
	}
	if len(gf.Groups) == 0 {
		return nil, fmt.Errorf("parse groups file: no groups defined")
	}
	return invert(gf.Groups)
}

func invert(groups map[string][]string) (map[string]string, error) {
	out := make(map[string]string)
	for group, owners := range groups {
		if strings.TrimSpace(group) == "" {
			return nil, fmt.Errorf("group with empty name")
		}
		for _, o := range owners {
			if prev, ok := out[o]; ok && prev != group {
				return nil, fmt.Errorf("owner %q listed under %q and %q", o, prev, group)
			}
			out[o] = group
		}
	}
	return out, nil
}
