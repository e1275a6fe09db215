package graph

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/c360/semschema/errors"
)

// SourceSpec describes one ontology source in a source-list file.
type SourceSpec struct {
	// Name is either a well-known ontology name (qudt, foaf, skos) or a
	// free-form label when Location is set.
	Name string `yaml:"name"`

	// Location is a URL or file path. Optional for well-known names.
	Location string `yaml:"location,omitempty"`
}

// sourceList is the YAML document shape of a source-list file.
type sourceList struct {
	Sources []SourceSpec `yaml:"sources"`
}

// LoadSourceList reads a YAML ontology source-list file and resolves each
// entry to a fetchable location.
func LoadSourceList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapInvalid(err, "graph", "LoadSourceList", "source list read")
	}

	var list sourceList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrGraphParse, err),
			"graph", "LoadSourceList", "source list parse")
	}
	if len(list.Sources) == 0 {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: no sources declared", errors.ErrGraphParse),
			"graph", "LoadSourceList", "source list parse")
	}

	locations := make([]string, 0, len(list.Sources))
	for i, spec := range list.Sources {
		switch {
		case spec.Location != "":
			locations = append(locations, spec.Location)
		case spec.Name != "":
			url, err := ResolveWellKnown(spec.Name)
			if err != nil {
				return nil, errors.WrapInvalid(err, "graph", "LoadSourceList", "source resolve")
			}
			locations = append(locations, url)
		default:
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: source %d has neither name nor location", errors.ErrGraphParse, i),
				"graph", "LoadSourceList", "source list parse")
		}
	}
	return locations, nil
}
