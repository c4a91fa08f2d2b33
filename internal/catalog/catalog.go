// Package catalog holds the static exercise library. It is loaded once at
// startup from an embedded YAML file and never mutated.
package catalog

import (
	_ "embed"
	"fmt"

	"github.com/meltforce/bodycoach/internal/equipment"
	"github.com/meltforce/bodycoach/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed exercises.yaml
var exercisesYAML []byte

// Exercise is one catalog entry. Catalog order is meaningful: fallback
// selection picks the first eligible match in file order.
type Exercise struct {
	ID              string                   `yaml:"id" json:"id"`
	Name            string                   `yaml:"name" json:"name"`
	Category        models.Category          `yaml:"category" json:"category"`
	MovementPattern []models.MovementPattern `yaml:"patterns" json:"movementPattern"`
	LoadType        models.LoadType          `yaml:"load_type" json:"loadType"`
	Equipment       []equipment.Equipment    `yaml:"equipment" json:"equipment"`
	Cues            []string                 `yaml:"cues" json:"cues"`
	CommonMistakes  []string                 `yaml:"common_mistakes" json:"commonMistakes,omitempty"`
	SwapOptions     []string                 `yaml:"swap_options" json:"swapOptions,omitempty"`
}

// HasPattern reports whether the exercise trains the given movement pattern.
func (e *Exercise) HasPattern(p models.MovementPattern) bool {
	for _, mp := range e.MovementPattern {
		if mp == p {
			return true
		}
	}
	return false
}

// RequiresOnly reports whether the exercise needs the given single token.
func (e *Exercise) RequiresOnly(eq equipment.Equipment) bool {
	for _, item := range e.Equipment {
		if item == eq {
			return true
		}
	}
	return false
}

// Catalog is the read-only exercise lookup passed to the engines.
type Catalog struct {
	exercises []Exercise
	byID      map[string]*Exercise
}

// Load parses the embedded exercise library.
func Load() (*Catalog, error) {
	var file struct {
		Exercises []Exercise `yaml:"exercises"`
	}
	if err := yaml.Unmarshal(exercisesYAML, &file); err != nil {
		return nil, fmt.Errorf("parsing exercise catalog: %w", err)
	}
	if len(file.Exercises) == 0 {
		return nil, fmt.Errorf("exercise catalog is empty")
	}

	c := &Catalog{
		exercises: file.Exercises,
		byID:      make(map[string]*Exercise, len(file.Exercises)),
	}
	for i := range c.exercises {
		ex := &c.exercises[i]
		if _, dup := c.byID[ex.ID]; dup {
			return nil, fmt.Errorf("duplicate exercise id %q", ex.ID)
		}
		c.byID[ex.ID] = ex
	}
	return c, nil
}

// ByID returns the exercise with the given id, or nil.
func (c *Catalog) ByID(id string) *Exercise {
	return c.byID[id]
}

// All returns every exercise in catalog order. Callers must not mutate.
func (c *Catalog) All() []Exercise {
	return c.exercises
}
