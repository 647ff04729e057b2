package catalogfile

import (
	"fmt"
	"os"

	"lnct-quiz-console/internal/domain"
	"lnct-quiz-console/internal/infra/memory"
	"gopkg.in/yaml.v3"
)

type document struct {
	Categories []domain.Category `yaml:"categories"`
}

// Load reads a YAML catalog. Categories keep file order.
func Load(path string) (*memory.StaticCatalogLoader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	categories, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return memory.NewStaticCatalogLoader(categories), nil
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) ([]domain.Category, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	for _, c := range doc.Categories {
		if c.Name == "" {
			return nil, fmt.Errorf("category without name")
		}
		for i, q := range c.Questions {
			if len(q.Options) == 0 {
				return nil, fmt.Errorf("%s question %d: no options", c.Name, i+1)
			}
			if q.Correct < 0 || q.Correct >= len(q.Options) {
				return nil, fmt.Errorf("%s question %d: correct index %d out of range", c.Name, i+1, q.Correct)
			}
		}
	}
	return doc.Categories, nil
}
