package template

import (
	"os"

	"github.com/promptcrafter/promptcrafter/errors"
)

// LoadFile reads and parses a template file, including optional frontmatter.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithHintf(
				errors.Wrapf(errors.ErrNotFound, "template file %s", path),
				"create %s or point template.path at an existing file", path)
		}
		return nil, errors.Wrapf(err, "failed to read template file %s", path)
	}

	doc, err := ParseDocument(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse template file %s", path)
	}
	return doc, nil
}
