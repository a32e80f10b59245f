package template

import (
	"sort"
	"strings"

	"github.com/promptcrafter/promptcrafter/errors"
)

// ValidateParams verifies that template placeholders and configured params
// match exactly in both directions. The returned error names the missing
// entries on each side, sorted, and wraps ErrPlaceholderMismatch.
func ValidateParams(placeholders []string, params map[string]string) error {
	templateSet := make(map[string]bool, len(placeholders))
	for _, name := range placeholders {
		templateSet[name] = true
	}

	var missingInConfig []string
	for _, name := range placeholders {
		if _, ok := params[name]; !ok {
			missingInConfig = append(missingInConfig, name)
		}
	}

	var missingInTemplate []string
	for name := range params {
		if !templateSet[name] {
			missingInTemplate = append(missingInTemplate, name)
		}
	}

	if len(missingInConfig) == 0 && len(missingInTemplate) == 0 {
		return nil
	}

	sort.Strings(missingInConfig)
	sort.Strings(missingInTemplate)

	err := errors.Wrap(errors.ErrPlaceholderMismatch, "template and config params do not match")
	if len(missingInConfig) > 0 {
		err = errors.WithDetailf(err, "config is missing prompts for placeholders: %s",
			strings.Join(missingInConfig, ", "))
	}
	if len(missingInTemplate) > 0 {
		err = errors.WithDetailf(err, "template is missing placeholders for params: %s",
			strings.Join(missingInTemplate, ", "))
	}
	return errors.WithHint(err, "every {placeholder} needs a params entry with the same name, and vice versa")
}
