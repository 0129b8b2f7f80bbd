package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/layoutkit/pkg/domain"
)

// ValidateLayout checks a stored layout for problems the editor would not
// produce: unnamed or duplicate groups, bad column counts, items without a
// dataField, fields placed twice and, when catalog is given, fields the
// catalog does not define.
func ValidateLayout(layout []domain.ExportGroup, catalog *domain.Catalog) error {
	var errors []string

	groups := make(map[string]string) // normalized -> original
	placed := make(map[string]string) // dataField -> group

	for gi, g := range layout {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			errors = append(errors, fmt.Sprintf("Group #%d has no name", gi+1))
		} else {
			key := strings.ToLower(name)
			if prev, dup := groups[key]; dup {
				errors = append(errors, fmt.Sprintf("Duplicate group name: '%s' (already used by '%s')", g.Name, prev))
			} else {
				groups[key] = g.Name
			}
		}

		if g.ColCount < 1 {
			errors = append(errors, fmt.Sprintf("Group '%s' has invalid colCount %d", g.Name, g.ColCount))
		}

		for ii, item := range g.Items {
			field, _ := domain.AttrString(item, domain.KeyDataField)
			if field == "" {
				errors = append(errors, fmt.Sprintf("Group '%s' item #%d has no dataField", g.Name, ii+1))
				continue
			}
			if field == domain.SpacerDataField {
				continue
			}

			if prev, dup := placed[field]; dup {
				errors = append(errors, fmt.Sprintf("Field '%s' placed more than once (groups '%s' and '%s')", field, prev, g.Name))
			} else {
				placed[field] = g.Name
			}

			if catalog != nil {
				if _, ok := catalog.Get(field); !ok {
					errors = append(errors, fmt.Sprintf("Unknown field: '%s' in group '%s'", field, g.Name))
				}
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}

	return nil
}
