package catalog

import (
	"errors"
	"fmt"
	"strings"

	"storefront/catnav/internal/domain"
)

// ErrInvalidTree is returned when a tree definition breaks a structural invariant.
var ErrInvalidTree = errors.New("invalid category tree")

type validator struct {
	seen     map[string]string
	problems []error
}

func (v *validator) fail(format string, args ...any) {
	v.problems = append(v.problems, fmt.Errorf(format, args...))
}

// claim records path as used by the node described by owner.
func (v *validator) claim(path, owner string) {
	if prev, ok := v.seen[path]; ok {
		v.fail("duplicate path %s (%s and %s)", path, prev, owner)
		return
	}
	v.seen[path] = owner
}

func (v *validator) node(info *domain.NodeInfo, parentPath string, depth int) {
	if info.Name == "" || strings.Contains(info.Name, "/") {
		v.fail("invalid name %q under %s", info.Name, parentPath)
		return
	}
	want := parentPath + "/" + info.Name
	if info.Path != want {
		v.fail("path %s of %q must be %s", info.Path, info.Name, want)
	}
	if got := strings.Count(info.Path, "/") - 1; got != depth {
		v.fail("path %s must have %d segments, has %d", info.Path, depth, got)
	}
	v.claim(info.Path, info.Name)
}

func validate(categories []*domain.Category) error {
	v := &validator{seen: make(map[string]string)}
	names := make(map[string]bool, len(categories))

	for i, category := range categories {
		if category == nil {
			v.fail("category %d is nil", i)
			continue
		}
		if category.Name == "" || strings.Contains(category.Name, "/") {
			v.fail("invalid category name %q", category.Name)
			continue
		}
		if names[category.Name] {
			v.fail("duplicate category %s", category.Name)
			continue
		}
		names[category.Name] = true

		if !category.Kind.Valid() {
			v.fail("category %s has unknown kind %q", category.Name, category.Kind)
		}
		if want := domain.PathPrefix + "/" + category.Name; category.Path != want {
			v.fail("category %s path %s must be %s", category.Name, category.Path, want)
		}

		homes := 0
		for _, sub := range category.Subcategories {
			if sub == nil {
				v.fail("category %s has a nil subcategory", category.Name)
				continue
			}
			if !sub.Kind.Valid() {
				v.fail("subcategory %s has unknown kind %q", sub.Path, sub.Kind)
			}
			if category.Kind == domain.KindSpecial {
				if sub.Kind != domain.KindSpecial {
					v.fail("special category %s contains normal subcategory %s", category.Name, sub.Name)
				}
				if len(sub.ThirdCategory) > 0 {
					v.fail("special subcategory %s must not have third-level children", sub.Path)
				}
			}

			// The home entry shares its category's path.
			if sub.Path == category.Path {
				homes++
				if homes > 1 {
					v.fail("category %s has more than one home subcategory", category.Name)
				}
				v.claim(sub.Path, sub.Name)
				if len(sub.ThirdCategory) > 0 {
					v.fail("home subcategory %s must not have third-level children", sub.Name)
				}
				continue
			}
			v.node(&sub.NodeInfo, category.Path, 2)

			for _, third := range sub.ThirdCategory {
				if third == nil {
					v.fail("subcategory %s has a nil child", sub.Path)
					continue
				}
				v.node(&third.NodeInfo, sub.Path, 3)
				for _, fourth := range third.FourthCategory {
					if fourth == nil {
						v.fail("third category %s has a nil child", third.Path)
						continue
					}
					v.node(&fourth.NodeInfo, third.Path, 4)
				}
			}
		}
	}

	if len(v.problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidTree, errors.Join(v.problems...))
}
