// Package catalog builds the read-only category tree consumed by the resolver
// and the scroll-spy menu.
package catalog

import (
	"storefront/catnav/internal/domain"
)

// Tree is the immutable four-level category hierarchy. It is safe for
// concurrent readers; callers must not mutate nodes obtained from it.
type Tree struct {
	categories []*domain.Category
	byName     map[string]*domain.Category
}

// New normalizes and validates categories and returns the tree built from
// them. The tree takes ownership of the slice and its nodes.
func New(categories []*domain.Category) (*Tree, error) {
	normalize(categories)

	if err := validate(categories); err != nil {
		return nil, err
	}

	byName := make(map[string]*domain.Category, len(categories))
	for _, category := range categories {
		byName[category.Name] = category
	}

	return &Tree{
		categories: categories,
		byName:     byName,
	}, nil
}

// Categories returns the top-level categories in rail order.
func (t *Tree) Categories() []*domain.Category {
	out := make([]*domain.Category, len(t.categories))
	copy(out, t.categories)
	return out
}

// Category returns the top-level category with the given name, or nil.
func (t *Tree) Category(name string) *domain.Category {
	return t.byName[name]
}

// Names returns the rail names in order.
func (t *Tree) Names() []string {
	names := make([]string, 0, len(t.categories))
	for _, category := range t.categories {
		names = append(names, category.Name)
	}
	return names
}

// Walk visits every node depth-first in definition order. Returning false
// from fn stops the walk.
func (t *Tree) Walk(fn func(domain.Node) bool) {
	for _, category := range t.categories {
		if !fn(category) {
			return
		}
		for _, sub := range category.Subcategories {
			if !fn(sub) {
				return
			}
			for _, third := range sub.ThirdCategory {
				if !fn(third) {
					return
				}
				for _, fourth := range third.FourthCategory {
					if !fn(fourth) {
						return
					}
				}
			}
		}
	}
}

// normalize fills derived fields: category paths and default kinds.
func normalize(categories []*domain.Category) {
	for _, category := range categories {
		if category == nil {
			continue
		}
		if category.Path == "" {
			category.Path = domain.PathPrefix + "/" + category.Name
		}
		if category.Kind == "" {
			category.Kind = domain.KindNormal
		}
		for _, sub := range category.Subcategories {
			if sub == nil {
				continue
			}
			if sub.Kind == "" {
				sub.Kind = domain.KindNormal
			}
		}
	}
}
