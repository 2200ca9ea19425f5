// Package resolver maps category paths onto nodes of the category tree.
//
// All operations are pure reads over an immutable tree. A path that is not a
// category path, or that names nothing at the requested depth, yields nil or
// an empty list rather than an error; callers fall back to a parent-level view.
package resolver

import (
	"strings"

	"storefront/catnav/internal/catalog"
	"storefront/catnav/internal/domain"
)

type Resolver struct {
	tree *catalog.Tree
}

func New(tree *catalog.Tree) *Resolver {
	return &Resolver{tree: tree}
}

// ParsePath splits a category path into its non-empty segments. ok is false
// when path is not under /category.
func ParsePath(path string) (segments []string, ok bool) {
	var rest string
	switch {
	case path == domain.PathPrefix:
		return []string{}, true
	case strings.HasPrefix(path, domain.PathPrefix+"/"):
		rest = path[len(domain.PathPrefix)+1:]
	default:
		return nil, false
	}

	segments = make([]string, 0, domain.MaxDepth)
	for _, segment := range strings.Split(rest, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments, true
}

// Depth returns the number of segments below /category, or -1 for paths
// outside the category tree.
func Depth(path string) int {
	segments, ok := ParsePath(path)
	if !ok {
		return -1
	}
	return len(segments)
}

// ParentPath returns the path one level up. The parent of a depth-1 path is
// the bare category index; non-category and depth-0 paths have no parent.
func ParentPath(path string) string {
	segments, ok := ParsePath(path)
	if !ok || len(segments) == 0 {
		return ""
	}
	return join(segments[:len(segments)-1])
}

func join(segments []string) string {
	if len(segments) == 0 {
		return domain.PathPrefix
	}
	return domain.PathPrefix + "/" + strings.Join(segments, "/")
}

// ResolveNode returns the node at exactly the given path, or nil. A depth-1
// path resolves to the category's home subcategory.
func (r *Resolver) ResolveNode(path string) domain.Node {
	segments, ok := ParsePath(path)
	if !ok {
		return nil
	}

	switch len(segments) {
	case 1:
		if category := r.tree.Category(segments[0]); category != nil {
			if home := subcategoryAt(category, join(segments)); home != nil {
				return home
			}
		}
	case 2:
		if sub := r.subcategory(segments); sub != nil {
			return sub
		}
	case 3:
		if third := r.third(segments); third != nil {
			return third
		}
	case 4:
		if fourth := r.fourth(segments); fourth != nil {
			return fourth
		}
	}
	return nil
}

// ChildrenForDisplay returns the tiles a page for path should list. When the
// resolved node has no deeper level, the current level is shown again.
func (r *Resolver) ChildrenForDisplay(path string) []domain.Node {
	segments, ok := ParsePath(path)
	if !ok || len(segments) == 0 || len(segments) > domain.MaxDepth {
		return []domain.Node{}
	}

	category := r.tree.Category(segments[0])
	if category == nil {
		return []domain.Node{}
	}

	switch len(segments) {
	case 1:
		return domain.AsNodes(category.Subcategories)
	case 2:
		sub := subcategoryAt(category, join(segments))
		if sub == nil {
			return []domain.Node{}
		}
		if len(sub.ThirdCategory) > 0 {
			return domain.AsNodes(sub.ThirdCategory)
		}
		return domain.AsNodes(category.Subcategories)
	case 3:
		sub := subcategoryAt(category, join(segments[:2]))
		if sub == nil {
			return []domain.Node{}
		}
		third := thirdAt(sub, join(segments))
		if third == nil {
			return []domain.Node{}
		}
		if len(third.FourthCategory) > 0 {
			return domain.AsNodes(third.FourthCategory)
		}
		return domain.AsNodes(sub.ThirdCategory)
	default:
		third := r.third(segments[:3])
		if third == nil {
			return []domain.Node{}
		}
		return domain.AsNodes(third.FourthCategory)
	}
}

// BreadcrumbChain returns the nodes from depth 1 down to path. Each level is
// looked up on its own, so the chain ends at the last level that exists.
func (r *Resolver) BreadcrumbChain(path string) []domain.Node {
	segments, ok := ParsePath(path)
	if !ok || len(segments) > domain.MaxDepth {
		return []domain.Node{}
	}
	if len(segments) == 0 {
		return []domain.Node{domain.CategoryRoot}
	}

	chain := make([]domain.Node, 0, len(segments))

	category := r.tree.Category(segments[0])
	if category == nil {
		return chain
	}
	chain = append(chain, category)

	if len(segments) >= 2 {
		sub := r.subcategory(segments[:2])
		if sub == nil {
			return chain
		}
		chain = append(chain, sub)
	}
	if len(segments) >= 3 {
		third := r.third(segments[:3])
		if third == nil {
			return chain
		}
		chain = append(chain, third)
	}
	if len(segments) == 4 {
		fourth := r.fourth(segments)
		if fourth == nil {
			return chain
		}
		chain = append(chain, fourth)
	}
	return chain
}

// FiltersFor returns the filter groups and quick filters for the page at path.
// Each list comes from the deepest node on the path that defines one; a
// depth-1 path reads its home subcategory.
func (r *Resolver) FiltersFor(path string) ([]domain.FilterGroup, []domain.QuickFilter) {
	var (
		filters []domain.FilterGroup
		quick   []domain.QuickFilter
	)

	chain := r.BreadcrumbChain(path)
	if len(chain) == 1 {
		if home := r.ResolveNode(path); home != nil {
			chain = append(chain, home)
		}
	}

	for i := len(chain) - 1; i >= 0; i-- {
		var f []domain.FilterGroup
		var q []domain.QuickFilter
		switch node := chain[i].(type) {
		case *domain.Subcategory:
			f, q = node.Filters, node.QuickFilters
		case *domain.ThirdCategory:
			f, q = node.Filters, node.QuickFilters
		}
		if filters == nil && len(f) > 0 {
			filters = f
		}
		if quick == nil && len(q) > 0 {
			quick = q
		}
	}

	return filters, quick
}

func (r *Resolver) subcategory(segments []string) *domain.Subcategory {
	category := r.tree.Category(segments[0])
	if category == nil {
		return nil
	}
	return subcategoryAt(category, join(segments[:2]))
}

func (r *Resolver) third(segments []string) *domain.ThirdCategory {
	sub := r.subcategory(segments)
	if sub == nil {
		return nil
	}
	return thirdAt(sub, join(segments[:3]))
}

func (r *Resolver) fourth(segments []string) *domain.FourthCategory {
	third := r.third(segments)
	if third == nil {
		return nil
	}
	return fourthAt(third, join(segments[:4]))
}

func subcategoryAt(category *domain.Category, path string) *domain.Subcategory {
	for _, sub := range category.Subcategories {
		if sub.Path == path {
			return sub
		}
	}
	return nil
}

func thirdAt(sub *domain.Subcategory, path string) *domain.ThirdCategory {
	for _, third := range sub.ThirdCategory {
		if third.Path == path {
			return third
		}
	}
	return nil
}

func fourthAt(third *domain.ThirdCategory, path string) *domain.FourthCategory {
	for _, fourth := range third.FourthCategory {
		if fourth.Path == path {
			return fourth
		}
	}
	return nil
}
