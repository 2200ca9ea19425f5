package httpapi

import (
	"storefront/catnav/internal/domain"
)

// NodeView is the JSON shape of any tree node.
type NodeView struct {
	Name        string      `json:"name"`
	Label       string      `json:"label"`
	Path        string      `json:"path"`
	Depth       int         `json:"depth"`
	Kind        domain.Kind `json:"kind,omitempty"`
	ImageRef    string      `json:"imageRef,omitempty"`
	HasChildren bool        `json:"hasChildren"`
}

type FiltersView struct {
	Path         string               `json:"path"`
	Filters      []domain.FilterGroup `json:"filters"`
	QuickFilters []domain.QuickFilter `json:"quickFilters"`
}

type errorView struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func newNodeView(node domain.Node) NodeView {
	info := node.Info()
	view := NodeView{
		Name:  info.Name,
		Label: info.Label,
		Path:  info.Path,
		Depth: node.Depth(),
	}

	switch n := node.(type) {
	case *domain.Root:
		view.HasChildren = true
	case *domain.Category:
		view.Kind = n.Kind
		view.ImageRef = n.ImageRef
		view.HasChildren = len(n.Subcategories) > 0
	case *domain.Subcategory:
		view.Kind = n.Kind
		view.ImageRef = n.ImageRef
		view.HasChildren = len(n.ThirdCategory) > 0
	case *domain.ThirdCategory:
		view.HasChildren = len(n.FourthCategory) > 0
	}

	return view
}

func newNodeViews(nodes []domain.Node) []NodeView {
	views := make([]NodeView, 0, len(nodes))
	for _, node := range nodes {
		views = append(views, newNodeView(node))
	}
	return views
}
