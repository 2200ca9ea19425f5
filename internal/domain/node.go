package domain

// PathPrefix is the root of every category path.
const PathPrefix = "/category"

// MaxDepth is the deepest level of the category tree.
const MaxDepth = 4

// NodeInfo holds the fields shared by every level of the tree.
type NodeInfo struct {
	Name  string `json:"name" yaml:"name"`
	Label string `json:"label" yaml:"label"`
	Path  string `json:"path" yaml:"path"`
}

// Info returns the shared node fields.
func (n *NodeInfo) Info() *NodeInfo {
	return n
}

// Node is any entry of the category tree. The concrete type is one of
// *Root, *Category, *Subcategory, *ThirdCategory or *FourthCategory.
type Node interface {
	Info() *NodeInfo
	Depth() int
}

// Root is the breadcrumb pseudo-entry for the bare category index.
type Root struct {
	NodeInfo `yaml:",inline"`
}

func (r *Root) Depth() int {
	return 0
}

// CategoryRoot is the shared depth-0 breadcrumb entry.
var CategoryRoot = &Root{NodeInfo: NodeInfo{
	Name:  "category",
	Label: "Category",
	Path:  PathPrefix,
}}

// AsNodes converts a typed node slice into a []Node. The result is never nil.
func AsNodes[T Node](items []T) []Node {
	nodes := make([]Node, 0, len(items))
	for _, item := range items {
		nodes = append(nodes, item)
	}
	return nodes
}
