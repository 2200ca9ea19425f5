package domain

// Category is a top-level rail entry.
type Category struct {
	NodeInfo          `yaml:",inline"`
	Kind              Kind           `json:"kind" yaml:"kind"`
	ImageRef          string         `json:"imageRef,omitempty" yaml:"imageRef,omitempty"`
	Subcategories     []*Subcategory `json:"subcategories" yaml:"subcategories"`
	RecommendedBrands []Brand        `json:"recommendedBrands,omitempty" yaml:"recommendedBrands,omitempty"`
}

func (c *Category) Depth() int {
	return 1
}

// Home returns the subcategory whose path equals the category's own path.
func (c *Category) Home() *Subcategory {
	for _, sub := range c.Subcategories {
		if sub.Path == c.Path {
			return sub
		}
	}
	return nil
}

// Subcategory is a depth-2 node. Special subcategories carry an ImageRef and
// are rendered as banner tiles.
type Subcategory struct {
	NodeInfo      `yaml:",inline"`
	Kind          Kind             `json:"kind" yaml:"kind"`
	ImageRef      string           `json:"imageRef,omitempty" yaml:"imageRef,omitempty"`
	Filters       []FilterGroup    `json:"filters,omitempty" yaml:"filters,omitempty"`
	QuickFilters  []QuickFilter    `json:"quickFilters,omitempty" yaml:"quickFilters,omitempty"`
	ThirdCategory []*ThirdCategory `json:"thirdCategory" yaml:"thirdCategory"`
}

func (s *Subcategory) Depth() int {
	return 2
}

func (s *Subcategory) IsSpecial() bool {
	return s.Kind == KindSpecial
}

type ThirdCategory struct {
	NodeInfo       `yaml:",inline"`
	Filters        []FilterGroup     `json:"filters,omitempty" yaml:"filters,omitempty"`
	QuickFilters   []QuickFilter     `json:"quickFilters,omitempty" yaml:"quickFilters,omitempty"`
	FourthCategory []*FourthCategory `json:"fourthCategory,omitempty" yaml:"fourthCategory,omitempty"`
}

func (t *ThirdCategory) Depth() int {
	return 3
}

// FourthCategory is a leaf.
type FourthCategory struct {
	NodeInfo `yaml:",inline"`
}

func (f *FourthCategory) Depth() int {
	return 4
}
