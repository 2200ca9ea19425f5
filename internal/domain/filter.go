package domain

type FilterOption struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

type FilterGroup struct {
	Name    string         `json:"name" yaml:"name"`
	Label   string         `json:"label" yaml:"label"`
	Options []FilterOption `json:"options" yaml:"options"`
}

// QuickFilter is a one-tap filter chip shown above a listing.
type QuickFilter struct {
	Name  string `json:"name" yaml:"name"`
	Label string `json:"label" yaml:"label"`
	Query string `json:"query,omitempty" yaml:"query,omitempty"`
}

type Brand struct {
	Name     string `json:"name" yaml:"name"`
	Label    string `json:"label" yaml:"label"`
	ImageRef string `json:"imageRef,omitempty" yaml:"imageRef,omitempty"`
}
