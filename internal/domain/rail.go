package domain

// RailEntry is a top-level category as listed on the storefront menu index.
type RailEntry struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Kind     Kind   `json:"kind"`
	ImageRef string `json:"image_ref,omitempty"`
	PageURL  string `json:"page_url"` // Absolute URL of the category page
}
