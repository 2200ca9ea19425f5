package domain

// Kind discriminates normal taxonomy nodes from special promotional tiles.
type Kind string

func (k Kind) String() string {
	return string(k)
}

const (
	KindNormal  Kind = "normal"  // Browsable taxonomy entry
	KindSpecial Kind = "special" // Banner tile with promotional imagery
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindNormal, KindSpecial:
		return true
	default:
		return false
	}
}
