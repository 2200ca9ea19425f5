package menu

import (
	"storefront/catnav/internal/catalog"
	"storefront/catnav/internal/domain"
)

type lineKind int

const (
	lineHeader lineKind = iota
	lineSubcategory
	lineBanner
	lineThird
	lineFourth
	lineBlank
)

type line struct {
	kind lineKind
	text string
	path string
}

// layout flattens the tree into pane rows and records the header row of each
// category section.
func layout(tree *catalog.Tree) ([]line, map[string]int) {
	var lines []line
	anchors := make(map[string]int)

	for _, category := range tree.Categories() {
		anchors[category.Name] = len(lines)
		lines = append(lines, line{kind: lineHeader, text: category.Label, path: category.Path})

		for _, sub := range category.Subcategories {
			kind := lineSubcategory
			if sub.Kind == domain.KindSpecial {
				kind = lineBanner
			}
			lines = append(lines, line{kind: kind, text: sub.Label, path: sub.Path})

			for _, third := range sub.ThirdCategory {
				lines = append(lines, line{kind: lineThird, text: third.Label, path: third.Path})
				for _, fourth := range third.FourthCategory {
					lines = append(lines, line{kind: lineFourth, text: fourth.Label, path: fourth.Path})
				}
			}
		}
		lines = append(lines, line{kind: lineBlank})
	}

	return lines, anchors
}
