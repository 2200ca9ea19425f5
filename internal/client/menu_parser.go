package client

import (
	"fmt"
	"strings"

	"storefront/catnav/internal/domain"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

// menuParser turns storefront menu markup into category nodes. Paths are
// derived from names so the result always satisfies the tree invariants.
type menuParser struct {
	baseURL string
}

func newMenuParser(baseURL string) *menuParser {
	return &menuParser{
		baseURL: baseURL,
	}
}

// ParseMenuIndex reads the rail: nav[data-rail] a[data-category].
func (p *menuParser) ParseMenuIndex(html string) ([]domain.RailEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	entries := make([]domain.RailEntry, 0)
	seen := make(map[string]bool)

	doc.Find("nav[data-rail] a[data-category]").Each(func(i int, link *goquery.Selection) {
		name := strings.TrimSpace(link.AttrOr("data-category", ""))
		if name == "" || seen[name] {
			return
		}
		seen[name] = true

		href := link.AttrOr("href", domain.PathPrefix+"/"+name)
		entries = append(entries, domain.RailEntry{
			Name:     name,
			Label:    text(link),
			Kind:     parseKind(link.AttrOr("data-kind", "")),
			ImageRef: link.AttrOr("data-image", ""),
			PageURL:  p.absolute(href),
		})
	})

	if len(entries) == 0 {
		return nil, fmt.Errorf("no rail entries found")
	}

	log.Debugf("Parsed %d rail entries", len(entries))
	return entries, nil
}

// ParseCategoryPage reads section[data-subcategory] blocks of a category page.
func (p *menuParser) ParseCategoryPage(html string, entry domain.RailEntry) (*domain.Category, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	categoryPath := domain.PathPrefix + "/" + entry.Name
	category := &domain.Category{
		NodeInfo: domain.NodeInfo{
			Name:  entry.Name,
			Label: entry.Label,
			Path:  categoryPath,
		},
		Kind:          entry.Kind,
		ImageRef:      entry.ImageRef,
		Subcategories: make([]*domain.Subcategory, 0),
	}
	if !category.Kind.Valid() {
		category.Kind = domain.KindNormal
	}

	doc.Find("aside[data-brands] [data-brand]").Each(func(i int, s *goquery.Selection) {
		category.RecommendedBrands = append(category.RecommendedBrands, domain.Brand{
			Name:     s.AttrOr("data-brand", ""),
			Label:    text(s),
			ImageRef: s.AttrOr("data-image", ""),
		})
	})

	doc.Find("section[data-subcategory]").Each(func(i int, section *goquery.Selection) {
		name := strings.TrimSpace(section.AttrOr("data-name", ""))
		if name == "" {
			return
		}

		sub := &domain.Subcategory{
			NodeInfo: domain.NodeInfo{
				Name:  name,
				Label: text(section.Find("h2").First()),
				Path:  categoryPath + "/" + name,
			},
			Kind:          parseKind(section.AttrOr("data-kind", "")),
			ImageRef:      section.AttrOr("data-image", ""),
			ThirdCategory: make([]*domain.ThirdCategory, 0),
		}
		if _, home := section.Attr("data-home"); home {
			sub.Path = categoryPath
		}
		if category.Kind == domain.KindSpecial {
			sub.Kind = domain.KindSpecial
		}

		sub.Filters = parseFilters(section, "li[data-third]")
		sub.QuickFilters = parseQuickFilters(section, "li[data-third]")

		// Home entries and promotional tiles have no drill-down.
		if sub.Path != categoryPath && category.Kind != domain.KindSpecial {
			section.Find("li[data-third]").Each(func(j int, li *goquery.Selection) {
				if third := parseThird(li, sub.Path); third != nil {
					sub.ThirdCategory = append(sub.ThirdCategory, third)
				}
			})
		}

		category.Subcategories = append(category.Subcategories, sub)
	})

	if len(category.Subcategories) == 0 {
		return nil, fmt.Errorf("no subcategories found for %s", entry.Name)
	}

	log.Debugf("Parsed category %s with %d subcategories", entry.Name, len(category.Subcategories))
	return category, nil
}

func parseThird(li *goquery.Selection, parentPath string) *domain.ThirdCategory {
	name := strings.TrimSpace(li.AttrOr("data-third", ""))
	if name == "" {
		return nil
	}

	third := &domain.ThirdCategory{
		NodeInfo: domain.NodeInfo{
			Name:  name,
			Label: text(li.ChildrenFiltered("span").First()),
			Path:  parentPath + "/" + name,
		},
		Filters:      parseFilters(li, ""),
		QuickFilters: parseQuickFilters(li, ""),
	}

	li.Find("li[data-fourth]").Each(func(k int, leaf *goquery.Selection) {
		leafName := strings.TrimSpace(leaf.AttrOr("data-fourth", ""))
		if leafName == "" {
			return
		}
		third.FourthCategory = append(third.FourthCategory, &domain.FourthCategory{
			NodeInfo: domain.NodeInfo{
				Name:  leafName,
				Label: text(leaf),
				Path:  third.Path + "/" + leafName,
			},
		})
	})

	return third
}

// scoped returns matches of selector in s that are not nested inside exclude.
func scoped(s *goquery.Selection, selector, exclude string) *goquery.Selection {
	found := s.Find(selector)
	if exclude == "" {
		return found
	}
	return found.FilterFunction(func(_ int, m *goquery.Selection) bool {
		return m.ParentsFiltered(exclude).Length() == 0
	})
}

func parseFilters(s *goquery.Selection, exclude string) []domain.FilterGroup {
	var groups []domain.FilterGroup
	scoped(s, "fieldset[data-filter]", exclude).Each(func(i int, fs *goquery.Selection) {
		group := domain.FilterGroup{
			Name:  fs.AttrOr("data-filter", ""),
			Label: text(fs.Find("legend").First()),
		}
		fs.Find("option").Each(func(j int, opt *goquery.Selection) {
			label := text(opt)
			group.Options = append(group.Options, domain.FilterOption{
				Value: opt.AttrOr("value", label),
				Label: label,
			})
		})
		groups = append(groups, group)
	})
	return groups
}

func parseQuickFilters(s *goquery.Selection, exclude string) []domain.QuickFilter {
	var filters []domain.QuickFilter
	scoped(s, "a[data-quick-filter]", exclude).Each(func(i int, a *goquery.Selection) {
		filters = append(filters, domain.QuickFilter{
			Name:  a.AttrOr("data-quick-filter", ""),
			Label: text(a),
			Query: strings.TrimPrefix(a.AttrOr("href", ""), "?"),
		})
	})
	return filters
}

func parseKind(raw string) domain.Kind {
	kind := domain.Kind(strings.ToLower(strings.TrimSpace(raw)))
	if !kind.Valid() {
		return domain.KindNormal
	}
	return kind
}

func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

func (p *menuParser) absolute(href string) string {
	switch {
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return p.baseURL + href
	default:
		return p.baseURL + "/" + href
	}
}
