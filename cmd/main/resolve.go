package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"storefront/catnav/internal/domain"
	"storefront/catnav/internal/resolver"

	"github.com/spf13/cobra"
)

var resolveJSON bool

var resolveCmd = &cobra.Command{
	Use:   "resolve <path>",
	Short: "Show what a category page at path would display",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "Print JSON instead of text")
	rootCmd.AddCommand(resolveCmd)
}

type resolution struct {
	Path         string               `json:"path"`
	Depth        int                  `json:"depth"`
	Parent       string               `json:"parent"`
	Node         *domain.NodeInfo     `json:"node"`
	Breadcrumbs  []domain.NodeInfo    `json:"breadcrumbs"`
	Children     []domain.NodeInfo    `json:"children"`
	Filters      []domain.FilterGroup `json:"filters,omitempty"`
	QuickFilters []domain.QuickFilter `json:"quickFilters,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	app := newContainer()
	defer app.Close()

	tree, err := app.Tree(cmd.Context())
	if err != nil {
		return err
	}

	r := resolve(resolver.New(tree), args[0])
	if resolveJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	printResolution(cmd.OutOrStdout(), r)
	return nil
}

func resolve(res *resolver.Resolver, path string) resolution {
	r := resolution{
		Path:        path,
		Depth:       resolver.Depth(path),
		Parent:      resolver.ParentPath(path),
		Breadcrumbs: infos(res.BreadcrumbChain(path)),
		Children:    infos(res.ChildrenForDisplay(path)),
	}
	if node := res.ResolveNode(path); node != nil {
		r.Node = node.Info()
	}
	r.Filters, r.QuickFilters = res.FiltersFor(path)
	return r
}

func infos(nodes []domain.Node) []domain.NodeInfo {
	out := make([]domain.NodeInfo, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, *node.Info())
	}
	return out
}

func printResolution(w io.Writer, r resolution) {
	if r.Node != nil {
		fmt.Fprintf(w, "%s (%s) depth %d\n", r.Node.Label, r.Node.Path, r.Depth)
	} else {
		fmt.Fprintf(w, "%s: not found\n", r.Path)
	}
	if r.Parent != "" {
		fmt.Fprintf(w, "parent: %s\n", r.Parent)
	}

	labels := make([]string, 0, len(r.Breadcrumbs))
	for _, crumb := range r.Breadcrumbs {
		labels = append(labels, crumb.Label)
	}
	fmt.Fprintf(w, "breadcrumbs: %s\n", strings.Join(labels, " › "))

	fmt.Fprintf(w, "children (%d):\n", len(r.Children))
	for _, child := range r.Children {
		fmt.Fprintf(w, "  %-24s %s\n", child.Label, child.Path)
	}

	for _, group := range r.Filters {
		values := make([]string, 0, len(group.Options))
		for _, opt := range group.Options {
			values = append(values, opt.Label)
		}
		fmt.Fprintf(w, "filter %s: %s\n", group.Label, strings.Join(values, ", "))
	}
	for _, quick := range r.QuickFilters {
		fmt.Fprintf(w, "quick filter %s: ?%s\n", quick.Label, quick.Query)
	}
}
