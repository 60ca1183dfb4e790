package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/starmap/pkg/layout"
)

type rankEntry struct {
	Rank       int     `json:"rank"`
	ID         string  `json:"id"`
	Importance float64 `json:"importance"`
	Radius     float64 `json:"radius"`
	Angle      float64 `json:"angle"`
}

func newRankCmd(a *app) *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "rank [nodes]",
		Short: "Print nodes in importance order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, res, err := a.compute(args)
			if err != nil {
				return err
			}
			if jsonOut {
				entries := make([]rankEntry, 0, len(res.Order))
				for i, id := range res.Order {
					if limit > 0 && i >= limit {
						break
					}
					pos := res.Positions[id]
					entries = append(entries, rankEntry{
						Rank:       i + 1,
						ID:         id,
						Importance: res.Importance[id],
						Radius:     pos.Radius,
						Angle:      pos.Angle,
					})
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			return printRankTable(cmd.OutOrStdout(), res, nodeIndex(ds.Nodes), limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "print at most n nodes (0 prints all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}

func newEdgesCmd(a *app) *cobra.Command {
	var (
		kind    string
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "edges [nodes]",
		Short: "Print the retained edge list",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch layout.EdgeKind(kind) {
			case "", layout.EdgeReference, layout.EdgeProximity:
			default:
				return fmt.Errorf("unknown edge kind %q (want reference or proximity)", kind)
			}
			_, res, err := a.compute(args)
			if err != nil {
				return err
			}
			edges := make([]layout.Edge, 0, len(res.Edges))
			for _, e := range res.Edges {
				if kind == "" || e.Kind == layout.EdgeKind(kind) {
					edges = append(edges, e)
				}
			}
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(edges)
			}
			return printEdgeTable(cmd.OutOrStdout(), edges)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only print edges of this kind (reference or proximity)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}
