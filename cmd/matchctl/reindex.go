// cmd/matchctl/reindex.go
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"freelance-matcher/internal/matching/indexer"
	"freelance-matcher/internal/models"
)

var errNoRetrieval = errors.New("reindex needs an embedding provider and a vector backend")

type reindexResult struct {
	Kind string `json:"kind"`
	indexer.Summary
}

func newReindexCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:       "reindex {freelancers|projects}",
		Short:     "Rebuild the vector index from the record store",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"freelancers", "projects"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer s.close()

			if s.engine.Embedder == nil || s.engine.FreelancerIndex == nil {
				return errNoRetrieval
			}

			var (
				sum  indexer.Summary
				kind string
			)
			switch args[0] {
			case "freelancers":
				kind = indexer.KindFreelancer
				sum, err = s.engine.Indexer.ReindexFreelancers(ctx, s.engine.Store, models.FreelancerFilter{Limit: limit})
			case "projects":
				kind = indexer.KindProject
				sum, err = s.engine.Indexer.ReindexProjects(ctx, s.engine.Store, models.ProjectFilter{Limit: limit})
			}
			if err != nil {
				return fmt.Errorf("reindex %s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), reindexResult{Kind: kind, Summary: sum})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10000, "maximum records to read from the store")
	return cmd
}
