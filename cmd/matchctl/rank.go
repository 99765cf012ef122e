// cmd/matchctl/rank.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"freelance-matcher/internal/models"
	"freelance-matcher/internal/workers/matching/jobs"
)

func newRankCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank candidates for a project or a freelancer",
	}
	cmd.AddCommand(newRankFreelancersCmd(opts), newRankProjectsCmd(opts))
	return cmd
}

func newRankFreelancersCmd(opts *rootOptions) *cobra.Command {
	var (
		projectID string
		limit     int
		filter    models.FreelancerFilter
	)

	cmd := &cobra.Command{
		Use:   "freelancers",
		Short: "Rank freelancers for a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer s.close()

			k := resolveLimit(cmd, limit, s)
			ranking, err := s.engine.Matcher.RankFreelancersForProjectID(ctx, projectID, filter, k)
			if err != nil {
				return fmt.Errorf("rank freelancers for %s: %w", projectID, err)
			}
			return printJSON(cmd.OutOrStdout(), ranking)
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "project id to rank freelancers for")
	cmd.Flags().IntVar(&limit, "limit", 0, "number of matches to return (default: matching.default_limit)")
	cmd.Flags().StringVar(&filter.Availability, "availability", "", "only freelancers with this availability")
	cmd.Flags().StringSliceVar(&filter.Skills, "skills", nil, "only freelancers listing one of these skills")
	cmd.Flags().Float64Var(&filter.MaxHourlyRate, "max-rate", 0, "maximum hourly rate")
	cmd.Flags().Float64Var(&filter.MinRating, "min-rating", 0, "minimum rating")
	cmd.Flags().IntVar(&filter.Limit, "pool", 0, "candidate pool size (default: matching.pool_size)")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newRankProjectsCmd(opts *rootOptions) *cobra.Command {
	var (
		freelancerID string
		limit        int
		filter       models.ProjectFilter
	)

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Rank projects for a freelancer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer s.close()

			k := resolveLimit(cmd, limit, s)
			ranking, err := s.engine.Matcher.RankProjectsForFreelancerID(ctx, freelancerID, filter, k)
			if err != nil {
				return fmt.Errorf("rank projects for %s: %w", freelancerID, err)
			}
			return printJSON(cmd.OutOrStdout(), ranking)
		},
	}

	cmd.Flags().StringVar(&freelancerID, "freelancer", "", "freelancer id to rank projects for")
	cmd.Flags().IntVar(&limit, "limit", 0, "number of matches to return (default: matching.default_limit)")
	cmd.Flags().StringVar(&filter.Category, "category", "", "only projects in this category")
	cmd.Flags().StringVar(&filter.Complexity, "complexity", "", "only projects of this complexity")
	cmd.Flags().BoolVar(&filter.RemoteOnly, "remote-only", false, "only remote projects")
	cmd.Flags().StringSliceVar(&filter.Skills, "skills", nil, "only projects requiring one of these skills")
	cmd.Flags().IntVar(&filter.Limit, "pool", 0, "candidate pool size (default: matching.pool_size)")
	_ = cmd.MarkFlagRequired("freelancer")
	return cmd
}

// resolveLimit applies the same default and cap the ranking workers use.
func resolveLimit(cmd *cobra.Command, limit int, s *session) int {
	var requested *int
	if cmd.Flags().Changed("limit") {
		requested = &limit
	}
	return jobs.ResolveLimit(requested, s.cfg.Matching.DefaultLimit, s.cfg.Matching.MaxLimit)
}
