// cmd/matchctl/registry.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"freelance-matcher/pkg/registry"
)

func newRegistryCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect and maintain the activity registry",
	}
	cmd.PersistentFlags().StringVar(&path, "path", "", "registry file (default: the registry built into the binary)")

	load := func() (*registry.ActivityRegistry, error) {
		if path == "" {
			return registry.Load()
		}
		return registry.LoadFile(path)
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check task type naming, schemas and timeouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := load()
			if err != nil {
				return err
			}
			problems := reg.Validate()
			for _, p := range problems {
				fmt.Fprintf(cmd.ErrOrStderr(), "  - %v\n", p)
			}
			if len(problems) > 0 {
				return fmt.Errorf("registry has %d problem(s)", len(problems))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registry OK: %d activities\n", len(reg.Activities))
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered activities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := load()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TASK TYPE\tVERSION\tSTATUS\tTIMEOUT")
			for _, a := range reg.Activities {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.TaskType, a.Version, a.ImplementationStatus, a.Timeout)
			}
			return tw.Flush()
		},
	}

	setStatus := &cobra.Command{
		Use:   "set-status <task-type> <status>",
		Short: "Update the implementation status of an activity in a registry file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				return fmt.Errorf("set-status needs --path; the built-in registry is read-only")
			}
			taskType, status := args[0], args[1]
			if !registry.ValidStatus(status) {
				return fmt.Errorf("invalid status %q (want one of %s)", status, strings.Join(registry.Statuses(), ", "))
			}
			reg, err := load()
			if err != nil {
				return err
			}
			a, ok := reg.Get(taskType)
			if !ok {
				return fmt.Errorf("activity %q not registered", taskType)
			}
			a.ImplementationStatus = status
			reg.LastUpdated = time.Now().UTC().Format("2006-01-02")

			data, err := json.MarshalIndent(reg, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", taskType, status)
			return nil
		},
	}

	var (
		outDir string
		force  bool
	)
	scaffoldCmd := &cobra.Command{
		Use:   "scaffold <task-type>",
		Short: "Generate config, models and handler files for a registered activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := load()
			if err != nil {
				return err
			}
			a, ok := reg.Get(args[0])
			if !ok {
				return fmt.Errorf("activity %q not registered", args[0])
			}
			written, err := scaffold(a, outDir, force)
			for _, path := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			}
			return err
		},
	}
	scaffoldCmd.Flags().StringVar(&outDir, "out", "internal/workers/matching", "directory the worker package is created in")
	scaffoldCmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")

	cmd.AddCommand(validate, list, setStatus, scaffoldCmd)
	return cmd
}
