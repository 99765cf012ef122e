// cmd/matchctl/deploy.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"freelance-matcher/internal/common/camunda"
)

func newDeployCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy <file.bpmn|dir>...",
		Short: "Deploy BPMN processes to the Zeebe broker",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := bpmnFiles(args)
			if err != nil {
				return err
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			zeebe, err := camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
			if err != nil {
				return err
			}
			defer zeebe.Close()

			key, err := zeebe.Deploy(cmd.Context(), paths...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deployed %d resource(s), key %d\n", len(paths), key)
			return nil
		},
	}
}

// bpmnFiles expands directories into the .bpmn files they contain.
func bpmnFiles(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".bpmn") {
				paths = append(paths, filepath.Join(arg, e.Name()))
			}
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .bpmn files found")
	}
	return paths, nil
}
