package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Simplici0/nebula-roi/internal/report"
	"github.com/Simplici0/nebula-roi/internal/roi"
)

// scenario is a calculator input file. Field values are raw strings and go
// through the same coercion as form input.
type scenario struct {
	Mode   string            `yaml:"mode"`
	Fields map[string]string `yaml:"fields"`
}

type computeOptions struct {
	file   string
	mode   string
	fields []string
	format string
}

func newComputeCmd() *cobra.Command {
	opts := &computeOptions{}
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute savings, ROI, and payback for a scenario",
		Example: `  roi compute -f scenario.yaml
  roi compute --mode purchase --field sickDays=10 --field workersComp=200`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := buildState(opts)
			if err != nil {
				return err
			}
			return writeResult(cmd, state, opts.format)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "scenario YAML file")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "lease or purchase (overrides the file)")
	cmd.Flags().StringArrayVar(&opts.fields, "field", nil, "field override as name=value (repeatable)")
	cmd.Flags().StringVarP(&opts.format, "output", "o", "markdown", "output format: markdown or json")
	return cmd
}

func newDefaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Print the default calculator state as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(roi.DefaultInputState())
		},
	}
}

func loadScenario(path string) (scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	var s scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	return s, nil
}

func buildState(opts *computeOptions) (roi.InputState, error) {
	s := scenario{Fields: map[string]string{}}
	if opts.file != "" {
		loaded, err := loadScenario(opts.file)
		if err != nil {
			return roi.InputState{}, err
		}
		s = loaded
		if s.Fields == nil {
			s.Fields = map[string]string{}
		}
	}

	for _, kv := range opts.fields {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return roi.InputState{}, fmt.Errorf("invalid --field %q, want name=value", kv)
		}
		s.Fields[strings.TrimSpace(name)] = value
	}
	if opts.mode != "" {
		s.Mode = opts.mode
	}

	known := make(map[string]bool, len(roi.Fields))
	for _, field := range roi.Fields {
		known[field] = true
	}
	for name := range s.Fields {
		if !known[name] {
			return roi.InputState{}, fmt.Errorf("unknown field %q", name)
		}
	}

	state := roi.DefaultInputState()
	for _, field := range roi.Fields {
		if raw, ok := s.Fields[field]; ok {
			state = state.Update(field, raw)
		}
	}
	if s.Mode != "" {
		mode, err := roi.ParseMode(s.Mode)
		if err != nil {
			return roi.InputState{}, err
		}
		state = state.SetMode(mode)
	}
	return state, nil
}

func writeResult(cmd *cobra.Command, state roi.InputState, format string) error {
	out := cmd.OutOrStdout()
	switch format {
	case "markdown", "md":
		_, err := fmt.Fprint(out, report.Markdown(state))
		return err
	case "json":
		result, flags := roi.Compute(state)
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"state":   state,
			"result":  result,
			"flags":   flags,
			"summary": roi.Summarize(state, result, flags),
			"chart":   roi.ChartFor(result, state.Mode),
		})
	}
	return fmt.Errorf("unknown output format %q", format)
}
