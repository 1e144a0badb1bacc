package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/sakhi/backend/internal/analysis/rules"
)

func newRulesCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect the keyword rule table",
	}
	cmd.PersistentFlags().StringVarP(&file, "file", "f", "", "YAML rule table (default: built-in table)")

	load := func() (rules.Table, error) {
		if file == "" {
			return rules.DefaultTable(), nil
		}
		return rules.LoadTable(file)
	}

	check := &cobra.Command{
		Use:   "check",
		Short: "Validate the rule table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ok: %d rules, %d defaults\n", len(table.Rules), len(table.Defaults))
			for _, reply := range rules.NewMatcher(table).Defaults() {
				fmt.Fprintf(out, "  default: %s\n", reply)
			}
			return nil
		},
	}

	match := &cobra.Command{
		Use:   "match <text>",
		Short: "Show which rule a message falls into and a sample reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := load()
			if err != nil {
				return err
			}

			m := rules.NewMatcher(table)
			input := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			if rule, ok := m.RuleFor(input); ok {
				fmt.Fprintf(out, "rule: %s (%s)\n", ruleLabel(rule), strings.Join(rule.Keywords, ", "))
			} else {
				fmt.Fprintln(out, "rule: <default>")
			}
			fmt.Fprintf(out, "candidates: %d\n", len(m.Candidates(input)))
			fmt.Fprintf(out, "reply: %s\n", m.Match(input))
			return nil
		},
	}

	cmd.AddCommand(check, match)
	return cmd
}

func ruleLabel(r rules.Rule) string {
	if r.Name != "" {
		return r.Name
	}
	return r.Keywords[0]
}
