package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtconv/internal/config"
	"github.com/cleared-dev/stmtconv/internal/importer"
)

var classifyFlags = map[string]string{
	"profile": config.KeyProfile,
	"rules":   config.KeyRulesFile,
}

func newClassifyCommand(g *globalOptions) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "classify [payment type]",
		Short: "Show the transaction type a payment-type label maps to",
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd, classifyFlags)
			if err != nil {
				return err
			}
			log, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}
			profile, err := resolveProfile(cfg)
			if err != nil {
				return err
			}
			cl, err := importer.NewClassifier(profile.Rules, log)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if list {
				for _, r := range cl.Rules() {
					fmt.Fprintf(out, "%-30s %s\n", r.Prefix, r.Type)
				}
				return nil
			}

			// Labels may contain spaces; accept them unquoted.
			t, ok := cl.Classify(strings.Join(args, " "))
			if !ok {
				fmt.Fprintf(out, "%s (no rule matched)\n", t)
				return nil
			}
			fmt.Fprintln(out, t)
			return nil
		},
	}

	cmd.Flags().String("profile", "", "bank export profile (airbank, default)")
	cmd.Flags().String("rules", "", "YAML rule table overriding the profile's")
	cmd.Flags().BoolVar(&list, "list", false, "print the rule table in match order")

	return cmd
}
