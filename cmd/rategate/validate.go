package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"mercator-hq/rategate/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate loads the configuration file, applies environment overrides,
and reports every problem found rather than stopping at the first one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadWithEnvOverrides(cfgFile)
		if err != nil {
			var verr config.ValidationError
			if errors.As(err, &verr) {
				fmt.Printf("Configuration is invalid (%d problems):\n", len(verr.Errors))
				for _, fe := range verr.Errors {
					fmt.Printf("  - %s: %s\n", fe.Field, fe.Message)
				}
				return fmt.Errorf("validation failed")
			}
			return fmt.Errorf("loading config: %w", err)
		}

		fmt.Printf("Configuration is valid: %s\n", cfgFile)
		fmt.Printf("Policies (%d):\n", len(cfg.Policies))
		for _, name := range sortedPolicyNames(cfg.Policies) {
			p := cfg.Policies[name]
			mode := "first-ready"
			if p.FIFO {
				mode = "fifo"
			}
			fmt.Printf("  %-20s %d calls / %s (%s)\n", name, p.MaxCalls, p.Period, mode)
		}
		return nil
	},
}

func sortedPolicyNames(policies map[string]config.PolicyConfig) []string {
	names := make([]string, 0, len(policies))
	for name := range policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
