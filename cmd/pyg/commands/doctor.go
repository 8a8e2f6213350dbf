package commands

import (
	"fmt"

	"github.com/l3aro/go-pygraph/internal/healthcheck"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on configuration, sources and caches",
	Long: `Checks that the configuration is valid, the source root holds Python files,
the parser works, and reports caches whose sources changed since they were
written. Caches are never rebuilt by this command.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := healthcheck.Check(cmd.Context(), cfg, cfgPath)
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			if err := printJSON(result); err != nil {
				return err
			}
		} else {
			displayDoctorResult(result)
		}

		if result.Failed() {
			return fmt.Errorf("health check failed: one or more checks reported errors")
		}
		return nil
	},
}

func displayDoctorResult(result *healthcheck.HealthCheckResult) {
	if result.EffectivePath != "" {
		fmt.Printf("Using config: %s (%s)\n\n", result.EffectivePath, result.EffectiveScope)
	} else {
		fmt.Print("Using config: defaults\n\n")
	}

	for _, c := range result.Checks {
		fmt.Printf("%s %s", formatStatusIcon(c.Status), headerStyle.Render(c.Name))
		if c.Detail != "" {
			fmt.Printf("  %s", c.Detail)
		}
		fmt.Println()
		for _, path := range c.Stale {
			fmt.Printf("    %s\n", path)
		}
	}
}

func formatStatusIcon(status string) string {
	switch status {
	case healthcheck.StatusOK:
		return okStyle.Render("✓")
	case healthcheck.StatusWarn:
		return warnStyle.Render("!")
	case healthcheck.StatusMissing:
		return warnStyle.Render("◐")
	case healthcheck.StatusError:
		return errStyle.Render("✗")
	default:
		return "?"
	}
}

func init() {
	doctorCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	RootCmd.AddCommand(doctorCmd)
}
