package remediate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iacshield/iacshield/internal/analyzer"
	"github.com/iacshield/iacshield/pkg/shared/config"
	"github.com/iacshield/iacshield/pkg/shared/files"
	"github.com/iacshield/iacshield/pkg/shared/logger"
)

// RunOptionsRemediate holds the arguments for the remediate command.
type RunOptionsRemediate struct {
	Format string
	Fix    bool
	Backup bool
}

var (
	AppConfig             *config.Config
	remediateOptions      RunOptionsRemediate
	exampleRemediateUsage = `  # Report which issues are auto-fixable without touching any file
  iacshield remediate --format terraform /path/to/infra

  # Apply fixes with backups
  iacshield remediate --format terraform --fix /path/to/infra

  # Apply fixes without backups
  iacshield remediate --format terraform --fix --backup=false /path/to/infra`
)

// RemediateCmd represents the remediate command.
var RemediateCmd = &cobra.Command{
	Use:                   "remediate --format/-f FORMAT [--fix] [--backup] PATH",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleRemediateUsage,
	Short:                 "Remediate security issues in infrastructure configurations",
	Args:                  cobra.ExactArgs(1),
	RunE:                  runRemediateCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
	RemediateCmd.Flags().Lookup("backup").DefValue = fmt.Sprintf("%t", cfg.CreateBackup())
}

func init() {
	RemediateCmd.Flags().StringVarP(&remediateOptions.Format, "format", "f", "", "IaC format: terraform, cloudformation or arm")
	RemediateCmd.Flags().BoolVar(&remediateOptions.Fix, "fix", false, "apply automatic fixes")
	RemediateCmd.Flags().BoolVar(&remediateOptions.Backup, "backup", true, "create backup before fixing")
}

// runRemediateCommand executes the remediate command.
func runRemediateCommand(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(AppConfig, "core-remediate")

	if remediateOptions.Format == "" {
		return fmt.Errorf("the --format flag is required")
	}
	if err := files.ValidatePath(args[0]); err != nil {
		log.Error("invalid remediation target", "path", args[0], "error", err)
		return err
	}

	// The config default applies unless the flag was given explicitly.
	createBackup := remediateOptions.Backup
	if !cmd.Flags().Changed("backup") {
		createBackup = AppConfig.CreateBackup()
	}

	a := analyzer.New(AppConfig, log)
	summary, err := a.RemediatePath(args[0], remediateOptions.Format, remediateOptions.Fix, createBackup)
	if err != nil {
		log.Error("remediation failed", "error", err)
		return err
	}

	fmt.Println("Remediation results:")
	fmt.Printf("  Issues found:         %d\n", summary.TotalIssues)
	fmt.Printf("  Auto-fixable:         %d\n", summary.AutoFixable)
	fmt.Printf("  Fixed:                %d\n", summary.Fixed)
	if summary.Failed > 0 {
		fmt.Printf("  Failed:               %d\n", summary.Failed)
	}
	fmt.Printf("  Manual review needed: %d\n", summary.ManualReview)

	for _, res := range summary.Results {
		if res.Success {
			fmt.Printf("  fixed %s in %s: %s\n", res.RuleID, res.File, res.FixApplied)
			if res.BackupPath != "" {
				fmt.Printf("    backup: %s\n", res.BackupPath)
			}
		} else {
			fmt.Printf("  failed %s in %s: %s\n", res.RuleID, res.File, res.Error)
		}
	}
	return nil
}
