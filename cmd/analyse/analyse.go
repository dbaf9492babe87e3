package analyse

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iacshield/iacshield/cmd/version"
	"github.com/iacshield/iacshield/internal/analyzer"
	"github.com/iacshield/iacshield/internal/findings"
	"github.com/iacshield/iacshield/internal/report"
	"github.com/iacshield/iacshield/pkg/shared/config"
	"github.com/iacshield/iacshield/pkg/shared/files"
	"github.com/iacshield/iacshield/pkg/shared/logger"
)

// RunOptionsAnalyse holds the arguments for the analyse command.
type RunOptionsAnalyse struct {
	Format       string
	Cloud        string
	Severity     string
	OutputPath   string
	ReportFormat string
}

var (
	AppConfig           *config.Config
	analyseOptions      RunOptionsAnalyse
	exampleAnalyseUsage = `  # Analyse terraform files in a directory
  iacshield analyse --format terraform /path/to/infra

  # Analyse a single CloudFormation template, AWS rules only
  iacshield analyse --format cloudformation --cloud aws /path/to/stack.yaml

  # Report only high and critical findings and save a SARIF report
  iacshield analyse --format terraform --severity high --output report.sarif --report-format sarif /path/to/infra`
)

// AnalyseCmd represents the analyse command.
var AnalyseCmd = &cobra.Command{
	Use:                   "analyse --format/-f FORMAT [--cloud CLOUD] [--severity/-s LEVEL] [--output/-o PATH] PATH",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleAnalyseUsage,
	Short:                 "Analyse infrastructure configurations for security issues",
	Args:                  cobra.ExactArgs(1),
	RunE:                  runAnalyseCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func init() {
	AnalyseCmd.Flags().StringVarP(&analyseOptions.Format, "format", "f", "", "IaC format: terraform, cloudformation or arm")
	AnalyseCmd.Flags().StringVar(&analyseOptions.Cloud, "cloud", "all", "cloud provider rule-set: aws, azure, gcp or all")
	AnalyseCmd.Flags().StringVarP(&analyseOptions.Severity, "severity", "s", "", "minimum severity to report (default from config)")
	AnalyseCmd.Flags().StringVarP(&analyseOptions.OutputPath, "output", "o", "", "output report file path")
	AnalyseCmd.Flags().StringVar(&analyseOptions.ReportFormat, "report-format", "", "report format: json, yaml, html or sarif (default from config)")
}

// runAnalyseCommand executes the analyse command.
func runAnalyseCommand(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(AppConfig, "core-analyse")

	if err := validateAnalyseArgs(&analyseOptions, AppConfig); err != nil {
		log.Error("invalid analyse arguments", "error", err)
		return err
	}

	path := args[0]
	if err := files.ValidatePath(path); err != nil {
		log.Error("invalid analysis target", "path", path, "error", err)
		return err
	}

	a := analyzer.New(AppConfig, log)

	result, err := a.AnalyzePath(path, analyseOptions.Format, analyseOptions.Cloud, findings.Severity(analyseOptions.Severity))
	if err != nil {
		log.Error("analysis failed", "error", err)
		return err
	}

	printSummary(result)

	if analyseOptions.OutputPath != "" {
		if err := report.Write(result, analyseOptions.OutputPath, analyseOptions.ReportFormat, version.CoreVersion); err != nil {
			log.Error("failed to write report", "error", err)
			return err
		}
		fmt.Printf("Report saved to %s\n", analyseOptions.OutputPath)
	}

	if AppConfig.Analysis.AutoRemediate {
		summary, err := a.RemediatePath(path, analyseOptions.Format, true, AppConfig.CreateBackup())
		if err != nil {
			log.Error("auto-remediation failed", "error", err)
			return err
		}
		fmt.Printf("Auto-remediation: %d fixed, %d failed, %d need manual review\n",
			summary.Fixed, summary.Failed, summary.ManualReview)
	}

	if result.Summary.Critical > 0 {
		return fmt.Errorf("analysis found %d critical issue(s)", result.Summary.Critical)
	}
	return nil
}

func printSummary(result *findings.AnalysisResult) {
	fmt.Println("Analysis results:")
	fmt.Printf("  Files analyzed: %d\n", result.Summary.FilesAnalyzed)
	fmt.Printf("  Issues found:   %d\n", result.Summary.TotalIssues)
	fmt.Printf("  Critical:       %d\n", result.Summary.Critical)
	fmt.Printf("  High:           %d\n", result.Summary.High)
	fmt.Printf("  Medium:         %d\n", result.Summary.Medium)
	fmt.Printf("  Low:            %d\n", result.Summary.Low)
	if result.Summary.Errors > 0 {
		fmt.Printf("  Errors:         %d\n", result.Summary.Errors)
	}
}
