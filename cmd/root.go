package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iacshield/iacshield/cmd/analyse"
	"github.com/iacshield/iacshield/cmd/remediate"
	"github.com/iacshield/iacshield/cmd/version"
	"github.com/iacshield/iacshield/pkg/shared/config"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "iacshield [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Iacshield analyzes Infrastructure-as-Code for security misconfigurations.",
		Long: `Iacshield statically analyzes Terraform, CloudFormation and ARM templates
for security misconfigurations across AWS, Azure and GCP, and can apply
textual auto-remediation to a subset of findings.`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default iacshield.yml in the working directory)")
	rootCmd.AddCommand(analyse.AnalyseCmd)
	rootCmd.AddCommand(remediate.RemediateCmd)
	rootCmd.AddCommand(version.NewVersionCmd())
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func initConfig() {
	var err error

	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize configuration: %v\n", err)
		os.Exit(1)
	}

	analyse.Init(AppConfig)
	remediate.Init(AppConfig)
}
