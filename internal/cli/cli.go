// Package cli defines the opsreport command surface
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/winops-io/opsreport/internal/app"
	"github.com/winops-io/opsreport/internal/config"
	"github.com/winops-io/opsreport/internal/logging"
)

// NewCmdRoot builds the root command with both report subcommands
func NewCmdRoot(version string) *cobra.Command {
	var (
		configPath string
		testMode   bool
	)

	cmd := &cobra.Command{
		Use:           "opsreport <command>",
		Short:         "Windows infrastructure report mailer",
		Long:          "opsreport runs one-shot reporting pipelines against Windows infrastructure and emails the results.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: platform location)")
	cmd.PersistentFlags().BoolVar(&testMode, "test", false, "send to the test recipient and mark the subject")

	cmd.AddCommand(
		newLicensesCmd(&configPath, &testMode),
		newCertExpiryCmd(&configPath, &testMode),
		newVersionCmd(version),
	)

	return cmd
}

// setup loads configuration and builds the logger shared by both
// subcommands. The --test flag wins over the config file.
func setup(configPath string, testMode bool) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	if testMode {
		cfg.TestMode = true
		// Re-validate: test mode requires a test recipient
		if err := cfg.Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid config: %w", err)
		}
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, logger, nil
}

func newLicensesCmd(configPath *string, testMode *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "rds-licenses",
		Short: "Email the RDS license keypack and issued-license report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(*configPath, *testMode)
			if err != nil {
				return err
			}
			defer logger.Sync()

			return app.NewLicensePipeline(cfg, logger).Run(cmd.Context())
		},
	}
}

func newCertExpiryCmd(configPath *string, testMode *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "cert-expiry",
		Short: "Email the soon-to-expire certificate report for all domain servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(*configPath, *testMode)
			if err != nil {
				return err
			}
			defer logger.Sync()

			pipeline, err := app.NewCertExpiryPipeline(cfg, logger)
			if err != nil {
				return err
			}
			return pipeline.Run(cmd.Context())
		},
	}
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the opsreport version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "opsreport %s\n", version)
		},
	}
}
