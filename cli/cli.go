package cli

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"emi-calculator/config"
	"emi-calculator/service"
)

// CLI represents the command-line interface
type CLI struct {
	out     io.Writer
	log     *logrus.Logger
	source  service.RateSource
	envFile string
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
	Logger *logrus.Logger
	// RateSource replaces the configured provider when set.
	RateSource service.RateSource
}

func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
		opts.Logger.SetFormatter(&logrus.JSONFormatter{})
		opts.Logger.SetOutput(os.Stderr)
	}

	cli := &CLI{
		out:    opts.Output,
		log:    opts.Logger,
		source: opts.RateSource,
	}
	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// SetArgs overrides os.Args for the next Execute.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "emi",
		Short:         "Loan EMI calculator with currency conversion",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(cli.out)
	cmd.PersistentFlags().StringVar(&cli.envFile, "env-file", ".env", "dotenv file loaded before the environment")

	cmd.AddCommand(cli.newServeCmd())
	cmd.AddCommand(cli.newScheduleCmd())
	cmd.AddCommand(cli.newRatesCmd())

	return cmd
}

// loadConfig reads configuration and applies its log level.
func (cli *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cli.envFile)
	if err != nil {
		return nil, err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	cli.log.SetLevel(level)
	return cfg, nil
}
