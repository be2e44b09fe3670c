package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/wolfeidau/cardstore"
	"github.com/wolfeidau/cardstore/internal/config"
)

type app struct {
	cfg    config.Config
	logger zerolog.Logger
	table  *cardstore.Table
}

// NewRootCmd build the cardctl command tree using configuration from the environment
func NewRootCmd(version string) *cobra.Command {
	return newRootCmd(&app{cfg: config.Load()}, version)
}

func newRootCmd(a *app, version string) *cobra.Command {
	root := &cobra.Command{
		Use:               "cardctl",
		Short:             "Manage business card records stored in DynamoDB",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.TableName, "table", a.cfg.TableName, "DynamoDB table name")
	flags.StringVar(&a.cfg.Region, "region", a.cfg.Region, "AWS region")
	flags.StringVar(&a.cfg.Endpoint, "endpoint", a.cfg.Endpoint, "DynamoDB endpoint, for example dynamodb-local")
	flags.StringVar(&a.cfg.IndexName, "index", a.cfg.IndexName, "Business name and received date index")
	flags.StringVar(&a.cfg.UniqueMode, "unique-mode", a.cfg.UniqueMode, "Duplicate check on store: transaction or index")
	flags.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "Log level")

	root.AddCommand(newVersionCmd(version))
	root.AddCommand(newCreateTableCmd(a))
	root.AddCommand(newStoreCmd(a))
	root.AddCommand(newUpdateCmd(a))
	root.AddCommand(newDeleteCmd(a))
	root.AddCommand(newGetCmd(a))
	root.AddCommand(newSeedCmd(a))
	root.AddCommand(newSearchCmd(a))

	return root
}

// setup builds the single session used for the life of the process
func (a *app) setup(cmd *cobra.Command, args []string) error {
	level, err := zerolog.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).Level(level).With().Timestamp().Logger()

	if a.table != nil {
		return nil
	}

	mode, err := cardstore.ParseUniqueMode(a.cfg.UniqueMode)
	if err != nil {
		return err
	}

	awsCfg := &aws.Config{Region: aws.String(a.cfg.Region)}
	if a.cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(a.cfg.Endpoint)
	}

	sess := cardstore.NewWithOptions(awsCfg,
		cardstore.SessionWithLogger(a.logger),
		cardstore.SessionWithHooks(cardstore.LoggingHooks(a.logger)),
	)

	a.table = sess.Table(a.cfg.TableName, cardstore.WithIndexName(a.cfg.IndexName), cardstore.WithUniqueMode(mode))

	return nil
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "cardctl %s\n", version)
			return err
		},
	}
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
