package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.alis.build/gsheets"
	"go.alis.build/gsheets/config"
)

// clientFactory builds the client from the loaded configuration.
type clientFactory func(ctx context.Context, cfg *config.Config, opts ...gsheets.Option) (*gsheets.Client, error)

func googleClient(ctx context.Context, _ *config.Config, opts ...gsheets.Option) (*gsheets.Client, error) {
	return gsheets.NewClient(ctx, opts...)
}

type app struct {
	configPath  string
	credentials string
	logLevel    string
	local       bool
	sheet       string

	newClient clientFactory
}

func newRootCmd(newClient clientFactory) *cobra.Command {
	if newClient == nil {
		newClient = googleClient
	}
	a := &app{newClient: newClient}

	root := &cobra.Command{
		Use:          "gsheets",
		Short:        "Query Google Sheets with retries and region lookup",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "TOML configuration file")
	root.PersistentFlags().StringVar(&a.credentials, "credentials", "", "service account or authorized user JSON file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warning, error")
	root.PersistentFlags().BoolVar(&a.local, "local", false, "human readable logs instead of Cloud Logging JSON")

	root.AddCommand(
		a.findCmd(),
		a.valuesCmd(),
		a.revisionsCmd(),
		a.exportCmd(),
	)
	return root
}

func (a *app) addSheetFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&a.sheet, "sheet", "", "worksheet title (default: first tab)")
}

// open loads the configuration, builds the client and opens the spreadsheet named by ref, a key or
// a URL, selecting the --sheet worksheet.
func (a *app) open(cmd *cobra.Command, ref string) (*gsheets.Spreadsheet, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if a.credentials != "" {
		cfg.Credentials = a.credentials
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.local {
		cfg.Log.Local = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := cfg.Logger(cmd.ErrOrStderr())
	opts, err := cfg.ClientOptions(log)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	client, err := a.newClient(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}

	req := gsheets.OpenRequest{Key: ref}
	if strings.Contains(ref, "/") {
		req = gsheets.OpenRequest{URL: ref}
	}
	ss, err := client.Open(ctx, req)
	if err != nil {
		return nil, err
	}
	if a.sheet != "" {
		if _, err := ss.Select(ctx, gsheets.ByTitle(a.sheet)); err != nil {
			return nil, err
		}
	}
	if ss.Active() == nil {
		return nil, fmt.Errorf("%v: %w", ss, gsheets.ErrNoWorksheet)
	}
	return ss, nil
}
