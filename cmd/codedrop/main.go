package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rohits-web03/codedrop/internal/app"
	"github.com/rohits-web03/codedrop/internal/config"
	"github.com/rohits-web03/codedrop/internal/transfer"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp loads the environment configuration and connects to the stores. The caller must defer app.Close().
func newApp(ctx context.Context) (*app.App, error) {
	conf, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	a, err := app.New(ctx, conf, app.NewLogger(conf.Log))
	if err != nil {
		return nil, errors.Wrap(err, "initializing app")
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:          "codedrop",
	Short:        "Share files through short-lived access codes",
	SilenceUsage: true,
}

var uploadCmd = &cobra.Command{
	Use:   "upload FILE...",
	Short: "Upload files and print their access code",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sources := make([]transfer.Source, 0, len(args))
		for _, path := range args {
			f, err := os.Open(path)
			if err != nil {
				return errors.Wrapf(err, "opening %s", path)
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return errors.Wrapf(err, "reading %s", path)
			}
			if info.IsDir() {
				return errors.Errorf("%s is a directory", path)
			}
			sources = append(sources, transfer.Source{Name: filepath.Base(path), Size: info.Size(), Content: f})
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		created, err := a.Manager.Upload(cmd.Context(), sources)
		if err != nil {
			return errors.Wrap(err, "upload failed")
		}

		printUpload(cmd.OutOrStdout(), created)
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve CODE",
	Short: "List the files behind an access code with download links",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		found, files, err := a.Manager.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		printResolve(cmd.OutOrStdout(), found, files)
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete every expired transfer now",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Manager.Sweep(cmd.Context())
		if err != nil {
			a.Logger.Error("sweep failed", zap.Error(err))
			return errors.Wrap(err, "sweep failed")
		}

		printSweep(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd, resolveCmd, sweepCmd)
}
