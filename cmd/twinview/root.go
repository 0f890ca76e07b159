package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"twinview/internal/config"
)

var (
	flags *config.Flags

	rootCmd = &cobra.Command{
		Use:   "twinview [--left DIR] [--right DIR]",
		Short: "Compare two folders of images side by side",
		Long: `twinview shows two independent image sequences next to each other.

Each side browses its own folder. Left/Right move both sides, A/D move the
left side and J/L the right side. The mouse wheel zooms around the cursor and
dragging pans. 16-bit and floating point TIFF files are rescaled for display.`,
		Version:       AppVersion,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runViewer,
	}
)

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	flags = config.RegisterFlags(rootCmd.PersistentFlags())
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"twinview %s (%s/%s, %s)\n",
		AppVersion, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
	rootCmd.AddCommand(inspectCmd)
}

func resolveConfig() (config.Config, error) {
	cfg, err := flags.Resolve(os.Getenv)
	if err != nil {
		return cfg, fmt.Errorf("configuration: %w", err)
	}
	return cfg, nil
}

func runViewer(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	configureRuntime()

	application, err := NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("application initialization failed: %w", err)
	}
	return application.Run()
}
