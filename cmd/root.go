package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tilecut/tilecut/internal/encode"
	"github.com/tilecut/tilecut/internal/splitter"
	"github.com/tilecut/tilecut/pkg/grid"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tilecut",
	Short: "Split a large image into print-ready tiles with bleed margins",
	Long: `tilecut splits a large raster image into a grid of print-ready tiles.

Each tile gets a fixed 10mm bleed margin on all sides and a "row-col" label
stamped in all four corners for manual reassembly after printing. Tiles are
written as PNG files or single-page PDFs sized for the tile at 150 dpi.

Examples:
  # Split a poster into a 3x3 grid of PNG tiles
  tilecut -i poster.png --grid 3x3 -o ./tiles

  # Split into a 2x3 grid of single-page PDFs
  tilecut -i poster.png --grid 2x3 -f pdf -o ./tiles

  # Start HTTP server
  tilecut serve --port 8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// If no input is given, show help
		if viper.GetString("input") == "" {
			return cmd.Help()
		}
		return runSplit(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tilecut.yaml)")

	// Input/output options
	rootCmd.Flags().StringP("input", "i", "", "input image file (PNG or JPEG)")
	rootCmd.Flags().StringP("output", "o", ".", "output directory")
	rootCmd.Flags().StringP("format", "f", "png", "output format (png|pdf)")

	// Grid options
	rootCmd.Flags().StringP("grid", "g", "3x3", "grid layout (2x3|3x3)")

	// Batch options
	rootCmd.Flags().Duration("delay", 0, "delay between tile writes")
	rootCmd.Flags().BoolP("quiet", "q", false, "suppress progress output")

	// Bind flags to viper for root command
	viper.BindPFlag("input", rootCmd.Flags().Lookup("input"))
	viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	viper.BindPFlag("format", rootCmd.Flags().Lookup("format"))
	viper.BindPFlag("grid", rootCmd.Flags().Lookup("grid"))
	viper.BindPFlag("delay", rootCmd.Flags().Lookup("delay"))
	viper.BindPFlag("quiet", rootCmd.Flags().Lookup("quiet"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".tilecut" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tilecut")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func runSplit(cmd *cobra.Command, args []string) error {
	input := viper.GetString("input")
	quiet := viper.GetBool("quiet")

	layout, err := grid.ParseLayout(viper.GetString("grid"))
	if err != nil {
		return err
	}

	format, err := encode.ParseFormat(viper.GetString("format"))
	if err != nil {
		return err
	}

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat input: %w", err)
	}

	src, err := splitter.LoadSource(f, info.Name(), info.Size())
	if err != nil {
		return err
	}

	adv := grid.Validate(src.Width, src.Height, layout.Spec())
	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "==Source: %s (%dx%d, %d bytes)\n", src.Name, src.Width, src.Height, src.ByteSize)
		fmt.Fprintf(cmd.ErrOrStderr(), "==Layout: %s (%dx%d expected)\n", layout, layout.Spec().ExpectedWidthPx, layout.Spec().ExpectedHeightPx)
		fmt.Fprintf(cmd.ErrOrStderr(), "==Advisory [%s]: %s\n", adv.Severity, adv.Message)
	}

	exporter := splitter.New(splitter.Options{
		Layout: layout,
		Format: format,
		Delay:  viper.GetDuration("delay"),
	})

	if !quiet {
		exporter.OnProgress(func(p splitter.Progress) {
			fmt.Fprintf(cmd.ErrOrStderr(), "%.0f%%: %s\n", p.Percent, p.Current)
		})
		exporter.OnTileError(func(ordinal int, err error) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Tile %d failed: %v\n", ordinal, err)
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	sink := splitter.DirSink{Dir: viper.GetString("output")}
	report, err := exporter.Export(ctx, src, sink)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", report.Summary())
	if len(report.Succeeded) == 0 {
		return fmt.Errorf("no tiles could be exported")
	}
	return nil
}
