package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/forPelevin/splyt/internal/diag"
)

// exitFailure is the status for errors that carry no diagnostic, such as
// usage mistakes.
const exitFailure = 1

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present
	os.Exit(Execute(os.Args[1:], os.Stdout, os.Stderr))
}

// Execute runs the CLI with args and returns the process exit status: 0 on
// success, the diagnostic code of a pipeline failure, or exitFailure.
func Execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		return diag.Code(err, exitFailure)
	}
	return 0
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "splyt",
		Short:         "Download YouTube videos and save clips from them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "Config file (default ~/.config/splyt/config.toml)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(newDownloadCommand(), newClipCommand(), newConfigCommand(), newDoctorCommand())
	return root
}

func newDownloadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, args[0])
		},
	}
	addDownloadFlags(cmd)
	return cmd
}

func newClipCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clip <url> <ranges>",
		Short: "Save clips from a video, downloading it if necessary",
		Long: "Ranges are comma separated, e.g. `23:42-23:57,32:08-33:17@outro`.\n" +
			"An end given as a plain number is a length in seconds; @name names the clip.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClip(cmd, args[0], args[1])
		},
	}
	addDownloadFlags(cmd)
	cmd.Flags().String("clip-dir", "", "Directory to save clips (default: output directory)")
	return cmd
}

func addDownloadFlags(cmd *cobra.Command) {
	cmd.Flags().String("out", "", "Output directory (default from config)")
	cmd.Flags().Bool("overwrite", false, "Overwrite existing video file")
}

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd)
		},
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}

func newDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the output directory and ffmpeg are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd)
		},
	}
}
