package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dir-archiver",
	Short: "Archive old files per directory and delete expired ones",
	Long: `dir-archiver walks the first-level subdirectories of a root. Files older
than the archive threshold are zipped into <dir>_<dd-mm-yy>.zip and the
originals removed once the archive is verified. Files older than the
delete threshold are removed outright.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scheduleCmd)
}
