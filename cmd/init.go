package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const initLongDescription = `Create a cachesnap.yaml in the current working directory populated with the
current settings so it can be edited manually. It will not overwrite an
existing file.

Keys written:
  scan.root, scan.chunk_pages            what to scan and the pages per residency query
  snapshot.output, snapshot.level,
  snapshot.atomic                        where and how the gzip snapshot is written
  log.filename, log.level, log.verbose,
  log.max_size, log.max_backups,
  log.max_age, log.compress              the rotating log file

Every key can also be set through the environment, e.g.
CACHESNAP_SNAPSHOT_LEVEL=9.`

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a default cachesnap.yaml configuration file",
		Long:  initLongDescription,
		RunE: func(_ *cobra.Command, _ []string) error {
			targetPath := filepath.Join(configFolderPath, configFileName)

			err := viper.SafeWriteConfigAs(targetPath)
			if err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
}
