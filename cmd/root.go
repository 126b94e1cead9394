// Package cmd provides the root command and CLI setup for cachesnap.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"cachesnap.dev/pkg/cachesnap/internal/adapter"
	"cachesnap.dev/pkg/cachesnap/internal/controller"
	"cachesnap.dev/pkg/cachesnap/internal/domain"
)

var fsAdapter adapter.SnapshotFSAdapter
var residencyAdapter adapter.ResidencyAdapter
var snapshotStore adapter.SnapshotStore
var workflow domain.Workflow

// newUI builds the presenter for a command's output stream.
var newUI = func(cmd *cobra.Command) controller.UI {
	return controller.NewSimpleUI(cmd, controller.IsTTY(cmd.OutOrStdout()))
}

var (
	outputFlag     string
	chunkPagesFlag uint64
	levelFlag      int
	atomicFlag     bool
	verboseFlag    bool
)

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	fsAdapter = adapter.NewLocalSnapshotFSAdapter()
	residencyAdapter = adapter.NewLocalResidencyAdapter()
	snapshotStore = adapter.NewSnapshotStore()
	workflow = domain.NewWorkflow(fsAdapter, residencyAdapter, snapshotStore)
}

const rootLongDescription = `cachesnap records which pages of which files under a directory are
currently resident in the operating system page cache.

Without a subcommand it scans the current directory recursively and writes a
gzip-compressed snapshot to .happycache.gz. Each block of the decompressed
snapshot is a file path followed by one line per resident page holding the
gap to the previous resident page.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "cachesnap",
		Short:        "Snapshot page cache residency",
		Long:         rootLongDescription,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger("", viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDump(cmd, nil)
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringVarP(&outputFlag, outputFlagName, "o", viper.GetString(outputConfigKey), "snapshot file to write or read")
	flags.Uint64Var(&chunkPagesFlag, chunkPagesFlagName, viper.GetUint64(chunkPagesConfigKey), "pages per residency query")
	flags.IntVar(&levelFlag, levelFlagName, viper.GetInt(levelConfigKey), "gzip compression level (-1 default, 0-9)")
	flags.BoolVar(&atomicFlag, atomicFlagName, viper.GetBool(atomicConfigKey), "write to a temporary file and rename it when complete")
	flags.BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")

	bindRootFlags(cmd)
}

// bindRootFlags points the config keys at cmd's persistent flags.
func bindRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	bindFlagToConfig(flags.Lookup(outputFlagName), outputConfigKey)
	bindFlagToConfig(flags.Lookup(chunkPagesFlagName), chunkPagesConfigKey)
	bindFlagToConfig(flags.Lookup(levelFlagName), levelConfigKey)
	bindFlagToConfig(flags.Lookup(atomicFlagName), atomicConfigKey)
	bindFlagToConfig(flags.Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}
