package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cachesnap.dev/pkg/cachesnap/internal/adapter"
	"cachesnap.dev/pkg/cachesnap/internal/domain"
	m "cachesnap.dev/pkg/cachesnap/internal/model"
)

const dumpLongDescription = `Scan a directory tree (default: the current directory) and write a
gzip-compressed snapshot of the pages resident in the page cache.

Any error while listing, mapping or querying a file aborts the run with a
non-zero exit status; the snapshot is only valid when the command succeeds.`

// dumpCmd represents the dump command.
var dumpCmd = newDumpCmd()

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump [root]",
		Short: "Capture a page cache snapshot",
		Long:  dumpLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDump,
	}
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	dumpArgs := buildDumpArgs(args)

	stats, err := workflow.Dump(cmd.Context(), dumpArgs)
	if err != nil {
		return err
	}

	return newUI(cmd).DisplayDumpSummary(cmd.Context(), dumpArgs.Output, stats)
}

func buildDumpArgs(args []string) domain.DumpArgs {
	root := viper.GetString(rootConfigKey)
	if len(args) > 0 {
		root = args[0]
	}

	return domain.DumpArgs{
		Root:       m.Path(root),
		Output:     m.Path(viper.GetString(outputConfigKey)),
		ChunkPages: viper.GetUint64(chunkPagesConfigKey),
		Sink: adapter.SinkOptions{
			Level:  viper.GetInt(levelConfigKey),
			Atomic: viper.GetBool(atomicConfigKey),
		},
		Exclude: []m.Path{m.Path(viper.GetString(logFilenameKey))},
	}
}
