package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cachesnap.dev/pkg/cachesnap/internal/controller"
	"cachesnap.dev/pkg/cachesnap/internal/domain"
	m "cachesnap.dev/pkg/cachesnap/internal/model"
)

var formatFlag string

// inspectCmd represents the inspect command.
var inspectCmd = newInspectCmd()

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [snapshot]",
		Short: "Show the contents of a snapshot",
		Long:  "Decode a snapshot and list the resident pages recorded for each file.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := controller.ParseOutputFormat(formatFlag)
			if err != nil {
				return err
			}

			snapshot := viper.GetString(outputConfigKey)
			if len(args) > 0 {
				snapshot = args[0]
			}

			blocks, err := workflow.Inspect(cmd.Context(), domain.InspectArgs{Snapshot: m.Path(snapshot)})
			if err != nil {
				return err
			}

			return newUI(cmd).DisplayBlocks(cmd.Context(), blocks, format)
		},
	}

	cmd.Flags().StringVarP(&formatFlag, formatFlagName, "f", string(controller.FormatTable), "output format: table or yaml")

	return cmd
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
