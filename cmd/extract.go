package cmd

import (
	"igatool/pkg/core"
	"igatool/pkg/logging"
	"igatool/pkg/progress"

	"github.com/spf13/cobra"
)

func newExtractCmd(a *app) *cobra.Command {
	var force, wrapped bool
	c := &cobra.Command{
		Use:     "extract ARCHIVE [OUTPUT_DIRECTORY]",
		Aliases: []string{"x"},
		Short:   "Extract every member of an archive",
		Long: `Extract writes each member of ARCHIVE into OUTPUT_DIRECTORY, which is
created once the archive has been validated. The directory defaults to
outputDir from the configuration file, or the current directory.

Members named *.s are decoded with the script key. --force-decrypt applies
it to every member.`,
		Args: usageArgs(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			outDir := a.cfg.OutputDir
			if len(args) == 2 {
				outDir = args[1]
			}
			policy := core.KeyByName
			if force || a.cfg.ForceDecrypt {
				policy = core.KeyForced
			}
			logging.Debugf("extract %s -> %s (key %s)", args[0], outDir, policy)

			err := core.Extract(args[0], core.ExtractOptions{
				OutputDir:  outDir,
				Policy:     policy,
				LZ4:        wrapped,
				MkdirAll:   true,
				BufferSize: a.cfg.BufferSize,
				Progress:   progress.New(a.stdout, a.cfg.Progress),
			})
			if err != nil {
				return err
			}
			logging.Logf("extracted %s into %s", args[0], outDir)
			return nil
		},
	}
	c.Flags().BoolVar(&wrapped, "lz4", false, "the archive is wrapped in an LZ4 frame")
	c.Flags().BoolVarP(&force, "force-decrypt", "d", false, "decode every member with the script key")
	return c
}
