package cmd

import (
	"igatool/pkg/core"
	"igatool/pkg/logging"
	"igatool/pkg/progress"

	"github.com/spf13/cobra"
)

func newCompressCmd(a *app) *cobra.Command {
	var wrap bool
	c := &cobra.Command{
		Use:     "compress ARCHIVE [INPUT_FILE...]",
		Aliases: []string{"c"},
		Short:   "Build an archive from files",
		Long: `Compress writes a new ARCHIVE holding the input files in the order given.
Each member is named after the last component of its path.`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Debugf("compress %d files -> %s", len(args)-1, args[0])
			err := core.Compress(args[0], args[1:], core.CompressOptions{
				BufferSize: a.cfg.BufferSize,
				LZ4:        wrap,
				Progress:   progress.New(a.stdout, a.cfg.Progress),
			})
			if err != nil {
				return err
			}
			logging.Logf("wrote %s with %d members", args[0], len(args)-1)
			return nil
		},
	}
	c.Flags().BoolVar(&wrap, "lz4", false, "wrap the archive in an LZ4 frame")
	return c
}
