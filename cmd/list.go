package cmd

import (
	"fmt"
	"text/tabwriter"

	"igatool/pkg/core"
	"igatool/pkg/logging"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var (
		withDigest bool
		force      bool
		wrapped    bool
	)
	c := &cobra.Command{
		Use:     "list ARCHIVE",
		Aliases: []string{"l"},
		Short:   "List the members of an archive",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy := core.KeyByName
			if force || a.cfg.ForceDecrypt {
				policy = core.KeyForced
			}
			h, items, err := core.List(args[0], core.ListOptions{
				Policy:     policy,
				Digest:     withDigest,
				LZ4:        wrapped,
				BufferSize: a.cfg.BufferSize,
			})
			if err != nil {
				return err
			}
			logging.Debugf("header unknown % x padding % x", h.Unknown, h.Padding)

			tw := tabwriter.NewWriter(a.stdout, 0, 8, 2, ' ', 0)
			if withDigest {
				fmt.Fprintln(tw, "NAME\tOFFSET\tSIZE\tDIGEST")
			} else {
				fmt.Fprintln(tw, "NAME\tOFFSET\tSIZE")
			}
			for _, it := range items {
				if withDigest {
					fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", it.Name, it.Start, it.Size, it.Digest)
				} else {
					fmt.Fprintf(tw, "%s\t%d\t%d\n", it.Name, it.Start, it.Size)
				}
			}
			return tw.Flush()
		},
	}
	c.Flags().BoolVar(&withDigest, "digest", false, "print the SHA-256 digest of each decoded member")
	c.Flags().BoolVar(&wrapped, "lz4", false, "the archive is wrapped in an LZ4 frame")
	c.Flags().BoolVarP(&force, "force-decrypt", "d", false, "decode every member with the script key")
	return c
}
