package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/abe-nagisa/zipcore/zipdir"
	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var hostNames = map[uint8]string{
	zipdir.CreatorFAT:    "fat",
	zipdir.CreatorUnix:   "unix",
	zipdir.CreatorNTFS:   "ntfs",
	zipdir.CreatorVFAT:   "vfat",
	zipdir.CreatorMacOSX: "macos",
}

func hostName(h uint8) string {
	if s, ok := hostNames[h]; ok {
		return s
	}
	return fmt.Sprintf("host%d", h)
}

func methodName(m uint16) string {
	switch m {
	case zipdir.Store:
		return "stored"
	case zipdir.Deflate:
		return "deflated"
	}
	return fmt.Sprintf("method%d", m)
}

var listCmd = &cobra.Command{
	Use:   "list <archive|url>",
	Short: "List the central directory of an archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func init() {
	listCmd.Flags().Bool("local", false, "also read each local header and show where the data starts")
	_ = viper.BindPFlag("local", listCmd.Flags().Lookup("local"))
	rootCmd.AddCommand(listCmd)
}

func runList(c *cobra.Command, args []string) error {
	logs := newLoggers(c.ErrOrStderr(), viper.GetBool("quiet"))
	opts, err := archiveOptions(logs.warn)
	if err != nil {
		return err
	}
	src, a, err := openArchive(c.Context(), args[0], opts)
	if err != nil {
		return err
	}
	defer src.Close()

	out := c.OutOrStdout()
	printSummary(out, src.Name(), a)

	local := viper.GetBool("local")
	tw := tabwriter.NewWriter(out, 0, 8, 2, ' ', tabwriter.AlignRight)
	header := "Length\tSize\tMethod\tHost\tModified\tOwner\t"
	if local {
		header += "Data\t"
	}
	fmt.Fprintln(tw, header+" Name")

	var (
		count        int
		total, bad   uint64
		entryWarning int
	)
	err = a.Walk(func(e *zipdir.Entry) error {
		count++
		total += e.UncompressedSize
		entryWarning += len(e.Warnings)
		if e.Err != nil {
			bad++
			logs.err.Printf("%s: %v", e.Name, e.Err)
		}

		owner := "-"
		if uid, gid, ok := e.Unix.Owner(); ok {
			owner = fmt.Sprintf("%d:%d", uid, gid)
		}
		line := fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s\t",
			humanize.Bytes(e.UncompressedSize),
			humanize.Bytes(e.CompressedSize),
			methodName(e.Method),
			hostName(e.Host()),
			e.Modified().Format("2006-01-02 15:04"),
			owner)
		if local {
			lf, err := a.LocalHeader(e)
			if err != nil {
				logs.err.Printf("%s: %v", e.Name, err)
				line += "?\t"
			} else {
				line += fmt.Sprintf("%d\t", lf.DataOffset)
			}
		}
		fmt.Fprintln(tw, line+" "+e.DisplayName)
		return nil
	})
	tw.Flush()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%d entries, %s | \x1b[31merror\x1b[0m: %d | \x1b[33mwarn\x1b[0m: %d\n",
		count, humanize.Bytes(total), bad, len(a.Warnings())+entryWarning)
	return nil
}

func printSummary(out io.Writer, name string, a *zipdir.Archive) {
	end := a.End()
	fmt.Fprintf(out, "Archive: %s (%s)\n", name, humanize.Bytes(uint64(a.Size())))
	fmt.Fprintf(out, "  end record at %d, central directory at %d (%d entries, %s)\n",
		end.Start, a.CentralDirectoryOffset(), end.TotalEntries, humanize.Bytes(end.CentralDirSize))
	if loc, rec := a.Zip64(); rec != nil {
		fmt.Fprintf(out, "  zip64 record at %d, version %d, %d disks\n", end.Zip64Start, rec.ReaderVersion, loc.TotalDisks)
	}
	if err := a.Zip64Err(); err != nil {
		fmt.Fprintf(out, "  zip64 locator ignored: %v\n", err)
	}
	if n := a.ExtraBytes(); n != 0 {
		fmt.Fprintf(out, "  extra bytes: %d\n", n)
	}
	if a.Empty() {
		fmt.Fprintln(out, "  empty archive")
	}
}
