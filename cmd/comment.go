package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var commentCmd = &cobra.Command{
	Use:   "comment <archive|url>",
	Short: "Print the archive comment",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
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

		comment := a.Comment()
		if len(comment) == 0 {
			return nil
		}
		out := c.OutOrStdout()
		if _, err := out.Write(comment); err != nil {
			return err
		}
		if comment[len(comment)-1] != '\n' {
			_, err = out.Write([]byte{'\n'})
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(commentCmd)
}
