package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/abe-nagisa/zipcore/zipdir"
	"github.com/mattn/go-colorable"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/vrecan/death.v3"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "zipcore",
	Short: "Inspect the directory structures of ZIP archives",
	Long: `zipcore locates and decodes the end records, central directory and
extra fields of ZIP archives, including Zip64 archives, self-extractors and
damaged files. Archives may be local paths or http(s) URLs.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// SIGINT and SIGTERM cancel the context every command runs under.
func Execute() {
	ctx, abort := context.WithCancel(context.Background())
	hook := death.NewDeath(syscall.SIGINT, syscall.SIGTERM)
	go hook.WaitForDeathWithFunc(abort)

	rootCmd.SetOut(colorable.NewColorableStdout())
	rootCmd.SetErr(colorable.NewColorableStderr())
	err := rootCmd.ExecuteContext(ctx)
	abort()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	fs := rootCmd.PersistentFlags()
	fs.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.zipcore.yaml)")
	fs.Int("buffer-size", zipdir.DefaultBufferSize, "read window size in bytes")
	fs.Int64("search-len", zipdir.DefaultSearchLen, "how far from the end to look for the end record")
	fs.String("charset", "utf-8", "character set for UTF-8 names: utf-8, ascii, cp437, cp850, iso-8859-1, iso-8859-15, windows-1252, koi8-r")
	fs.Bool("escape-all", false, "escape every non-ASCII character of UTF-8 names")
	fs.String("unicode-mismatch", zipdir.MismatchWarn.String(), "on a stale Unicode path: error, warn or ignore")
	fs.BoolP("quiet", "q", false, "do not log warnings")
	bindFlags(fs)
}

// bindFlags makes every flag in fs readable through viper under its own
// name, so a flag, a ZIPCORE_ environment variable or the config file can
// set it.
func bindFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		_ = viper.BindPFlag(f.Name, f)
	})
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(rootCmd.ErrOrStderr(), err)
			os.Exit(1)
		}

		// Search config in home directory with name ".zipcore" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".zipcore")
	}

	viper.SetEnvPrefix("zipcore")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		newLoggers(rootCmd.ErrOrStderr(), false).info.Println("Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		newLoggers(rootCmd.ErrOrStderr(), false).warn.Printf("config file <%s>: %v", cfgFile, err)
	}
}
