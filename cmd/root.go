// Package cmd implements the command-line interface for bilisan.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/bilisan-cli/bilisan/color"
	"github.com/bilisan-cli/bilisan/constant"
	"github.com/bilisan-cli/bilisan/key"
	"github.com/bilisan-cli/bilisan/log"
	"github.com/bilisan-cli/bilisan/style"
	"github.com/bilisan-cli/bilisan/util"
	"github.com/bilisan-cli/bilisan/version"
	"github.com/bilisan-cli/bilisan/where"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().IntP("timeout", "t", 0, "Per-request timeout in seconds")
	lo.Must0(viper.BindPFlag(key.NetworkTimeout, rootCmd.PersistentFlags().Lookup("timeout")))

	rootCmd.PersistentFlags().Bool("tls-spoof", false, "Send requests with a Chrome TLS fingerprint")
	lo.Must0(viper.BindPFlag(key.NetworkTLSSpoof, rootCmd.PersistentFlags().Lookup("tls-spoof")))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// Initialize cleanup of localized temporary files on application startup.
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

// rootCmd defines the entry point for the bilisan application.
var rootCmd = &cobra.Command{
	Use:   constant.Bilisan,
	Short: "A command-line stream resolver for bilibili pages",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - A command-line stream resolver for bilibili pages"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		handleErr(cmd.Help())
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", style.ErrorTitle(" ✗ "), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
