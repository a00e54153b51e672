// Package cmd implements the command-line interface for bilisan.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bilisan-cli/bilisan/extractor"
	"github.com/bilisan-cli/bilisan/filesystem"
	"github.com/bilisan-cli/bilisan/history"
	"github.com/bilisan-cli/bilisan/key"
	"github.com/bilisan-cli/bilisan/media"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().BoolP("json", "j", false, "Format the command output as a JSON object")
	resolveCmd.Flags().StringP("output", "o", "", "Specify a file path to write the command output")

	resolveCmd.Flags().BoolP("expand", "e", false, "Resolve every entry of season, album, and channel listings")
	lo.Must0(viper.BindPFlag(key.ResolverExpand, resolveCmd.Flags().Lookup("expand")))

	resolveCmd.Flags().IntP("parallel", "p", 4, "Concurrent resolutions when expanding a listing")
	lo.Must0(viper.BindPFlag(key.ResolverParallel, resolveCmd.Flags().Lookup("parallel")))

	resolveCmd.Flags().BoolP("write-history", "H", true, "Record successful resolutions in the local history file")
	lo.Must0(viper.BindPFlag(key.HistorySaveOnResolve, resolveCmd.Flags().Lookup("write-history")))
}

// expander is implemented by resolvers that can resolve the members of a
// playlist they produced.
type expander interface {
	Expand(ctx context.Context, playlist *media.Playlist, limit int) (*media.Composite, error)
}

// resolveCmd resolves page URLs into ranked stream candidates.
var resolveCmd = &cobra.Command{
	Use:   "resolve [url]...",
	Short: "Resolve bilibili page URLs into ranked stream candidates",
	Long: `Resolve one or more bilibili page URLs into their stream candidates.

Recognized pages: regular and bangumi videos, season listings, live
recordings, audio tracks and albums, channel video listings, and embedded
player URLs. Listings resolve to their member links; pass --expand to
resolve every member into its streams.`,
	Example: "bilisan resolve https://www.bilibili.com/video/av1074402/ --json",
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var (
			asJson = lo.Must(cmd.Flags().GetBool("json"))
			output = lo.Must(cmd.Flags().GetString("output"))
		)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		results := make([]media.Result, 0, len(args))
		for _, rawURL := range args {
			results = append(results, resolveOne(ctx, rawURL))
		}

		if asJson {
			var payload any = results
			if len(results) == 1 {
				payload = results[0]
			}
			content := lo.Must(json.MarshalIndent(payload, "", "  "))
			content = append(content, '\n')

			if output != "" {
				handleErr(filesystem.API().WriteFile(output, content, 0644))
				return
			}
			cmd.Print(string(content))
			return
		}

		for i, result := range results {
			printResult(cmd, result)
			if i < len(results)-1 {
				cmd.Println()
			}
		}
	},
}

// resolveOne routes one URL through the registry, expanding listings when
// requested and recording the outcome in the history registry.
func resolveOne(ctx context.Context, rawURL string) media.Result {
	e, ok := extractor.Find(rawURL)
	if !ok {
		handleErr(fmt.Errorf("no extractor recognizes %q", rawURL))
	}

	result, err := e.Resolve(ctx, rawURL)
	handleErr(err)

	if playlist, isPlaylist := result.(*media.Playlist); isPlaylist && viper.GetBool(key.ResolverExpand) {
		if exp, canExpand := e.(expander); canExpand {
			composite, err := exp.Expand(ctx, playlist, viper.GetInt(key.ResolverParallel))
			handleErr(err)
			result = composite
		}
	}

	if viper.GetBool(key.HistorySaveOnResolve) {
		_ = history.Save(rawURL, e.Name(), result)
	}

	return result
}
