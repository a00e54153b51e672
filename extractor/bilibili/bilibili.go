// Package bilibili resolves bilibili page URLs into ranked stream candidates.
//
// One extractor covers every recognized page family: regular and bangumi
// videos, season listings, live recordings, audio tracks and albums,
// channel video listings, and embedded player URLs. Resolution combines up
// to three uncoordinated sources describing the same content (the
// page-embedded player manifest, the signed legacy playurl API, and the
// live-recording segment API) into the media model.
package bilibili

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/bilisan-cli/bilisan/key"
	"github.com/bilisan-cli/bilisan/media"
	"github.com/bilisan-cli/bilisan/network"
	"github.com/bilisan-cli/bilisan/util"
	"github.com/spf13/viper"
)

// Recognized URL families, consulted in order by Resolve. The player
// pattern goes first: it would otherwise never win against the broader
// video pattern.
var (
	playerRe = regexp.MustCompile(`^https?://player\.bilibili\.com/player\.html\?.*\baid=(?P<aid>\d+)`)
	videoRe  = regexp.MustCompile(`(?i)^https?://(?:(?:www|bangumi)\.)?bilibili\.(?:tv|com)/(?:video/av(?P<aid>\d+)|anime/(?P<anime>\d+)/play#(?P<epid>\d+)|video/bv(?P<bvid>[^/?#&]+))`)
	seasonRe = regexp.MustCompile(`^https?://bangumi\.bilibili\.com/anime/(?P<sid>\d+)`)
	recordRe = regexp.MustCompile(`^https?://live\.bilibili\.com/record/(?P<rid>R[^/?#&]+)`)
	audioRe  = regexp.MustCompile(`^https?://(?:www\.)?bilibili\.com/audio/au(?P<auid>\d+)`)
	albumRe  = regexp.MustCompile(`^https?://(?:www\.)?bilibili\.com/audio/am(?P<amid>\d+)`)
	chanRe   = regexp.MustCompile(`^https?://space\.bilibili\.com/(?P<mid>\d+)/video`)
)

var patterns = []*regexp.Regexp{playerRe, videoRe, seasonRe, recordRe, audioRe, albumRe, chanRe}

// Extractor resolves bilibili page URLs. Construct it with New; the zero
// value carries no client or signing material.
type Extractor struct {
	client *http.Client
	signer Signer

	// Endpoint bases, overridable in tests.
	apiBase     string
	bangumiBase string
	liveBase    string
	audioBase   string
	spaceBase   string
}

// New builds an extractor from the active configuration.
func New() *Extractor {
	return &Extractor{
		client: network.Pick(),
		signer: Signer{
			AppKey:  viper.GetString(key.BilibiliAppKey),
			SignKey: viper.GetString(key.BilibiliSignKey),
		},
		apiBase:     "http://interface.bilibili.com",
		bangumiBase: "http://bangumi.bilibili.com",
		liveBase:    "https://api.live.bilibili.com",
		audioBase:   "https://www.bilibili.com/audio/music-service-c/web",
		spaceBase:   "https://api.bilibili.com",
	}
}

// Name returns the unique identifier of the resolver.
func (e *Extractor) Name() string {
	return "bilibili"
}

// Suitable reports whether any recognized URL family matches.
func (e *Extractor) Suitable(rawURL string) bool {
	for _, re := range patterns {
		if re.MatchString(rawURL) {
			return true
		}
	}
	return false
}

// Resolve routes the URL to the matching page family.
func (e *Extractor) Resolve(ctx context.Context, rawURL string) (media.Result, error) {
	if groups := util.ReGroups(playerRe, rawURL); groups["aid"] != "" {
		// Embedded player URLs are aliases of the canonical video page.
		canonical := fmt.Sprintf("https://www.bilibili.com/video/av%s/", groups["aid"])
		return e.Resolve(ctx, canonical)
	}

	if groups := util.ReGroups(videoRe, rawURL); len(groups) > 0 && (groups["aid"] != "" || groups["epid"] != "" || groups["bvid"] != "") {
		return e.resolveVideo(ctx, rawURL, groups)
	}

	if groups := util.ReGroups(seasonRe, rawURL); groups["sid"] != "" {
		return e.resolveSeason(ctx, groups["sid"])
	}

	if groups := util.ReGroups(recordRe, rawURL); groups["rid"] != "" {
		return e.resolveRecord(ctx, groups["rid"])
	}

	if groups := util.ReGroups(audioRe, rawURL); groups["auid"] != "" {
		return e.resolveAudio(ctx, groups["auid"])
	}

	if groups := util.ReGroups(albumRe, rawURL); groups["amid"] != "" {
		return e.resolveAlbum(ctx, groups["amid"])
	}

	if groups := util.ReGroups(chanRe, rawURL); groups["mid"] != "" {
		return e.resolveChannel(ctx, groups["mid"])
	}

	return nil, fmt.Errorf("unrecognized bilibili URL %q", rawURL)
}
