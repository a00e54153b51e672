package bilibili

import (
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bilisan-cli/bilisan/media"
	"github.com/bilisan-cli/bilisan/util"
	"github.com/samber/mo"
)

// Fixed textual markers of the content page. These mirror the page's player
// bootstrap and metadata markup; the provider has kept them stable across
// player revisions.
var (
	playinfoRe = regexp.MustCompile(`window\.__playinfo__\s*=\s*(?P<json>{.*})\s*</script>`)

	cidRe          = regexp.MustCompile(`\bcid(?:["']:|=)(?P<cid>\d+)`)
	embedPlayerRes = []*regexp.Regexp{
		regexp.MustCompile(`EmbedPlayer\([^)]+,\s*"(?P<qs>[^"]+)"\)`),
		regexp.MustCompile(`EmbedPlayer\([^)]+,\s*\\"(?P<qs>[^"]+)\\"\)`),
		regexp.MustCompile(`<iframe[^>]+src="https://secure\.bilibili\.com/secure,(?P<qs>[^"]+)"`),
	}

	// Two delimiter-specific patterns so a title attribute may contain
	// the opposite quote character.
	titleAttrRes = []*regexp.Regexp{
		regexp.MustCompile(`<h1[^>]+\btitle="(?P<title>[^"]+)"`),
		regexp.MustCompile(`<h1[^>]+\btitle='(?P<title>[^']+)'`),
	}
	titleTagRe  = regexp.MustCompile(`(?s)<h1[^>]*>(?P<title>.+?)</h1>`)
	stripTagsRe = regexp.MustCompile(`<[^>]*>`)

	uploaderRe = regexp.MustCompile(`<a[^>]+href="(?:https?:)?//space\.bilibili\.com/(?P<id>\d+)"[^>]*>(?P<name>[^<]+)`)
	timeTagRe  = regexp.MustCompile(`<time[^>]+datetime="(?P<datetime>[^"]+)"`)
)

// extractPlayinfo pulls the player bootstrap JSON embedded in the page.
// Returns nil when the marker is missing or the blob does not decode; the
// page manifest is a best-effort source.
func extractPlayinfo(page string) *playInfo {
	groups := util.ReGroups(playinfoRe, page)
	blob, ok := groups["json"]
	if !ok {
		return nil
	}

	var wrapper struct {
		Data playInfo `json:"data"`
	}
	if err := json.Unmarshal([]byte(blob), &wrapper); err != nil {
		return nil
	}
	return &wrapper.Data
}

// extractCid locates the content id the playurl API is keyed on. The id
// appears inline on modern pages; legacy pages only expose it through the
// embedded player parameters.
func extractCid(page string) (string, error) {
	if groups := util.ReGroups(cidRe, page); groups["cid"] != "" {
		return groups["cid"], nil
	}

	for _, re := range embedPlayerRes {
		groups := util.ReGroups(re, page)
		if groups["qs"] == "" {
			continue
		}
		params, err := url.ParseQuery(groups["qs"])
		if err != nil {
			continue
		}
		if cid := params.Get("cid"); cid != "" {
			return cid, nil
		}
	}

	return "", fmt.Errorf("unable to extract cid")
}

type uploader struct {
	Name string
	ID   string
}

// extractUploader tries the profile-link pattern first and falls back to the
// generic author meta field, which carries no id.
func extractUploader(page string, doc *goquery.Document) mo.Option[uploader] {
	if groups := util.ReGroups(uploaderRe, page); groups["name"] != "" {
		return mo.Some(uploader{
			Name: html.UnescapeString(groups["name"]),
			ID:   groups["id"],
		})
	}

	if author := metaContent(doc, `meta[name="author"]`); author != "" {
		return mo.Some(uploader{Name: author})
	}

	return mo.None[uploader]()
}

// pageMetadata scrapes the shared entry fields from the content page.
func pageMetadata(page string) media.Metadata {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		doc = nil
	}

	meta := media.Metadata{
		Title:       extractTitle(page),
		Description: metaContent(doc, `meta[name="description"]`),
		Thumbnail:   firstMetaContent(doc, `meta[property="og:image"]`, `meta[itemprop="thumbnailUrl"]`),
	}

	uploadTime := util.ReGroups(timeTagRe, page)["datetime"]
	if uploadTime == "" {
		uploadTime = firstMetaContent(doc, `meta[itemprop="uploadDate"]`, `meta[name="uploadDate"]`)
	}
	meta.Timestamp = parseTimestamp(uploadTime)

	if up, ok := extractUploader(page, doc).Get(); ok {
		meta.Uploader = up.Name
		meta.UploaderID = up.ID
	}

	return meta
}

func extractTitle(page string) string {
	for _, re := range titleAttrRes {
		if groups := util.ReGroups(re, page); groups["title"] != "" {
			return html.UnescapeString(groups["title"])
		}
	}
	if groups := util.ReGroups(titleTagRe, page); groups["title"] != "" {
		cleaned := stripTagsRe.ReplaceAllString(groups["title"], "")
		return strings.TrimSpace(html.UnescapeString(cleaned))
	}
	return ""
}

func metaContent(doc *goquery.Document, selector string) string {
	if doc == nil {
		return ""
	}
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func firstMetaContent(doc *goquery.Document, selectors ...string) string {
	for _, selector := range selectors {
		if content := metaContent(doc, selector); content != "" {
			return content
		}
	}
	return ""
}

// timestampLayouts covers the datetime spellings the page uses for upload times.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"20060102",
}

// parseTimestamp converts a page datetime to epoch seconds, nil when unparsable.
// Layouts without an offset are interpreted as UTC.
func parseTimestamp(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			ts := t.Unix()
			return &ts
		}
	}
	return nil
}
