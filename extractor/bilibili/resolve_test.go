package bilibili

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bilisan-cli/bilisan/media"
	. "github.com/smartystreets/goconvey/convey"
)

var testSigner = Signer{
	AppKey:  "iVGUTjsxvpLeuDCf",
	SignKey: "aHRmhWMLkdeMuILqORnYZocwMBpMEOdt",
}

func testExtractor(server *httptest.Server) *Extractor {
	return &Extractor{
		client:      server.Client(),
		signer:      testSigner,
		apiBase:     server.URL,
		bangumiBase: server.URL,
		liveBase:    server.URL,
		audioBase:   server.URL,
		spaceBase:   server.URL,
	}
}

// verifySignature recomputes the playurl signature over the received query
// and fails the request on mismatch, like the real endpoint would.
func verifySignature(w http.ResponseWriter, r *http.Request) bool {
	query := r.URL.RawQuery
	payload, sig, ok := strings.Cut(query, "&sign=")
	if !ok || testSigner.Sign(payload) != sig {
		w.WriteHeader(http.StatusForbidden)
		return false
	}
	return true
}

const testVideoPage = `<html><head>
<meta name="description" content="description"></head><body>
<h1 title="【金坷垃】金泡沫">t</h1>
<a href="//space.bilibili.com/156160">菊子桑</a>
<script>var options = {"cid":3462593};</script>
</body></html>`

const testDashPage = `<html><body>
<h1 title="BV title">t</h1>
<script>window.__playinfo__={"data":{"dash":{"video":[{"baseUrl":"http://cdn/v.m4s","id":80,"codecid":7,"codecs":"avc1.640032","bandwidth":3100000}],"audio":[{"baseUrl":"http://cdn/a.m4s","id":30280,"codecs":"mp4a.40.2","bandwidth":128000}]}}}</script>
<script>var options = {"cid":3462593};</script>
</body></html>`

func TestResolveVideo(t *testing.T) {
	Convey("resolveVideo", t, func(c C) {
		ctx := context.Background()

		Convey("The first rendition answering with parts wins", func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, testVideoPage)
			})
			mux.HandleFunc("/v2/playurl", func(w http.ResponseWriter, r *http.Request) {
				if !verifySignature(w, r) {
					return
				}
				c.So(r.URL.Query().Get("cid"), ShouldEqual, "3462593")
				c.So(r.Header.Get("Referer"), ShouldContainSubstring, "/page")
				// The first rendition succeeds, so the fallback must never fire.
				c.So(r.URL.Query().Get("qn"), ShouldEqual, "80")
				fmt.Fprint(w, `{"durl":[
					{"url":"http://cdn/part1.flv","size":52246146,"length":204385},
					{"url":"http://cdn/part2.flv","size":32278613,"length":103682}
				]}`)
			})
			server := httptest.NewServer(mux)
			defer server.Close()
			e := testExtractor(server)

			result, err := e.resolveVideo(ctx, server.URL+"/page", map[string]string{"aid": "8903802"})
			So(err, ShouldBeNil)

			composite, ok := result.(*media.Composite)
			So(ok, ShouldBeTrue)
			So(composite.ID, ShouldEqual, "8903802")
			So(composite.Title, ShouldEqual, "【金坷垃】金泡沫")
			So(composite.Entries, ShouldHaveLength, 2)
			So(composite.Entries[0].ID, ShouldEqual, "8903802_part1")
			So(composite.Entries[1].ID, ShouldEqual, "8903802_part2")
			So(*composite.Entries[0].Duration, ShouldEqual, 204.385)
			So(composite.Entries[0].Uploader, ShouldEqual, "菊子桑")
			So(composite.Entries[0].Formats[0].Headers["Referer"], ShouldEqual, server.URL+"/page")
		})

		Convey("A failing rendition falls through to the next", func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, testVideoPage)
			})
			mux.HandleFunc("/v2/playurl", func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("qn") == "80" {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				fmt.Fprint(w, `{"durl":[{"url":"http://cdn/single.mp4","length":204385}]}`)
			})
			server := httptest.NewServer(mux)
			defer server.Close()
			e := testExtractor(server)

			result, err := e.resolveVideo(ctx, server.URL+"/page", map[string]string{"aid": "8903802"})
			So(err, ShouldBeNil)

			entry, ok := result.(*media.Entry)
			So(ok, ShouldBeTrue)
			So(entry.ID, ShouldEqual, "8903802")
			So(entry.Formats[0].URL, ShouldEqual, "http://cdn/single.mp4")
		})

		Convey("A failure on the last rendition surfaces", func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, testVideoPage)
			})
			mux.HandleFunc("/v2/playurl", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			})
			server := httptest.NewServer(mux)
			defer server.Close()
			e := testExtractor(server)

			_, err := e.resolveVideo(ctx, server.URL+"/page", map[string]string{"aid": "8903802"})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "video 8903802")
			So(err.Error(), ShouldContainSubstring, "unexpected status 500")
		})

		Convey("The page manifest stands alone when the legacy API has no parts", func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, testDashPage)
			})
			mux.HandleFunc("/v2/playurl", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"code":0}`)
			})
			server := httptest.NewServer(mux)
			defer server.Close()
			e := testExtractor(server)

			result, err := e.resolveVideo(ctx, server.URL+"/page", map[string]string{"bvid": "BV1JE411F741"})
			So(err, ShouldBeNil)

			entry, ok := result.(*media.Entry)
			So(ok, ShouldBeTrue)
			So(entry.ID, ShouldEqual, "BV1JE411F741")
			So(entry.Formats, ShouldHaveLength, 2)
			So(entry.Formats[0].ID, ShouldEqual, "80_7")
		})

		Convey("Manifest candidates merge into the first legacy part only", func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, testDashPage)
			})
			mux.HandleFunc("/v2/playurl", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"durl":[
					{"url":"http://cdn/part1.flv","length":204385},
					{"url":"http://cdn/part2.flv","length":103682}
				]}`)
			})
			server := httptest.NewServer(mux)
			defer server.Close()
			e := testExtractor(server)

			result, err := e.resolveVideo(ctx, server.URL+"/page", map[string]string{"aid": "8903802"})
			So(err, ShouldBeNil)

			composite := result.(*media.Composite)
			So(composite.Entries, ShouldHaveLength, 2)
			So(composite.Entries[0].Formats, ShouldHaveLength, 3)
			So(composite.Entries[1].Formats, ShouldHaveLength, 1)
			// Appended after the legacy candidates, not re-ranked into them.
			So(composite.Entries[0].Formats[0].URL, ShouldEqual, "http://cdn/part1.flv")
			So(composite.Entries[0].Formats[1].ID, ShouldEqual, "80_7")
		})

		Convey("A structured provider error surfaces when nothing plays", func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, testVideoPage)
			})
			mux.HandleFunc("/v2/playurl", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"code":-403,"message":"访问权限不足"}`)
			})
			server := httptest.NewServer(mux)
			defer server.Close()
			e := testExtractor(server)

			_, err := e.resolveVideo(ctx, server.URL+"/page", map[string]string{"aid": "8903802"})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "bilibili said: 访问权限不足")
		})

		Convey("An empty answer with no manifest reports unavailability", func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, testVideoPage)
			})
			mux.HandleFunc("/v2/playurl", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{}`)
			})
			server := httptest.NewServer(mux)
			defer server.Close()
			e := testExtractor(server)

			_, err := e.resolveVideo(ctx, server.URL+"/page", map[string]string{"aid": "8903802"})
			So(err, ShouldWrap, ErrContentUnavailable)
		})

		Convey("Anime episodes resolve their content id through the source endpoint", func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `<html><h1 title="episode">t</h1></html>`)
			})
			mux.HandleFunc("/web_api/get_source", func(w http.ResponseWriter, r *http.Request) {
				c.So(r.Method, ShouldEqual, http.MethodPost)
				c.So(r.FormValue("episode_id"), ShouldEqual, "239982")
				fmt.Fprint(w, `{"result":{"cid":3462593}}`)
			})
			mux.HandleFunc("/v2/playurl", func(w http.ResponseWriter, r *http.Request) {
				c.So(r.URL.Query().Get("cid"), ShouldEqual, "3462593")
				fmt.Fprint(w, `{"durl":[{"url":"http://cdn/ep.flv","length":1000}]}`)
			})
			server := httptest.NewServer(mux)
			defer server.Close()
			e := testExtractor(server)

			result, err := e.resolveVideo(ctx, server.URL+"/page", map[string]string{"anime": "5802", "epid": "239982"})
			So(err, ShouldBeNil)
			So(result.ResultID(), ShouldEqual, "239982")
		})
	})
}

func TestResolveSeason(t *testing.T) {
	Convey("resolveSeason", t, func() {
		ctx := context.Background()

		Convey("Episodes order by number with unnumbered entries last", func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/jsonp/seasoninfo/5802.ver", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `seasonListCallback({"code":0,"result":{
					"bangumi_title":"戦姫絶唱シンフォギア",
					"evaluate":"summary",
					"episodes":[
						{"webplay_url":"http://bangumi.bilibili.com/anime/5802/play#100096","index":"3","index_title":"三"},
						{"webplay_url":"http://bangumi.bilibili.com/anime/5802/play#100099","index":"sp","index_title":"特别篇"},
						{"webplay_url":"http://bangumi.bilibili.com/anime/5802/play#100094","index":"1","index_title":"一","update_time":"2014-04-20 16:51:18"}
					]}});`)
			})
			server := httptest.NewServer(mux)
			defer server.Close()
			e := testExtractor(server)

			result, err := e.resolveSeason(ctx, "5802")
			So(err, ShouldBeNil)

			playlist, ok := result.(*media.Playlist)
			So(ok, ShouldBeTrue)
			So(playlist.ID, ShouldEqual, "5802")
			So(playlist.Title, ShouldEqual, "戦姫絶唱シンフォギア")
			So(playlist.Links, ShouldHaveLength, 3)
			So(*playlist.Links[0].EpisodeNumber, ShouldEqual, 1)
			So(*playlist.Links[1].EpisodeNumber, ShouldEqual, 3)
			So(playlist.Links[2].EpisodeNumber, ShouldBeNil)
			So(*playlist.Links[0].Timestamp, ShouldEqual, int64(1398012678))
		})

		Convey("A missing result reports unavailability", func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/jsonp/seasoninfo/404.ver", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"code":-404}`)
			})
			server := httptest.NewServer(mux)
			defer server.Close()
			e := testExtractor(server)

			_, err := e.resolveSeason(ctx, "404")
			So(err, ShouldWrap, ErrContentUnavailable)
		})
	})
}

func TestResolveRecord(t *testing.T) {
	Convey("resolveRecord", t, func() {
		ctx := context.Background()

		Convey("Combines the info and fragment endpoints into one entry", func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/xlive/web-room/v1/record/getInfoByLiveRecord", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"data":{"live_record_info":{"rid":445945575,"title":"直播回放","start_timestamp":1398012678}}}`)
			})
			mux.HandleFunc("/xlive/web-room/v1/record/getLiveRecordUrl", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"data":{
					"list":[{"url":"http://cdn/frag0.mp4","size":1000,"length":60000}],
					"length":60000,"current_qn":10000,
					"qn_desc":[{"qn":10000,"desc":"原画"}]}}`)
			})
			server := httptest.NewServer(mux)
			defer server.Close()
			e := testExtractor(server)

			result, err := e.resolveRecord(ctx, "R1ox411wrExR")
			So(err, ShouldBeNil)

			entry, ok := result.(*media.Entry)
			So(ok, ShouldBeTrue)
			So(entry.ID, ShouldEqual, "445945575")
			So(entry.Title, ShouldEqual, "直播回放")
			So(*entry.Duration, ShouldEqual, 60.0)
			So(entry.Formats, ShouldHaveLength, 1)
			So(entry.Formats[0].Fragments, ShouldHaveLength, 1)
			So(entry.Formats[0].Note, ShouldEqual, "原画")
		})

		Convey("A missing recording reports unavailability", func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"data":{}}`)
			})
			server := httptest.NewServer(mux)
			defer server.Close()
			e := testExtractor(server)

			_, err := e.resolveRecord(ctx, "Rnope")
			So(err, ShouldWrap, ErrContentUnavailable)
		})
	})
}

func TestResolveAudio(t *testing.T) {
	Convey("resolveAudio", t, func() {
		ctx := context.Background()

		Convey("Combines the play and song endpoints into one entry", func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/url", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"data":{"cdns":["http://cdn/track.m4a?sign=x"],"size":3614979}}`)
			})
			mux.HandleFunc("/song/info", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"data":{"title":"【tsukimiya】鸣凤堂","intro":"翻唱","cover":"http://i0.hdslb.com/c.jpg","uname":"tsukimiya","uid":110000391,"duration":308,"passtime":1398012678}}`)
			})
			server := httptest.NewServer(mux)
			defer server.Close()
			e := testExtractor(server)

			result, err := e.resolveAudio(ctx, "1003142")
			So(err, ShouldBeNil)

			entry, ok := result.(*media.Entry)
			So(ok, ShouldBeTrue)
			So(entry.ID, ShouldEqual, "1003142")
			So(entry.Title, ShouldEqual, "【tsukimiya】鸣凤堂")
			So(entry.Uploader, ShouldEqual, "tsukimiya")
			So(entry.UploaderID, ShouldEqual, "110000391")
			So(entry.Formats, ShouldHaveLength, 1)
			So(entry.Formats[0].Ext, ShouldEqual, "m4a")
			So(*entry.Formats[0].FileSize, ShouldEqual, int64(3614979))
			So(entry.Formats[0].HasVideo(), ShouldBeFalse)
		})

		Convey("No CDN reports unavailability", func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/url", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"data":{"cdns":[]}}`)
			})
			server := httptest.NewServer(mux)
			defer server.Close()
			e := testExtractor(server)

			_, err := e.resolveAudio(ctx, "1003142")
			So(err, ShouldWrap, ErrContentUnavailable)
		})
	})
}

func TestResolveAlbum(t *testing.T) {
	Convey("resolveAlbum", t, func() {
		ctx := context.Background()

		mux := http.NewServeMux()
		mux.HandleFunc("/song/of-menu", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data":{"data":[
				{"id":1003142,"title":"one"},
				{"id":1003143,"title":"two"}]}}`)
		})
		mux.HandleFunc("/menu/info", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data":{"title":"album title","intro":"album intro"}}`)
		})
		server := httptest.NewServer(mux)
		defer server.Close()
		e := testExtractor(server)

		Convey("Tracks stay in menu order as resolvable links", func() {
			result, err := e.resolveAlbum(ctx, "1003")
			So(err, ShouldBeNil)

			playlist, ok := result.(*media.Playlist)
			So(ok, ShouldBeTrue)
			So(playlist.ID, ShouldEqual, "1003")
			So(playlist.Title, ShouldEqual, "album title")
			So(playlist.Links, ShouldHaveLength, 2)
			So(playlist.Links[0].URL, ShouldEqual, "https://www.bilibili.com/audio/au1003142")
			So(playlist.Links[1].Title, ShouldEqual, "two")
		})
	})
}

func TestResolveChannel(t *testing.T) {
	Convey("resolveChannel", t, func() {
		ctx := context.Background()

		Convey("Pages through the member's uploads until the count is reached", func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/x/space/arc/search", func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Query().Get("pn") {
				case "1":
					fmt.Fprint(w, `{"data":{"list":{"vlist":[
						{"bvid":"BV1","title":"first","created":1398012678},
						{"bvid":"BV2","title":"second"}]},"page":{"count":3}}}`)
				default:
					fmt.Fprint(w, `{"data":{"list":{"vlist":[
						{"bvid":"BV3","title":"third"}]},"page":{"count":3}}}`)
				}
			})
			server := httptest.NewServer(mux)
			defer server.Close()
			e := testExtractor(server)

			result, err := e.resolveChannel(ctx, "110000391")
			So(err, ShouldBeNil)

			playlist, ok := result.(*media.Playlist)
			So(ok, ShouldBeTrue)
			So(playlist.Links, ShouldHaveLength, 3)
			So(playlist.Links[0].URL, ShouldEqual, "https://www.bilibili.com/video/BV1")
			So(*playlist.Links[0].Timestamp, ShouldEqual, int64(1398012678))
			So(playlist.Links[2].URL, ShouldEqual, "https://www.bilibili.com/video/BV3")
		})

		Convey("An empty listing reports unavailability", func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/x/space/arc/search", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"data":{"list":{"vlist":[]},"page":{"count":0}}}`)
			})
			server := httptest.NewServer(mux)
			defer server.Close()
			e := testExtractor(server)

			_, err := e.resolveChannel(ctx, "110000391")
			So(err, ShouldWrap, ErrContentUnavailable)
		})
	})
}

func TestExpand(t *testing.T) {
	Convey("Expand", t, func() {
		ctx := context.Background()

		mux := http.NewServeMux()
		mux.HandleFunc("/url", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"data":{"cdns":["http://cdn/%s.m4a"]}}`, r.URL.Query().Get("sid"))
		})
		mux.HandleFunc("/song/info", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"data":{"title":"track %s"}}`, r.URL.Query().Get("sid"))
		})
		server := httptest.NewServer(mux)
		defer server.Close()
		e := testExtractor(server)

		Convey("Resolves every link and flattens in playlist order", func() {
			playlist := &media.Playlist{
				ID:    "1003",
				Title: "album",
				Links: []*media.Link{
					{URL: "https://www.bilibili.com/audio/au11"},
					{URL: "https://www.bilibili.com/audio/au22"},
				},
			}

			composite, err := e.Expand(ctx, playlist, 2)
			So(err, ShouldBeNil)
			So(composite.ID, ShouldEqual, "1003")
			So(composite.Entries, ShouldHaveLength, 2)
			So(composite.Entries[0].Title, ShouldEqual, "track 11")
			So(composite.Entries[1].Title, ShouldEqual, "track 22")
		})
	})
}
