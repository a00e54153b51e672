package bilibili

import (
	"testing"

	"github.com/bilisan-cli/bilisan/media"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseFrameRate(t *testing.T) {
	Convey("parseFrameRate", t, func() {
		Convey("Parses a plain integer", func() {
			So(*parseFrameRate("24"), ShouldEqual, 24)
		})

		Convey("Rounds a fraction to the nearest integer", func() {
			So(*parseFrameRate("30000/1001"), ShouldEqual, 30)
			So(*parseFrameRate("24000/1001"), ShouldEqual, 24)
		})

		Convey("Unparsable input yields nil", func() {
			So(parseFrameRate(""), ShouldBeNil)
			So(parseFrameRate("fast"), ShouldBeNil)
			So(parseFrameRate("30000/0"), ShouldBeNil)
			So(parseFrameRate("x/1001"), ShouldBeNil)
		})
	})
}

func TestNormalizeDash(t *testing.T) {
	Convey("normalizeDash", t, func() {
		manifest := &playInfo{
			Timelength:        lo.ToPtr(int64(308067)),
			AcceptQuality:     []int{80, 32},
			AcceptDescription: []string{"1080P", "360P"},
			Dash: &dashManifest{
				Video: []dashTrack{
					{BaseURL: "http://cdn/v80.m4s", ID: lo.ToPtr(80), CodecID: 7, Codecs: "avc1.640032", Bandwidth: lo.ToPtr(3100000.0), FrameRate: "30000/1001", Width: lo.ToPtr(1920), Height: lo.ToPtr(1080)},
					{BaseURLSnake: "http://cdn/v32.m4s", ID: lo.ToPtr(32), CodecID: 12, Codecs: "hev1.1.6.L120.90", Bandwidth: lo.ToPtr(800000.0), FrameRateAlt: "24"},
				},
				Audio: []dashTrack{
					{BaseURL: "http://cdn/a.m4s", ID: lo.ToPtr(30280), Codecs: "mp4a.40.2", Bandwidth: lo.ToPtr(128000.0)},
				},
			},
		}

		Convey("Produces one entry covering both track arrays", func() {
			entry := normalizeDash(manifest)
			So(entry, ShouldNotBeNil)
			So(entry.Formats, ShouldHaveLength, 3)
			So(*entry.Duration, ShouldEqual, 308.067)
		})

		Convey("Format ids are unique and deterministic", func() {
			entry := normalizeDash(manifest)
			seen := map[string]bool{}
			for _, format := range entry.Formats {
				So(seen[format.ID], ShouldBeFalse)
				seen[format.ID] = true
			}
			So(seen["80_7"], ShouldBeTrue)
			So(seen["32_12"], ShouldBeTrue)
			So(seen["30280"], ShouldBeTrue)
		})

		Convey("Each candidate is single-track", func() {
			for _, format := range normalizeDash(manifest).Formats {
				So(format.HasVideo() != format.HasAudio(), ShouldBeTrue)
			}
		})

		Convey("Video candidates carry resolution, frame rate, and quality note", func() {
			entry := normalizeDash(manifest)
			best := entry.Formats[0]
			So(best.ID, ShouldEqual, "80_7")
			So(best.Ext, ShouldEqual, "mp4")
			So(*best.Width, ShouldEqual, 1920)
			So(*best.FrameRate, ShouldEqual, 30)
			So(best.Note, ShouldEqual, "1080P")
			So(*best.VideoBitrate, ShouldEqual, 3100.0)
		})

		Convey("File size is approximated from bitrate and duration", func() {
			entry := normalizeDash(manifest)
			audio := lo.Must(lo.Find(entry.Formats, func(f *media.Format) bool { return f.ID == "30280" }))
			So(audio.Ext, ShouldEqual, "m4a")
			So(*audio.FileSizeApprox, ShouldEqual, int64(128.0*308.067*1000/8))
		})

		Convey("Either track array spelling of the URL is accepted", func() {
			entry := normalizeDash(manifest)
			snake := lo.Must(lo.Find(entry.Formats, func(f *media.Format) bool { return f.ID == "32_12" }))
			So(snake.URL, ShouldEqual, "http://cdn/v32.m4s")
			So(*snake.FrameRate, ShouldEqual, 24)
		})

		Convey("A manifest missing either track array yields nothing", func() {
			videoOnly := &playInfo{Dash: &dashManifest{Video: manifest.Dash.Video}}
			So(normalizeDash(videoOnly), ShouldBeNil)

			audioOnly := &playInfo{Dash: &dashManifest{Audio: manifest.Dash.Audio}}
			So(normalizeDash(audioOnly), ShouldBeNil)
		})

		Convey("A non-manifest payload yields nothing", func() {
			So(normalizeDash(nil), ShouldBeNil)
			So(normalizeDash(&playInfo{}), ShouldBeNil)
		})
	})
}

func TestNormalizeDurl(t *testing.T) {
	Convey("normalizeDurl", t, func() {
		payload := &playInfo{
			Durl: []durlPart{
				{
					URL:    "http://cdn/part1.flv",
					Size:   lo.ToPtr(int64(52246146)),
					Length: lo.ToPtr(int64(204385)),
					BackupURLs: []string{
						"http://mirror/part1.flv",
						"http://mirror/part1-hd.mp4",
					},
				},
				{URL: "http://cdn/part2.flv", Length: lo.ToPtr(int64(103682))},
			},
		}

		Convey("Produces one entry per part with millisecond lengths converted", func() {
			entries := normalizeDurl(payload, "https://www.bilibili.com/video/av123/")
			So(entries, ShouldHaveLength, 2)
			So(*entries[0].Duration, ShouldEqual, 204.385)
			So(*entries[1].Duration, ShouldEqual, 103.682)
		})

		Convey("The primary outranks every backup, hd backups outrank the rest", func() {
			entries := normalizeDurl(payload, "https://www.bilibili.com/video/av123/")
			formats := entries[0].Formats
			So(formats, ShouldHaveLength, 3)
			So(formats[0].URL, ShouldEqual, "http://cdn/part1.flv")
			So(formats[1].URL, ShouldEqual, "http://mirror/part1-hd.mp4")
			So(formats[1].Preference, ShouldEqual, -2)
			So(formats[2].URL, ShouldEqual, "http://mirror/part1.flv")
			So(formats[2].Preference, ShouldEqual, -3)
		})

		Convey("Every candidate requires the originating page as referer", func() {
			entries := normalizeDurl(payload, "https://www.bilibili.com/video/av123/")
			for _, entry := range entries {
				for _, format := range entry.Formats {
					So(format.Headers["Referer"], ShouldEqual, "https://www.bilibili.com/video/av123/")
				}
			}
		})

		Convey("Format ids are unique within a part", func() {
			entries := normalizeDurl(payload, "https://www.bilibili.com/video/av123/")
			seen := map[string]bool{}
			for _, format := range entries[0].Formats {
				So(seen[format.ID], ShouldBeFalse)
				seen[format.ID] = true
			}
		})

		Convey("A non-multipart payload yields nothing", func() {
			So(normalizeDurl(&playInfo{}, "x"), ShouldBeNil)
			So(normalizeDurl(nil, "x"), ShouldBeNil)
		})
	})
}

func TestNormalizeRecording(t *testing.T) {
	Convey("normalizeRecording", t, func() {
		play := &recordPlay{
			List: []recordFragment{
				{URL: "http://cdn/frag0.mp4", Size: lo.ToPtr(int64(1000)), Length: lo.ToPtr(int64(60000))},
				{URL: "http://cdn/frag1.mp4", Size: lo.ToPtr(int64(2000)), Length: lo.ToPtr(int64(45500))},
			},
			Length:    lo.ToPtr(int64(105500)),
			CurrentQn: lo.ToPtr(10000),
			QnDesc:    []qnDesc{{Qn: 400, Desc: "流畅"}, {Qn: 10000, Desc: "原画"}},
		}

		Convey("Produces a single segmented candidate", func() {
			format := normalizeRecording(play, "https://api/getLiveRecordUrl?rid=R1")
			So(format, ShouldNotBeNil)
			So(format.ID, ShouldEqual, "fragments")
			So(format.Ext, ShouldEqual, "mp4")
			So(format.Fragments, ShouldHaveLength, 2)
			So(*format.Fragments[1].Duration, ShouldEqual, 45.5)
		})

		Convey("The active quality id resolves to its label and bitrate proxy", func() {
			format := normalizeRecording(play, "x")
			So(format.Note, ShouldEqual, "原画")
			So(*format.VideoBitrate, ShouldEqual, 10000.0)
		})

		Convey("An unknown quality id leaves the label empty", func() {
			other := *play
			other.CurrentQn = lo.ToPtr(999)
			So(normalizeRecording(&other, "x").Note, ShouldEqual, "")
		})

		Convey("An empty fragment list yields nothing", func() {
			So(normalizeRecording(&recordPlay{}, "x"), ShouldBeNil)
			So(normalizeRecording(nil, "x"), ShouldBeNil)
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("classify", t, func() {
		Convey("Legacy multi-part data wins over an embedded manifest", func() {
			both := &playInfo{
				Durl: []durlPart{{URL: "x"}},
				Dash: &dashManifest{},
			}
			So(both.classify(), ShouldEqual, kindLegacyMultiPart)
		})

		Convey("A manifest alone classifies as such", func() {
			So((&playInfo{Dash: &dashManifest{}}).classify(), ShouldEqual, kindDashManifest)
		})

		Convey("Anything else is unknown", func() {
			So((&playInfo{}).classify(), ShouldEqual, kindUnknown)
			So((*playInfo)(nil).classify(), ShouldEqual, kindUnknown)
		})
	})
}

func TestDetermineExt(t *testing.T) {
	Convey("determineExt", t, func() {
		So(determineExt("http://cdn/frag0.mp4?sign=abc"), ShouldEqual, "mp4")
		So(determineExt("http://cdn/track.m4s"), ShouldEqual, "m4s")
		So(determineExt("http://cdn/noext"), ShouldEqual, "")
	})
}
