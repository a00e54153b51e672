package bilibili

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSuitable(t *testing.T) {
	Convey("Suitable", t, func() {
		e := New()

		Convey("Recognized page families", func() {
			recognized := []string{
				"http://www.bilibili.com/video/av1074402/",
				"https://www.bilibili.com/video/BV1JE411F741",
				"http://www.bilibili.tv/video/av1074402/",
				"http://bangumi.bilibili.com/anime/5802/play#100643",
				"http://bangumi.bilibili.com/anime/5802",
				"https://live.bilibili.com/record/R1ox411wrExR",
				"https://www.bilibili.com/audio/au1003142",
				"https://www.bilibili.com/audio/am10624",
				"https://space.bilibili.com/110000391/video",
				"https://player.bilibili.com/player.html?aid=92494333&cid=157926707&page=1",
			}
			for _, rawURL := range recognized {
				So(e.Suitable(rawURL), ShouldBeTrue)
			}
		})

		Convey("Unrelated URLs are rejected", func() {
			rejected := []string{
				"https://www.youtube.com/watch?v=BaW_jenozKc",
				"https://www.bilibili.com/read/cv5167957",
				"https://space.bilibili.com/110000391",
				"https://www.bilibili.com/audio/ax1003142",
			}
			for _, rawURL := range rejected {
				So(e.Suitable(rawURL), ShouldBeFalse)
			}
		})
	})
}

func TestPatternGroups(t *testing.T) {
	Convey("URL pattern capture groups", t, func() {
		Convey("Video ids", func() {
			groups := videoRe.FindStringSubmatch("http://www.bilibili.com/video/av1074402/")
			So(groups[videoRe.SubexpIndex("aid")], ShouldEqual, "1074402")

			groups = videoRe.FindStringSubmatch("https://www.bilibili.com/video/BV1JE411F741")
			So(groups[videoRe.SubexpIndex("bvid")], ShouldEqual, "1JE411F741")
		})

		Convey("Anime episode ids carry both the season and episode", func() {
			groups := videoRe.FindStringSubmatch("http://bangumi.bilibili.com/anime/5802/play#100643")
			So(groups[videoRe.SubexpIndex("anime")], ShouldEqual, "5802")
			So(groups[videoRe.SubexpIndex("epid")], ShouldEqual, "100643")
		})

		Convey("The season pattern captures the season id", func() {
			So(seasonRe.MatchString("http://bangumi.bilibili.com/anime/5802"), ShouldBeTrue)
			groups := seasonRe.FindStringSubmatch("http://bangumi.bilibili.com/anime/5802")
			So(groups[seasonRe.SubexpIndex("sid")], ShouldEqual, "5802")
		})

		Convey("The player pattern extracts the aliased video id", func() {
			groups := playerRe.FindStringSubmatch("https://player.bilibili.com/player.html?aid=92494333&cid=157926707&page=1")
			So(groups[playerRe.SubexpIndex("aid")], ShouldEqual, "92494333")
		})
	})
}
