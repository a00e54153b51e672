package util

import (
	"regexp"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeFilename(t *testing.T) {
	Convey("SanitizeFilename", t, func() {
		Convey("Should replace invalid chars", func() {
			So(SanitizeFilename("title:with?marks.json"), ShouldEqual, "title_with_marks.json")
		})
		Convey("Should collapse underscores", func() {
			So(SanitizeFilename("a  b.json"), ShouldEqual, "a_b.json")
		})
		Convey("Should trim separators", func() {
			So(SanitizeFilename("-name-"), ShouldEqual, "name")
		})
	})
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "part", "parts"), ShouldEqual, "1 part")
		So(Quantify(3, "part", "parts"), ShouldEqual, "3 parts")
	})
}

func TestReGroups(t *testing.T) {
	Convey("ReGroups", t, func() {
		re := regexp.MustCompile(`video/av(?P<aid>\d+)`)
		groups := ReGroups(re, "https://www.bilibili.com/video/av1074402/")
		So(groups["aid"], ShouldEqual, "1074402")

		Convey("Should return empty map on no match", func() {
			So(ReGroups(re, "https://example.com"), ShouldBeEmpty)
		})
	})
}

func TestNumericParsers(t *testing.T) {
	Convey("IntOrNil", t, func() {
		So(IntOrNil("24"), ShouldNotBeNil)
		So(*IntOrNil("24"), ShouldEqual, 24)
		So(IntOrNil(""), ShouldBeNil)
		So(IntOrNil("abc"), ShouldBeNil)
	})

	Convey("FloatOrNil", t, func() {
		So(*FloatOrNil("308.067"), ShouldEqual, 308.067)
		So(FloatOrNil(""), ShouldBeNil)
	})
}

func TestMaxMin(t *testing.T) {
	Convey("Max/Min", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Min(1, 5, 2), ShouldEqual, 1)
	})
}
