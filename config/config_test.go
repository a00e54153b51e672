package config

import (
	"testing"

	"github.com/bilisan-cli/bilisan/filesystem"
	"github.com/bilisan-cli/bilisan/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestSetup(t *testing.T) {
	filesystem.SetMemMapFs()
	defer filesystem.SetOsFs()

	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			So(Setup(), ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("Signing defaults match the public player constants", func() {
			_ = Setup()
			So(viper.GetString(key.BilibiliAppKey), ShouldEqual, "iVGUTjsxvpLeuDCf")
			So(viper.GetString(key.BilibiliSignKey), ShouldHaveLength, 32)
		})

		Convey("Every registered field is exposed to the environment", func() {
			So(len(EnvExposed), ShouldEqual, len(Default))
			So(len(Default), ShouldEqual, key.DefinedFieldsCount)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("network.tls_spoof"), ShouldEqual, "network_tls_spoof")
		})
	})
}

func TestField(t *testing.T) {
	Convey("Field", t, func() {
		f := Default[key.ResolverParallel]

		Convey("Env name carries the application prefix", func() {
			So(f.Env(), ShouldEqual, "BILISAN_RESOLVER_PARALLEL")
		})

		Convey("Pretty output mentions the key", func() {
			So(f.Pretty(), ShouldContainSubstring, key.ResolverParallel)
		})
	})
}
