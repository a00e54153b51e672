// Package main is the entry point for the bilisan application.
package main

import (
	"github.com/bilisan-cli/bilisan/cmd"
	"github.com/bilisan-cli/bilisan/config"
	"github.com/bilisan-cli/bilisan/extractor"
	"github.com/bilisan-cli/bilisan/internal/cache"
	"github.com/bilisan-cli/bilisan/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	extractor.RegisterDefaults()

	// Initialize asynchronous background maintenance of the cache directory.
	go cache.CollectGarbage()

	cmd.Execute()
}
