// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 13

// Provider Credentials - these keys hold the signing material for the legacy playurl API.
// They default to the public player constants and rarely need overriding.
const (
	BilibiliAppKey  = "bilibili.app_key"
	BilibiliSignKey = "bilibili.sign_key"
)

// Resolver Behavior - these keys govern multi-entry resolution and caching.
const (
	ResolverParallel = "resolver.parallel"
	ResolverExpand   = "resolver.expand"
	CacheEnabled     = "cache.enabled"
)

// History.
const (
	HistorySaveOnResolve = "history.save_on_resolve"
)

// Network - these keys tune the HTTP layer shared by all fetches.
const (
	NetworkTimeout  = "network.timeout"
	NetworkTLSSpoof = "network.tls_spoof"
)

// Logging - these keys configure the persistence of diagnostic output.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Presentation.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
