package constant

import _ "embed"

// AsciiArtLogo is the CLI banner shown on the root help screen.
//
//go:embed ascii.txt
var AsciiArtLogo string
