// Package media defines the domain models for resolved streams: formats, entries, and composite results.
package media

import "golang.org/x/exp/slices"

// SortFormats orders a format list best-first.
//
// The key, in descending priority: explicit preference (backups and mirrors
// carry negative values and sink below primaries regardless of quality),
// then resolution, then bitrate. Codec identifiers are never consulted;
// codec choice is left to the caller. The sort is stable, so equal-key
// formats keep their discovery order and the output is deterministic for
// identical input.
func SortFormats(formats []*Format) {
	slices.SortStableFunc(formats, func(a, b *Format) int {
		if a.Preference != b.Preference {
			if a.Preference > b.Preference {
				return -1
			}
			return 1
		}

		if pa, pb := a.Pixels(), b.Pixels(); pa != pb {
			if pa > pb {
				return -1
			}
			return 1
		}

		if ba, bb := a.Bitrate(), b.Bitrate(); ba != bb {
			if ba > bb {
				return -1
			}
			return 1
		}

		return 0
	})
}

// SortLinks orders playlist links by episode number ascending. Links without
// a usable number sort after all numbered ones; the sort is stable, so
// relative order among unnumbered links is preserved.
func SortLinks(links []*Link) {
	slices.SortStableFunc(links, func(a, b *Link) int {
		switch {
		case a.EpisodeNumber == nil && b.EpisodeNumber == nil:
			return 0
		case a.EpisodeNumber == nil:
			return 1
		case b.EpisodeNumber == nil:
			return -1
		case *a.EpisodeNumber < *b.EpisodeNumber:
			return -1
		case *a.EpisodeNumber > *b.EpisodeNumber:
			return 1
		default:
			return 0
		}
	})
}
