// Package identity derives stable keys for grouping the same movie
// across providers, plus the short reproducible movie id carried by
// merged records.
package identity

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"reelmerge/internal/canonical"
)

// noYearSentinel keeps title-only records in their own group. A record
// that later gains a year from another provider lands in a different
// group on purpose; reconciling the two is out of scope.
const noYearSentinel = "?"

var foldCaser = cases.Fold()

// NormalizeTitle lowercases via Unicode case folding, trims, and
// collapses internal whitespace runs to single spaces.
func NormalizeTitle(title string) string {
	collapsed := strings.Join(strings.Fields(title), " ")
	return foldCaser.String(collapsed)
}

// Key returns the identity key for a canonical record. Records with
// equal keys describe the same movie and are merge candidates. The
// function is total; a missing release year maps to a sentinel rather
// than an error.
func Key(rec canonical.Record) string {
	return KeyFor(rec.MovieTitle, rec.ReleaseYear)
}

// KeyFor builds an identity key from a raw title and optional year.
func KeyFor(title string, year *int) string {
	normalized := NormalizeTitle(title)
	if year == nil {
		return normalized + "|" + noYearSentinel
	}
	return normalized + "|" + strconv.Itoa(*year)
}

// MovieID derives the reproducible short id for a movie from its winning
// title and year: the first 8 hex characters of a name-based UUID over
// the normalized identity content. Collisions are possible at this width
// but negligible for expected catalog sizes.
func MovieID(title string, year *int) string {
	raw := NormalizeTitle(title)
	if year != nil {
		raw += "_" + strconv.Itoa(*year)
	}
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(raw)).String()[:8]
}
