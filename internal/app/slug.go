package app

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const fallbackSlug = "property"

// SlugChecker reports whether slug is held by a listing other than excludingListingID.
type SlugChecker func(ctx context.Context, slug, excludingListingID string) (bool, error)

// Slugify lower-cases s, folds accents, collapses every non-alphanumeric run into a
// single '-', and trims leading/trailing separators.
func Slugify(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	sep := false
	for _, r := range strings.ToLower(folded) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if sep && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			sep = false
			continue
		}
		sep = true
	}
	return b.String()
}

// ResolveSlug returns the first free candidate among base, base-1, base-2, ... where
// "free" excludes listingID's own row, so an updated record never collides with itself.
// A non-empty current slug is kept while it still derives from title and nobody else holds it.
func ResolveSlug(ctx context.Context, exists SlugChecker, title, listingID, current string) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = fallbackSlug
	}

	if current != "" && (current == base || hasStem(current, base)) {
		taken, err := exists(ctx, current, listingID)
		if err != nil {
			return "", err
		}
		if !taken {
			return current, nil
		}
	}

	candidate := base
	for n := 1; ; n++ {
		taken, err := exists(ctx, candidate, listingID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}

// hasStem reports whether slug is base-N for a positive integer N.
func hasStem(slug, base string) bool {
	rest, ok := strings.CutPrefix(slug, base+"-")
	if !ok || rest == "" {
		return false
	}
	n, err := strconv.Atoi(rest)
	return err == nil && n > 0 && strconv.Itoa(n) == rest
}
