// Package slug turns titles into URL-safe identifiers.
//
//	slug.Make("Café & Restaurant")                   // "cafe-restaurant"
//	slug.Make("Über Größe", slug.Separator("_"))      // "uber_grose"
//	slug.Make("Long Article Title", slug.MaxLength(12)) // "long-article"
//
// Latin diacritics are folded to ASCII. Any other rune, including emoji and
// non-Latin scripts, acts as a word break. WithSuffix, MinLength and
// ReservedSlugs append a random alphanumeric suffix, which is useful when a
// slug must stay unique across records:
//
//	slug.Make("admin", slug.ReservedSlugs("admin", "api")) // "admin-k7x2m4"
//
// Templates reach it through the view "slug" filter.
package slug
