// Package color does HSL and RGB color math for themes and generated
// badges.
//
//	brand := color.MustParse("#0d6efd")
//	hover := brand.Darken(0.1)
//	text := brand.TextColor()          // black or white, whichever reads better
//	ratio := brand.Contrast(text)      // WCAG ratio, 4.5 passes AA
//	tints := brand.Shades(5)
//
// Colors implement encoding.TextMarshaler, so they can sit directly in JSON
// payloads and config.
package color
