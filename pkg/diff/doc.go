// Package diff compares texts by repeatedly taking the longest run of tokens
// two versions share and diffing what lies on either side of it. The result
// reads naturally for prose, which makes it a good fit for article revision
// history.
//
//	chunks := diff.Words("The quick brown fox", "The slow brown fox")
//	diff.HTML(chunks)
//	// The <del>quick</del><ins>slow</ins> brown fox
//	diff.StatsOf(chunks).Similarity()
//
// Lines and Unified cover configuration files and code; Chars suits short
// values such as titles.
package diff
