// Package query generates SQL statements from column/value maps and from a small
// string-operator filter language.
//
// A filter expression is a field name, a pipe and an operator followed by the value:
//
//	title|:go          title LIKE '%go%'
//	views|>=10         views >= 10
//	status|=published  status = 'published'
//	id|@1,2,3          id IN (1, 2, 3)
//	deleted_at|?       deleted_at IS NULL
//
// The full operator set is:
//
//	=   equal               !   not equal
//	<   less than           >   greater than
//	<=  less or equal       >=  greater or equal
//	:   LIKE                !:  NOT LIKE
//	@   IN (comma list)     !@  NOT IN
//	?   IS NULL             !?  IS NOT NULL
//
// Values are never interpolated into SQL; every value becomes a bound parameter
// rendered by the [Dialect] in use.
//
// Building statements:
//
//	sql, args := query.Select("articles").
//		Columns("id", "title").
//		Where(query.Eq("status", "published")).
//		OrderBy("created_at", true).
//		Limit(10).
//		Build(query.Postgres)
//
// Parsing filters from a request:
//
//	conds, err := query.ParseValues(r.URL.Query(), "q")
package query
