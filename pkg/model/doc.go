// Package model maps Go structs to SQL tables.
//
// A model is a plain struct whose persisted fields carry a `db` tag with the
// column name and an optional `model` tag with column metadata. The same
// metadata drives table creation, validation and the HTML form builder.
//
//	type Article struct {
//		ID        int64     `db:"id" model:"pk"`
//		Title     string    `db:"title" model:"required;min:3;max:200"`
//		Body      string    `db:"body" model:"type:text" form:"type:textarea"`
//		Status    string    `db:"status" model:"index;default:draft" form:"type:select;options:draft|published"`
//		Email     string    `db:"email" model:"email"`
//		CreatedAt time.Time `db:"created_at" model:"created"`
//		UpdatedAt time.Time `db:"updated_at" model:"updated"`
//	}
//
// Supported `model` keys:
//
//	pk                primary key (a field named "id" is used when none is marked)
//	type:<sql>        explicit column type
//	size:<n>          VARCHAR size
//	required          value must be non-zero
//	min:<n> max:<n>   length bounds for strings, value bounds for numbers
//	pattern:<regexp>  strings must match
//	email             strings must be an e-mail address
//	unique, index     create a unique or plain index
//	null              column accepts NULL (pointer fields are nullable implicitly)
//	default:<v>       column default
//	created, updated  timestamps maintained by the repository
//	label:<text>      human readable name used in forms and messages
//
// The table name is the snake-cased plural of the type name unless the type
// implements TableName() string.
//
// # Usage
//
//	db, err := model.Open("sqlite", "app.db")
//	if err != nil {
//		return err
//	}
//	if _, err := db.Migrate(ctx, Article{}); err != nil {
//		return err
//	}
//
//	articles := model.NewRepository[Article](db)
//	err = articles.Insert(ctx, &Article{Title: "Hello"})
//	list, err := articles.List(ctx,
//		model.Where(query.Eq("status", "published")),
//		model.OrderBy("created_at", true),
//		model.Limit(10),
//	)
//
// Conditions use the [query] package, so filters coming from a request can be
// passed through directly. String values are converted to the column's type
// before they reach the database.
//
// Validation failures are returned as [ValidationErrors], keyed by column.
package model
