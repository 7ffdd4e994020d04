// Package storage keeps uploaded files in an S3-compatible bucket or a local
// directory behind one Storage interface.
//
// S3 works with AWS, MinIO, R2 and similar services:
//
//	var cfg storage.Config
//	if err := env.Parse(&cfg); err != nil {
//	    return err
//	}
//	store, err := storage.New(cfg)
//
// Dir writes under a local directory and serves files from a static route,
// which is how development servers and single-box deployments keep uploads:
//
//	store, err := storage.NewDir("var/uploads", "/uploads")
//	r.Mount("/uploads", http.StripPrefix("/uploads", http.FileServerFS(store.FS())))
//
// Keys are generated as "{prefix}/{ulid}{ext}" from the sniffed content type
// unless WithKey is given. Uploads can be checked before they are written:
//
//	info, err := storage.PutFile(ctx, store, fh,
//	    storage.WithPrefix("articles"),
//	    storage.WithValidation(storage.NotEmpty(), storage.MaxSize(5<<20), storage.ImageOnly()),
//	)
//	var verr *storage.FileValidationError
//	if errors.As(err, &verr) {
//	    // show verr.Message next to the file input
//	}
package storage
