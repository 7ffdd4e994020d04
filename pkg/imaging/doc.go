// Package imaging resizes uploaded images and produces thumbnails in the
// background.
//
//	img, err := imaging.Resize(file, imaging.Options{Width: 800, Mode: imaging.Fit})
//	if err != nil {
//	    return err
//	}
//	_, err = storage.PutBytes(ctx, store, img.Data, storage.WithContentType(img.ContentType()))
//
// Fit keeps the aspect ratio inside the box and never enlarges unless
// Upscale is set. Fill covers the box and crops from the center. Stretch
// ignores the aspect ratio. JPEG, PNG, GIF, WebP and BMP sources are read;
// output is JPEG or PNG.
//
// ThumbnailTask plugs into pkg/job so uploads return quickly:
//
//	jobs, err := job.NewManager(pool, job.WithTask(imaging.NewThumbnailTask(store, 320, 200)))
//	...
//	err = c.Enqueue(imaging.ThumbnailTaskName, imaging.ThumbnailPayload{Key: info.Key})
package imaging
