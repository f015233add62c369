package utils

import (
	"campuslink/storage"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
)

// FormUpload opens a multipart file field as an Upload. A missing field, or a
// request that is not multipart, yields a nil Upload. Call the returned
// function once the upload has been consumed.
func FormUpload(c *fiber.Ctx, field string) (*storage.Upload, func(), error) {
	noop := func() {}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, noop, nil
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil, noop, nil
	}
	return OpenUpload(files[0])
}

// OpenUpload wraps a multipart file header.
func OpenUpload(file *multipart.FileHeader) (*storage.Upload, func(), error) {
	src, err := file.Open()
	if err != nil {
		return nil, func() {}, err
	}
	upload := &storage.Upload{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Body:        src,
	}
	return upload, func() { src.Close() }, nil
}
