package handler

import (
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"docspace/internal/classify"
	"docspace/internal/model"
)

// FilesField is the repeated multipart field carrying a picked or dropped batch.
const FilesField = "files"

const undeclaredType = "application/octet-stream"

// formFiles copies every file of field into memory. Fiber discards multipart temp
// files when the request ends, while ingested files outlive it.
func formFiles(c *fiber.Ctx, field string) ([]model.RawFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	headers := form.File[field]
	files := make([]model.RawFile, 0, len(headers))
	for _, fh := range headers {
		f, err := memoryFile(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func memoryFile(fh *multipart.FileHeader) (model.RawFile, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	// Browsers send octet-stream for files whose type they do not know.
	mediaType := fh.Header.Get("Content-Type")
	if mediaType == "" || mediaType == undeclaredType {
		head := data
		if len(head) > 3072 {
			head = head[:3072]
		}
		mediaType = classify.DetectMediaType(fh.Filename, head)
	}
	return model.NewMemoryFile(fh.Filename, mediaType, data), nil
}
