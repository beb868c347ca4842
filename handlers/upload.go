package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"staygrow/errs"
	"staygrow/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

const (
	maxUploadSize = 5 << 20
	sniffLen      = 3072
)

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// Uploader stores an image and says where it can be fetched.
type Uploader interface {
	Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (models.UploadResult, error)
}

// UploadImage accepts a multipart "file" of at most 5 MiB. The type is
// sniffed from content; the client's Content-Type is ignored.
func UploadImage(uploader Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize+(1<<20))

		header, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large (max 5 MiB)"})
				return
			}
			writeError(c, errs.NewValidationError("file is required", "file"))
			return
		}
		if header.Size > maxUploadSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large (max 5 MiB)"})
			return
		}

		file, err := header.Open()
		if err != nil {
			writeError(c, err)
			return
		}
		defer file.Close()

		head := make([]byte, sniffLen)
		n, err := io.ReadFull(file, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			writeError(c, err)
			return
		}
		head = head[:n]

		mtype := mimetype.Detect(head)
		if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
			writeError(c, errs.NewValidationError("unsupported file type: only PNG, JPEG, GIF and WebP images are accepted", "file"))
			return
		}

		result, err := uploader.Upload(c.Request.Context(), header.Filename,
			io.MultiReader(bytes.NewReader(head), file), header.Size, mtype.String())
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusCreated, result)
	}
}
