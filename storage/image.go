package storage

import (
	"bytes"
	"errors"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrImageTooLarge    = errors.New("image exceeds size limit")
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

const sniffLen = 3072

// DetectImage sniffs the content type from the leading bytes and returns a reader
// that still yields the whole stream.
func DetectImage(r io.Reader, size, maxBytes int64) (string, io.Reader, error) {
	if maxBytes > 0 && size > maxBytes {
		return "", nil, ErrImageTooLarge
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	for _, allowed := range allowedImageTypes {
		if mt.Is(allowed) {
			return allowed, io.MultiReader(bytes.NewReader(head), r), nil
		}
	}
	return "", nil, ErrUnsupportedImage
}
