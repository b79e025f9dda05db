package utils

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"strconv"
	"time"

	"github.com/nfnt/resize"
)

type ImageThumbConverted struct {
	ThumbSize int64
	Format    string
	NewX      uint16
	NewY      uint16
	OldX      uint16
	OldY      uint16
}

// CreateThumb decodes a GIF, PNG or JPEG image and writes a JPEG copy fitting size x size
func CreateThumb(size uint, reader io.Reader, writer io.Writer) (result ImageThumbConverted, err error) {
	image, format, err := image.Decode(reader)
	if err != nil {
		return result, err
	}
	result.Format = format
	var newBuf bytes.Buffer
	newImage := resize.Thumbnail(size, size, image, resize.Lanczos3)
	if err = jpeg.Encode(&newBuf, newImage, &jpeg.Options{Quality: 90}); err != nil {
		return
	}
	imageRect := newImage.Bounds().Size()
	result.NewX = uint16(imageRect.X)
	result.NewY = uint16(imageRect.Y)

	imageRect = image.Bounds().Size()
	result.OldX = uint16(imageRect.X)
	result.OldY = uint16(imageRect.Y)

	result.ThumbSize, err = io.Copy(writer, &newBuf)
	return
}

// ParsePage reads a 1-based page number, anything unusable means the first page
func ParsePage(in string) int {
	page, err := strconv.Atoi(in)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func StringToUInt64(in string) uint64 {
	i, _ := strconv.ParseUint(in, 10, 64)
	return i
}

func FormatUnixDate(sec int64) string {
	if sec == 0 {
		return ""
	}
	return time.Unix(sec, 0).Format("2 Jan 2006")
}
