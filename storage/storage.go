package storage

import (
	"errors"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"yatube/config"
)

type StorageAPI interface {
	Save(path string, reader io.Reader) (int64, error)
	Load(path string, writer io.Writer) (int64, error)
	Serve(path string, request *http.Request, writer http.ResponseWriter)
	Delete(path string) error
	Exists(path string) bool
	GetTotalSpace() uint64
	GetFreeSpace() uint64
}

var (
	ErrInvalidPath = errors.New("invalid storage path")

	unsafeChars = regexp.MustCompile(`[^\w.-]+`)
)

// New returns S3 storage when a bucket is configured, disk storage under MEDIA_ROOT otherwise
func New() (StorageAPI, error) {
	if config.S3_BUCKET != "" {
		return NewS3Storage(config.S3_BUCKET, config.S3_PREFIX, config.S3_REGION, config.S3_ENDPOINT, config.S3_AUTH)
	}
	return NewDiskStorage(config.MEDIA_ROOT), nil
}

// cleanPath turns a user supplied path into a relative slash separated one that cannot escape the root
func cleanPath(p string) (string, error) {
	p = strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(p, "\\", "/")), "/")
	if p == "" || p == "." {
		return "", ErrInvalidPath
	}
	return p, nil
}

// UniqueName returns dir/name with name made safe, adding a random suffix if the file is taken
func UniqueName(s StorageAPI, dir, name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(name))
	base := unsafeChars.ReplaceAllString(strings.TrimSuffix(name, filepath.Ext(name)), "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "image"
	}
	candidate := path.Join(dir, base+ext)
	if !s.Exists(candidate) {
		return candidate
	}
	return path.Join(dir, base+"_"+uuid.New().String()[:8]+ext)
}
