package storage

import (
	"io"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

const presignTTL = 15 * time.Minute

type S3Storage struct {
	Bucket   string
	Prefix   string // Path prefix inside the bucket
	s3Client *s3.S3
}

// NewS3Storage connects to bucket; auth is "key:secret" or empty for the default credential chain
func NewS3Storage(bucket, prefix, region, endpoint, auth string) (*S3Storage, error) {
	cfg := aws.NewConfig().WithRegion(region)
	if endpoint != "" {
		cfg = cfg.WithEndpoint(endpoint).WithS3ForcePathStyle(true)
	}
	if key, secret, ok := strings.Cut(auth, ":"); ok {
		cfg = cfg.WithCredentials(credentials.NewStaticCredentials(key, secret, ""))
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, err
	}
	return &S3Storage{
		Bucket:   bucket,
		Prefix:   strings.Trim(prefix, "/"),
		s3Client: s3.New(sess),
	}, nil
}

func (s *S3Storage) remotePath(p string) (string, error) {
	clean, err := cleanPath(p)
	if err != nil {
		return "", err
	}
	if s.Prefix == "" {
		return clean, nil
	}
	return path.Join(s.Prefix, clean), nil
}

type countingReader struct {
	io.Reader
	n int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.Reader.Read(p)
	r.n += int64(n)
	return n, err
}

func (s *S3Storage) Save(p string, reader io.Reader) (int64, error) {
	key, err := s.remotePath(p)
	if err != nil {
		return 0, err
	}
	body := &countingReader{Reader: reader}
	input := s3manager.UploadInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if mimeType := mime.TypeByExtension(filepath.Ext(key)); mimeType != "" {
		input.ContentType = aws.String(mimeType)
	}
	_, err = s3manager.NewUploaderWithClient(s.s3Client).Upload(&input)
	return body.n, err
}

func (s *S3Storage) Load(p string, writer io.Writer) (int64, error) {
	key, err := s.remotePath(p)
	if err != nil {
		return 0, err
	}
	resp, err := s.s3Client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return io.Copy(writer, resp.Body)
}

// Serve redirects to a short lived presigned URL
func (s *S3Storage) Serve(p string, request *http.Request, writer http.ResponseWriter) {
	key, err := s.remotePath(p)
	if err != nil {
		http.NotFound(writer, request)
		return
	}
	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(presignTTL)
	if err != nil {
		http.Error(writer, "storage unavailable", http.StatusBadGateway)
		return
	}
	http.Redirect(writer, request, url, http.StatusFound)
}

func (s *S3Storage) Delete(p string) error {
	key, err := s.remotePath(p)
	if err != nil {
		return err
	}
	_, err = s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Storage) Exists(p string) bool {
	key, err := s.remotePath(p)
	if err != nil {
		return false
	}
	_, err = s.s3Client.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	return err == nil
}

// Buckets have no size limit
func (s *S3Storage) GetTotalSpace() uint64 {
	return 0
}

func (s *S3Storage) GetFreeSpace() uint64 {
	return 0
}
