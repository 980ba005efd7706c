// internal/services/storage_service.go
package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/storefront/storefront-backend/internal/config"
)

const (
	maxImageSize   = 10 * 1024 * 1024
	localUploadDir = "uploads"
)

var allowedImageTypes = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// StorageService stores product images on S3 when AWS credentials are
// configured, and falls back to the local filesystem for development.
type StorageService struct {
	s3Client *s3.S3
	config   *config.Config
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	if cfg.AWS.AccessKeyID == "" {
		return &StorageService{config: cfg}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   cfg,
	}, nil
}

// UploadProductImage validates, names and stores an uploaded image,
// returning the public URL to record on the product.
func (s *StorageService) UploadProductImage(file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	if header.Size > maxImageSize {
		return nil, fmt.Errorf("%w: image exceeds maximum size of %d bytes", ErrValidation, maxImageSize)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	allowed := false
	for _, t := range allowedImageTypes {
		if ext == t {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: image type %s is not allowed", ErrValidation, ext)
	}

	key := fmt.Sprintf("products/%s%s", uuid.New().String(), ext)
	contentType := header.Header.Get("Content-Type")

	body, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	if s.s3Client != nil {
		return s.uploadToS3(body, key, contentType)
	}
	return s.uploadToLocal(body, key, contentType)
}

func (s *StorageService) DeleteFile(key string) error {
	if s.s3Client == nil {
		return os.Remove(filepath.Join(localUploadDir, filepath.FromSlash(key)))
	}

	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

func (s *StorageService) uploadToS3(body []byte, key, contentType string) (*UploadResult, error) {
	_, err := s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		URL:      s.publicURL(key),
		Key:      key,
		Size:     int64(len(body)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) uploadToLocal(body []byte, key, contentType string) (*UploadResult, error) {
	path := filepath.Join(localUploadDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &UploadResult{
		URL:      "/" + localUploadDir + "/" + key,
		Key:      key,
		Size:     int64(len(body)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) publicURL(key string) string {
	if s.config.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.config.AWS.CloudFrontURL, "/"), key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.config.AWS.S3Bucket, s.config.AWS.Region, key)
}
