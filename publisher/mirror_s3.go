package publisher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Mirror AWS S3 compatible mirror (supports AWS S3 and MinIO)
type S3Mirror struct {
	client *s3.Client
	bucket string
	domain string
}

// NewS3Mirror create S3 mirror instance
func NewS3Mirror(region, endpoint, accessKey, secretKey, bucketName, domain string) (*S3Mirror, error) {
	if accessKey == "" || secretKey == "" || bucketName == "" {
		return nil, ErrInvalid
	}

	ctx := context.Background()
	creds := credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var client *s3.Client
	if endpoint != "" {
		// Custom endpoint (for MinIO or S3-compatible services)
		client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true // Required for MinIO
		})
	} else {
		client = s3.NewFromConfig(cfg)
	}

	return &S3Mirror{
		client: client,
		bucket: bucketName,
		domain: strings.TrimSuffix(domain, "/"),
	}, nil
}

// Save copy content into the mirror bucket
func (m *S3Mirror) Save(key string, data []byte, contentType string) error {
	_, err := m.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to s3: %w", err)
	}
	return nil
}

// Get read content from the mirror bucket
func (m *S3Mirror) Get(key string) ([]byte, error) {
	result, err := m.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get from s3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3 object: %w", err)
	}
	return data, nil
}

// Exists check if content exists in the mirror bucket
func (m *S3Mirror) Exists(key string) bool {
	_, err := m.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	})
	return err == nil
}

// URL public URL serving the mirrored content
func (m *S3Mirror) URL(key string) string {
	if m.domain == "" {
		return ""
	}
	return m.domain + "/" + key
}
