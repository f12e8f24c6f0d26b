package publisher

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// OSSMirror Alibaba Cloud OSS mirror
type OSSMirror struct {
	bucket *oss.Bucket
	domain string
}

// NewOSSMirror create OSS mirror instance
func NewOSSMirror(endpoint, accessKey, secretKey, bucketName, domain string) (*OSSMirror, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" || bucketName == "" {
		return nil, ErrInvalid
	}

	client, err := oss.New(endpoint, accessKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create oss client: %w", err)
	}

	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &OSSMirror{
		bucket: bucket,
		domain: strings.TrimSuffix(domain, "/"),
	}, nil
}

// Save copy content into the mirror bucket
func (m *OSSMirror) Save(key string, data []byte, contentType string) error {
	err := m.bucket.PutObject(key, bytes.NewReader(data), oss.ContentType(contentType))
	if err != nil {
		return fmt.Errorf("failed to upload to oss: %w", err)
	}
	return nil
}

// Get read content from the mirror bucket
func (m *OSSMirror) Get(key string) ([]byte, error) {
	body, err := m.bucket.GetObject(key)
	if err != nil {
		return nil, fmt.Errorf("failed to get from oss: %w", err)
	}
	defer body.Close()

	data, err := ioutil.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read oss object: %w", err)
	}
	return data, nil
}

// Exists check if content exists in the mirror bucket
func (m *OSSMirror) Exists(key string) bool {
	exists, err := m.bucket.IsObjectExist(key)
	if err != nil {
		return false
	}
	return exists
}

// URL public URL serving the mirrored content
func (m *OSSMirror) URL(key string) string {
	if m.domain == "" {
		return ""
	}
	return m.domain + "/" + key
}
