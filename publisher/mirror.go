package publisher

import (
	"snap-vault/conf"
)

// Mirror accelerated read replica of published content. Uploads are
// copied in after pinning succeeds; resolution puts the mirror URL ahead
// of public gateways.
type Mirror interface {
	Save(key string, data []byte, contentType string) error
	Get(key string) ([]byte, error)
	Exists(key string) bool
	URL(key string) string
}

// NewMirror create mirror instance by configuration; nil when no mirror
// is configured.
func NewMirror() (Mirror, error) {
	mirrorType := conf.Cfg.Publisher.Mirror.Type

	switch mirrorType {
	case "s3":
		c := conf.Cfg.Publisher.Mirror.S3
		return NewS3Mirror(c.Region, c.Endpoint, c.AccessKey, c.SecretKey, c.Bucket, c.Domain)
	case "oss":
		c := conf.Cfg.Publisher.Mirror.OSS
		return NewOSSMirror(c.Endpoint, c.AccessKey, c.SecretKey, c.Bucket, c.Domain)
	case "":
		return nil, nil
	default:
		return nil, ErrInvalid
	}
}
