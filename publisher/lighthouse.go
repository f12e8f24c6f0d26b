package publisher

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"

	"github.com/imroc/req"
	"github.com/tidwall/gjson"
)

// LighthouseProvider pinning over the Lighthouse HTTP API
type LighthouseProvider struct {
	endpoint string
	apiKey   string
	gateway  string
}

// NewLighthouseProvider create Lighthouse provider instance
func NewLighthouseProvider(endpoint, apiKey, gateway string) (*LighthouseProvider, error) {
	if endpoint == "" || apiKey == "" {
		return nil, ErrInvalid
	}
	return &LighthouseProvider{
		endpoint: endpoint,
		apiKey:   apiKey,
		gateway:  gateway,
	}, nil
}

// Name provider name
func (p *LighthouseProvider) Name() string {
	return "lighthouse"
}

// Add upload content as multipart form data and return the CID from the
// add response.
func (p *LighthouseProvider) Add(ctx context.Context, filename string, data []byte) (string, error) {
	resp, err := req.Post(p.endpoint,
		req.Header{"Authorization": "Bearer " + p.apiKey},
		req.FileUpload{
			FieldName: "file",
			FileName:  filename,
			File:      ioutil.NopCloser(bytes.NewReader(data)),
		})
	if err != nil {
		return "", fmt.Errorf("lighthouse upload failed: %w", err)
	}
	if resp.Response().StatusCode != 200 {
		return "", fmt.Errorf("lighthouse upload failed: status %d: %s",
			resp.Response().StatusCode, resp.String())
	}

	cid := gjson.Get(resp.String(), "Hash").String()
	if cid == "" {
		return "", fmt.Errorf("lighthouse response missing Hash field: %s", resp.String())
	}
	return cid, nil
}

// Fetch read content back through the Lighthouse gateway
func (p *LighthouseProvider) Fetch(ctx context.Context, cid string) ([]byte, error) {
	resp, err := req.Get(fmt.Sprintf("%s/%s", p.gateway, cid))
	if err != nil {
		return nil, fmt.Errorf("lighthouse fetch failed: %w", err)
	}
	if resp.Response().StatusCode != 200 {
		return nil, fmt.Errorf("lighthouse fetch failed: status %d", resp.Response().StatusCode)
	}
	return resp.Bytes(), nil
}
