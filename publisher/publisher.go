// Package publisher pins vault media and metadata to content-addressed
// storage and resolves CIDs back to readable URLs.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/imroc/req"

	"snap-vault/model"
	"snap-vault/vaulterr"
)

// mediaTypes supported upload extensions and their MIME types. Checked
// before any bytes leave the process.
var mediaTypes = map[string]struct {
	kind model.MediaKind
	mime string
}{
	".jpg":  {model.MediaKindPhoto, "image/jpeg"},
	".jpeg": {model.MediaKindPhoto, "image/jpeg"},
	".png":  {model.MediaKindPhoto, "image/png"},
	".gif":  {model.MediaKindPhoto, "image/gif"},
	".webp": {model.MediaKindPhoto, "image/webp"},
	".mp4":  {model.MediaKindVideo, "video/mp4"},
	".mov":  {model.MediaKindVideo, "video/quicktime"},
	".avi":  {model.MediaKindVideo, "video/x-msvideo"},
	".webm": {model.MediaKindVideo, "video/webm"},
}

// MediaUpload result of a successful media upload
type MediaUpload struct {
	CID         string          `json:"cid"`
	Kind        model.MediaKind `json:"kind"`
	ContentType string          `json:"content_type"`
	Size        int64           `json:"size"`
}

// Publisher content publishing pipeline: provider pins, mirror
// accelerates reads, gateways serve the public fallback path.
type Publisher struct {
	provider       Provider
	mirror         Mirror
	primaryGateway string
	fallbacks      []string
}

// New create a publisher over the given provider and optional mirror
func New(provider Provider, mirror Mirror, primaryGateway string, fallbacks []string) *Publisher {
	return &Publisher{
		provider:       provider,
		mirror:         mirror,
		primaryGateway: strings.TrimSuffix(primaryGateway, "/"),
		fallbacks:      fallbacks,
	}
}

// MediaKindFor classify a filename by extension; empty kind when the
// format is not supported.
func MediaKindFor(filename string) (model.MediaKind, string, bool) {
	entry, ok := mediaTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", "", false
	}
	return entry.kind, entry.mime, true
}

// UploadMedia validate and pin a media file. Format rejection happens
// before any upload traffic; the post-upload availability probe and the
// mirror copy are both best effort.
func (p *Publisher) UploadMedia(ctx context.Context, filename string, data []byte) (*MediaUpload, error) {
	kind, mime, ok := MediaKindFor(filename)
	if !ok {
		return nil, vaulterr.New(vaulterr.KindUnsupportedFormat,
			fmt.Sprintf("unsupported media format: %q", filepath.Ext(filename)))
	}
	if len(data) == 0 {
		return nil, vaulterr.New(vaulterr.KindUploadFailed, "media file is empty")
	}

	cid, err := p.provider.Add(ctx, filename, data)
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.KindUploadFailed,
			fmt.Sprintf("media upload via %s failed", p.provider.Name()), err)
	}
	log.Printf("Media pinned: %s (%s, %d bytes)", cid, mime, len(data))

	// The pin already succeeded; gateway propagation lag must not fail
	// the upload.
	if !p.probeGateway(cid) {
		log.Printf("Media %s not yet visible on primary gateway", cid)
	}

	if p.mirror != nil {
		if err := p.mirror.Save(cid, data, mime); err != nil {
			log.Printf("Mirror copy failed for %s: %v", cid, err)
		}
	}

	return &MediaUpload{CID: cid, Kind: kind, ContentType: mime, Size: int64(len(data))}, nil
}

// UploadMetadata pin the metadata document as canonical JSON
func (p *Publisher) UploadMetadata(ctx context.Context, meta *model.VaultMetadata) (string, error) {
	if !meta.Validate() {
		return "", vaulterr.New(vaulterr.KindUploadFailed,
			"metadata media kind and media cid must be set together")
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return "", vaulterr.Wrap(vaulterr.KindUploadFailed, "metadata encoding failed", err)
	}

	cid, err := p.provider.Add(ctx, "metadata.json", data)
	if err != nil {
		return "", vaulterr.Wrap(vaulterr.KindUploadFailed,
			fmt.Sprintf("metadata upload via %s failed", p.provider.Name()), err)
	}
	log.Printf("Metadata pinned: %s", cid)
	return cid, nil
}

// FetchMetadata retrieve and decode a metadata document. The provider
// is tried first, then each public gateway in order.
func (p *Publisher) FetchMetadata(ctx context.Context, cid string) (*model.VaultMetadata, error) {
	data, err := p.provider.Fetch(ctx, cid)
	if err != nil {
		log.Printf("Provider fetch for %s failed, trying gateways: %v", cid, err)
		data, err = p.fetchFromGateways(cid)
		if err != nil {
			return nil, vaulterr.Wrap(vaulterr.KindContentUnavailable,
				fmt.Sprintf("metadata %s unreachable", cid), err)
		}
	}

	var meta model.VaultMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, vaulterr.Wrap(vaulterr.KindContentUnavailable,
			fmt.Sprintf("metadata %s is not valid JSON", cid), err)
	}
	return &meta, nil
}

// fetchFromGateways try each configured gateway in resolution order
func (p *Publisher) fetchFromGateways(cid string) ([]byte, error) {
	var lastErr error
	for _, url := range p.ResolveMediaURLs(cid) {
		resp, err := req.Get(url)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.Response().StatusCode != 200 {
			lastErr = fmt.Errorf("gateway %s: status %d", url, resp.Response().StatusCode)
			continue
		}
		return resp.Bytes(), nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no gateways configured")
	}
	return nil, lastErr
}

// ResolveMediaURLs candidate URLs for a CID in fixed priority order:
// mirror, then the provider's primary gateway, then public fallbacks.
// Pure function of the configuration; no probing happens here.
func (p *Publisher) ResolveMediaURLs(cid string) []string {
	urls := make([]string, 0, len(p.fallbacks)+2)
	seen := map[string]bool{}

	appendURL := func(u string) {
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	}

	if p.mirror != nil {
		appendURL(p.mirror.URL(cid))
	}
	if p.primaryGateway != "" {
		appendURL(fmt.Sprintf("%s/%s", p.primaryGateway, cid))
	}
	for _, gw := range p.fallbacks {
		appendURL(fmt.Sprintf("%s/%s", strings.TrimSuffix(gw, "/"), cid))
	}
	return urls
}

// probeGateway best-effort availability check on the primary gateway
func (p *Publisher) probeGateway(cid string) bool {
	if p.primaryGateway == "" {
		return true
	}
	resp, err := req.Head(fmt.Sprintf("%s/%s", p.primaryGateway, cid))
	if err != nil {
		return false
	}
	return resp.Response().StatusCode == 200
}
