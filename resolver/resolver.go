// Package resolver picks a playable URL for a piece of vault media by
// probing candidate gateways in order.
package resolver

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/imroc/req"

	"snap-vault/model"
	"snap-vault/vaulterr"
)

// Resolver probes candidate URLs with HEAD requests. Candidates come
// from the publisher's resolution order; the resolver only decides
// which of them actually serves the content.
type Resolver struct {
	client *req.Req
}

// New create a resolver with the given per-probe timeout
func New(timeout time.Duration) *Resolver {
	client := req.New()
	client.SetTimeout(timeout)
	return &Resolver{client: client}
}

// Resolution the outcome of a successful probe run. The viewer plays
// URL first and advances through the remaining candidates on playback
// failure.
type Resolution struct {
	URL         string
	ContentType string

	urls  []string
	start int
	idx   int
}

// Advance move to the next candidate after a playback failure; false
// when no candidates remain.
func (r *Resolution) Advance() (string, bool) {
	if r.idx+1 >= len(r.urls) {
		return "", false
	}
	r.idx++
	r.URL = r.urls[r.idx]
	return r.URL, true
}

// Restart rewind to the URL the probe run originally selected
func (r *Resolution) Restart() string {
	r.idx = r.start
	r.URL = r.urls[r.idx]
	return r.URL
}

// Resolve probe candidates in order until one serves the content. An
// unreachable or non-200 candidate advances to the next; a candidate
// that answers with the wrong content family fails the whole run,
// because content addressing guarantees every gateway would serve the
// same bytes.
func (r *Resolver) Resolve(kind model.MediaKind, urls []string) (*Resolution, error) {
	if len(urls) == 0 {
		return nil, vaulterr.New(vaulterr.KindAllGatewaysFailed, "no candidate urls to probe")
	}

	for i, url := range urls {
		resp, err := r.client.Head(url)
		if err != nil {
			log.Printf("Probe failed for %s: %v", url, err)
			continue
		}
		if resp.Response().StatusCode != 200 {
			log.Printf("Probe for %s: status %d", url, resp.Response().StatusCode)
			continue
		}

		contentType := resp.Response().Header.Get("Content-Type")
		if !familyMatches(kind, contentType) {
			return nil, vaulterr.New(vaulterr.KindContentUnavailable,
				fmt.Sprintf("content at %s is %q, expected %s", url, contentType, kind))
		}

		return &Resolution{
			URL:         url,
			ContentType: contentType,
			urls:        urls,
			start:       i,
			idx:         i,
		}, nil
	}

	return nil, vaulterr.New(vaulterr.KindAllGatewaysFailed,
		fmt.Sprintf("all %d gateways failed to serve the content", len(urls)))
}

// familyMatches check the response content type against the declared
// media kind. Generic types pass: gateways that don't sniff serve
// application/octet-stream and the player is left to decide.
func familyMatches(kind model.MediaKind, contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.IndexByte(contentType, ';'); idx >= 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if contentType == "" || contentType == "application/octet-stream" {
		return true
	}

	switch kind {
	case model.MediaKindPhoto:
		return strings.HasPrefix(contentType, "image/")
	case model.MediaKindVideo:
		return strings.HasPrefix(contentType, "video/")
	default:
		return true
	}
}
