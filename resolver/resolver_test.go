package resolver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"snap-vault/model"
	"snap-vault/vaulterr"
)

func gatewayStub(status int, contentType string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
	}))
}

func TestResolveSkipsDeadGateways(t *testing.T) {
	var servers []*httptest.Server
	var urls []string
	for i := 0; i < 4; i++ {
		srv := gatewayStub(http.StatusNotFound, "")
		servers = append(servers, srv)
		urls = append(urls, srv.URL)
	}
	alive := gatewayStub(http.StatusOK, "image/png")
	servers = append(servers, alive)
	urls = append(urls, alive.URL)
	defer func() {
		for _, s := range servers {
			s.Close()
		}
	}()

	res, err := New(time.Second).Resolve(model.MediaKindPhoto, urls)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.URL != alive.URL {
		t.Errorf("Expected the fifth gateway to be selected, got %s", res.URL)
	}
	if res.ContentType != "image/png" {
		t.Errorf("Unexpected content type: %s", res.ContentType)
	}
}

func TestResolveAllGatewaysFailed(t *testing.T) {
	dead := gatewayStub(http.StatusBadGateway, "")
	defer dead.Close()

	_, err := New(time.Second).Resolve(model.MediaKindPhoto, []string{dead.URL, dead.URL})
	if vaulterr.KindOf(err) != vaulterr.KindAllGatewaysFailed {
		t.Errorf("Expected KindAllGatewaysFailed, got %v", err)
	}
}

func TestResolveContentFamilyMismatchFailsRun(t *testing.T) {
	// Serves HTML (a gateway error page) where a video is expected. The
	// next candidate must not be probed: every gateway serves the same
	// content for a CID.
	wrong := gatewayStub(http.StatusOK, "text/html; charset=utf-8")
	defer wrong.Close()
	probed := false
	next := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probed = true
	}))
	defer next.Close()

	_, err := New(time.Second).Resolve(model.MediaKindVideo, []string{wrong.URL, next.URL})
	if vaulterr.KindOf(err) != vaulterr.KindContentUnavailable {
		t.Fatalf("Expected KindContentUnavailable, got %v", err)
	}
	if probed {
		t.Error("Resolution must stop at the first content mismatch")
	}
}

func TestResolveAcceptsGenericContentType(t *testing.T) {
	generic := gatewayStub(http.StatusOK, "application/octet-stream")
	defer generic.Close()

	if _, err := New(time.Second).Resolve(model.MediaKindVideo, []string{generic.URL}); err != nil {
		t.Errorf("Expected octet-stream to pass, got %v", err)
	}
}

func TestResolutionAdvanceAndRestart(t *testing.T) {
	res := &Resolution{
		URL:   "b",
		urls:  []string{"a", "b", "c"},
		start: 1,
		idx:   1,
	}

	next, ok := res.Advance()
	if !ok || next != "c" {
		t.Errorf("Expected advance to c, got %q %v", next, ok)
	}
	if _, ok := res.Advance(); ok {
		t.Error("Expected advance past the last candidate to report exhaustion")
	}
	if res.Restart() != "b" {
		t.Errorf("Expected restart at the originally selected url, got %s", res.URL)
	}
}
