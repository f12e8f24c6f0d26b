package publisher

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"snap-vault/model"
	"snap-vault/vaulterr"
)

type failingProvider struct {
	called bool
}

func (f *failingProvider) Name() string { return "failing" }

func (f *failingProvider) Add(ctx context.Context, filename string, data []byte) (string, error) {
	f.called = true
	return "", errors.New("provider down")
}

func (f *failingProvider) Fetch(ctx context.Context, cid string) ([]byte, error) {
	f.called = true
	return nil, errors.New("provider down")
}

type fakeMirror struct {
	saved map[string][]byte
	base  string
}

func (m *fakeMirror) Save(key string, data []byte, contentType string) error {
	if m.saved == nil {
		m.saved = map[string][]byte{}
	}
	m.saved[key] = data
	return nil
}

func (m *fakeMirror) Get(key string) ([]byte, error) { return m.saved[key], nil }
func (m *fakeMirror) Exists(key string) bool         { _, ok := m.saved[key]; return ok }
func (m *fakeMirror) URL(key string) string          { return m.base + "/" + key }

func newLocalPublisher(t *testing.T, mirror Mirror) *Publisher {
	t.Helper()
	provider, err := NewLocalProvider(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalProvider failed: %v", err)
	}
	return New(provider, mirror, "", nil)
}

func TestUploadMediaRejectsUnsupportedFormat(t *testing.T) {
	provider := &failingProvider{}
	pub := New(provider, nil, "", nil)

	_, err := pub.UploadMedia(context.Background(), "document.pdf", []byte("data"))
	if vaulterr.KindOf(err) != vaulterr.KindUnsupportedFormat {
		t.Fatalf("Expected KindUnsupportedFormat, got %v", err)
	}
	if provider.called {
		t.Error("Provider must not be reached for an unsupported format")
	}
}

func TestUploadMediaKinds(t *testing.T) {
	pub := newLocalPublisher(t, nil)

	photo, err := pub.UploadMedia(context.Background(), "IMG_2041.JPG", []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("Photo upload failed: %v", err)
	}
	if photo.Kind != model.MediaKindPhoto || photo.ContentType != "image/jpeg" {
		t.Errorf("Unexpected photo classification: %s %s", photo.Kind, photo.ContentType)
	}

	video, err := pub.UploadMedia(context.Background(), "clip.mov", []byte("mov-bytes"))
	if err != nil {
		t.Fatalf("Video upload failed: %v", err)
	}
	if video.Kind != model.MediaKindVideo {
		t.Errorf("Unexpected video classification: %s", video.Kind)
	}
}

func TestUploadMediaEmptyFile(t *testing.T) {
	pub := newLocalPublisher(t, nil)
	_, err := pub.UploadMedia(context.Background(), "a.png", nil)
	if vaulterr.KindOf(err) != vaulterr.KindUploadFailed {
		t.Errorf("Expected KindUploadFailed for empty file, got %v", err)
	}
}

func TestUploadMediaCopiesToMirror(t *testing.T) {
	mirror := &fakeMirror{base: "https://cdn.example.com"}
	pub := newLocalPublisher(t, mirror)

	upload, err := pub.UploadMedia(context.Background(), "a.png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if !mirror.Exists(upload.CID) {
		t.Error("Expected the upload to be copied into the mirror")
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	pub := newLocalPublisher(t, nil)
	meta := &model.VaultMetadata{
		Name:             "anniversary",
		UnlockDate:       "2027-02-14",
		Message:          "open this next year",
		RecipientAddress: "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		Amount:           "0.05",
		MediaKind:        model.MediaKindPhoto,
		MediaCID:         "bafybeigdyrztmedia",
		CreatedAt:        1767225600,
		Creator:          "0x281055afc982d96fAB65b3a49cAc8b878184Cb16",
	}

	cid, err := pub.UploadMetadata(context.Background(), meta)
	if err != nil {
		t.Fatalf("UploadMetadata failed: %v", err)
	}

	got, err := pub.FetchMetadata(context.Background(), cid)
	if err != nil {
		t.Fatalf("FetchMetadata failed: %v", err)
	}
	if !reflect.DeepEqual(got, meta) {
		t.Errorf("Metadata round trip mismatch:\ngot  %+v\nwant %+v", got, meta)
	}
}

func TestUploadMetadataPairingInvariant(t *testing.T) {
	pub := newLocalPublisher(t, nil)
	meta := &model.VaultMetadata{Name: "bad", MediaKind: model.MediaKindPhoto}

	if _, err := pub.UploadMetadata(context.Background(), meta); vaulterr.KindOf(err) != vaulterr.KindUploadFailed {
		t.Errorf("Expected KindUploadFailed for unpaired media fields, got %v", err)
	}
}

func TestFetchMetadataUnavailable(t *testing.T) {
	pub := New(&failingProvider{}, nil, "", nil)
	_, err := pub.FetchMetadata(context.Background(), "bafybeigdyrztnope")
	if vaulterr.KindOf(err) != vaulterr.KindContentUnavailable {
		t.Errorf("Expected KindContentUnavailable, got %v", err)
	}
}

func TestResolveMediaURLs(t *testing.T) {
	mirror := &fakeMirror{base: "https://cdn.example.com"}
	pub := New(&failingProvider{}, mirror, "https://gateway.lighthouse.storage/ipfs/",
		[]string{"https://ipfs.io/ipfs", "https://dweb.link/ipfs"})

	want := []string{
		"https://cdn.example.com/bafycid",
		"https://gateway.lighthouse.storage/ipfs/bafycid",
		"https://ipfs.io/ipfs/bafycid",
		"https://dweb.link/ipfs/bafycid",
	}
	got := pub.ResolveMediaURLs("bafycid")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Unexpected resolution order:\ngot  %v\nwant %v", got, want)
	}

	// Same inputs, same order
	if again := pub.ResolveMediaURLs("bafycid"); !reflect.DeepEqual(again, got) {
		t.Error("Expected deterministic resolution order")
	}
}
