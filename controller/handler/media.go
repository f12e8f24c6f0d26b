package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"snap-vault/controller/respond"
	"snap-vault/model"
	"snap-vault/publisher"
	"snap-vault/resolver"
)

// MediaHandler media publishing and viewer resolution handler
type MediaHandler struct {
	publisher *publisher.Publisher
	resolver  *resolver.Resolver
}

// NewMediaHandler create media handler instance
func NewMediaHandler(pub *publisher.Publisher, res *resolver.Resolver) *MediaHandler {
	return &MediaHandler{publisher: pub, resolver: res}
}

// Upload publish a media file
// @Summary      Upload media
// @Description  Publish a photo or video to the content provider
// @Tags         Media
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Photo or video file"
// @Success      200  {object}  respond.Response{data=respond.MediaResponse}
// @Failure      400  {object}  respond.Response
// @Router       /media [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respond.InvalidParam(c, "file is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		respond.InvalidParam(c, "cannot read file: "+err.Error())
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		respond.InvalidParam(c, "cannot read file: "+err.Error())
		return
	}

	upload, err := h.publisher.UploadMedia(c.Request.Context(), file.Filename, data)
	if err != nil {
		respond.Failed(c, err)
		return
	}

	respond.Success(c, respond.MediaResponse{
		CID:         upload.CID,
		Kind:        string(upload.Kind),
		ContentType: upload.ContentType,
		Size:        upload.Size,
		URLs:        h.publisher.ResolveMediaURLs(upload.CID),
	})
}

// URLs list candidate URLs for a CID in resolution order
// @Summary      List media URLs
// @Tags         Media
// @Produce      json
// @Param        cid  path      string  true  "Content identifier"
// @Success      200  {object}  respond.Response
// @Router       /media/{cid}/urls [get]
func (h *MediaHandler) URLs(c *gin.Context) {
	cid := c.Param("cid")
	if cid == "" {
		respond.InvalidParam(c, "cid is required")
		return
	}
	respond.Success(c, gin.H{"urls": h.publisher.ResolveMediaURLs(cid)})
}

// Resolve pick a playable URL for a CID
// @Summary      Resolve media
// @Description  Probe candidate gateways and return the first that serves the content
// @Tags         Media
// @Produce      json
// @Param        cid   path   string  true   "Content identifier"
// @Param        kind  query  string  false  "Expected media kind (photo or video)"
// @Success      200  {object}  respond.Response{data=respond.ResolutionResponse}
// @Failure      502  {object}  respond.Response
// @Router       /media/{cid}/resolve [get]
func (h *MediaHandler) Resolve(c *gin.Context) {
	cid := c.Param("cid")
	if cid == "" {
		respond.InvalidParam(c, "cid is required")
		return
	}

	kind := model.MediaKind(c.Query("kind"))
	switch kind {
	case "", model.MediaKindPhoto, model.MediaKindVideo:
	default:
		respond.InvalidParam(c, "kind must be photo or video")
		return
	}

	urls := h.publisher.ResolveMediaURLs(cid)
	resolution, err := h.resolver.Resolve(kind, urls)
	if err != nil {
		respond.Failed(c, err)
		return
	}

	respond.Success(c, respond.ResolutionResponse{
		URL:         resolution.URL,
		ContentType: resolution.ContentType,
		Candidates:  urls,
	})
}
