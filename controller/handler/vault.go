package handler

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"snap-vault/controller/respond"
	"snap-vault/service/vault_service"
)

// VaultHandler vault lifecycle handler
type VaultHandler struct {
	vaultService *vault_service.VaultService
}

// NewVaultHandler create vault handler instance
func NewVaultHandler(vaultService *vault_service.VaultService) *VaultHandler {
	return &VaultHandler{vaultService: vaultService}
}

// vaultID parse the :id path parameter
func vaultID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respond.InvalidParam(c, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// CreateVault create a vault
// @Summary      Create a vault
// @Description  Publish media/metadata and submit the creation transaction
// @Tags         Vault
// @Accept       multipart/form-data
// @Produce      json
// @Param        name         formData  string  true   "Vault display name"
// @Param        unlock_date  formData  string  true   "Unlock date (2006-01-02)"
// @Param        message      formData  string  false  "Message text"
// @Param        recipient    formData  string  true   "Recipient username or address"
// @Param        amount       formData  string  false  "Payment amount in ether"
// @Param        media        formData  file    false  "Optional photo or video"
// @Success      200  {object}  respond.Response{data=vault_service.CreateVaultResult}
// @Failure      400  {object}  respond.Response
// @Router       /vaults [post]
func (h *VaultHandler) CreateVault(c *gin.Context) {
	req := &vault_service.CreateVaultRequest{
		Name:       c.PostForm("name"),
		UnlockDate: c.PostForm("unlock_date"),
		Message:    c.PostForm("message"),
		Recipient:  c.PostForm("recipient"),
		Amount:     c.PostForm("amount"),
	}
	if req.UnlockDate == "" || req.Recipient == "" {
		respond.InvalidParam(c, "unlock_date and recipient are required")
		return
	}

	if file, err := c.FormFile("media"); err == nil {
		src, err := file.Open()
		if err != nil {
			respond.InvalidParam(c, "cannot read media file: "+err.Error())
			return
		}
		defer src.Close()

		data, err := io.ReadAll(src)
		if err != nil {
			respond.InvalidParam(c, "cannot read media file: "+err.Error())
			return
		}
		req.MediaFilename = file.Filename
		req.MediaData = data
	}

	result, err := h.vaultService.CreateVault(c.Request.Context(), req)
	if err != nil {
		respond.Failed(c, err)
		return
	}
	respond.Success(c, result)
}

// GetVault get a vault by id
// @Summary      Get vault
// @Description  Read a vault from the chain (cached)
// @Tags         Vault
// @Produce      json
// @Param        id  path      int  true  "Vault ID"
// @Success      200  {object}  respond.Response{data=respond.VaultResponse}
// @Failure      404  {object}  respond.Response
// @Router       /vaults/{id} [get]
func (h *VaultHandler) GetVault(c *gin.Context) {
	id, ok := vaultID(c)
	if !ok {
		return
	}

	state, err := h.vaultService.GetVault(c.Request.Context(), id)
	if err != nil {
		respond.Failed(c, err)
		return
	}
	respond.Success(c, respond.ToVaultStateResponse(state))
}

// GetAccess classify viewer access to a vault
// @Summary      Get vault access
// @Description  Display-only access classification for the connected wallet
// @Tags         Vault
// @Produce      json
// @Param        id  path      int  true  "Vault ID"
// @Success      200  {object}  respond.Response{data=respond.AccessResponse}
// @Failure      404  {object}  respond.Response
// @Router       /vaults/{id}/access [get]
func (h *VaultHandler) GetAccess(c *gin.Context) {
	id, ok := vaultID(c)
	if !ok {
		return
	}

	access, err := h.vaultService.CanAccessVault(c.Request.Context(), id)
	if err != nil {
		respond.Failed(c, err)
		return
	}
	respond.Success(c, respond.ToAccessResponse(access))
}

// GetMetadata fetch the off-chain metadata document of a vault
// @Summary      Get vault metadata
// @Description  Fetch the content-addressed metadata document
// @Tags         Vault
// @Produce      json
// @Param        id  path      int  true  "Vault ID"
// @Success      200  {object}  respond.Response{data=model.VaultMetadata}
// @Failure      502  {object}  respond.Response
// @Router       /vaults/{id}/metadata [get]
func (h *VaultHandler) GetMetadata(c *gin.Context) {
	id, ok := vaultID(c)
	if !ok {
		return
	}

	meta, err := h.vaultService.VaultMetadata(c.Request.Context(), id)
	if err != nil {
		respond.Failed(c, err)
		return
	}
	respond.Success(c, meta)
}

// OpenVault open a vault
// @Summary      Open vault
// @Description  Submit the open transaction as the connected wallet
// @Tags         Vault
// @Produce      json
// @Param        id  path      int  true  "Vault ID"
// @Success      200  {object}  respond.Response
// @Failure      403  {object}  respond.Response
// @Router       /vaults/{id}/open [post]
func (h *VaultHandler) OpenVault(c *gin.Context) {
	id, ok := vaultID(c)
	if !ok {
		return
	}

	txHash, err := h.vaultService.OpenVault(c.Request.Context(), id)
	if err != nil {
		respond.Failed(c, err)
		return
	}
	respond.Success(c, gin.H{"tx_hash": txHash})
}

// ListContacts list contact groupings for the connected wallet
// @Summary      List contacts
// @Description  Merge sent and received vaults into a per-counterpart view
// @Tags         Vault
// @Produce      json
// @Success      200  {object}  respond.Response{data=[]respond.ContactResponse}
// @Failure      401  {object}  respond.Response
// @Router       /contacts [get]
func (h *VaultHandler) ListContacts(c *gin.Context) {
	contacts, err := h.vaultService.Contacts(c.Request.Context())
	if err != nil {
		respond.Failed(c, err)
		return
	}

	responses := make([]respond.ContactResponse, 0, len(contacts))
	for _, contact := range contacts {
		responses = append(responses, respond.ToContactResponse(contact))
	}
	respond.Success(c, responses)
}
