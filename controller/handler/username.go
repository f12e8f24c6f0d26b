package handler

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"snap-vault/controller/respond"
	"snap-vault/service/vault_service"
)

// UsernameRegistry read side of the on-chain username registry
type UsernameRegistry interface {
	IsUsernameAvailable(ctx context.Context, username string) (bool, error)
	GetUsernameByAddress(ctx context.Context, account common.Address) (string, error)
	GetAddressByUsername(ctx context.Context, username string) (common.Address, error)
}

// UsernameHandler username registry handler
type UsernameHandler struct {
	vaultService *vault_service.VaultService
	registry     UsernameRegistry
}

// NewUsernameHandler create username handler instance
func NewUsernameHandler(vaultService *vault_service.VaultService, registry UsernameRegistry) *UsernameHandler {
	return &UsernameHandler{vaultService: vaultService, registry: registry}
}

type registerUsernameRequest struct {
	Username string `json:"username" binding:"required" example:"alice"`
}

// Register register a username for the connected wallet
// @Summary      Register username
// @Description  Submit the registration transaction as the connected wallet
// @Tags         Username
// @Accept       json
// @Produce      json
// @Param        request  body      registerUsernameRequest  true  "Username to claim"
// @Success      200  {object}  respond.Response
// @Failure      409  {object}  respond.Response
// @Router       /usernames [post]
func (h *UsernameHandler) Register(c *gin.Context) {
	var req registerUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidParam(c, "username is required")
		return
	}

	txHash, err := h.vaultService.RegisterUsername(c.Request.Context(), req.Username)
	if err != nil {
		respond.Failed(c, err)
		return
	}
	respond.Success(c, gin.H{"tx_hash": txHash})
}

// Availability check whether a username is unclaimed
// @Summary      Check username availability
// @Tags         Username
// @Produce      json
// @Param        username  path      string  true  "Username"
// @Success      200  {object}  respond.Response
// @Router       /usernames/{username}/available [get]
func (h *UsernameHandler) Availability(c *gin.Context) {
	available, err := h.registry.IsUsernameAvailable(c.Request.Context(), c.Param("username"))
	if err != nil {
		respond.Failed(c, err)
		return
	}
	respond.Success(c, gin.H{"available": available})
}

// Resolve resolve a username to its registered address
// @Summary      Resolve username
// @Tags         Username
// @Produce      json
// @Param        username  path      string  true  "Username"
// @Success      200  {object}  respond.Response
// @Failure      404  {object}  respond.Response
// @Router       /usernames/{username} [get]
func (h *UsernameHandler) Resolve(c *gin.Context) {
	address, err := h.registry.GetAddressByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respond.Failed(c, err)
		return
	}
	if address == (common.Address{}) {
		respond.NotFound(c, "username is not registered")
		return
	}
	respond.Success(c, gin.H{"address": address.Hex()})
}

// Lookup look up the username registered for an address
// @Summary      Look up username by address
// @Tags         Username
// @Produce      json
// @Param        address  path      string  true  "Account address"
// @Success      200  {object}  respond.Response
// @Failure      404  {object}  respond.Response
// @Router       /addresses/{address}/username [get]
func (h *UsernameHandler) Lookup(c *gin.Context) {
	raw := c.Param("address")
	if !common.IsHexAddress(raw) {
		respond.InvalidParam(c, "address must be a hex account address")
		return
	}

	username, err := h.registry.GetUsernameByAddress(c.Request.Context(), common.HexToAddress(raw))
	if err != nil {
		respond.Failed(c, err)
		return
	}
	if username == "" {
		respond.NotFound(c, "address has no registered username")
		return
	}
	respond.Success(c, gin.H{"username": username})
}
