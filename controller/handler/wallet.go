package handler

import (
	"github.com/gin-gonic/gin"

	"snap-vault/controller/respond"
	"snap-vault/wallet"
)

// WalletHandler wallet session handler
type WalletHandler struct {
	session *wallet.Session
}

// NewWalletHandler create wallet handler instance
func NewWalletHandler(session *wallet.Session) *WalletHandler {
	return &WalletHandler{session: session}
}

// Connect establish a wallet session
// @Summary      Connect wallet
// @Description  Propose a session over the bridge and wait for approval
// @Tags         Wallet
// @Produce      json
// @Success      200  {object}  respond.Response{data=respond.SessionResponse}
// @Failure      409  {object}  respond.Response
// @Router       /wallet/connect [post]
func (h *WalletHandler) Connect(c *gin.Context) {
	snapshot, err := h.session.Connect(c.Request.Context())
	if err != nil {
		respond.Failed(c, err)
		return
	}
	respond.Success(c, respond.SessionResponse{
		Connected: true,
		Address:   snapshot.Address,
		ChainID:   snapshot.ChainID,
	})
}

// Disconnect tear down the wallet session
// @Summary      Disconnect wallet
// @Description  Clear the persisted session and notify the bridge
// @Tags         Wallet
// @Produce      json
// @Success      200  {object}  respond.Response
// @Router       /wallet/disconnect [post]
func (h *WalletHandler) Disconnect(c *gin.Context) {
	if err := h.session.Disconnect(c.Request.Context()); err != nil {
		respond.Failed(c, err)
		return
	}
	respond.Success(c, nil)
}

// Status report the current session state
// @Summary      Session status
// @Description  Current connection state, address and chain of the wallet
// @Tags         Wallet
// @Produce      json
// @Success      200  {object}  respond.Response{data=respond.SessionResponse}
// @Router       /wallet/session [get]
func (h *WalletHandler) Status(c *gin.Context) {
	resp := respond.SessionResponse{
		Connected: h.session.Connected(),
		ChainID:   h.session.ChainID(),
	}
	if resp.Connected {
		resp.Address = h.session.Address().Hex()
	}
	respond.Success(c, resp)
}

// Resume verify a restored session is still live
// @Summary      Resume session
// @Description  Ping the wallet over the bridge to confirm the restored session
// @Tags         Wallet
// @Produce      json
// @Success      200  {object}  respond.Response{data=respond.SessionResponse}
// @Failure      401  {object}  respond.Response
// @Router       /wallet/resume [post]
func (h *WalletHandler) Resume(c *gin.Context) {
	if err := h.session.Resume(c.Request.Context()); err != nil {
		respond.Failed(c, err)
		return
	}
	respond.Success(c, respond.SessionResponse{
		Connected: h.session.Connected(),
		Address:   h.session.Address().Hex(),
		ChainID:   h.session.ChainID(),
	})
}

type switchChainRequest struct {
	ChainID int64 `json:"chain_id" binding:"required" example:"11155111"`
}

// SwitchChain ask the wallet to switch to another chain
// @Summary      Switch chain
// @Description  Request the connected wallet to change its active chain
// @Tags         Wallet
// @Accept       json
// @Produce      json
// @Param        request  body      switchChainRequest  true  "Target chain"
// @Success      200  {object}  respond.Response
// @Failure      401  {object}  respond.Response
// @Router       /wallet/switch-chain [post]
func (h *WalletHandler) SwitchChain(c *gin.Context) {
	var req switchChainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidParam(c, "chain_id is required")
		return
	}
	if err := h.session.SwitchChain(c.Request.Context(), req.ChainID); err != nil {
		respond.Failed(c, err)
		return
	}
	respond.Success(c, nil)
}
