package controller

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"snap-vault/contract"
	"snap-vault/controller/handler"
	"snap-vault/controller/respond"
	"snap-vault/publisher"
	"snap-vault/resolver"
	"snap-vault/service/vault_service"
	"snap-vault/wallet"
)

// SetupRouter setup vault service router
func SetupRouter(
	vaultService *vault_service.VaultService,
	session *wallet.Session,
	contractClient *contract.Client,
	pub *publisher.Publisher,
	res *resolver.Resolver,
) *gin.Engine {
	// Create Gin engine
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Allow all origins, can be configured to specific domains
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "Accept", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * 3600, // 12 hours
	}))

	// Add timing middleware
	r.Use(respond.TimingMiddleware())

	// Create handlers
	walletHandler := handler.NewWalletHandler(session)
	usernameHandler := handler.NewUsernameHandler(vaultService, contractClient)
	vaultHandler := handler.NewVaultHandler(vaultService)
	mediaHandler := handler.NewMediaHandler(pub, res)

	// API v1 route group
	v1 := r.Group("/api/v1")
	{
		// Wallet session routes
		walletGroup := v1.Group("/wallet")
		{
			// Establish a session via the bridge
			walletGroup.POST("/connect", walletHandler.Connect)

			// Tear down the current session
			walletGroup.POST("/disconnect", walletHandler.Disconnect)

			// Current session state
			walletGroup.GET("/session", walletHandler.Status)

			// Verify a restored session is still live
			walletGroup.POST("/resume", walletHandler.Resume)

			// Ask the wallet to switch chains
			walletGroup.POST("/switch-chain", walletHandler.SwitchChain)
		}

		// Username registry routes
		usernames := v1.Group("/usernames")
		{
			// Register a username for the connected wallet
			usernames.POST("", usernameHandler.Register)

			// Resolve a username to its address
			usernames.GET("/:username", usernameHandler.Resolve)

			// Check availability
			usernames.GET("/:username/available", usernameHandler.Availability)
		}

		// Reverse lookup by address
		v1.GET("/addresses/:address/username", usernameHandler.Lookup)

		// Vault lifecycle routes
		vaults := v1.Group("/vaults")
		{
			// Create a vault (multipart, optional media file)
			vaults.POST("", vaultHandler.CreateVault)

			// Get vault by id
			vaults.GET("/:id", vaultHandler.GetVault)

			// Viewer access classification
			vaults.GET("/:id/access", vaultHandler.GetAccess)

			// Off-chain metadata document
			vaults.GET("/:id/metadata", vaultHandler.GetMetadata)

			// Open a vault
			vaults.POST("/:id/open", vaultHandler.OpenVault)
		}

		// Contact groupings for the connected wallet
		v1.GET("/contacts", vaultHandler.ListContacts)

		// Media publishing and viewer resolution routes
		media := v1.Group("/media")
		{
			// Publish a photo or video
			media.POST("", mediaHandler.Upload)

			// Candidate URLs in resolution order
			media.GET("/:cid/urls", mediaHandler.URLs)

			// Probe candidates and pick a playable URL
			media.GET("/:cid/resolve", mediaHandler.Resolve)
		}
	}

	// Health check route
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
