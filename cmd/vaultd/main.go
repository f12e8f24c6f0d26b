package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snap-vault/chain"
	"snap-vault/conf"
	"snap-vault/contract"
	"snap-vault/controller"
	"snap-vault/database"
	"snap-vault/publisher"
	"snap-vault/resolver"
	"snap-vault/service/vault_service"
	"snap-vault/submitter"
	"snap-vault/wallet"
)

var ENV string

func init() {
	flag.StringVar(&ENV, "env", "mainnet", "Environment: loc/mainnet/testnet")
}

// @title           SnapVault API
// @version         1.0
// @description     Vault lifecycle service: wallet sessions, content publishing and on-chain vault operations

// @host      localhost:7290
// @BasePath  /api/v1

// @schemes https http

func main() {
	session, srv, cleanup := initAll()
	defer cleanup()

	// Consume wallet push events (in goroutine)
	runCtx, stopRun := context.WithCancel(context.Background())
	defer stopRun()
	go session.Run(runCtx)

	// Start HTTP API service (in goroutine)
	go startServer(srv)
	log.Println("Vault API service started successfully")

	// Wait for shutdown signal
	waitForShutdown()

	log.Println("Shutting down vault service...")

	stopRun()
	shutdownServer(srv)

	log.Println("Server exited")
}

// initEnv initialize environment
func initEnv() {
	if ENV == "loc" {
		conf.SystemEnvironmentEnum = conf.LocalEnvironmentEnum
	} else if ENV == "mainnet" {
		conf.SystemEnvironmentEnum = conf.MainnetEnvironmentEnum
	} else if ENV == "testnet" {
		conf.SystemEnvironmentEnum = conf.TestnetEnvironmentEnum
	} else if ENV == "example" {
		conf.SystemEnvironmentEnum = conf.ExampleEnvironmentEnum
	}
	fmt.Printf("Environment: %s\n", ENV)
}

// initAll initialize all components
func initAll() (*wallet.Session, *http.Server, func()) {
	// Parse command line parameters
	flag.Parse()

	// Set environment
	initEnv()

	// Initialize configuration
	if err := conf.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	log.Printf("Configuration loaded: env=%s, net=%s, port=%s", ENV, conf.Cfg.Net, conf.Cfg.Port)

	// Initialize local index database
	db, err := database.InitDatabase()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	log.Printf("Database initialized: type=%s", conf.Cfg.Database.Type)

	// Initialize Redis (optional, won't fail if disabled or unavailable)
	if err := database.InitRedis(); err != nil {
		log.Printf("⚠️  Redis initialization failed (cache will be disabled): %v", err)
	}

	// Connect to the chain
	chainClient, err := chain.Dial(conf.Cfg.Chain.RpcUrl)
	if err != nil {
		log.Fatalf("Failed to connect to chain RPC %s: %v", conf.Cfg.Chain.RpcUrl, err)
	}
	log.Printf("Chain connected: %s (chain id %d)", conf.Cfg.Chain.RpcUrl, conf.Cfg.Chain.ChainID)

	// Connect the wallet bridge relay
	relay := wallet.NewRelayClient(conf.Cfg.Bridge.RelayUrl)
	if err := relay.Connect(); err != nil {
		log.Fatalf("Failed to connect wallet bridge relay %s: %v", conf.Cfg.Bridge.RelayUrl, err)
	}

	// Create wallet session and restore the persisted snapshot if any
	session := wallet.NewSession(relay, db, conf.Cfg.Chain.ChainID,
		time.Duration(conf.Cfg.Bridge.ApprovalTimeoutSec)*time.Second)
	if snapshot := session.Restore(); snapshot != nil {
		log.Printf("Restored wallet session for %s", snapshot.Address)
	}

	// Create transaction submitter
	policy := submitter.PollPolicy{
		Interval:    time.Duration(conf.Cfg.Chain.ReceiptPollIntervalMs) * time.Millisecond,
		MaxAttempts: conf.Cfg.Chain.ReceiptMaxAttempts,
	}
	sub := submitter.New(session, chainClient, policy)

	// Create contract client
	contractClient, err := contract.NewClient(conf.Cfg.Chain.ContractAddress, chainClient, sub)
	if err != nil {
		log.Fatalf("Failed to create contract client: %v", err)
	}

	// Initialize content publisher
	provider, err := publisher.NewProvider()
	if err != nil {
		log.Fatalf("Failed to initialize content provider: %v", err)
	}
	log.Printf("Content provider initialized: type=%s", provider.Name())

	mirror, err := publisher.NewMirror()
	if err != nil {
		log.Fatalf("Failed to initialize read mirror: %v", err)
	}
	pub := publisher.New(provider, mirror, conf.PrimaryGateway(), conf.Cfg.Publisher.Gateways)

	// Create media viewer resolver
	res := resolver.New(10 * time.Second)

	// Create vault service
	vaultService := vault_service.New(session, contractClient, pub, db)

	// Rebuild the local index if configured
	if conf.Cfg.Backfill.Enabled {
		if err := vaultService.Backfill(context.Background(), conf.Cfg.Backfill.Addresses); err != nil {
			log.Printf("⚠️  Backfill failed (index may be incomplete): %v", err)
		}
	}

	// Setup router
	router := controller.SetupRouter(vaultService, session, contractClient, pub, res)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + conf.Cfg.Port,
		Handler: router,
	}

	// Return session instance and cleanup function
	cleanup := func() {
		if err := relay.Close(); err != nil {
			log.Printf("Failed to close relay: %v", err)
		}
		chainClient.Close()
		if err := database.CloseRedis(); err != nil {
			log.Printf("Failed to close Redis: %v", err)
		}
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}

	return session, srv, cleanup
}

// startServer start HTTP server
func startServer(srv *http.Server) {
	log.Printf("Vault API service starting on port %s...", conf.Cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// waitForShutdown wait for shutdown signal
func waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
}

// shutdownServer gracefully shutdown server
func shutdownServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
