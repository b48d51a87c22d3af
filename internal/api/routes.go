package api

import (
	"time" // Token and cache lifetimes

	"yield_wallet/internal/ledger"     // Ledger service
	"yield_wallet/internal/metrics"    // Prometheus middleware and handler
	"yield_wallet/internal/middleware" // Auth, admin and rate limit middleware

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// Deps are the collaborators of the HTTP surface
type Deps struct {
	Ledger    *ledger.Service         // Ledger operations
	Redis     *redis.Client           // Optional response cache
	Limiter   *middleware.RateLimiter // Guards claim and bet routes
	JWTSecret string                  // HS256 signing key
	TokenTTL  time.Duration           // Lifetime of issued tokens
	CacheTTL  time.Duration           // Lifetime of cached responses
}

// Register mounts every route on r
func Register(r *gin.Engine, d Deps) {
	st := d.Ledger.Store()
	r.Use(metrics.GinMiddleware())
	// Inject Redis client into context for cache invalidation
	r.Use(func(c *gin.Context) {
		if d.Redis != nil {
			c.Set(RedisKey, d.Redis)
		}
		c.Next()
	})

	r.GET("/healthz", HealthHandler(st))            // Liveness and store reachability
	r.GET("/metrics", gin.WrapH(metrics.Handler())) // Prometheus scrape endpoint
	r.GET("/api/plans", CatalogHandler(d.Ledger))   // Public plan catalog

	// Auth routes
	auth := r.Group("/api/auth")
	auth.POST("/register", RegisterHandler(d.Ledger, d.JWTSecret, d.TokenTTL)) // Registration endpoint
	auth.POST("/login", LoginHandler(d.Ledger, d.JWTSecret, d.TokenTTL))       // Login endpoint

	// User routes (protected by JWT)
	user := r.Group("/api/user")
	user.Use(middleware.JWTAuthMiddleware(d.JWTSecret), middleware.ActiveUserMiddleware(st))
	user.GET("/me", MeHandler(d.Ledger, d.Redis, d.CacheTTL))                      // Profile, wallet and plans
	user.GET("/transactions", TransactionsHandler(d.Ledger))                       // Sub-ledgers
	user.POST("/deposit", DepositHandler(d.Ledger))                                // Deposit request
	user.POST("/withdraw", WithdrawHandler(d.Ledger))                              // Withdrawal request
	user.POST("/plans", PurchasePlanHandler(d.Ledger))                             // Buy a plan
	user.POST("/claim-bonus", d.Limiter.Middleware(), ClaimBonusHandler(d.Ledger)) // Daily return claim
	user.GET("/support", SupportThreadHandler(d.Ledger))                           // Support thread
	user.POST("/support", SupportSendHandler(d.Ledger))                            // Message support
	user.POST("/support/typing", TypingHandler(d.Ledger))                          // Typing indicator
	user.GET("/notifications", NotificationsHandler(d.Ledger))                     // Notifications
	user.POST("/notifications/read", MarkNotificationsReadHandler(d.Ledger))       // Mark all read
	user.POST("/casino/bet", d.Limiter.Middleware(), PlaceBetHandler(d.Ledger))    // Place a bet
	user.GET("/casino/bets", MyBetsHandler(d.Ledger))                              // Own bets

	// Admin routes (protected, admin only)
	admin := r.Group("/api/admin")
	admin.Use(middleware.JWTAuthMiddleware(d.JWTSecret), middleware.AdminOnlyMiddleware(st))
	admin.POST("/action", ActionHandler(d.Ledger))                       // Approve or reject a transaction
	admin.POST("/edit-wallet", EditWalletHandler(d.Ledger))              // Wallet adjustment
	admin.POST("/edit-transaction", EditTransactionHandler(d.Ledger))    // Edit a pending transaction
	admin.POST("/block", BlockHandler(d.Ledger))                         // Block or unblock
	admin.POST("/delete-user", DeleteUserHandler(d.Ledger))              // Delete and blacklist
	admin.GET("/users", ListUsersHandler(d.Ledger, d.Redis, d.CacheTTL)) // User list
	admin.GET("/users/:id", UserDetailHandler(d.Ledger))                 // User detail
	admin.POST("/casino", AdminCasinoHandler(d.Ledger))                  // Casino bets
	admin.GET("/support/:userId", AdminThreadHandler(d.Ledger))          // Read a support thread
	admin.POST("/support/:userId", AdminReplyHandler(d.Ledger))          // Reply to a user
	admin.GET("/reconcile", ReconcileHandler(d.Ledger))                  // Wallet vs history check
}
