package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"webnova-quiz-service/internal/app"
	"webnova-quiz-service/internal/metrics"
	"webnova-quiz-service/internal/tracing"
)

// Services bundles the use cases exposed over HTTP.
type Services struct {
	Quiz        *app.QuizService
	User        *app.UserService
	Leaderboard *app.LeaderboardService
	Streak      *app.StreakService
	Auth        *app.AuthService
}

// Options configure the router's cross-cutting middleware.
type Options struct {
	AllowedOrigins  []string
	RateLimitMax    int
	RateLimitWindow time.Duration
	// Metrics is optional; nil disables instrumentation and /metrics.
	Metrics *metrics.Metrics
	Tracing bool
	// Demo accepts the "Demo <userID>" authorization scheme.
	Demo bool
}

type handlers struct {
	svc     Services
	log     *zap.Logger
	metrics *metrics.Metrics
	demo    bool
}

// NewRouter wires middleware and every route onto a gin engine.
func NewRouter(svc Services, log *zap.Logger, opts Options) *gin.Engine {
	useJSONFieldNames()

	r := gin.New()
	r.Use(Recovery(log), RequestLogger(log), Secure(), CORS(opts.AllowedOrigins))
	if opts.Tracing {
		r.Use(tracing.GinMiddleware())
	}
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
		r.GET("/metrics", opts.Metrics.Handler())
	}

	h := &handlers{svc: svc, log: log, metrics: opts.Metrics, demo: opts.Demo}
	ws := NewLeaderboardSocket(svc.Leaderboard, log, opts.AllowedOrigins)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws/leaderboard", ws.Handle)

	api := r.Group("/api")
	api.Use(RateLimiter(opts.RateLimitMax, opts.RateLimitWindow))
	requireUser := Authenticate(svc.Auth, opts.Demo, log)

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", h.signup)
	authGroup.POST("/login", h.login)
	authGroup.GET("/verify", h.verify)
	authGroup.POST("/logout", h.logout)

	quiz := api.Group("/quiz", requireUser)
	quiz.POST("/generate", h.generateQuiz)
	quiz.POST("/submit", h.submitQuiz)
	quiz.GET("/:quizId", h.getQuiz)

	user := api.Group("/user", requireUser)
	user.GET("/me", h.me)
	user.PUT("/me", h.updateMe)
	user.GET("/stats", h.stats)
	user.GET("/progress", h.progress)

	board := api.Group("/leaderboard")
	board.GET("/daily", h.board("daily"))
	board.GET("/weekly", h.board("weekly"))
	board.GET("/all-time", h.board("all-time"))
	board.GET("/friends", requireUser, h.friends)
	board.GET("/rank", requireUser, h.rank)

	streak := api.Group("/streak")
	streak.GET("/status", requireUser, h.streakStatus)
	streak.POST("/freeze", requireUser, h.freezeStreak)
	streak.GET("/daily-check", h.dailyCheck)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody{Error: "Not found"})
	})
	return r
}

// NewServer wraps the router with the connection timeouts used in production.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
