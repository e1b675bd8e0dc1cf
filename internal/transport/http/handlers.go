package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"webnova-quiz-service/internal/app"
	"webnova-quiz-service/internal/domain"
)

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type generateRequest struct {
	Subject    string   `json:"subject" binding:"required"`
	Difficulty *int     `json:"difficulty" binding:"required"`
	LastScore  *float64 `json:"lastScore" binding:"required"`
}

type submitRequest struct {
	QuizID  string   `json:"quizId" binding:"required"`
	Answers []string `json:"answers" binding:"required"`
}

type profileRequest struct {
	Username *string `json:"username"`
	Avatar   *string `json:"avatar"`
}

type quizResponse struct {
	domain.Quiz
	Expired bool `json:"expired"`
}

func (h *handlers) signup(c *gin.Context) {
	var req signupRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}
	session, err := h.svc.Auth.Signup(c.Request.Context(), req.Email, req.Password, req.Username)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}
	session, err := h.svc.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *handlers) verify(c *gin.Context) {
	credential, ok := credentialFrom(c.GetHeader("Authorization"), h.demo)
	if !ok {
		writeError(c, h.log, domain.ErrUnauthorized)
		return
	}
	userID, err := h.svc.Auth.ResolveIdentity(c.Request.Context(), credential)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "userId": userID})
}

// logout revokes the bearer credential when one is sent. It always succeeds for
// absent or already invalid credentials.
func (h *handlers) logout(c *gin.Context) {
	credential, _ := credentialFrom(c.GetHeader("Authorization"), h.demo)
	if err := h.svc.Auth.Logout(c.Request.Context(), credential); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handlers) generateQuiz(c *gin.Context) {
	var req generateRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}
	quiz, err := h.svc.Quiz.Generate(c.Request.Context(), currentUser(c), app.GenerateRequest{
		Subject:    req.Subject,
		Difficulty: *req.Difficulty,
		LastScore:  *req.LastScore,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if h.metrics != nil {
		h.metrics.QuizGenerated()
	}
	c.JSON(http.StatusCreated, quiz)
}

func (h *handlers) submitQuiz(c *gin.Context) {
	var req submitRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}
	result, err := h.svc.Quiz.Submit(c.Request.Context(), currentUser(c), req.QuizID, req.Answers)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if h.metrics != nil {
		h.metrics.SubmissionGraded(result.StreakIncremented, result.PointsEarned)
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) getQuiz(c *gin.Context) {
	quiz, err := h.svc.Quiz.Get(c.Request.Context(), c.Param("quizId"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, quizResponse{Quiz: quiz, Expired: quiz.Expired(time.Now())})
}

func (h *handlers) me(c *gin.Context) {
	account, err := h.svc.User.Profile(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *handlers) updateMe(c *gin.Context) {
	var req profileRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}
	account, err := h.svc.User.UpdateProfile(c.Request.Context(), currentUser(c), domain.ProfileUpdate{
		Username: req.Username,
		Avatar:   req.Avatar,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *handlers) stats(c *gin.Context) {
	stats, err := h.svc.User.Stats(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *handlers) progress(c *gin.Context) {
	items, err := h.svc.User.Progress(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if items == nil {
		items = []domain.ProgressItem{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *handlers) board(period domain.Period) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := h.svc.Leaderboard.Board(c.Request.Context(), period)
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

func (h *handlers) rank(c *gin.Context) {
	info, err := h.svc.Leaderboard.Rank(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *handlers) friends(c *gin.Context) {
	info, err := h.svc.Leaderboard.Friends(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *handlers) streakStatus(c *gin.Context) {
	status, err := h.svc.Streak.Status(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *handlers) freezeStreak(c *gin.Context) {
	result, err := h.svc.Streak.Freeze(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if h.metrics != nil {
		h.metrics.StreakFrozen()
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) dailyCheck(c *gin.Context) {
	if err := h.svc.Streak.DailyCheck(c.Request.Context()); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
