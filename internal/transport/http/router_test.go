package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"webnova-quiz-service/internal/app"
	"webnova-quiz-service/internal/auth"
	"webnova-quiz-service/internal/domain"
	"webnova-quiz-service/internal/generator"
	"webnova-quiz-service/internal/infra/memory"
	"webnova-quiz-service/internal/metrics"
	"webnova-quiz-service/internal/scoring"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServices(t *testing.T) Services {
	t.Helper()
	log := zap.NewNop()
	store, err := memory.NewFixtureStore(context.Background(), auth.BcryptHasher{Cost: bcrypt.MinCost}, time.Hour)
	if err != nil {
		t.Fatalf("fixture store: %v", err)
	}
	hub := app.NewLeaderboardHub()
	return Services{
		Quiz:        app.NewQuizService(store, generator.Fixture{}, scoring.NewEngine(scoring.DefaultRules()), hub, log, app.QuizOptions{}),
		User:        app.NewUserService(store),
		Leaderboard: app.NewLeaderboardService(store, hub, 10),
		Streak:      app.NewStreakService(store, app.NoopDailyCheck{Log: log}, app.DefaultFreezeCost, log),
		Auth:        app.NewAuthService(store, auth.DemoTokens{}, auth.BcryptHasher{Cost: bcrypt.MinCost}, log),
	}
}

func newTestRouter(t *testing.T, opts Options) *gin.Engine {
	t.Helper()
	opts.Demo = true
	return NewRouter(newTestServices(t), zap.NewNop(), opts)
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

const demoAuth = "Bearer demo-uid-demo"

func TestHealth(t *testing.T) {
	r := newTestRouter(t, Options{})
	rec := doJSON(t, r, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decode[map[string]string](t, rec); got["status"] != "ok" {
		t.Fatalf("unexpected body %v", got)
	}
}

func TestPublicLeaderboards(t *testing.T) {
	r := newTestRouter(t, Options{})
	rec := doJSON(t, r, http.MethodGet, "/api/leaderboard/all-time", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	entries := decode[[]domain.RankedEntry](t, rec)
	if len(entries) != 6 {
		t.Fatalf("expected 6 entries, got %d", len(entries))
	}
	if entries[0].Rank != 1 || entries[0].Username != "DianaWins" {
		t.Fatalf("unexpected leader %+v", entries[0])
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("uid-diana")) {
		t.Fatalf("board leaked a user id: %s", rec.Body.String())
	}
}

func TestProtectedRoutesRequireAuthorization(t *testing.T) {
	r := newTestRouter(t, Options{})
	paths := []string{"/api/user/me", "/api/user/stats", "/api/leaderboard/rank", "/api/streak/status"}
	for _, path := range paths {
		rec := doJSON(t, r, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rec.Code)
		}
		if got := decode[errorBody](t, rec); got.Error != "Missing or invalid Authorization header" {
			t.Fatalf("%s: unexpected error %q", path, got.Error)
		}
	}

	rec := doJSON(t, r, http.MethodGet, "/api/user/me", "Bearer not-a-demo-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", rec.Code)
	}
}

func TestDemoSchemeIsAccepted(t *testing.T) {
	r := newTestRouter(t, Options{})
	rec := doJSON(t, r, http.MethodGet, "/api/user/me", "Demo uid-alice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[domain.UserAccount](t, rec); got.Username != "AliceLeads" {
		t.Fatalf("unexpected profile %+v", got)
	}
}

func TestGenerateRequiresFields(t *testing.T) {
	r := newTestRouter(t, Options{})
	rec := doJSON(t, r, http.MethodPost, "/api/quiz/generate", demoAuth, map[string]any{"subject": "Go"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decode[errorBody](t, rec); got.Error != "Missing fields: difficulty, lastScore" {
		t.Fatalf("unexpected error %q", got.Error)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/quiz/generate", demoAuth, nil)
	if got := decode[errorBody](t, rec); got.Error != "Missing fields: subject, difficulty, lastScore" {
		t.Fatalf("unexpected error for empty body %q", got.Error)
	}
}

func TestInvalidJSONBody(t *testing.T) {
	r := newTestRouter(t, Options{})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decode[errorBody](t, rec); got.Error != "Invalid JSON body" {
		t.Fatalf("unexpected error %q", got.Error)
	}
}

func TestQuizGenerateSubmitFlow(t *testing.T) {
	m := metrics.New()
	r := newTestRouter(t, Options{Metrics: m})

	rec := doJSON(t, r, http.MethodPost, "/api/quiz/generate", demoAuth, map[string]any{
		"subject": "Python", "difficulty": 3, "lastScore": 70,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	quiz := decode[domain.Quiz](t, rec)
	if quiz.ID == "" || len(quiz.Questions) != 5 {
		t.Fatalf("unexpected quiz %+v", quiz)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/quiz/"+quiz.ID, demoAuth, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
	fetched := decode[quizResponse](t, rec)
	if fetched.Expired {
		t.Fatalf("fresh quiz reported as expired")
	}

	answers := make([]string, len(fetched.Questions))
	for i, q := range fetched.Questions {
		answers[i] = q.CorrectAnswer
	}
	rec = doJSON(t, r, http.MethodPost, "/api/quiz/submit", demoAuth, map[string]any{
		"quizId": quiz.ID, "answers": answers,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := decode[domain.SubmissionResult](t, rec)
	if result.Score != 100 || result.PointsEarned != 50 || !result.StreakIncremented {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.TotalPoints != 2900 {
		t.Fatalf("expected total 2900, got %d", result.TotalPoints)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/leaderboard/rank", demoAuth, nil)
	info := decode[domain.RankInfo](t, rec)
	if info.CurrentRank != 4 || info.TotalUsers != 6 || info.PointsToNextRank != 50 {
		t.Fatalf("unexpected rank %+v", info)
	}

	rec = doJSON(t, r, http.MethodGet, "/metrics", "", nil)
	if !bytes.Contains(rec.Body.Bytes(), []byte(`quiz_submissions_total{outcome="pass"} 1`)) {
		t.Fatalf("submission not counted:\n%s", rec.Body.String())
	}
}

func TestUnknownQuizIsNotFound(t *testing.T) {
	r := newTestRouter(t, Options{})
	rec := doJSON(t, r, http.MethodGet, "/api/quiz/missing", demoAuth, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if got := decode[errorBody](t, rec); got.Error != "Quiz not found" {
		t.Fatalf("unexpected error %q", got.Error)
	}
}

func TestStreakFreezeSpendsPoints(t *testing.T) {
	r := newTestRouter(t, Options{})
	rec := doJSON(t, r, http.MethodPost, "/api/streak/freeze", demoAuth, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[domain.FreezeResult](t, rec); !got.Success || got.PointsUsed != 50 {
		t.Fatalf("unexpected freeze %+v", got)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/user/me", demoAuth, nil)
	if got := decode[domain.UserAccount](t, rec); got.TotalPoints != 2800 || !got.StreakFrozen {
		t.Fatalf("unexpected account after freeze %+v", got)
	}
}

func TestSignupLoginVerifyLogout(t *testing.T) {
	r := newTestRouter(t, Options{})

	rec := doJSON(t, r, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"email": "Newbie@Example.com", "password": "long-enough-pw", "username": "Newbie",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	session := decode[app.Session](t, rec)
	if session.Token != auth.DemoPrefix+session.UserID || session.User.Level != 1 {
		t.Fatalf("unexpected session %+v", session)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"email": "newbie@example.com", "password": "long-enough-pw", "username": "Other",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate signup: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "newbie@example.com", "password": "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "newbie@example.com", "password": "long-enough-pw",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/auth/verify", "Bearer "+session.Token, nil)
	if got := decode[map[string]any](t, rec); got["valid"] != true || got["userId"] != session.UserID {
		t.Fatalf("unexpected verify body %v", got)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/auth/verify", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("verify without token: expected 401, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/auth/logout", "Bearer "+session.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", rec.Code)
	}
	rec = doJSON(t, r, http.MethodPost, "/api/auth/logout", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("anonymous logout: expected 200, got %d", rec.Code)
	}
}

func TestSignupRejectsDisplayNameAddress(t *testing.T) {
	r := newTestRouter(t, Options{})
	rec := doJSON(t, r, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"email": "Bob <bob@example.com>", "password": "long-enough-pw", "username": "Bob",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[errorBody](t, rec); got.Error != "Invalid fields: email" {
		t.Fatalf("unexpected error %q", got.Error)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "bob@example.com", "password": "long-enough-pw",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("rejected signup must not leave an account, got %d", rec.Code)
	}
}

func TestDailyCheckIsPublic(t *testing.T) {
	r := newTestRouter(t, Options{})
	rec := doJSON(t, r, http.MethodGet, "/api/streak/daily-check", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
