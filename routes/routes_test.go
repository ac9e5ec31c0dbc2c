package routes

import (
	"bytes"
	"io"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sentiment-health/api-go/config"
	"github.com/sentiment-health/api-go/mailer"
	"github.com/sentiment-health/api-go/metrics"
	"github.com/sentiment-health/api-go/middleware"
	"github.com/sentiment-health/api-go/models"
	"github.com/sentiment-health/api-go/reports"
	"github.com/sentiment-health/api-go/review"
	"github.com/sentiment-health/api-go/sentiment"
	"github.com/sentiment-health/api-go/storage"
	"github.com/sentiment-health/api-go/testutil"
	"github.com/sentiment-health/api-go/utils"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
	tokens *utils.TokenIssuer
	mail   *recordingMailer
	review *review.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithGoogle(t, nil)
}

func newTestServerWithGoogle(t *testing.T, google *config.GoogleConfig) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	reporter, err := reports.NewReporter(db)
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry)
	mail := &recordingMailer{}
	svc := review.NewService(db, mail, m, log, "http://app.test")
	tokens := utils.NewTokenIssuer("test-secret", 15*time.Minute, 24*time.Hour)

	r := gin.New()
	r.Use(middleware.RequestMetrics(m))
	SetupRoutes(r, Dependencies{
		DB:            db,
		Tokens:        tokens,
		Google:        google,
		Analyzer:      sentiment.NewVaderAnalyzer(),
		Store:         store,
		Reporter:      reporter,
		Review:        svc,
		Metrics:       m,
		Gatherer:      registry,
		Log:           log,
		MaxImageBytes: 1 << 20,
	})

	return &testServer{t: t, router: r, db: db, tokens: tokens, mail: mail, review: svc}
}

func (s *testServer) token(user models.User) string {
	s.t.Helper()
	tok, err := s.tokens.AccessToken(utils.UserClaims{UserID: user.ID, Username: user.Username, Role: user.Role})
	require.NoError(s.t, err)
	return tok
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	body := gin.H{"username": "alice", "email": "Alice@Example.com", "confirmEmail": "alice@example.com", "password": "secret123"}
	w := s.do(http.MethodPost, "/api/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/register", "", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Username already exists", decode(t, w)["error"])

	body["username"] = "alice2"
	w = s.do(http.MethodPost, "/api/register", "", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email already exists", decode(t, w)["error"])

	w = s.do(http.MethodPost, "/api/register", "", gin.H{"username": "carol", "email": "c@example.com", "confirmEmail": "d@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Emails do not match", decode(t, w)["error"])

	w = s.do(http.MethodPost, "/api/register", "", gin.H{"username": "9lives", "email": "n@example.com", "confirmEmail": "n@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/login", "", gin.H{"email": "alice@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/login", "", gin.H{"email": "alice@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode(t, w)
	access := login["access_token"].(string)
	refresh := login["refresh_token"].(string)

	w = s.do(http.MethodGet, "/api/profile", access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", decode(t, w)["user"].(map[string]interface{})["username"])

	w = s.do(http.MethodPost, "/api/refresh-token", "", gin.H{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, w.Code)
	rotated := decode(t, w)["refresh_token"].(string)
	assert.NotEqual(t, refresh, rotated)

	w = s.do(http.MethodPost, "/api/refresh-token", "", gin.H{"refresh_token": refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/logout", access, gin.H{"refresh_token": rotated})
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodPost, "/api/refresh-token", "", gin.H{"refresh_token": rotated})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestValidationEndpoints(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "alice", models.RoleUser)

	assert.Equal(t, true, decode(t, s.do(http.MethodGet, "/api/validation/username/alice", "", nil))["exists"])
	assert.Equal(t, false, decode(t, s.do(http.MethodGet, "/api/validation/username/bob", "", nil))["exists"])
	assert.Equal(t, true, decode(t, s.do(http.MethodGet, "/api/validation/email/alice@example.com", "", nil))["exists"])
}

func TestGoogleLoginNotConfigured(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/auth/google", "", gin.H{"id_token": "x"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

// googleReturning answers every Google API call with the given userinfo JSON.
func googleReturning(body string) *config.GoogleConfig {
	return &config.GoogleConfig{
		ClientID: "client-id",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": []string{"application/json"}},
				Body:       io.NopCloser(strings.NewReader(body)),
				Request:    req,
			}, nil
		})},
	}
}

func TestGoogleLogin_UnverifiedEmailRejected(t *testing.T) {
	s := newTestServerWithGoogle(t, googleReturning(`{"id":"attacker-sub","email":"victim@example.com","verified_email":false}`))
	victim := testutil.CreateUser(t, s.db, "victim", models.RoleAdmin)

	w := s.do(http.MethodPost, "/api/auth/google", "", gin.H{"access_token": "tok"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "access_token")

	var stored models.User
	require.NoError(t, s.db.First(&stored, victim.ID).Error)
	assert.Nil(t, stored.GoogleID)
}

func TestGoogleLogin_VerifiedEmail(t *testing.T) {
	s := newTestServerWithGoogle(t, googleReturning(`{"id":"sub-1","email":"New.Person@example.com","verified_email":true}`))

	w := s.do(http.MethodPost, "/api/auth/google", "", gin.H{"access_token": "tok"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decode(t, w)["access_token"])

	var user models.User
	require.NoError(t, s.db.Where("email = ?", "new.person@example.com").First(&user).Error)
	assert.Equal(t, models.ProviderGoogle, user.Provider)
	require.NotNil(t, user.GoogleID)
	assert.Equal(t, "sub-1", *user.GoogleID)

	// second sign-in reuses the account
	w = s.do(http.MethodPost, "/api/auth/google", "", gin.H{"access_token": "tok"})
	require.Equal(t, http.StatusOK, w.Code)
	var count int64
	require.NoError(t, s.db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGoogleLogin_DeletedAccount(t *testing.T) {
	s := newTestServerWithGoogle(t, googleReturning(`{"id":"sub-2","email":"gone@example.com","verified_email":true}`))
	gone := testutil.CreateUser(t, s.db, "gone", models.RoleUser)
	require.NoError(t, s.db.Delete(&gone).Error)

	w := s.do(http.MethodPost, "/api/auth/google", "", gin.H{"access_token": "tok"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreatePost_PersistsPostAndAnalysis(t *testing.T) {
	s := newTestServer(t)
	alice := testutil.CreateUser(t, s.db, "alice", models.RoleUser)
	tok := s.token(alice)

	w := s.do(http.MethodPost, "/api/posts", tok, gin.H{"text": "I hate this. Everything is terrible and awful."})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := decode(t, w)
	data := res["data"].(map[string]interface{})
	assert.Equal(t, "negative", data["label"])
	assert.Equal(t, true, data["flagged"])
	assert.Equal(t, sentiment.Emoji("negative"), data["emoji"])
	assert.Equal(t, "Admin has been notified of the negative sentiment!", res["message"])

	var posts []models.Post
	require.NoError(t, s.db.Find(&posts).Error)
	require.Len(t, posts, 1)
	assert.Equal(t, "negative", posts[0].Sentiment)
	assert.Equal(t, "alice", posts[0].Username)

	var records []models.AnalysisRecord
	require.NoError(t, s.db.Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, models.DataTypePost, records[0].DataType)
	require.NotNil(t, records[0].PostID)
	assert.Equal(t, posts[0].ID, *records[0].PostID)
	assert.Equal(t, posts[0].Sentiment, records[0].Sentiment)

	w = s.do(http.MethodPost, "/api/posts", tok, gin.H{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

var pngBytes = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}, make([]byte, 32)...)

func multipartPost(t *testing.T, s *testServer, tok, text string, image []byte) *httptest.ResponseRecorder {
	t.Helper()
	return multipartPostNamed(t, s, tok, text, "pic.png", image)
}

func multipartPostNamed(t *testing.T, s *testServer, tok, text, filename string, image []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if text != "" {
		require.NoError(t, mw.WriteField("text", text))
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/posts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestCreatePost_ImageUpload(t *testing.T) {
	s := newTestServer(t)
	alice := testutil.CreateUser(t, s.db, "alice", models.RoleUser)
	bob := testutil.CreateUser(t, s.db, "bob", models.RoleUser)
	tok := s.token(alice)

	w := multipartPost(t, s, tok, "", pngBytes)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "neutral", data["label"])
	assert.Equal(t, 0.0, data["confidence"])
	postID := int(data["post"].(map[string]interface{})["id"].(float64))

	req := httptest.NewRequest(http.MethodGet, "/api/posts/"+itoa(postID)+"/image", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	img := httptest.NewRecorder()
	s.router.ServeHTTP(img, req)
	require.Equal(t, http.StatusOK, img.Code)
	assert.Equal(t, pngBytes, img.Body.Bytes())

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/posts/"+itoa(postID), s.token(bob), nil).Code)

	w = multipartPost(t, s, tok, "caption", []byte("definitely not an image"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = multipartPost(t, s, tok, "Such a lovely sunny day!", pngBytes)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "positive", decode(t, w)["data"].(map[string]interface{})["label"])
}

func TestCreatePost_ImageTypeFromContent(t *testing.T) {
	s := newTestServer(t)
	alice := testutil.CreateUser(t, s.db, "alice", models.RoleUser)
	tok := s.token(alice)

	w := multipartPostNamed(t, s, tok, "", "evil.html", pngBytes)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	post := decode(t, w)["data"].(map[string]interface{})["post"].(map[string]interface{})

	req := httptest.NewRequest(http.MethodGet, "/api/posts/"+itoa(int(post["id"].(float64)))+"/image", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	img := httptest.NewRecorder()
	s.router.ServeHTTP(img, req)
	require.Equal(t, http.StatusOK, img.Code)
	assert.Equal(t, "image/png", img.Header().Get("Content-Type"))
}

func TestAnalyzeAndListPosts(t *testing.T) {
	s := newTestServer(t)
	alice := testutil.CreateUser(t, s.db, "alice", models.RoleUser)
	tok := s.token(alice)

	w := s.do(http.MethodPost, "/api/analyze", tok, gin.H{"text": "What a wonderful day. I love it.", "engine": "sentence"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "positive", data["label"])
	assert.Len(t, data["sentences"], 2)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/analyze", tok, gin.H{"text": "hi", "engine": "nope"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/analyze", tok, gin.H{"text": ""}).Code)

	var count int64
	require.NoError(t, s.db.Model(&models.AnalysisRecord{}).Where("data_type = ?", models.DataTypeText).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	assert.EqualValues(t, 0, countPosts(t, s.db))

	for i := 0; i < 3; i++ {
		testutil.CreatePost(t, s.db, alice, "post", models.SentimentNeutral)
	}
	w = s.do(http.MethodGet, "/api/posts?pageSize=2", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode(t, w)
	assert.Len(t, res["data"], 2)
	assert.EqualValues(t, 3, res["pagination"].(map[string]interface{})["totalItems"])
	assert.EqualValues(t, 2, res["pagination"].(map[string]interface{})["totalPages"])
}

func TestUserDashboardAndAlerts(t *testing.T) {
	s := newTestServer(t)
	alice := testutil.CreateUser(t, s.db, "alice", models.RoleUser)
	tok := s.token(alice)

	testutil.CreatePost(t, s.db, alice, "happy", models.SentimentPositive)
	reviewed := testutil.CreatePost(t, s.db, alice, "sad one", models.SentimentNegative)
	testutil.CreatePost(t, s.db, alice, "sad two", models.SentimentNegative)
	_, err := s.review.ManualReview(context.Background(), reviewed.ID, "admin", "hang in there")
	require.NoError(t, err)

	w := s.do(http.MethodGet, "/api/dashboard", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	dash := decode(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 3, dash["total"])
	assert.EqualValues(t, 2, dash["counts"].(map[string]interface{})["negative"])
	assert.EqualValues(t, 0, dash["counts"].(map[string]interface{})["neutral"])
	assert.InDelta(t, 0.5, dash["avgConfidence"], 0.001)
	assert.Len(t, dash["unreviewed"], 1)

	w = s.do(http.MethodGet, "/api/alerts", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	alerts := decode(t, w)["data"].(map[string]interface{})
	require.Len(t, alerts["pending"], 1)
	require.Len(t, alerts["reviewed"], 1)
	item := alerts["reviewed"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "hang in there", item["comment"])
	assert.Equal(t, "admin", item["adminUsername"])
	assert.Equal(t, sentiment.Encouragement("sad one"), item["encouragement"])
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	alice := testutil.CreateUser(t, s.db, "alice", models.RoleUser)
	tok := s.token(alice)

	for _, path := range []string{"/api/admin/dashboard", "/api/admin/stats", "/api/admin/users", "/api/admin/flagged", "/api/admin/export"} {
		assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, path, tok, nil).Code, path)
	}
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/admin/stats", "", nil).Code)
}

func TestAdminDashboardAndStats(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "boss", models.RoleAdmin)
	alice := testutil.CreateUser(t, s.db, "alice", models.RoleUser)
	tok := s.token(admin)

	w := s.do(http.MethodPost, "/api/posts", s.token(alice), gin.H{"text": "This is awful and I hate it."})
	require.Equal(t, http.StatusCreated, w.Code)
	testutil.CreatePost(t, s.db, alice, "fine", models.SentimentPositive)

	w = s.do(http.MethodGet, "/api/admin/dashboard?days=7", tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	dash := decode(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 2, dash["totalUsers"])
	assert.EqualValues(t, 1, dash["flaggedPosts"])
	assert.Len(t, dash["postsPerDay"], 7)
	assert.InDelta(t, 2.0/7.0, dash["avgPostsPerDay"], 0.01)
	growth := dash["userGrowth"].([]interface{})
	assert.EqualValues(t, 2, growth[len(growth)-1].(map[string]interface{})["count"])

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/admin/dashboard?days=0", tok, nil).Code)

	w = s.do(http.MethodGet, "/api/admin/stats", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 1, stats["analysis"].(map[string]interface{})["total"])
	assert.EqualValues(t, 2, stats["system"].(map[string]interface{})["totalPosts"])
}

func TestAdminUserManagement(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "boss", models.RoleAdmin)
	alice := testutil.CreateUser(t, s.db, "alice", models.RoleUser)
	testutil.CreateUser(t, s.db, "bob", models.RoleUser)
	tok := s.token(admin)

	w := s.do(http.MethodGet, "/api/admin/users?q=ALI", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)

	w = s.do(http.MethodGet, "/api/admin/users", tok, nil)
	assert.EqualValues(t, 3, decode(t, w)["pagination"].(map[string]interface{})["totalItems"])

	w = s.do(http.MethodPut, "/api/admin/users/"+itoa(int(alice.ID)), tok, gin.H{"email": "bob@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPut, "/api/admin/users/"+itoa(int(alice.ID)), tok, gin.H{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "No changes detected", decode(t, w)["message"])

	testutil.CreatePost(t, s.db, alice, "hello", models.SentimentNeutral)
	w = s.do(http.MethodPut, "/api/admin/users/"+itoa(int(alice.ID)), tok, gin.H{"username": "alicia", "password": "newpass1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var post models.Post
	require.NoError(t, s.db.Where("user_id = ?", alice.ID).First(&post).Error)
	assert.Equal(t, "alicia", post.Username)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, "/api/admin/users/"+itoa(int(admin.ID)), tok, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/admin/users/"+itoa(int(alice.ID)), tok, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/admin/users/"+itoa(int(alice.ID)), tok, nil).Code)

	w = s.do(http.MethodGet, "/api/admin/users/deleted", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	deleted := decode(t, w)["data"].([]interface{})
	require.Len(t, deleted, 1)
	assert.Equal(t, "alicia", deleted[0].(map[string]interface{})["username"])

	// deleted accounts keep their name reserved
	w = s.do(http.MethodPost, "/api/register", "", gin.H{"username": "alicia", "email": "new@example.com", "confirmEmail": "new@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFlaggedReviewFlow(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "boss", models.RoleAdmin)
	alice := testutil.CreateUser(t, s.db, "alice", models.RoleUser)
	tok := s.token(admin)

	first := testutil.CreatePost(t, s.db, alice, "I hate mondays.", models.SentimentNegative)
	second := testutil.CreatePost(t, s.db, alice, "This is awful.", models.SentimentNegative)
	happy := testutil.CreatePost(t, s.db, alice, "yay", models.SentimentPositive)

	w := s.do(http.MethodGet, "/api/admin/flagged", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	meta := decode(t, w)["meta"].(map[string]interface{})
	assert.EqualValues(t, 2, meta["pendingCount"])
	assert.EqualValues(t, 0, meta["reviewedCount"])

	path := "/api/admin/flagged/" + itoa(int(first.ID))
	w = s.do(http.MethodPost, path+"/review", tok, gin.H{"comment": "Please reconsider"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, path+"/review", tok, gin.H{"comment": "again"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/admin/flagged/"+itoa(int(happy.ID))+"/review", tok, gin.H{"comment": "x"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/admin/flagged/999/review", tok, gin.H{"comment": "x"}).Code)

	w = s.do(http.MethodGet, "/api/admin/flagged?hideReviewed=true", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)

	w = s.do(http.MethodPut, path+"/comment", tok, gin.H{"comment": "Edited"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Edited", decode(t, w)["data"].(map[string]interface{})["comment"])
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/api/admin/flagged/"+itoa(int(second.ID))+"/comment", tok, gin.H{"comment": "x"}).Code)

	w = s.do(http.MethodPost, "/api/admin/flagged/"+itoa(int(second.ID))+"/auto-review", tok, gin.H{"sendEmail": true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["emailed"])
	assert.Equal(t, "auto", data["alert"].(map[string]interface{})["source"])

	w = s.do(http.MethodPost, path+"/email", tok, gin.H{"body": "Hello\nPlease edit"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, s.mail.sent, 2)
	assert.Equal(t, mailer.SubjectReview, s.mail.sent[1].Subject)
	assert.Equal(t, "alice@example.com", s.mail.sent[1].To)

	w = s.do(http.MethodPost, "/api/admin/flagged/auto-review-all", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["data"].(map[string]interface{})["pending"])
}

func TestExport(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "boss", models.RoleAdmin)
	alice := testutil.CreateUser(t, s.db, "alice", models.RoleUser)
	testutil.CreatePost(t, s.db, alice, "hello, world", models.SentimentNeutral)
	tok := s.token(admin)

	w := s.do(http.MethodGet, "/api/admin/export?format=csv", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), `"hello, world"`)

	w = s.do(http.MethodGet, "/api/admin/export?format=xlsx&scope=reviewed", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "PK"))

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/admin/export?format=pdf", tok, nil).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/healthz", "", nil).Code)

	w := s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func countPosts(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Post{}).Count(&n).Error)
	return n
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
