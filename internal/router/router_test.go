package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ariane/internal/assets"
	"github.com/ariane/internal/auth"
	"github.com/ariane/internal/db"
	"github.com/ariane/internal/handler"
	"github.com/ariane/internal/metrics"
	"github.com/ariane/internal/repository"
)

type routerSuite struct {
	handler http.Handler
}

type signedUser struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

type idResponse struct {
	ID          string `json:"id"`
	ChoiceTitle string `json:"choiceTitle"`
	Title       string `json:"title"`
}

func newRouterSuite(t *testing.T) *routerSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	store := repository.NewGormStore(gdb)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	uploadDir := t.TempDir()
	files, err := assets.NewFileStore(uploadDir, "/static/uploads")
	if err != nil {
		t.Fatalf("failed to create file store: %v", err)
	}

	issuer, err := auth.NewIssuer("test-secret", time.Hour, nil)
	if err != nil {
		t.Fatalf("failed to create issuer: %v", err)
	}

	reg := prometheus.NewRegistry()
	rec := metrics.NewCollector(reg)

	api := handler.NewAPI(handler.Options{
		Store:          store,
		Assets:         files,
		Tokens:         issuer,
		Metrics:        rec,
		AuthorFallback: "Artist Unknown",
	})

	return &routerSuite{
		handler: SetupRouter(Options{
			API:           api,
			Verifier:      issuer,
			Metrics:       rec,
			Gatherer:      reg,
			UploadDir:     uploadDir,
			UploadURLPath: "/static/uploads",
		}),
	}
}

func (s *routerSuite) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *routerSuite) doJSON(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	return s.do(t, method, path, token, bytes.NewReader(data), "application/json")
}

func (s *routerSuite) upload(t *testing.T, path, token, field, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
	partHeader.Set("Content-Type", "application/octet-stream")
	part, err := writer.CreatePart(partHeader)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return s.do(t, http.MethodPost, path, token, body, writer.FormDataContentType())
}

func (s *routerSuite) signUp(t *testing.T, email string) signedUser {
	t.Helper()
	rr := s.doJSON(t, http.MethodPost, "/sign_up", "", map[string]any{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     email,
		"password":  "correct horse",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("sign up expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var user signedUser
	decode(t, rr, &user)
	if user.ID == "" || user.Token == "" {
		t.Fatalf("sign up must return id and token, got %+v", user)
	}
	return user
}

func (s *routerSuite) create(t *testing.T, path, token string, payload any) idResponse {
	t.Helper()
	rr := s.doJSON(t, http.MethodPost, path, token, payload)
	if rr.Code != http.StatusCreated {
		t.Fatalf("POST %s expected 201, got %d: %s", path, rr.Code, rr.Body.String())
	}
	var out idResponse
	decode(t, rr, &out)
	return out
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode json: %v\nbody=%s", err, rr.Body.String())
	}
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 20, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestHealthAndMetrics(t *testing.T) {
	s := newRouterSuite(t)

	if rr := s.do(t, http.MethodGet, "/health", "", nil, ""); rr.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", rr.Code)
	}
	s.do(t, http.MethodGet, "/users", "", nil, "")

	rr := s.do(t, http.MethodGet, "/metrics", "", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `ariane_http_status_total{status_code="401"}`) {
		t.Fatalf("expected 401 counter in metrics output, got:\n%s", rr.Body.String())
	}
}

func TestAuthFlow(t *testing.T) {
	s := newRouterSuite(t)
	user := s.signUp(t, "Ada@Example.com")

	rr := s.doJSON(t, http.MethodPost, "/sign_up", "", map[string]any{"email": "ada@example.com", "password": "another one"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate sign up expected 409, got %d", rr.Code)
	}

	rr = s.doJSON(t, http.MethodPost, "/sign_in", "", map[string]any{"email": "ada@example.com", "password": "wrong"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad password expected 401, got %d", rr.Code)
	}

	rr = s.doJSON(t, http.MethodPost, "/sign_in", "", map[string]any{"email": "ADA@example.com", "password": "correct horse"})
	if rr.Code != http.StatusOK {
		t.Fatalf("sign in expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var signedIn signedUser
	decode(t, rr, &signedIn)
	if signedIn.ID != user.ID {
		t.Fatalf("expected same user id, got %s and %s", signedIn.ID, user.ID)
	}

	if rr := s.do(t, http.MethodGet, "/users", "", nil, ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("missing token expected 401, got %d", rr.Code)
	}
	if rr := s.do(t, http.MethodGet, "/users", signedIn.Token, nil, ""); rr.Code != http.StatusOK {
		t.Fatalf("list users expected 200, got %d", rr.Code)
	}
	if rr := s.doJSON(t, http.MethodPut, "/users/someone-else", signedIn.Token, map[string]any{"firstName": "x"}); rr.Code != http.StatusForbidden {
		t.Fatalf("updating another user expected 403, got %d", rr.Code)
	}
}

func TestStoryLifecycle(t *testing.T) {
	s := newRouterSuite(t)
	ada := s.signUp(t, "ada@example.com")
	token := ada.Token

	story := s.create(t, "/stories/"+ada.ID, token, map[string]any{"title": "Le labyrinthe", "summary": "Un fil rouge"})
	if rr := s.doJSON(t, http.MethodPost, "/stories/not-me", token, map[string]any{"title": "x"}); rr.Code != http.StatusForbidden {
		t.Fatalf("foreign user path expected 403, got %d", rr.Code)
	}

	a := s.create(t, "/pages/"+story.ID, token, map[string]any{"title": "A", "text": "**Début**", "first": true})
	b := s.create(t, "/pages/"+story.ID, token, map[string]any{"title": "B", "text": "Couloir"})
	c := s.create(t, "/pages/"+story.ID, token, map[string]any{"title": "C", "text": "Fin", "end": true})
	s.create(t, "/choices/"+a.ID, token, map[string]any{"sendToPageId": b.ID, "title": "Open the door"})
	s.create(t, "/choices/"+b.ID, token, map[string]any{"sendToPageId": c.ID, "title": "Enter"})

	rr := s.do(t, http.MethodGet, "/pages/"+story.ID, token, nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list pages expected 200, got %d", rr.Code)
	}
	var pages []idResponse
	decode(t, rr, &pages)
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	for _, p := range pages {
		if p.ID == b.ID && p.ChoiceTitle != "Open the door" {
			t.Fatalf("expected B to arrive via \"Open the door\", got %q", p.ChoiceTitle)
		}
	}

	rr = s.do(t, http.MethodGet, "/choice_send_to/"+c.ID, token, nil, "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Enter") {
		t.Fatalf("choice_send_to expected the Enter choice, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = s.do(t, http.MethodGet, "/pages/page/"+a.ID+"/preview", token, nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("preview expected 200, got %d", rr.Code)
	}
	var preview struct {
		HTML string `json:"html"`
	}
	decode(t, rr, &preview)
	if !strings.Contains(preview.HTML, "<strong>Début</strong>") {
		t.Fatalf("preview expected rendered markdown, got %q", preview.HTML)
	}

	rr = s.upload(t, "/pages/page/"+b.ID+"/image", token, "image", "b.png", testPNG(t))
	if rr.Code != http.StatusOK {
		t.Fatalf("image upload expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var uploaded struct {
		URL string `json:"url"`
	}
	decode(t, rr, &uploaded)
	if rr := s.do(t, http.MethodGet, uploaded.URL, "", nil, ""); rr.Code != http.StatusOK {
		t.Fatalf("uploaded image expected to be served at %s, got %d", uploaded.URL, rr.Code)
	}

	rr = s.do(t, http.MethodGet, "/stories/"+ada.ID+"/"+story.ID+"/pdf", token, nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("pdf expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", ct)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected pdf body")
	}

	rr = s.do(t, http.MethodGet, "/stories/"+ada.ID+"/"+story.ID+"/export", token, nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("export expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	archive := rr.Body.Bytes()

	rr = s.upload(t, "/stories/"+ada.ID+"/import", token, "archive", "story.zip", archive)
	if rr.Code != http.StatusCreated {
		t.Fatalf("import expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var imported struct {
		Story   idResponse `json:"story"`
		Pages   int        `json:"pages"`
		Choices int        `json:"choices"`
	}
	decode(t, rr, &imported)
	if imported.Pages != 3 || imported.Choices != 2 {
		t.Fatalf("expected 3 pages and 2 choices imported, got %+v", imported)
	}
	if imported.Story.ID == story.ID {
		t.Fatalf("import must create a new story")
	}

	rr = s.upload(t, "/stories/"+ada.ID+"/import", token, "archive", "story.zip", []byte("nope"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad archive expected 400, got %d", rr.Code)
	}
}

func TestEmptyStoryAndForeignAccess(t *testing.T) {
	s := newRouterSuite(t)
	ada := s.signUp(t, "ada@example.com")
	bob := s.signUp(t, "bob@example.com")

	story := s.create(t, "/stories/"+ada.ID, ada.Token, map[string]any{"title": "Vide"})

	if rr := s.do(t, http.MethodGet, "/stories/"+ada.ID+"/"+story.ID+"/pdf", ada.Token, nil, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("empty story pdf expected 204, got %d", rr.Code)
	}
	if rr := s.do(t, http.MethodGet, "/stories/"+ada.ID+"/"+story.ID+"/export", ada.Token, nil, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("empty story export expected 204, got %d", rr.Code)
	}

	page := s.create(t, "/pages/"+story.ID, ada.Token, map[string]any{"title": "Seule", "first": true})
	if rr := s.do(t, http.MethodGet, "/pages/page/"+page.ID, bob.Token, nil, ""); rr.Code != http.StatusNotFound {
		t.Fatalf("foreign page expected 404, got %d", rr.Code)
	}
	if rr := s.do(t, http.MethodGet, "/pages/"+story.ID, bob.Token, nil, ""); rr.Code != http.StatusNotFound {
		t.Fatalf("foreign story pages expected 404, got %d", rr.Code)
	}
}
