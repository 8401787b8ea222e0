package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"renovation/internal/app/config"
	"renovation/internal/app/document"
	"renovation/internal/app/ds"
	"renovation/internal/app/mailer"
	"renovation/internal/app/middleware"
	"renovation/internal/app/pricing"
	"renovation/internal/app/repository"
	"renovation/internal/app/role"
	"renovation/internal/app/validation"
	"renovation/internal/app/wizard"
	"renovation/internal/app/ws"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	seq     int
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (m *memoryStorage) UploadFile(_ context.Context, data []byte, name, prefix string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	key := fmt.Sprintf("%s/%d-%s", prefix, m.seq, name)
	m.objects[key] = data
	return key, nil
}

func (m *memoryStorage) DeleteFile(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryStorage) GetFileURL(_ context.Context, key string) (string, error) {
	return "https://files.test/" + key, nil
}

func (m *memoryStorage) DownloadFile(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (m *memoryStorage) FileExists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memoryStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// outbox records mail; addresses listed in failFor are refused.
type outbox struct {
	mu      sync.Mutex
	sent    []mailer.Message
	failFor map[string]bool
}

func (o *outbox) Send(_ context.Context, msg mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, to := range msg.To {
		if o.failFor[to] {
			return fmt.Errorf("mailbox %s unavailable", to)
		}
	}
	o.sent = append(o.sent, msg)
	return nil
}

func (o *outbox) messages() []mailer.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]mailer.Message(nil), o.sent...)
}

type fakePDF struct{}

func (fakePDF) RenderPDF(_ context.Context, html string) ([]byte, error) {
	return []byte("%PDF-1.4 " + fmt.Sprint(len(html))), nil
}

type testEnv struct {
	t        *testing.T
	router   *gin.Engine
	repo     *repository.Repository
	api      *APIHandler
	auth     *middleware.AuthMiddleware
	storage  *memoryStorage
	mail     *outbox
	designer *ds.User
	manager  *ds.User
	admin    *ds.User
	project  *ds.Project
	supplier *ds.Supplier
}

func testConfig() *config.Config {
	return &config.Config{
		PublicBaseURL: "https://studio.test",
		StudioName:    "Test Studio",
		JWT: config.JWTConfig{
			Token:         "handler-secret",
			ExpiresIn:     time.Hour,
			SigningMethod: jwt.SigningMethodHS256,
		},
		Tax: config.TaxConfig{
			GSTRate:       pricing.DefaultRates.GST,
			QSTRate:       pricing.DefaultRates.QST,
			DefaultMarkup: decimal.NewFromInt(30),
		},
		Mail:   config.MailConfig{From: "studio@studio.test"},
		Async:  config.AsyncConfig{SecretKey: "portal-key"},
		Wizard: config.WizardConfig{SessionTTL: time.Hour},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Register()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(ds.Models()...))

	cfg := testConfig()
	repo := repository.NewWithDB(db, pricing.DefaultRates, cfg.Tax.DefaultMarkup)

	docs, err := document.NewBuilder(cfg.StudioName)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := ws.NewHub()
	go hub.Run(ctx)

	env := &testEnv{
		t:       t,
		repo:    repo,
		storage: newMemoryStorage(),
		mail:    &outbox{failFor: map[string]bool{}},
	}

	env.auth = middleware.NewAuthMiddleware(nil, cfg)
	authHandler := NewAuthHandler(repo, nil, env.auth, cfg)
	env.api = NewAPIHandler(cfg, repo, env.storage, env.mail, fakePDF{}, docs, hub,
		wizard.NewMemoryStore(), nil, authHandler)

	env.router = gin.New()
	printHandler := NewHandler(repo, env.auth, cfg.StudioName)
	require.NoError(t, printHandler.RegisterTemplates(env.router))
	printHandler.RegisterRoutes(env.router)
	env.api.RegisterAPIRoutes(env.router, env.auth)

	env.designer = env.user("dana", role.Designer)
	env.manager = env.user("marc", role.Manager)
	env.admin = env.user("root", role.Admin)

	env.project = &ds.Project{
		Name:        "Outremont duplex",
		ClientName:  "M. Tremblay",
		ClientEmail: "client@example.com",
		OwnerID:     env.designer.ID,
	}
	require.NoError(t, repo.CreateProject(env.project))

	env.supplier = &ds.Supplier{Name: "Atelier Bois", Email: "sales@atelierbois.test"}
	require.NoError(t, repo.CreateSupplier(env.supplier))

	return env
}

func (e *testEnv) user(login string, r role.Role) *ds.User {
	e.t.Helper()
	hash, err := hashPassword("password123")
	require.NoError(e.t, err)
	u, err := e.repo.CreateUser(login, hash, login+" user", login+"@studio.test", r)
	require.NoError(e.t, err)
	return u
}

func (e *testEnv) token(u *ds.User) string {
	e.t.Helper()
	token, _, err := e.auth.IssueToken(u, time.Now())
	require.NoError(e.t, err)
	return token
}

func (e *testEnv) specItem(name string, qty int, cost string, rrp *decimal.Decimal, approved bool) *ds.SpecItem {
	e.t.Helper()
	item := &ds.SpecItem{
		ProjectID:      e.project.ID,
		Name:           name,
		Room:           "Living",
		Quantity:       qty,
		CostPrice:      decimal.RequireFromString(cost),
		RRP:            rrp,
		ClientApproved: approved,
	}
	require.NoError(e.t, e.repo.CreateSpecItem(item))
	return item
}

// do sends a JSON request as the given user; a nil user sends no token.
func (e *testEnv) do(method, path string, u *ds.User, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if u != nil {
		req.Header.Set("Authorization", "Bearer "+e.token(u))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type formFile struct {
	field, name string
	data        []byte
}

func (e *testEnv) upload(path string, u *ds.User, fields map[string]string, files ...formFile) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(e.t, mw.WriteField(k, v))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(e.t, err)
		_, err = part.Write(f.data)
		require.NoError(e.t, err)
	}
	require.NoError(e.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+e.token(u))
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// data decodes the data field of a success response into out.
func data(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	require.Equal(t, "success", envelope.Status, w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
