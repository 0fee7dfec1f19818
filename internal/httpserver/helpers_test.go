package httpserver_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/mini_shop/internal/events"
	"github.com/Skotchmaster/mini_shop/internal/httpserver"
	"github.com/Skotchmaster/mini_shop/internal/logging"
	"github.com/Skotchmaster/mini_shop/internal/repo"
	"github.com/Skotchmaster/mini_shop/internal/service"
	"github.com/Skotchmaster/mini_shop/internal/testutil"
	"github.com/Skotchmaster/mini_shop/internal/transport"
)

type testEnv struct {
	E *echo.Echo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb := testutil.SQLiteDB(t)
	r := repo.New(gdb)
	pub := events.Nop{}

	authSvc := &service.AuthService{
		Users:      r,
		Events:     pub,
		JWTSecret:  []byte("http-secret"),
		BcryptCost: bcrypt.MinCost,
	}

	e := httpserver.New(httpserver.Options{
		Logger:    logging.NewWithWriter(io.Discard, "error"),
		BodyLimit: "2M",
	})
	httpserver.Register(e, &httpserver.Deps{
		DB:       gdb,
		Verifier: authSvc,
		Auth:     &httpserver.AuthHTTP{Svc: authSvc},
		Products: &httpserver.ProductHTTP{Svc: service.NewCatalogService(r, pub)},
		Cart:     &httpserver.CartHTTP{Svc: &service.CartService{Carts: r, Products: r, Events: pub}},
	})
	return &testEnv{E: e}
}

func (env *testEnv) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doJSON(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return env.do(req, token)
}

func (env *testEnv) register(t *testing.T, username, role string) string {
	t.Helper()

	rec := env.doJSON(t, http.MethodPost, "/register", transport.RegisterRequest{
		Username: username,
		Password: "pw-" + username,
		Role:     role,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp transport.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

type formFile struct {
	Name string
	Data []byte
}

func productForm(t *testing.T, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile("images", f.Name)
		require.NoError(t, err)
		_, err = part.Write(f.Data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/add-product", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}
