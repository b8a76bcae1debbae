package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"moviehub-backend/internal/apperrors"
	"moviehub-backend/internal/auth"
	"moviehub-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

// stubUserRepo serves only the FindByID calls Protect makes.
type stubUserRepo struct {
	users map[uint]models.User
}

func (r *stubUserRepo) Create(context.Context, *models.User) error { return nil }

func (r *stubUserRepo) FindByID(_ context.Context, id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user with ID %d", apperrors.ErrNotFound, id)
	}
	return &user, nil
}

func (r *stubUserRepo) FindByEmail(context.Context, string) (*models.User, error) { return nil, nil }
func (r *stubUserRepo) HasSaved(context.Context, uint, uint) (bool, error)        { return false, nil }
func (r *stubUserRepo) AppendSaved(context.Context, uint, uint) error             { return nil }
func (r *stubUserRepo) RemoveSaved(context.Context, uint, uint) error             { return nil }
func (r *stubUserRepo) ListSaved(context.Context, uint) ([]models.Movie, error)   { return nil, nil }

func newProtectedApp(repo *stubUserRepo, extra ...fiber.Handler) *fiber.App {
	log := logrus.New()
	log.SetOutput(io.Discard)

	app := fiber.New()
	chain := append([]fiber.Handler{Protect(repo, testSecret, log)}, extra...)
	chain = append(chain, func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		return c.JSON(fiber.Map{"email": user.Email, "password": user.Password})
	})
	app.Get("/private", chain...)
	return app
}

func bearerRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return req
}

func TestProtect_ValidToken(t *testing.T) {
	t.Parallel()

	repo := &stubUserRepo{users: map[uint]models.User{
		7: {Name: "Jane", Email: "jane@example.com", Password: "hash", Role: models.RoleUser},
	}}
	app := newProtectedApp(repo)

	token, err := auth.GenerateToken(7, models.RoleUser, testSecret, time.Hour)
	require.NoError(t, err)

	resp, err := app.Test(bearerRequest(token))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "jane@example.com")
	assert.NotContains(t, string(body), "hash", "password hash must not leak into locals")
}

func TestProtect_MissingHeader(t *testing.T) {
	t.Parallel()

	app := newProtectedApp(&stubUserRepo{users: map[uint]models.User{}})

	resp, err := app.Test(bearerRequest(""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtect_BadToken(t *testing.T) {
	t.Parallel()

	app := newProtectedApp(&stubUserRepo{users: map[uint]models.User{}})

	resp, err := app.Test(bearerRequest("not.a.token"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtect_DeletedUser(t *testing.T) {
	t.Parallel()

	app := newProtectedApp(&stubUserRepo{users: map[uint]models.User{}})

	token, err := auth.GenerateToken(99, models.RoleUser, testSecret, time.Hour)
	require.NoError(t, err)

	resp, err := app.Test(bearerRequest(token))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthorize_RoleMismatchIsForbidden(t *testing.T) {
	t.Parallel()

	repo := &stubUserRepo{users: map[uint]models.User{
		1: {Email: "user@example.com", Role: models.RoleUser},
		2: {Email: "admin@example.com", Role: models.RoleAdmin},
	}}
	app := newProtectedApp(repo, Authorize(models.RoleAdmin))

	userToken, err := auth.GenerateToken(1, models.RoleUser, testSecret, time.Hour)
	require.NoError(t, err)
	resp, err := app.Test(bearerRequest(userToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	adminToken, err := auth.GenerateToken(2, models.RoleAdmin, testSecret, time.Hour)
	require.NoError(t, err)
	resp, err = app.Test(bearerRequest(adminToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
