package auth_test

import (
	nethttp "net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ziotom78/instrumentdb/internal/testutils/http"
	"github.com/ziotom78/instrumentdb/pkg/auth"
)

func TestRegistry(t *testing.T) {
	userFile := filepath.Join(t.TempDir(), "users.yaml")
	content := `
users:
  - username: "alice"
    passwordSHA256: "` + auth.HashPassword("s3cret") + `"
    groups: ["writers"]
  - username: "bob"
    passwordSHA256: "` + auth.HashPassword("hunter2") + `"
`
	if err := os.WriteFile(userFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	registry, err := auth.LoadUsers(userFile)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	t.Run("a registered pair verifies", func(t *testing.T) {
		if !registry.Verify("alice", "s3cret") {
			t.Error("valid credentials rejected")
		}
	})

	t.Run("a wrong password does not", func(t *testing.T) {
		if registry.Verify("alice", "hunter2") {
			t.Error("wrong password accepted")
		}
	})

	t.Run("an unknown user does not", func(t *testing.T) {
		if registry.Verify("mallory", "s3cret") {
			t.Error("unknown user accepted")
		}
	})

	t.Run("group membership follows the user file", func(t *testing.T) {
		if !registry.InGroup("alice", auth.WritersGroup) {
			t.Error("alice should be a writer")
		}
		if registry.InGroup("bob", auth.WritersGroup) {
			t.Error("bob should not be a writer")
		}
		if registry.InGroup("mallory", auth.WritersGroup) {
			t.Error("an unknown user is never in a group")
		}
	})
}

func TestRequireGroup(t *testing.T) {
	userFile := filepath.Join(t.TempDir(), "users.yaml")
	content := `
users:
  - username: "alice"
    passwordSHA256: "` + auth.HashPassword("s3cret") + `"
    groups: ["writers"]
  - username: "bob"
    passwordSHA256: "` + auth.HashPassword("hunter2") + `"
`
	if err := os.WriteFile(userFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	registry, err := auth.LoadUsers(userFile)
	if err != nil {
		t.Fatal(err)
	}

	handler := auth.RequireGroup(registry, auth.WritersGroup)(func(c echo.Context) error {
		return c.NoContent(nethttp.StatusNoContent)
	})

	t.Run("a writer passes", func(t *testing.T) {
		e := echo.New()
		ctx, resp := http.Post(e, "/api/entities", nil)
		ctx.Set(auth.UsernameKey, "alice")
		if err := handler(ctx); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if resp.Code != nethttp.StatusNoContent {
			t.Errorf("status code: got %d", resp.Code)
		}
	})

	t.Run("a reader is rejected with 403", func(t *testing.T) {
		e := echo.New()
		ctx, _ := http.Post(e, "/api/entities", nil)
		ctx.Set(auth.UsernameKey, "bob")
		err := handler(ctx)
		httperr, ok := err.(*echo.HTTPError)
		if !ok || httperr.Code != nethttp.StatusForbidden {
			t.Errorf("unexpected error: %+v", err)
		}
	})
}

func TestIssuer(t *testing.T) {
	issuer := auth.NewIssuer([]byte("test-signing-secret"), time.Hour)

	t.Run("an issued token verifies to the same user", func(t *testing.T) {
		token, err := issuer.Issue("alice")
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		username, err := issuer.Verify(token)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if username != "alice" {
			t.Errorf("unexpected username: %s", username)
		}
	})

	t.Run("a token signed with another secret is rejected", func(t *testing.T) {
		other := auth.NewIssuer([]byte("another-secret"), time.Hour)
		token, err := other.Issue("alice")
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if _, err := issuer.Verify(token); err == nil {
			t.Error("foreign token accepted")
		}
	})

	t.Run("an expired token is rejected", func(t *testing.T) {
		shortLived := auth.NewIssuer([]byte("test-signing-secret"), -time.Minute)
		token, err := shortLived.Issue("alice")
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if _, err := issuer.Verify(token); err == nil {
			t.Error("expired token accepted")
		}
	})
}

func TestMiddleware(t *testing.T) {
	issuer := auth.NewIssuer([]byte("test-signing-secret"), time.Hour)

	handler := auth.Middleware(issuer)(func(c echo.Context) error {
		return c.String(nethttp.StatusOK, c.Get(auth.UsernameKey).(string))
	})

	t.Run("a request with a valid token passes", func(t *testing.T) {
		token, err := issuer.Issue("alice")
		if err != nil {
			t.Fatal(err)
		}

		e := echo.New()
		ctx, resp := http.Get(
			e, "/api/entities",
			http.WithHeader(echo.HeaderAuthorization, "Bearer "+token),
		)
		if err := handler(ctx); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if resp.Code != nethttp.StatusOK || resp.Body.String() != "alice" {
			t.Errorf("unexpected response: %d %q", resp.Code, resp.Body.String())
		}
	})

	t.Run("a request without a token is rejected", func(t *testing.T) {
		e := echo.New()
		ctx, _ := http.Get(e, "/api/entities")
		err := handler(ctx)
		if err == nil {
			t.Fatal("request without token passed")
		}
		httperr, ok := err.(*echo.HTTPError)
		if !ok || httperr.Code != nethttp.StatusUnauthorized {
			t.Errorf("unexpected error: %+v", err)
		}
	})
}
