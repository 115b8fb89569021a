package backend_test

import (
	"testing"

	kcb "github.com/ziotom78/instrumentdb/pkg/configs/backend"
)

func TestLoadBackendConfig(t *testing.T) {

	t.Run("it can be created from a config file", func(t *testing.T) {
		result, err := kcb.LoadBackendConfig("./testdata/config.yaml")

		if err != nil {
			t.Fatalf("failed to parse config.: %v", err)
		}
		expectedURI := "postgres://instrumentdb-test-pgdb-svc:32555/instrumentdb"
		if result.DBURI != expectedURI {
			t.Errorf("unmatch dburi:%s, expected:%s", result.DBURI, expectedURI)
		}
		expectedServerPort := "8080"
		if result.ServerPort != expectedServerPort {
			t.Errorf("unmatch serverport:%s, expected:%s", result.ServerPort, expectedServerPort)
		}
		if result.Storage.Kind != "filesystem" {
			t.Errorf("unmatch storage kind:%s, expected:filesystem", result.Storage.Kind)
		}
		if result.Storage.Root != "/var/lib/instrumentdb/storage" {
			t.Errorf("unmatch storage root: %s", result.Storage.Root)
		}
		if result.Auth.UserFile != "/etc/instrumentdb/users.yaml" {
			t.Errorf("unmatch user file: %s", result.Auth.UserFile)
		}
		if result.Auth.TokenLifetime != "8h" {
			t.Errorf("unmatch token lifetime: %s", result.Auth.TokenLifetime)
		}
	})
}
