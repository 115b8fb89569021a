// Package auth holds the credential checking and token handling of the
// HTTP API: a YAML user registry, HS256 tokens, and the echo middleware
// verifying them.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// User is one entry of the user file. Passwords are stored as the hex
// sha256 of the cleartext.
type User struct {
	Username       string   `yaml:"username"`
	PasswordSHA256 string   `yaml:"passwordSHA256"`
	Groups         []string `yaml:"groups"`
}

type userFile struct {
	Users []User `yaml:"users"`
}

// WritersGroup is the group write methods of the API require.
const WritersGroup = "writers"

// Registry verifies username/password pairs and group membership
// against a user file.
type Registry struct {
	users map[string]User
}

// LoadUsers reads a user file. The server watches the file and restarts
// when it changes, so the registry itself never reloads.
func LoadUsers(filepath string) (*Registry, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}

	var parsed userFile
	if err := yaml.Unmarshal(content, &parsed); err != nil {
		return nil, fmt.Errorf("unparsable user file %s: %w", filepath, err)
	}

	users := map[string]User{}
	for _, u := range parsed.Users {
		if u.Username == "" || u.PasswordSHA256 == "" {
			return nil, fmt.Errorf(
				"user file %s: entries need both username and passwordSHA256",
				filepath,
			)
		}
		users[u.Username] = u
	}
	return &Registry{users: users}, nil
}

// Verify reports whether the pair matches a registered user.
// The comparison is constant-time.
func (r *Registry) Verify(username string, password string) bool {
	user, ok := r.users[username]
	if !ok {
		return false
	}
	sum := sha256.Sum256([]byte(password))
	got := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(got), []byte(user.PasswordSHA256)) == 1
}

// InGroup reports whether the user belongs to the group.
func (r *Registry) InGroup(username string, group string) bool {
	user, ok := r.users[username]
	if !ok {
		return false
	}
	for _, g := range user.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// HashPassword returns the user-file encoding of a cleartext password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
