package data

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-json"
	"github.com/kerbaras/comics/pkg/logging"
)

// Users holds the admin accounts. A nil or empty Users authorizes nobody.
type Users struct {
	byName map[string]User
}

// LoadUsers reads users.json. A missing file yields no users, which disables
// password login to the admin panel.
func LoadUsers(path string) (*Users, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logging.Warn("users file %s not found, admin login disabled", path)
		return NewUsers(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read users %s: %w", path, err)
	}

	var list []User
	if err := json.Unmarshal(content, &list); err != nil {
		return nil, fmt.Errorf("failed to decode users %s: %w", path, err)
	}
	return NewUsers(list...), nil
}

// NewUsers indexes list by username. A later duplicate replaces an earlier one.
func NewUsers(list ...User) *Users {
	users := &Users{byName: make(map[string]User, len(list))}
	for _, u := range list {
		users.byName[u.Username] = u
	}
	return users
}

func (u *Users) Authorize(username, password string) bool {
	if u == nil || username == "" {
		return false
	}
	user, ok := u.byName[username]
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) == 1
}

func (u *Users) Len() int {
	if u == nil {
		return 0
	}
	return len(u.byName)
}
