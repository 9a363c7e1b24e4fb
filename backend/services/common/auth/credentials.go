package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ErrCredentialNotFound is returned by a CredentialStore for unknown usernames.
var ErrCredentialNotFound = errors.New("credential not found")

// Credential is a stored login: a bcrypt hash and the role it grants.
type Credential struct {
	Username     string
	PasswordHash string
	Role         Role
}

// CredentialStore looks up credentials by username.
type CredentialStore interface {
	Lookup(ctx context.Context, username string) (*Credential, error)
}

// SeedUser is a configured login. Password may be plain text or a bcrypt hash.
type SeedUser struct {
	Username string
	Password string
	Role     Role
}

// ParseSeedUsers parses "user:password:role" entries separated by commas.
// Passwords containing ':' must be supplied pre-hashed via Secrets Manager JSON.
func ParseSeedUsers(raw string) ([]SeedUser, error) {
	var users []SeedUser
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		first := strings.Index(entry, ":")
		last := strings.LastIndex(entry, ":")
		if first <= 0 || last == first {
			return nil, fmt.Errorf("invalid user entry %q: want user:password:role", entry)
		}
		role, err := ParseRole(entry[last+1:])
		if err != nil {
			return nil, err
		}
		users = append(users, SeedUser{Username: entry[:first], Password: entry[first+1 : last], Role: role})
	}
	if len(users) == 0 {
		return nil, errors.New("no users configured")
	}
	return users, nil
}

// StaticStore is an in-memory CredentialStore seeded once from configuration.
// Plain-text passwords are hashed on first lookup, not at construction.
type StaticStore struct {
	seed  []SeedUser
	cost  int
	once  sync.Once
	users map[string]*Credential
	err   error
}

// NewStaticStore returns a store over seed. cost <= 0 selects bcrypt.DefaultCost.
func NewStaticStore(seed []SeedUser, cost int) *StaticStore {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &StaticStore{seed: seed, cost: cost}
}

func (s *StaticStore) load() {
	s.users = make(map[string]*Credential, len(s.seed))
	for _, u := range s.seed {
		hash := u.Password
		if !isBcryptHash(hash) {
			b, err := bcrypt.GenerateFromPassword([]byte(u.Password), s.cost)
			if err != nil {
				s.err = fmt.Errorf("hash password for %s: %w", u.Username, err)
				return
			}
			hash = string(b)
		}
		s.users[u.Username] = &Credential{Username: u.Username, PasswordHash: hash, Role: u.Role}
	}
}

// Lookup implements CredentialStore.
func (s *StaticStore) Lookup(_ context.Context, username string) (*Credential, error) {
	s.once.Do(s.load)
	if s.err != nil {
		return nil, s.err
	}
	cred, ok := s.users[username]
	if !ok {
		return nil, ErrCredentialNotFound
	}
	c := *cred
	return &c, nil
}

func isBcryptHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}
