package auth

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrUserNotFound = errors.New("user not found")

// User is a staff account. Passwords are stored only as bcrypt hashes.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash []byte    `json:"-"`
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) == nil
}

// Directory is an in-memory staff roster, seeded at boot.
type Directory struct {
	mu      sync.RWMutex
	byEmail map[string]*User
	byID    map[uuid.UUID]*User
}

func NewDirectory() *Directory {
	return &Directory{
		byEmail: make(map[string]*User),
		byID:    make(map[uuid.UUID]*User),
	}
}

// Add registers a staff account, hashing the password.
func (d *Directory) Add(email, name, role, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         name,
		Role:         role,
		PasswordHash: hash,
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.byEmail[u.Email] = u
	d.byID[u.ID] = u
	return u, nil
}

func (d *Directory) FindByEmail(email string) (*User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (d *Directory) FindByID(id uuid.UUID) (*User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}
