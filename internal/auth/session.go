package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

var (
	ErrInvalidSessionToken = errors.New("session token is invalid")
	ErrExpiredSessionToken = errors.New("token is expired")
)

// Session tokens bridge the gap between a correct password and a verified
// TOTP code, so they only need to outlive the user typing a 6-digit code.
const defaultSessionTokenDuration = 5 * time.Minute

type SessionManagerInterface interface {
	VerifySessionToken(sessionToken string) (string, error)
	DeleteSessionToken(sessionToken string)
	StartSessionTokenCleanup(interval time.Duration)
	GenerateSessionToken(userID string, duration time.Duration) (string, error)
}

type sessionEntry struct {
	userID    string
	expiresAt time.Time
}

type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
}

func NewSessionManager() SessionManagerInterface {
	return &SessionManager{
		sessions: make(map[string]sessionEntry),
	}
}

func (sm *SessionManager) GenerateSessionToken(userID string, duration time.Duration) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", ErrInternalError
	}
	token := hex.EncodeToString(tokenBytes)

	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[token] = sessionEntry{
		userID:    userID,
		expiresAt: time.Now().Add(duration),
	}
	return token, nil
}

func (sm *SessionManager) VerifySessionToken(sessionToken string) (string, error) {
	sm.mu.RLock()
	entry, exists := sm.sessions[sessionToken]
	sm.mu.RUnlock()

	if !exists {
		return "", ErrInvalidSessionToken
	}
	if time.Now().After(entry.expiresAt) {
		sm.DeleteSessionToken(sessionToken)
		return "", ErrExpiredSessionToken
	}
	return entry.userID, nil
}

func (sm *SessionManager) DeleteSessionToken(sessionToken string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, sessionToken)
}

func (sm *SessionManager) StartSessionTokenCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			now := time.Now()
			sm.mu.Lock()
			for token, entry := range sm.sessions {
				if now.After(entry.expiresAt) {
					delete(sm.sessions, token)
				}
			}
			sm.mu.Unlock()
		}
	}()
}
