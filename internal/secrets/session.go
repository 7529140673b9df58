package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// per-user session file (0600) with AES-GCM obfuscation.
// Not a replacement for OS keychains but keeps the bearer token out of plain text.

const fileName = "session.json"

// ErrNoSession is returned by LoadSession when nobody is logged in.
var ErrNoSession = errors.New("no saved session")

// Session is what survives between runs after a successful login.
type Session struct {
	AccessToken string `json:"access_token"`
	CompanyID   int    `json:"company_id"`
	Email       string `json:"email"`
}

type sessionFile struct {
	Session string `json:"session"` // base64(ciphertext of Session JSON)
}

// SaveSession replaces the stored session.
func SaveSession(s Session) error {
	if strings.TrimSpace(s.AccessToken) == "" {
		return fmt.Errorf("access token required")
	}
	path, err := filePath()
	if err != nil {
		return err
	}
	plain, err := json.Marshal(s)
	if err != nil {
		return err
	}
	ct, err := encrypt(plain)
	if err != nil {
		return err
	}
	return save(path, sessionFile{Session: base64.StdEncoding.EncodeToString(ct)})
}

// LoadSession returns the stored session or ErrNoSession.
func LoadSession() (Session, error) {
	path, err := filePath()
	if err != nil {
		return Session{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, ErrNoSession
		}
		return Session{}, err
	}
	var sf sessionFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return Session{}, fmt.Errorf("parse session file: %w", err)
	}
	if sf.Session == "" {
		return Session{}, ErrNoSession
	}
	raw, err := base64.StdEncoding.DecodeString(sf.Session)
	if err != nil {
		return Session{}, err
	}
	pt, err := decrypt(raw)
	if err != nil {
		return Session{}, fmt.Errorf("decrypt session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(pt, &s); err != nil {
		return Session{}, err
	}
	return s, nil
}

// ClearSession removes the stored session. Clearing when none exists is not an error.
func ClearSession() error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func filePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "reciloop")
	if err := os.MkdirAll(dir, 0o700); err != nil { // restrict directory
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

func save(path string, sf sessionFile) error {
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func masterKey() []byte {
	base := fmt.Sprintf("reciloop-%s-%s", runtime.GOOS, os.Getenv("USER"))
	hash := sha256.Sum256([]byte(base))
	return hash[:]
}

func newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func encrypt(plain []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce := ciphertext[:gcm.NonceSize()]
	body := ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}
