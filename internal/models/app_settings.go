package models

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// SettingDefinition describes a configurable application setting.
type SettingDefinition struct {
	Key       string // DB key, e.g. "llm.provider"
	EnvVar    string // Override env var, e.g. "PLANFIT_LLM_PROVIDER"
	Default   string // Built-in default value
	Sensitive bool   // If true, value is encrypted in the DB
}

// SettingValue is a resolved setting with its source.
type SettingValue struct {
	Key    string
	Value  string
	Source string // "env", "db", "default"
}

// SettingsRegistry defines all known application settings.
var SettingsRegistry = []SettingDefinition{
	{Key: "app.name", EnvVar: "PLANFIT_APP_NAME", Default: "PlanFit"},
	{Key: "llm.provider", EnvVar: "PLANFIT_LLM_PROVIDER", Default: "openai"},
	{Key: "llm.model", EnvVar: "PLANFIT_LLM_MODEL", Default: "gpt-4o-2024-05-13"},
	{Key: "llm.api_key", EnvVar: "PLANFIT_LLM_API_KEY", Default: "", Sensitive: true},
	{Key: "llm.base_url", EnvVar: "PLANFIT_LLM_BASE_URL", Default: ""},
	{Key: "llm.temperature", EnvVar: "PLANFIT_LLM_TEMPERATURE", Default: "0"},
	{Key: "llm.max_tokens", EnvVar: "PLANFIT_LLM_MAX_TOKENS", Default: "4096"},
	{Key: "llm.timeout_seconds", EnvVar: "PLANFIT_LLM_TIMEOUT_SECONDS", Default: "60"},
}

// GetSetting returns a configuration value using the resolution chain:
// env var → app_settings row → built-in default.
func GetSetting(db *sql.DB, key string) string {
	def := findDefinition(key)
	if def == nil {
		return ""
	}

	// 1. Environment variable always wins.
	if def.EnvVar != "" {
		if v := os.Getenv(def.EnvVar); v != "" {
			return v
		}
	}

	// 2. Database setting.
	var raw string
	err := db.QueryRow(`SELECT value FROM app_settings WHERE key = ?`, key).Scan(&raw)
	if err == nil {
		if def.Sensitive && strings.HasPrefix(raw, "enc:") {
			decrypted, err := decryptValue(raw[4:])
			if err == nil {
				return decrypted
			}
			// Fall through to default if decryption fails.
		} else {
			return raw
		}
	}

	// 3. Built-in default.
	return def.Default
}

// GetSettingInt resolves a numeric setting, falling back to the built-in
// default if the stored value does not parse.
func GetSettingInt(db *sql.DB, key string) int {
	v := GetSetting(db, key)
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if def := findDefinition(key); def != nil {
		if n, err := strconv.Atoi(def.Default); err == nil {
			return n
		}
	}
	return 0
}

// GetSettingFloat resolves a numeric setting as a float64.
func GetSettingFloat(db *sql.DB, key string) float64 {
	v := GetSetting(db, key)
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	if def := findDefinition(key); def != nil {
		if f, err := strconv.ParseFloat(def.Default, 64); err == nil {
			return f
		}
	}
	return 0
}

// SetSetting stores a configuration value in the database. Sensitive values
// are encrypted if PLANFIT_SECRET_KEY is set.
func SetSetting(db *sql.DB, key, value string) error {
	def := findDefinition(key)
	if def == nil {
		return fmt.Errorf("models: unknown setting key %q", key)
	}

	storeValue := value
	if def.Sensitive && value != "" {
		encrypted, err := encryptValue(value)
		if err != nil {
			return fmt.Errorf("models: encrypt setting %q: %w", key, err)
		}
		storeValue = "enc:" + encrypted
	}

	_, err := db.Exec(
		`INSERT INTO app_settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, storeValue,
	)
	if err != nil {
		return fmt.Errorf("models: set setting %q: %w", key, err)
	}
	return nil
}

// DeleteSetting removes a setting from the database (reverts to env var or default).
func DeleteSetting(db *sql.DB, key string) error {
	_, err := db.Exec(`DELETE FROM app_settings WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("models: delete setting %q: %w", key, err)
	}
	return nil
}

// ListSettings returns all known settings with their resolved values and sources.
func ListSettings(db *sql.DB) []SettingValue {
	var results []SettingValue
	for _, def := range SettingsRegistry {
		sv := SettingValue{Key: def.Key, Value: GetSetting(db, def.Key), Source: "default"}
		if def.EnvVar != "" && os.Getenv(def.EnvVar) != "" {
			sv.Source = "env"
		} else {
			var raw string
			if db.QueryRow(`SELECT value FROM app_settings WHERE key = ?`, def.Key).Scan(&raw) == nil {
				sv.Source = "db"
			}
		}
		results = append(results, sv)
	}
	return results
}

// IsGeneratorConfigured reports whether an LLM API key is available, which
// is the minimum needed to call the generation endpoint.
func IsGeneratorConfigured(db *sql.DB) bool {
	return GetSetting(db, "llm.api_key") != ""
}

// GetOrCreateSecretKey ensures a secret key exists for encrypting sensitive
// settings. Resolution: PLANFIT_SECRET_KEY env var → _internal.secret_key DB
// row → auto-generate. The key is stored in plaintext in app_settings (since
// it IS the encryption key).
func GetOrCreateSecretKey(db *sql.DB) (key, source string, err error) {
	if key = os.Getenv("PLANFIT_SECRET_KEY"); key != "" {
		_, _ = db.Exec(
			`INSERT INTO app_settings (key, value) VALUES ('_internal.secret_key', ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key,
		)
		return key, "env", nil
	}

	err = db.QueryRow(`SELECT value FROM app_settings WHERE key = '_internal.secret_key'`).Scan(&key)
	if err == nil && key != "" {
		os.Setenv("PLANFIT_SECRET_KEY", key)
		return key, "database", nil
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("models: generate secret key: %w", err)
	}
	key = base64.StdEncoding.EncodeToString(buf)

	_, err = db.Exec(
		`INSERT INTO app_settings (key, value) VALUES ('_internal.secret_key', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key,
	)
	if err != nil {
		return "", "", fmt.Errorf("models: store secret key: %w", err)
	}

	os.Setenv("PLANFIT_SECRET_KEY", key)
	return key, "generated", nil
}

func findDefinition(key string) *SettingDefinition {
	for i := range SettingsRegistry {
		if SettingsRegistry[i].Key == key {
			return &SettingsRegistry[i]
		}
	}
	return nil
}

// secretKey returns the 32-byte encryption key derived from
// PLANFIT_SECRET_KEY using HKDF (RFC 5869). Returns nil if unset.
func secretKey() []byte {
	key := os.Getenv("PLANFIT_SECRET_KEY")
	if key == "" {
		return nil
	}
	h := hkdf.New(sha256.New, []byte(key), []byte("planfit-settings-v1"), []byte("aes-256-gcm"))
	derived := make([]byte, 32)
	if _, err := io.ReadFull(h, derived); err != nil {
		return nil
	}
	return derived
}

func encryptValue(plaintext string) (string, error) {
	key := secretKey()
	if key == nil {
		return "", fmt.Errorf("PLANFIT_SECRET_KEY not set — cannot encrypt sensitive settings")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	ciphertext := aesGCM.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func decryptValue(encoded string) (string, error) {
	key := secretKey()
	if key == nil {
		return "", fmt.Errorf("PLANFIT_SECRET_KEY not set — cannot decrypt")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonceSize := aesGCM.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}
