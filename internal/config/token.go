package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// tokenKey is the variable the token file stores the access token under.
const tokenKey = "ACCESS_TOKEN"

// TokenFile returns the token path under dir. The file is dotenv format:
// KEY=VALUE lines, #-prefixed comments ignored.
func TokenFile(dir string) string {
	return filepath.Join(dir, "token.env")
}

// LoadToken reads the saved access token from dir. A missing file yields
// an empty token, not an error.
func LoadToken(dir string) (string, error) {
	env, err := godotenv.Read(TokenFile(dir))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return env[tokenKey], nil
}

// SaveToken writes the access token to dir, creating it if needed. An
// empty token is written as-is, which is how logout clears the file.
func SaveToken(dir, token string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return godotenv.Write(map[string]string{tokenKey: token}, TokenFile(dir))
}
