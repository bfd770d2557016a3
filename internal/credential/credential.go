package credential

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/subosito/gotenv"
)

const DefaultEnv = "GEMINI_API_KEY"

// ErrMissing is returned when the credential variable is unset or blank.
var ErrMissing = errors.New("credential is not set")

type LookupFunc func(name string) (string, bool)

func Load(lookup LookupFunc, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultEnv
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	value, ok := lookup(name)
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%s environment variable: %w", name, ErrMissing)
	}
	return strings.TrimSpace(value), nil
}

// Mask keeps the first and last four characters of secret. Secrets of eight
// characters or fewer are fully hidden.
func Mask(secret string) string {
	runes := []rune(secret)
	if len(runes) <= 8 {
		return "****"
	}
	return string(runes[:4]) + "..." + string(runes[len(runes)-4:])
}

// LoadDotEnv copies variables from path into the process environment without
// overriding ones that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := gotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
