package config

import (
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// Settings are operator tunables. They come from an optional YAML file plus
// ACERVO_* environment variables, with the environment taking precedence.
type Settings struct {
	// LoanPeriodDays is the default loan length used when a checkout doesn't
	// specify a due date.
	LoanPeriodDays int `koanf:"loan_period_days"`
	// QRCodeSize is the pixel width/height of generated copy QR images.
	QRCodeSize int `koanf:"qr_code_size"`
	// BcryptCost is the cost factor used when hashing member passwords.
	BcryptCost int `koanf:"bcrypt_cost"`
}

const envPrefix = "ACERVO_"

func defaultSettings() Settings {
	return Settings{
		LoanPeriodDays: 15,
		QRCodeSize:     256,
		BcryptCost:     12,
	}
}

// LoadSettings reads settings from the given YAML file (missing file is fine)
// and overlays ACERVO_* environment variables, e.g. ACERVO_LOAN_PERIOD_DAYS.
func LoadSettings(path string) (*Settings, error) {
	settings := defaultSettings()

	k := koanf.New(".")

	if path != "" {
		err := k.Load(file.Provider(path), yaml.Parser())
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, "failed to load settings file: %s", path)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.Unmarshal("", &settings); err != nil {
		return nil, errors.WithStack(err)
	}

	if settings.LoanPeriodDays <= 0 {
		return nil, errors.New("loan_period_days must be positive")
	}

	return &settings, nil
}
