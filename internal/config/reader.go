package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Reader interface {
	Read() (*Config, error)
}

// EnvReader reads the configuration from the process environment after
// loading the given dotenv files. Variables already present in the
// environment are never overridden.
type EnvReader struct {
	files []string
}

func NewEnvReader(files ...string) EnvReader {
	return EnvReader{files: files}
}

func (r EnvReader) Read() (*Config, error) {
	err := r.loadDotenv()
	if err != nil {
		return nil, err
	}

	cfg := new(Config)
	err = cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	return cfg, nil
}

func (r EnvReader) loadDotenv() error {
	if len(r.files) == 0 {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}

	err := godotenv.Load(r.files...)
	if err != nil {
		return fmt.Errorf("load dotenv files: %w", err)
	}
	return nil
}
