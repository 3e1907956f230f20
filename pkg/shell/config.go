package shell

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"src.slush.sh/pkg/diag"
	"src.slush.sh/pkg/eval"
)

// Config is the content of rc.yaml.
type Config struct {
	// Prompt is shown before each command when stdin is a terminal. The
	// placeholders {status} and {pwd} are replaced with the exit status of the
	// last pipeline and the working directory.
	Prompt   string `yaml:"prompt" validate:"max=256"`
	Greeting string `yaml:"greeting" validate:"max=1024"`
	// Log is a file to write debug log to, used unless -log is given.
	Log string            `yaml:"log"`
	Env map[string]string `yaml:"env" validate:"dive,keys,envname,endkeys"`
}

func defaultConfig() Config {
	return Config{Prompt: "[{status}] $ ", Greeting: "Hello, Slush!"}
}

// Validate checks the configuration for semantic errors.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
	})
	validate.RegisterValidation("envname", func(fl validator.FieldLevel) bool {
		return isEnvName(fl.Field().String())
	})
	return validate.Struct(c)
}

func isEnvName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}
	return true
}

// LoadConfig reads the configuration from a file. Fields missing from the
// file keep their default values. A file that does not exist yields the
// default configuration and no error.
func LoadConfig(fs afero.Fs, path string) (Config, error) {
	cfg := defaultConfig()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return defaultConfig(), fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return defaultConfig(), fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Loads rc.yaml from path, or the default location if path is empty, and
// exports the variables it sets. Errors are reported and the default
// configuration is used.
func loadRC(st *eval.State, stderr io.Writer, path string) Config {
	if path == "" {
		var err error
		path, err = RCPath()
		if err != nil {
			fmt.Fprintln(stderr, "Warning:", err)
			return defaultConfig()
		}
	}
	cfg, err := LoadConfig(st.FS, path)
	if err != nil {
		diag.Complainf(stderr, "cannot load rc.yaml: %v", err)
		return cfg
	}
	logger.Printf("loaded %s", path)
	for name, value := range cfg.Env {
		os.Setenv(name, value)
	}
	return cfg
}
