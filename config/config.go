package config

import (
	"io/ioutil"
	"os"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "gltfscene.yaml"

type Config struct {
	// Generator is written to the asset record of encoded containers.
	Generator string `yaml:"generator"`
	// Binary selects GLB output when the output name does not decide.
	Binary bool `yaml:"binary"`
	// ExternalBuffers writes .gltf buffers as sibling .bin files.
	ExternalBuffers   bool   `yaml:"external_buffers"`
	RequireExtensions bool   `yaml:"require_extensions"`
	RootName          string `yaml:"root_name"`
	Listen            string `yaml:"listen"`
}

func Default() Config {
	return Config{
		Generator: "gltfscene",
		Binary:    true,
		RootName:  "Scene",
		Listen:    ":8000",
	}
}

var (
	current = Default()
	mu      sync.RWMutex
)

func Get() Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func Set(c Config) {
	mu.Lock()
	current = c
	mu.Unlock()
}

// Load reads path over the defaults. A missing file at DefaultPath is
// not an error.
func Load(path string) (Config, error) {
	c := Default()
	data, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultPath {
			return c, nil
		}
		return c, errors.Wrapf(err, "Failed to read config %q", path)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, errors.Wrapf(err, "Failed to parse config %q", path)
	}
	return c, nil
}

func (c Config) Save(path string) error {
	data, err := yaml.Marshal(&c)
	if err != nil {
		return errors.Wrapf(err, "Failed to marshal config")
	}
	return errors.Wrapf(ioutil.WriteFile(path, data, 0644), "Failed to write config %q", path)
}
