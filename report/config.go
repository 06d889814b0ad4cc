package report

import (
	"os"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// Config adjusts how the report layer classifies client addresses. It is
// supplied as a YAML document.
type Config struct {
	// InfrastructureHosts are addresses of internal infrastructure (build
	// machines, mirrors) whose downloads are reported separately from real
	// on-site users.
	InfrastructureHosts []string `yaml:"infrastructure_hosts"`
	// InternalHostSpecs are address prefixes identifying on-site origin.
	// Anything not matching a prefix is off-site.
	InternalHostSpecs []string `yaml:"internal_host_specs"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	buf, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}

// onsite reports whether addr matches any internal address prefix.
func (c Config) onsite(addr string) bool {
	for _, spec := range c.InternalHostSpecs {
		if len(spec) > 0 && len(addr) >= len(spec) && addr[:len(spec)] == spec {
			return true
		}
	}
	return false
}

// infrastructure reports whether addr is a configured infrastructure host.
func (c Config) infrastructure(addr string) bool {
	for _, h := range c.InfrastructureHosts {
		if addr == h {
			return true
		}
	}
	return false
}
