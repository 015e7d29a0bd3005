/*
 * config.go, part of gauss.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package launch

import (
	"fmt"
	"strings"

	"github.com/rmera/gauss/options"
)

// Section and option names of the options file.
const (
	SectionDocker = "docker"
	SectionLocal  = "local"

	KeyCode             = "code"
	KeyContainer        = "container"
	KeyPlatform         = "platform"
	KeyInstallation     = "installation"
	KeyRootDirectory    = "root-directory"
	KeyGaussianRoot     = "gaussian-root"
	KeySetupEnvironment = "setup-environment"
	KeyModules          = "modules"
	KeyConda            = "conda"
	KeyCondaEnvironment = "conda-environment"
)

// ConfigError reports a missing or invalid option.
type ConfigError struct {
	Section string
	Key     string
	Reason  string
}

func (err *ConfigError) Error() string {
	return fmt.Sprintf("launch: [%s] %s: %s", err.Section, err.Key, err.Reason)
}

// DockerConfig holds the options of the [docker] section.
type DockerConfig struct {
	Code      string
	Container string
	Platform  string //optional
}

// LocalConfig holds the options of the [local] section.
type LocalConfig struct {
	Installation     Installation
	Code             string
	RootDirectory    string //programs with a relative path are taken from here
	GaussianRoot     string //exported as g09root
	SetupEnvironment string
	Modules          []string
	Conda            string
	CondaEnvironment string
}

// Config is the validated content of an options document.
type Config struct {
	Local  LocalConfig
	Docker *DockerConfig //nil if the document has no [docker] section

	//Runtime is the container engine executable. Defaults to "docker".
	Runtime string
}

// splitList splits a list option. Items are separated by white space
// or commas. The order is kept.
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

// FromDocument reads and validates the launch options in doc. The
// installation option of the [local] section selects the strategy, and
// the options that strategy needs must be present.
func FromDocument(doc *options.Document) (*Config, error) {
	local := doc.Section(SectionLocal)
	if local == nil {
		return nil, &ConfigError{SectionLocal, KeyInstallation, "section is missing"}
	}
	cfg := &Config{Runtime: "docker"}
	tag, ok := local.Get(KeyInstallation)
	if !ok {
		return nil, &ConfigError{SectionLocal, KeyInstallation, "option is missing"}
	}
	inst, err := ParseInstallation(tag)
	if err != nil {
		return nil, &ConfigError{SectionLocal, KeyInstallation, err.Error()}
	}
	cfg.Local.Installation = inst
	cfg.Local.Code, _ = local.Get(KeyCode)
	cfg.Local.RootDirectory, _ = local.Get(KeyRootDirectory)
	cfg.Local.GaussianRoot, _ = local.Get(KeyGaussianRoot)
	cfg.Local.SetupEnvironment, _ = local.Get(KeySetupEnvironment)
	cfg.Local.Conda, _ = local.Get(KeyConda)
	cfg.Local.CondaEnvironment, _ = local.Get(KeyCondaEnvironment)
	if m, ok := local.Get(KeyModules); ok {
		cfg.Local.Modules = splitList(m)
	}

	if d := doc.Section(SectionDocker); d != nil {
		cfg.Docker = new(DockerConfig)
		cfg.Docker.Code, _ = d.Get(KeyCode)
		cfg.Docker.Container, _ = d.Get(KeyContainer)
		cfg.Docker.Platform, _ = d.Get(KeyPlatform)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the options needed by the selected installation
// are present. It returns a *ConfigError naming the first offending option.
func (C *Config) Validate() error {
	return C.validateFor(C.Local.Installation)
}

func (C *Config) validateFor(inst Installation) error {
	if _, err := ParseInstallation(string(inst)); err != nil {
		return &ConfigError{SectionLocal, KeyInstallation, err.Error()}
	}
	if inst == Docker {
		if C.Docker == nil {
			return &ConfigError{SectionDocker, KeyContainer, "section is missing but installation is docker"}
		}
		if C.Docker.Code == "" {
			return &ConfigError{SectionDocker, KeyCode, "option is missing"}
		}
		if C.Docker.Container == "" {
			return &ConfigError{SectionDocker, KeyContainer, "option is missing"}
		}
		return nil
	}
	if C.Local.Code == "" {
		return &ConfigError{SectionLocal, KeyCode, "option is missing"}
	}
	switch inst {
	case Modules:
		if len(C.Local.Modules) == 0 {
			return &ConfigError{SectionLocal, KeyModules, "option is required when installation is modules"}
		}
	case Conda:
		if C.Local.CondaEnvironment == "" {
			return &ConfigError{SectionLocal, KeyCondaEnvironment, "option is required when installation is conda"}
		}
	}
	return nil
}
