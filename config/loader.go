// SPDX-License-Identifier: EPL-2.0

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a session configuration from a YAML file. Missing
// section-splitting fields take the defaults; validation against the
// detected channel count happens later, in Session.Validate.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration bytes.
func Parse(data []byte) (*Session, error) {
	session := &Session{
		SectionSplitting: DefaultSectionSplitting(),
	}
	if err := yaml.Unmarshal(data, session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return session, nil
}
