package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/relpick/internal/shared"
)

const (
	planPathRequiredMessageConstant      = "release plan path must be provided"
	planLoadErrorTemplateConstant        = "failed to load release plan: %w"
	planParseErrorTemplateConstant       = "failed to parse release plan: %w"
	planReleaseRequiredMessageConstant   = "release plan must define a release version"
	planRepositoriesEmptyMessageConstant = "release plan must list at least one repository"
)

// LoadPlan reads a release plan manifest from disk. Plans may either place the
// run fields at the document root or nest them under a release: key.
func LoadPlan(fileSystem shared.FileSystem, filePath string) (RunConfiguration, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return RunConfiguration{}, errors.New(planPathRequiredMessageConstant)
	}

	contentBytes, readError := fileSystem.ReadFile(trimmedPath)
	if readError != nil {
		return RunConfiguration{}, fmt.Errorf(planLoadErrorTemplateConstant, readError)
	}

	var configuration RunConfiguration
	if unmarshalError := yaml.Unmarshal(contentBytes, &configuration); unmarshalError != nil {
		return RunConfiguration{}, fmt.Errorf(planParseErrorTemplateConstant, unmarshalError)
	}
	if len(configuration.ReleaseVersion) == 0 && len(configuration.Repositories) == 0 {
		var wrapper struct {
			Release RunConfiguration `yaml:"release"`
		}
		if nestedError := yaml.Unmarshal(contentBytes, &wrapper); nestedError == nil {
			if len(wrapper.Release.ReleaseVersion) > 0 || len(wrapper.Release.Repositories) > 0 {
				configuration = wrapper.Release
			}
		}
	}

	sanitized := configuration.Sanitize()
	if len(sanitized.ReleaseVersion) == 0 {
		return RunConfiguration{}, errors.New(planReleaseRequiredMessageConstant)
	}
	if len(sanitized.Repositories) == 0 {
		return RunConfiguration{}, errors.New(planRepositoriesEmptyMessageConstant)
	}

	return sanitized, nil
}
