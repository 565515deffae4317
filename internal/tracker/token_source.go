package tracker

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	tokenSourceSeparatorConstant            = ":"
	environmentTokenSourceTypeValueConstant = "env"
	fileTokenSourceTypeValueConstant        = "file"

	tokenSourceMissingMessageConstant       = "tracker token source must be provided"
	environmentNameMissingMessageConstant   = "environment variable name must be provided"
	tokenFilePathMissingMessageConstant     = "token file path must be provided"
	environmentTokenMissingTemplateConstant = "environment variable %s is not set"
	tokenFileReadErrorTemplateConstant      = "unable to read token file %s: %w"
	tokenFileEmptyTemplateConstant          = "token file %s is empty"
	unsupportedTokenSourceTemplateConstant  = "unsupported token source type %q"
)

// TokenSourceType enumerates the supported credential retrieval mechanisms.
type TokenSourceType string

// Token source type enumerations.
const (
	TokenSourceTypeEnvironment TokenSourceType = TokenSourceType(environmentTokenSourceTypeValueConstant)
	TokenSourceTypeFile        TokenSourceType = TokenSourceType(fileTokenSourceTypeValueConstant)
)

// TokenSourceConfiguration specifies where a tracker credential lives.
type TokenSourceConfiguration struct {
	Type      TokenSourceType
	Reference string
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// FileReader reads the contents of a file path.
type FileReader func(path string) ([]byte, error)

// TokenResolver retrieves tracker credentials from configured sources.
type TokenResolver struct {
	environmentLookup EnvironmentLookup
	fileReader        FileReader
}

// NewTokenResolver creates a token resolver with optional dependency overrides.
func NewTokenResolver(environmentLookup EnvironmentLookup, fileReader FileReader) *TokenResolver {
	resolvedEnvironmentLookup := environmentLookup
	if resolvedEnvironmentLookup == nil {
		resolvedEnvironmentLookup = os.LookupEnv
	}
	resolvedFileReader := fileReader
	if resolvedFileReader == nil {
		resolvedFileReader = os.ReadFile
	}
	return &TokenResolver{environmentLookup: resolvedEnvironmentLookup, fileReader: resolvedFileReader}
}

// ParseTokenSource interprets textual token source declarations such as
// env:JIRA_TOKEN or file:/run/secrets/jira-token. A bare value is treated as
// an environment variable name.
func ParseTokenSource(sourceValue string) (TokenSourceConfiguration, error) {
	trimmedValue := strings.TrimSpace(sourceValue)
	if len(trimmedValue) == 0 {
		return TokenSourceConfiguration{}, errors.New(tokenSourceMissingMessageConstant)
	}

	components := strings.SplitN(trimmedValue, tokenSourceSeparatorConstant, 2)
	if len(components) == 1 {
		return TokenSourceConfiguration{Type: TokenSourceTypeEnvironment, Reference: trimmedValue}, nil
	}

	sourceType := strings.ToLower(strings.TrimSpace(components[0]))
	reference := strings.TrimSpace(components[1])
	switch sourceType {
	case environmentTokenSourceTypeValueConstant:
		if len(reference) == 0 {
			return TokenSourceConfiguration{}, errors.New(environmentNameMissingMessageConstant)
		}
		return TokenSourceConfiguration{Type: TokenSourceTypeEnvironment, Reference: reference}, nil
	case fileTokenSourceTypeValueConstant:
		if len(reference) == 0 {
			return TokenSourceConfiguration{}, errors.New(tokenFilePathMissingMessageConstant)
		}
		return TokenSourceConfiguration{Type: TokenSourceTypeFile, Reference: reference}, nil
	default:
		return TokenSourceConfiguration{}, fmt.Errorf(unsupportedTokenSourceTemplateConstant, sourceType)
	}
}

// ResolveToken materializes the credential described by the source configuration.
func (resolver *TokenResolver) ResolveToken(source TokenSourceConfiguration) (string, error) {
	switch source.Type {
	case TokenSourceTypeEnvironment:
		value, found := resolver.environmentLookup(source.Reference)
		trimmedValue := strings.TrimSpace(value)
		if !found || len(trimmedValue) == 0 {
			return "", fmt.Errorf(environmentTokenMissingTemplateConstant, source.Reference)
		}
		return trimmedValue, nil
	case TokenSourceTypeFile:
		contentBytes, readError := resolver.fileReader(source.Reference)
		if readError != nil {
			return "", fmt.Errorf(tokenFileReadErrorTemplateConstant, source.Reference, readError)
		}
		trimmedContent := strings.TrimSpace(string(contentBytes))
		if len(trimmedContent) == 0 {
			return "", fmt.Errorf(tokenFileEmptyTemplateConstant, source.Reference)
		}
		return trimmedContent, nil
	default:
		return "", fmt.Errorf(unsupportedTokenSourceTemplateConstant, string(source.Type))
	}
}
