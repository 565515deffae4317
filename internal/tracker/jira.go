package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/relpick/internal/shared"
)

const (
	jiraLoggerRequiredMessageConstant     = "jira backend requires a logger"
	jiraHTTPClientRequiredMessageConstant = "jira backend requires an HTTP client"
	jiraBaseURLRequiredMessageConstant    = "jira base URL must be provided"
	jiraProjectRequiredMessageConstant    = "jira project must be provided"
	jiraTokenRequiredMessageConstant      = "jira token must be provided"

	jiraVersionsEndpointTemplateConstant = "%s/rest/api/2/project/%s/versions"
	jiraSearchEndpointTemplateConstant   = "%s/rest/api/2/search"
	jiraSearchJQLTemplateConstant        = `project = %s AND fixVersion = %s OR issueFunction in subtasksOf("project = %s AND fixVersion = %s") ORDER BY priority DESC, key ASC`

	jiraAuthorizationHeaderConstant  = "Authorization"
	jiraBearerSchemeTemplateConstant = "Bearer %s"
	jiraAcceptHeaderConstant         = "Accept"
	jiraJSONContentTypeConstant      = "application/json"

	jiraUnexpectedStatusTemplateConstant = "jira request to %s returned status %d"
	jiraSearchPageSizeConstant           = 50

	foundVersionTemplateConstant = "Found version: %s\n"

	jiraQueryParameterJQLConstant        = "jql"
	jiraQueryParameterFieldsConstant     = "fields"
	jiraQueryParameterStartAtConstant    = "startAt"
	jiraQueryParameterMaxResultsConstant = "maxResults"
	jiraKeyFieldConstant                 = "key"

	jiraVersionsFetchedLogMessageConstant = "jira project versions fetched"
	jiraVersionCountLogFieldConstant      = "version_count"
	jiraProjectLogFieldConstant           = "project"
)

// HTTPClient abstracts HTTP execution for tracker REST backends.
type HTTPClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// JiraConfiguration carries the connection settings for a Jira backend.
type JiraConfiguration struct {
	BaseURL string
	Project string
	Token   string
}

// JiraBackend resolves release task keys through the Jira REST API.
type JiraBackend struct {
	logger        *zap.Logger
	httpClient    HTTPClient
	configuration JiraConfiguration
	reporter      shared.Reporter
}

type jiraVersion struct {
	Identifier string `json:"id"`
	Name       string `json:"name"`
}

type jiraIssue struct {
	Key string `json:"key"`
}

type jiraSearchResponse struct {
	Issues     []jiraIssue `json:"issues"`
	StartAt    int         `json:"startAt"`
	MaxResults int         `json:"maxResults"`
	Total      int         `json:"total"`
}

// NewJiraBackend validates the configuration and constructs a JiraBackend.
func NewJiraBackend(logger *zap.Logger, httpClient HTTPClient, configuration JiraConfiguration, reporter shared.Reporter) (*JiraBackend, error) {
	if logger == nil {
		return nil, errors.New(jiraLoggerRequiredMessageConstant)
	}
	if httpClient == nil {
		return nil, errors.New(jiraHTTPClientRequiredMessageConstant)
	}

	sanitizedConfiguration := JiraConfiguration{
		BaseURL: strings.TrimRight(strings.TrimSpace(configuration.BaseURL), "/"),
		Project: strings.TrimSpace(configuration.Project),
		Token:   strings.TrimSpace(configuration.Token),
	}
	if len(sanitizedConfiguration.BaseURL) == 0 {
		return nil, errors.New(jiraBaseURLRequiredMessageConstant)
	}
	if len(sanitizedConfiguration.Project) == 0 {
		return nil, errors.New(jiraProjectRequiredMessageConstant)
	}
	if len(sanitizedConfiguration.Token) == 0 {
		return nil, errors.New(jiraTokenRequiredMessageConstant)
	}

	resolvedReporter := reporter
	if resolvedReporter == nil {
		resolvedReporter = shared.NewWriterReporter(nil)
	}

	return &JiraBackend{
		logger:        logger,
		httpClient:    httpClient,
		configuration: sanitizedConfiguration,
		reporter:      resolvedReporter,
	}, nil
}

// SearchReleaseTasks resolves the fix version identifier for the release and
// returns the keys of every issue fixed in it, including subtasks.
func (backend *JiraBackend) SearchReleaseTasks(executionContext context.Context, releaseVersion string) ([]string, error) {
	versionIdentifier, versionError := backend.resolveVersionIdentifier(executionContext, releaseVersion)
	if versionError != nil {
		return nil, versionError
	}
	return backend.searchIssueKeys(executionContext, versionIdentifier)
}

func (backend *JiraBackend) resolveVersionIdentifier(executionContext context.Context, releaseVersion string) (string, error) {
	versionsEndpoint := fmt.Sprintf(
		jiraVersionsEndpointTemplateConstant,
		backend.configuration.BaseURL,
		url.PathEscape(backend.configuration.Project),
	)

	responseBody, requestError := backend.executeRequest(executionContext, versionsEndpoint)
	if requestError != nil {
		return "", requestError
	}

	var projectVersions []jiraVersion
	if decodeError := json.Unmarshal(responseBody, &projectVersions); decodeError != nil {
		return "", decodeError
	}

	backend.logger.Debug(jiraVersionsFetchedLogMessageConstant,
		zap.String(jiraProjectLogFieldConstant, backend.configuration.Project),
		zap.Int(jiraVersionCountLogFieldConstant, len(projectVersions)),
	)

	for _, projectVersion := range projectVersions {
		if projectVersion.Name == releaseVersion {
			backend.reporter.Printf(foundVersionTemplateConstant, projectVersion.Name)
			return projectVersion.Identifier, nil
		}
	}
	return "", ErrReleaseVersionNotFound
}

func (backend *JiraBackend) searchIssueKeys(executionContext context.Context, versionIdentifier string) ([]string, error) {
	searchJQL := fmt.Sprintf(
		jiraSearchJQLTemplateConstant,
		backend.configuration.Project,
		versionIdentifier,
		backend.configuration.Project,
		versionIdentifier,
	)

	issueKeys := []string{}
	startAt := 0
	for {
		queryParameters := url.Values{}
		queryParameters.Set(jiraQueryParameterJQLConstant, searchJQL)
		queryParameters.Set(jiraQueryParameterFieldsConstant, jiraKeyFieldConstant)
		queryParameters.Set(jiraQueryParameterStartAtConstant, strconv.Itoa(startAt))
		queryParameters.Set(jiraQueryParameterMaxResultsConstant, strconv.Itoa(jiraSearchPageSizeConstant))

		searchEndpoint := fmt.Sprintf(jiraSearchEndpointTemplateConstant, backend.configuration.BaseURL) +
			"?" + queryParameters.Encode()

		responseBody, requestError := backend.executeRequest(executionContext, searchEndpoint)
		if requestError != nil {
			return nil, requestError
		}

		var searchResponse jiraSearchResponse
		if decodeError := json.Unmarshal(responseBody, &searchResponse); decodeError != nil {
			return nil, decodeError
		}

		for _, issue := range searchResponse.Issues {
			issueKeys = append(issueKeys, issue.Key)
		}

		startAt += len(searchResponse.Issues)
		if len(searchResponse.Issues) == 0 || startAt >= searchResponse.Total {
			break
		}
	}
	return issueKeys, nil
}

func (backend *JiraBackend) executeRequest(executionContext context.Context, endpoint string) ([]byte, error) {
	request, requestCreationError := http.NewRequestWithContext(executionContext, http.MethodGet, endpoint, nil)
	if requestCreationError != nil {
		return nil, requestCreationError
	}
	request.Header.Set(jiraAuthorizationHeaderConstant, fmt.Sprintf(jiraBearerSchemeTemplateConstant, backend.configuration.Token))
	request.Header.Set(jiraAcceptHeaderConstant, jiraJSONContentTypeConstant)

	response, executionError := backend.httpClient.Do(request)
	if executionError != nil {
		return nil, executionError
	}
	defer func() {
		_ = response.Body.Close()
	}()

	responseBody, readError := io.ReadAll(response.Body)
	if readError != nil {
		return nil, readError
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(jiraUnexpectedStatusTemplateConstant, endpoint, response.StatusCode)
	}
	return responseBody, nil
}
