package tracker_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/relpick/internal/shared"
	"github.com/temirov/relpick/internal/tracker"
)

const (
	testJiraBaseURLConstant = "https://jira.example.com"
	testJiraProjectConstant = "ECOLOGY"
	testJiraTokenConstant   = "personal-token"

	jiraVersionsResponseConstant = `[{"id":"100","name":"25.7.0"},{"id":"101","name":"25.8.1"}]`
	jiraSearchPageOneConstant    = `{"issues":[{"key":"ECOLOGY-1"},{"key":"ECOLOGY-2"}],"startAt":0,"maxResults":2,"total":3}`
	jiraSearchPageTwoConstant    = `{"issues":[{"key":"ECOLOGY-3"}],"startAt":2,"maxResults":2,"total":3}`
)

type scriptedHTTPClient struct {
	responses        map[string][]string
	served           map[string]int
	recordedRequests []*http.Request
}

func (client *scriptedHTTPClient) Do(request *http.Request) (*http.Response, error) {
	client.recordedRequests = append(client.recordedRequests, request)
	if client.served == nil {
		client.served = map[string]int{}
	}

	endpointPath := request.URL.Path
	bodies := client.responses[endpointPath]
	servedCount := client.served[endpointPath]
	client.served[endpointPath] = servedCount + 1

	if servedCount >= len(bodies) {
		return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(strings.NewReader(""))}, nil
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(bodies[servedCount])),
	}, nil
}

func newJiraBackend(testInstance *testing.T, client tracker.HTTPClient, output *bytes.Buffer) *tracker.JiraBackend {
	backend, creationError := tracker.NewJiraBackend(zap.NewNop(), client, tracker.JiraConfiguration{
		BaseURL: testJiraBaseURLConstant,
		Project: testJiraProjectConstant,
		Token:   testJiraTokenConstant,
	}, shared.NewWriterReporter(output))
	require.NoError(testInstance, creationError)
	return backend
}

func TestNewJiraBackendValidatesConfiguration(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configuration tracker.JiraConfiguration
	}{
		{
			name:          "MissingBaseURL",
			configuration: tracker.JiraConfiguration{Project: testJiraProjectConstant, Token: testJiraTokenConstant},
		},
		{
			name:          "MissingProject",
			configuration: tracker.JiraConfiguration{BaseURL: testJiraBaseURLConstant, Token: testJiraTokenConstant},
		},
		{
			name:          "MissingToken",
			configuration: tracker.JiraConfiguration{BaseURL: testJiraBaseURLConstant, Project: testJiraProjectConstant},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			backend, creationError := tracker.NewJiraBackend(zap.NewNop(), &scriptedHTTPClient{}, testCase.configuration, nil)
			require.Error(testInstance, creationError)
			require.Nil(testInstance, backend)
		})
	}
}

func TestJiraSearchReleaseTasksPaginates(testInstance *testing.T) {
	client := &scriptedHTTPClient{responses: map[string][]string{
		"/rest/api/2/project/ECOLOGY/versions": {jiraVersionsResponseConstant},
		"/rest/api/2/search":                   {jiraSearchPageOneConstant, jiraSearchPageTwoConstant},
	}}
	output := &bytes.Buffer{}
	backend := newJiraBackend(testInstance, client, output)

	taskKeys, searchError := backend.SearchReleaseTasks(context.Background(), testReleaseVersionConstant)
	require.NoError(testInstance, searchError)
	require.Equal(testInstance, []string{"ECOLOGY-1", "ECOLOGY-2", "ECOLOGY-3"}, taskKeys)
	require.Contains(testInstance, output.String(), "Found version: "+testReleaseVersionConstant)

	require.Len(testInstance, client.recordedRequests, 3)
	for _, recordedRequest := range client.recordedRequests {
		require.Equal(testInstance, "Bearer "+testJiraTokenConstant, recordedRequest.Header.Get("Authorization"))
	}

	searchQuery := client.recordedRequests[1].URL.Query().Get("jql")
	require.Contains(testInstance, searchQuery, "fixVersion = 101")
	require.Contains(testInstance, searchQuery, "subtasksOf")
}

func TestJiraSearchReleaseTasksVersionNotFound(testInstance *testing.T) {
	client := &scriptedHTTPClient{responses: map[string][]string{
		"/rest/api/2/project/ECOLOGY/versions": {jiraVersionsResponseConstant},
	}}
	backend := newJiraBackend(testInstance, client, &bytes.Buffer{})

	_, searchError := backend.SearchReleaseTasks(context.Background(), "99.0.0")
	require.ErrorIs(testInstance, searchError, tracker.ErrReleaseVersionNotFound)
}

func TestJiraSearchReleaseTasksSurfacesHTTPFailures(testInstance *testing.T) {
	client := &scriptedHTTPClient{responses: map[string][]string{}}
	backend := newJiraBackend(testInstance, client, &bytes.Buffer{})

	_, searchError := backend.SearchReleaseTasks(context.Background(), testReleaseVersionConstant)
	require.Error(testInstance, searchError)
	require.Contains(testInstance, searchError.Error(), "status 404")
}
