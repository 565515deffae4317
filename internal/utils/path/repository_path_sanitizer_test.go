package pathutils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/relpick/internal/utils/path"
)

func TestRepositoryPathSanitizerPreservesOrder(testInstance *testing.T) {
	testCases := []struct {
		name           string
		candidatePaths []string
		expectedPaths  []string
	}{
		{
			name:           "OrderIsUntouched",
			candidatePaths: []string{"/srv/repos/zeta", "/srv/repos/alpha", "/srv/repos/zeta/nested"},
			expectedPaths:  []string{"/srv/repos/zeta", "/srv/repos/alpha", "/srv/repos/zeta/nested"},
		},
		{
			name:           "BlanksAndWhitespaceDropped",
			candidatePaths: []string{"  /srv/repos/catalog  ", "", "   "},
			expectedPaths:  []string{"/srv/repos/catalog"},
		},
		{
			name:           "EmptyInputYieldsNil",
			candidatePaths: nil,
			expectedPaths:  nil,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			sanitizedPaths := pathutils.NewRepositoryPathSanitizer().Sanitize(testCase.candidatePaths)
			require.Equal(testInstance, testCase.expectedPaths, sanitizedPaths)
		})
	}
}

func TestHomeExpanderExpandsTilde(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "/home/release", nil
	})

	require.Equal(testInstance, "/home/release", expander.Expand("~"))
	require.Equal(testInstance, "/home/release/repos", expander.Expand("~/repos"))
	require.Equal(testInstance, "/srv/repos", expander.Expand("/srv/repos"))
}

func TestSanitizerExpandsHomeRelativePaths(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "/home/release", nil
	})
	sanitizer := pathutils.NewRepositoryPathSanitizerWithExpander(expander)

	sanitizedPaths := sanitizer.Sanitize([]string{"~/repos/catalog", "/srv/repos/billing"})
	require.Equal(testInstance, []string{"/home/release/repos/catalog", "/srv/repos/billing"}, sanitizedPaths)
}
