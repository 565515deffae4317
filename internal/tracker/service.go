package tracker

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/relpick/internal/shared"
)

const (
	serviceLoggerRequiredMessageConstant     = "tracker service requires a logger"
	serviceBackendRequiredMessageConstant    = "tracker service requires a backend"
	serviceFileSystemRequiredMessageConstant = "tracker service requires a file system"
	releaseVersionRequiredMessageConstant    = "release version must be provided"
	taskFilePathRequiredMessageConstant      = "task file path must be provided"

	taskKeyLineTemplateConstant = "%s\n"
	taskFilePermissionsConstant = 0o644

	syncCompletedLogMessageConstant = "task file synchronized"
	taskFileLogFieldConstant        = "task_file"
	releaseLogFieldConstant         = "release"
	taskCountLogFieldConstant       = "task_count"
)

// ErrReleaseVersionNotFound indicates the tracker knows no release with the requested name.
var ErrReleaseVersionNotFound = errors.New("release version not found in tracker")

// Backend resolves the task keys fixed in a release version.
type Backend interface {
	SearchReleaseTasks(executionContext context.Context, releaseVersion string) ([]string, error)
}

// ServiceDependencies enumerates the tracker service collaborators.
type ServiceDependencies struct {
	Logger     *zap.Logger
	Backend    Backend
	FileSystem shared.FileSystem
	Reporter   shared.Reporter
}

// Service queries a tracker backend and writes the resulting task file.
type Service struct {
	logger     *zap.Logger
	backend    Backend
	fileSystem shared.FileSystem
	reporter   shared.Reporter
}

// NewService validates dependencies and constructs a tracker Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Logger == nil {
		return nil, errors.New(serviceLoggerRequiredMessageConstant)
	}
	if dependencies.Backend == nil {
		return nil, errors.New(serviceBackendRequiredMessageConstant)
	}
	if dependencies.FileSystem == nil {
		return nil, errors.New(serviceFileSystemRequiredMessageConstant)
	}
	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = shared.NewWriterReporter(nil)
	}
	return &Service{
		logger:     dependencies.Logger,
		backend:    dependencies.Backend,
		fileSystem: dependencies.FileSystem,
		reporter:   reporter,
	}, nil
}

// Sync fetches the task keys fixed in the release and rewrites the task file
// with one key per line. Each key is also echoed to the reporter.
func (service *Service) Sync(executionContext context.Context, releaseVersion string, taskFilePath string) error {
	trimmedVersion := strings.TrimSpace(releaseVersion)
	if len(trimmedVersion) == 0 {
		return errors.New(releaseVersionRequiredMessageConstant)
	}
	trimmedTaskFilePath := strings.TrimSpace(taskFilePath)
	if len(trimmedTaskFilePath) == 0 {
		return errors.New(taskFilePathRequiredMessageConstant)
	}

	taskKeys, searchError := service.backend.SearchReleaseTasks(executionContext, trimmedVersion)
	if searchError != nil {
		return searchError
	}

	fileContent := strings.Builder{}
	for _, taskKey := range taskKeys {
		service.reporter.Printf(taskKeyLineTemplateConstant, taskKey)
		fileContent.WriteString(taskKey)
		fileContent.WriteString("\n")
	}

	if writeError := service.fileSystem.WriteFile(trimmedTaskFilePath, []byte(fileContent.String()), taskFilePermissionsConstant); writeError != nil {
		return writeError
	}

	service.logger.Info(syncCompletedLogMessageConstant,
		zap.String(releaseLogFieldConstant, trimmedVersion),
		zap.String(taskFileLogFieldConstant, trimmedTaskFilePath),
		zap.Int(taskCountLogFieldConstant, len(taskKeys)),
	)
	return nil
}
