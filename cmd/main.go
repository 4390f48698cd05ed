package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coursekit/mastery/internal/adapters/configstore"
	"github.com/coursekit/mastery/internal/adapters/gradebook"
	"github.com/coursekit/mastery/internal/adapters/prompt"
	"github.com/coursekit/mastery/internal/adapters/roster"
	service "github.com/coursekit/mastery/internal/app"
	"github.com/coursekit/mastery/internal/config"
	"github.com/coursekit/mastery/pkg/logger"
	"github.com/coursekit/mastery/pkg/metrics"
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	terminal := prompt.NewTerminal()

	// Course registry lives in the operator's home directory.
	store, err := configstore.Open()
	if err != nil {
		os.Stderr.WriteString("failed to open course registry: " + err.Error() + "\n")
		return
	}

	courseName, courseID, err := selectCourse(ctx, terminal, store)
	if err != nil {
		os.Stderr.WriteString("failed to select course: " + err.Error() + "\n")
		return
	}

	client := gradebook.New(cfg.BaseURL, cfg.APIToken, courseID,
		gradebook.WithPollInterval(time.Duration(cfg.PollIntervalMS)*time.Millisecond),
		gradebook.WithLogger(loggerInstance),
	)

	svc := service.New(
		service.WithLogger(loggerInstance),
		service.WithGradebook(client),
		service.WithSurface(terminal),
		service.WithImporter(roster.NewImporter(roster.WithTestStudentID(cfg.TestStudentID))),
		service.WithStore(store),
		service.WithCourseName(courseName),
		service.WithStrictBounds(cfg.StrictBounds),
		service.WithPartialCreditTarget(cfg.PartialCreditTarget),
		service.WithMasteryCutoff(cfg.MasteryCutoff),
		service.WithTimezone(cfg.Timezone),
	)

	if err := svc.Run(ctx); err != nil {
		loggerInstance.Error(ctx, "toolkit exited with error", logger.Error(err))
	}

	fmt.Println(metrics.Summary())
}

// selectCourse resolves the working course from the registry. A single
// registered course is used without prompting; with several the operator
// picks one. An empty registry still starts the toolkit so the course
// management workflow can seed it.
func selectCourse(ctx context.Context, terminal *prompt.Terminal, store *configstore.Store) (string, int64, error) {
	names := store.ListCourses()
	switch len(names) {
	case 0:
		_ = terminal.Warn(ctx, "No courses registered yet. Use course management to add one.")
		return "", 0, nil
	case 1:
		course, err := store.Course(names[0])
		if err != nil {
			return "", 0, err
		}
		return names[0], course.CourseID, nil
	}

	idx, err := terminal.ChooseOne(ctx, "Select course:", names)
	if err != nil {
		if errors.Is(err, prompt.ErrClosed) || errors.Is(err, context.Canceled) {
			return "", 0, nil
		}
		return "", 0, err
	}
	course, err := store.Course(names[idx])
	if err != nil {
		return "", 0, err
	}
	return names[idx], course.CourseID, nil
}
