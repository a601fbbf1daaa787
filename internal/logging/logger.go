package logging

import (
	"io"
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/2beens/blogsave/pkg"
)

type LoggerSetupParams struct {
	ServiceName   string
	Environment   string
	LogFileName   string
	LogToStdout   bool
	LogLevel      string
	LogFormatJSON bool
	SentryEnabled bool
	SentryDSN     string
	// Tags end up on every log entry and on every sentry event, e.g. the
	// store and generation backends in use.
	Tags map[string]string
}

func Setup(params LoggerSetupParams) {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	logrus.SetLevel(GetLevel(params.LogLevel))

	tags := serviceTags(params)
	logrus.AddHook(NewFieldsHook(tags))

	if params.SentryEnabled {
		if err := setupSentry(params, tags); err != nil {
			logrus.Errorf("sentry setup: %s", err)
		} else {
			logrus.Infoln("sentry set up successfully")
		}
	}

	out, desc := logOutput(params)
	logrus.SetOutput(out)
	logrus.Println(desc)
}

func serviceTags(params LoggerSetupParams) map[string]string {
	tags := make(map[string]string, len(params.Tags)+2)
	for k, v := range params.Tags {
		tags[k] = v
	}
	if params.ServiceName != "" {
		tags["service"] = params.ServiceName
	}
	if params.Environment != "" {
		tags["env"] = params.Environment
	}
	return tags
}

func setupSentry(params LoggerSetupParams, tags map[string]string) error {
	err := sentry.Init(sentry.ClientOptions{
		Environment:      params.Environment,
		Dsn:              params.SentryDSN,
		TracesSampleRate: 1.0,
		ServerName:       params.ServiceName,
	})
	if err != nil {
		return err
	}

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
	})
	logrus.AddHook(NewSentryHook([]logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
	}))

	return nil
}

// logOutput picks stdout, a rotated log file, or both.
func logOutput(params LoggerSetupParams) (io.Writer, string) {
	if params.LogFileName == "" {
		return os.Stdout, "writing logs only to STDOUT"
	}

	fileName := params.LogFileName
	if !strings.HasSuffix(fileName, ".log") {
		fileName += ".log"
	}
	rotated := &lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    50, // megabytes
		LocalTime:  false,
		Compress:   true,
		MaxBackups: 30,
	}

	if params.LogToStdout {
		return pkg.NewCombinedWriter(os.Stdout, rotated), "writing logs to " + fileName + " and STDOUT"
	}
	return rotated, "writing logs to " + fileName
}

// GetLevel parses a logrus level name, unknown names fall back to trace.
func GetLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.TraceLevel
	}
	return parsed
}
