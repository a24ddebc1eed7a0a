package logger

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Logger wraps logrus logger
type Logger struct {
	*logrus.Logger
	service string
}

// NewLogger creates a JSON logger writing to stdout. The level is taken from LOG_LEVEL.
func NewLogger(serviceName string) *Logger {
	return New(serviceName, os.Getenv("LOG_LEVEL"), os.Stdout)
}

// New creates a logger with an explicit level and output.
func New(serviceName, level string, out io.Writer) *Logger {
	log := logrus.New()

	log.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	log.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return &Logger{Logger: log, service: serviceName}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return New("nop", "panic", io.Discard)
}

// Entry returns an entry carrying the service name.
func (l *Logger) Entry() *logrus.Entry {
	return l.WithField("service", l.service)
}

// WithRequestID adds request ID to logger
func (l *Logger) WithRequestID(requestID string) *logrus.Entry {
	return l.Entry().WithField("request_id", requestID)
}

// WithUserID adds user ID to logger
func (l *Logger) WithUserID(userID uint64) *logrus.Entry {
	return l.Entry().WithField("user_id", userID)
}

// WithPeriod adds the contest period to logger
func (l *Logger) WithPeriod(period string) *logrus.Entry {
	return l.Entry().WithField("period", period)
}

// UnaryServerInterceptor returns a new unary server interceptor for logging
func UnaryServerInterceptor(logger *Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		fields := logrus.Fields{
			"method":      info.FullMethod,
			"type":        "unary",
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if err != nil {
			fields["code"] = status.Code(err).String()
			fields["error"] = err.Error()
			logger.Entry().WithFields(fields).Warn("gRPC request failed")
		} else {
			logger.Entry().WithFields(fields).Debug("gRPC request completed")
		}

		return resp, err
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// HTTPMiddleware logs method, path, status and duration of every request.
func HTTPMiddleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			entry := logger.Entry().WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			if rec.status >= http.StatusInternalServerError {
				entry.Error("HTTP request failed")
				return
			}
			entry.Info("HTTP request")
		})
	}
}
