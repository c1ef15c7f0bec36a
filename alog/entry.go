package alog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/grpc/metadata"
)

// LoggingEnvironment selects the output format.
type LoggingEnvironment string

const (
	// EnvironmentLocal writes colourised plain text for terminals.
	EnvironmentLocal LoggingEnvironment = "LOCAL"
	// EnvironmentGoogle writes one JSON LogEntry per line for Google Cloud Logging.
	EnvironmentGoogle LoggingEnvironment = "GOOGLE"
)

const traceHeader = "x-cloud-trace-context"

// localPrefixes holds the label and ANSI colour written before LOCAL entries.
var localPrefixes = map[LogLevel]struct {
	label string
	color int
}{
	LevelDebug:    {"DBG:", 90},
	LevelInfo:     {"INFO:", 32},
	LevelNotice:   {"NOTICE:", 34},
	LevelWarning:  {"WARNING:", 33},
	LevelError:    {"ERROR:", 31},
	LevelCritical: {"CRITICAL:", 41},
}

type sourceLocation struct {
	File     string `json:"file,omitempty"`
	Line     string `json:"line,omitempty"`
	Function string `json:"function,omitempty"`
}

// entry is the subset of
// https://cloud.google.com/logging/docs/reference/v2/rest/v2/LogEntry
// that Cloud Logging lifts out of structured stdout/stderr lines.
type entry struct {
	Message        string          `json:"message"`
	Severity       string          `json:"severity"`
	Trace          string          `json:"logging.googleapis.com/trace,omitempty"`
	SourceLocation *sourceLocation `json:"logging.googleapis.com/sourceLocation,omitempty"`
}

func newEntry(ctx context.Context, level LogLevel, msg, project string) entry {
	return entry{Message: msg, Severity: level.String(), Trace: traceName(ctx, project)}
}

func (e entry) render(env LoggingEnvironment, level LogLevel) string {
	if env == EnvironmentLocal {
		p, ok := localPrefixes[level]
		if !ok {
			p = localPrefixes[LevelInfo]
		}
		return fmt.Sprintf("\x1b[%dm%-10s\x1b[0m %s", p.color, p.label, e.Message)
	}
	out, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf(`{"message":%q,"severity":"ERROR"}`, "json.Marshal: "+err.Error())
	}
	return string(out)
}

// traceName builds the Cloud Trace resource name from the incoming gRPC metadata, or returns "".
func traceName(ctx context.Context, project string) string {
	if ctx == nil {
		return ""
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(traceHeader)
	if len(values) == 0 {
		return ""
	}
	traceID, _, _ := strings.Cut(values[0], "/")
	if traceID == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/traces/%s", project, traceID)
}
