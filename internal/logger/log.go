package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	sizeLimit = 64 * 1024
	// request log type
	requestType = "request"
)

// logRecord for Request Log
type logRecord struct {
	RequestID       string
	Timestamp       int64
	Duration        int64
	HTTPStatusCode  int
	ErrorStackTrace string
	HTTPMethod      string
	RequestPath     string
	RequestQuery    string
	ResponseBody    string
	RemoteAddr      string
	Type            string `json:"type"`
}

func (record *logRecord) String() string {
	buf := bytes.NewBufferString("")
	encoder := json.NewEncoder(buf)
	encoder.SetEscapeHTML(false)
	e := encoder.Encode(record)
	if e != nil {
		GetLogger().Error("failed to encode log record", zap.Error(e))
		return "{}"
	}
	return buf.String()
}

// GinLogMiddleware writes one structured record per admin request, even when a handler panics.
func GinLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var record *logRecord
		// overwrite the gin.Context.Writer to log response body
		respLogWriter := &respLogWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = respLogWriter

		defer func() {
			GetLogger().Info("admin request", zap.String("record", logTruncate(record)))
		}()

		defer func() {
			if r := recover(); r != nil {
				record.HTTPStatusCode = http.StatusInternalServerError
				record.ErrorStackTrace = string(debug.Stack())
				// throw the panic to the later middlewares
				panic(r)
			}
		}()

		record = initLogRecord(c)
		c.Header("X-Request-ID", record.RequestID)

		c.Next()

		record.HTTPStatusCode = c.Writer.Status()
		record.Duration = time.Now().UnixNano()/1e6 - record.Timestamp
		if respLogWriter.body != nil {
			record.ResponseBody = respLogWriter.body.String()
		}
	}
}

func logTruncate(record *logRecord) string {
	logStr := record.String()
	if len(logStr) < sizeLimit {
		return logStr
	}
	// metrics scrapes are the only large bodies
	record.ResponseBody = "TRUNCATED..."
	logStr = record.String()
	if len(logStr) > sizeLimit {
		record.ErrorStackTrace = "TRUNCATED..."
		logStr = record.String()
	}
	return logStr
}

type respLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w respLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w respLogWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func initLogRecord(ctx *gin.Context) *logRecord {
	requestID := ctx.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return &logRecord{
		RequestID:    requestID,
		Timestamp:    time.Now().UnixNano() / 1e6,
		HTTPMethod:   ctx.Request.Method,
		RequestPath:  ctx.Request.URL.Path,
		RequestQuery: ctx.Request.URL.Query().Encode(),
		RemoteAddr:   ctx.ClientIP(),
		Type:         requestType,
	}
}
