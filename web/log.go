package web

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	timeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	hostStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	requestStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	agentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("9"))
)

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.status == 0 {
		sr.status = code
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	return sr.ResponseWriter.Write(b)
}

// Flush implements http.Flusher when the underlying writer does.
func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// code returns the recorded status, which is 200 if the handler wrote nothing.
func (sr *statusRecorder) code() int {
	if sr.status == 0 {
		return http.StatusOK
	}
	return sr.status
}

// LogHandler writes a colored line per request to out with the time, host,
// status, method, URL, and user agent.
func LogHandler(h http.Handler, out io.Writer) http.Handler {
	var mu sync.Mutex
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr := &statusRecorder{ResponseWriter: w}
		h.ServeHTTP(sr, r)

		now := time.Now()
		code := sr.code()
		status := okStyle
		if code >= http.StatusBadRequest {
			status = errorStyle
		}
		line := fmt.Sprintf("[%s][%s] %s %s %s\n%s\n",
			timeStyle.Render(now.Format(time.TimeOnly)),
			timeStyle.Render(now.Format(time.DateOnly)),
			hostStyle.Render(r.Host),
			status.Render(strconv.Itoa(code)),
			requestStyle.Render(r.Method+" "+r.URL.RequestURI()),
			agentStyle.Render(r.UserAgent()),
		)
		mu.Lock()
		defer mu.Unlock()
		_, _ = io.WriteString(out, line)
	})
}
