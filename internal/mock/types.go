package mock

import (
	"fmt"
	"time"

	"github.com/studiowebux/taxdesk/internal/types"
)

// Config represents the mock backend configuration
type Config struct {
	Port        int               `json:"port" yaml:"port"`               // Server port (default: 3000, 0 picks a free port)
	Host        string            `json:"host" yaml:"host"`               // Server host (default: localhost)
	Logging     bool              `json:"logging" yaml:"logging"`         // Keep a request log
	Delay       int               `json:"delay" yaml:"delay"`             // Response delay in milliseconds
	FailUpdates bool              `json:"failUpdates" yaml:"failUpdates"` // Answer every PUT with 500
	Taxes       []types.TaxRecord `json:"taxes" yaml:"taxes"`             // Seed records
	Countries   []types.Country   `json:"countries" yaml:"countries"`     // Country reference list
}

// RequestLog represents a logged request
type RequestLog struct {
	Timestamp time.Time     `json:"timestamp"`
	Method    string        `json:"method"`
	Path      string        `json:"path"`
	Route     string        `json:"route"`
	Body      string        `json:"body"`
	Status    int           `json:"status"`
	Duration  time.Duration `json:"duration"`
}

// String formats the entry as a single log line
func (l RequestLog) String() string {
	line := fmt.Sprintf("%s %s %s %d %s", l.Timestamp.Format("15:04:05"), l.Method, l.Path, l.Status, l.Duration.Round(time.Millisecond))
	if l.Body != "" {
		line += " " + l.Body
	}
	return line
}
