package castgrab2

import (
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// DefaultApplicationID is the receiver application queried when none is
// specified, the standard Chromecast backdrop/media receiver — the same
// default the original PHP extension's php.ini directive carried.
const DefaultApplicationID = "02834648"

// RuntimeContext is the explicit configuration object threaded through
// discovery and session calls, in place of module globals (applicationId,
// discoveryTimeout, messageTimeout, and a process-wide test-mode flag), so
// concurrent scans of different devices never share mutable state.
type RuntimeContext struct {
	ApplicationID    string        `yaml:"application_id"`
	DiscoveryTimeout time.Duration `yaml:"discovery_timeout"`
	MessageTimeout   time.Duration `yaml:"message_timeout"`
	// TestMode substitutes canned fixture data for live network I/O
	// throughout discovery and session exchanges.
	TestMode bool `yaml:"test_mode"`
}

// NewDefaultRuntimeContext returns the built-in defaults: a 5-second
// discovery window and a 500ms per-message timeout, matching the original
// extension's compiled-in defaults.
func NewDefaultRuntimeContext() *RuntimeContext {
	return &RuntimeContext{
		ApplicationID:    DefaultApplicationID,
		DiscoveryTimeout: 5 * time.Second,
		MessageTimeout:   500 * time.Millisecond,
	}
}

// LoadRuntimeContext reads a YAML configuration file, applying it over the
// built-in defaults. The file sets the RuntimeContext fields only (one
// application id, the two timeouts, and test mode); it lists no targets.
func LoadRuntimeContext(path string) (*RuntimeContext, error) {
	rt := NewDefaultRuntimeContext()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, rt); err != nil {
		return nil, err
	}
	return rt, nil
}
