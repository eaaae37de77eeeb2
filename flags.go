package castgrab2

import (
	"fmt"

	flags "github.com/ajholland/zflags"
)

// BaseFlags are the options every Cast module accepts, the same role
// zgrab2.BaseFlags plays for its network modules.
type BaseFlags struct {
	Port    uint   `short:"p" long:"port" description:"Cast device TLS control port" default:"8009"`
	Name    string `short:"n" long:"name" description:"Name for output JSON, only necessary when running multiple modules"`
	Timeout uint   `short:"t" long:"timeout" description:"TCP connect and TLS handshake timeout, in seconds" default:"5"`
}

func (b *BaseFlags) GetPort() uint   { return b.Port }
func (b *BaseFlags) GetName() string { return b.Name }

// ScanFlags is implemented by every module's flags struct.
type ScanFlags interface {
	Validate(args []string) error
	Help() string
}

// Module describes one registrable Cast scan module.
type Module interface {
	NewFlags() ScanFlags
	NewScanner() Scanner
}

// RootFlags carries the options that apply regardless of which module
// subcommand is active, the parser's top-level data object.
type RootFlags struct {
	Discover    bool   `long:"discover" description:"Discover devices via mDNS instead of scanning --targets"`
	Targets     string `long:"targets" description:"Comma-separated host:port list of Cast devices to scan"`
	Config      string `long:"config" description:"YAML runtime configuration file"`
	MetricsAddr string `long:"metrics" description:"Address to serve Prometheus metrics on, e.g. :9999 (disabled if empty)"`
	Senders     int    `long:"senders" description:"Number of concurrent scan workers" default:"4"`
	TestMode    bool   `long:"test-mode" description:"Use canned fixture responses instead of live network I/O"`
}

// Root is the parser's top-level flags object; module subcommands are
// registered onto Root's parser via AddCommand.
var Root RootFlags

var parser = flags.NewParser(&Root, flags.Default)

type registryEntry struct {
	module Module
	flags  ScanFlags
}

var registry = map[string]registryEntry{}

// AddCommand registers a module's flags under the given subcommand name,
// keeping the concrete flags pointer so ActiveModule can hand it back to
// the module's Scanner after parsing.
func AddCommand(name, shortDesc, longDesc string, m Module) (*flags.Command, error) {
	if _, exists := registry[name]; exists {
		return nil, fmt.Errorf("castgrab2: command %q already registered", name)
	}
	f := m.NewFlags()
	cmd, err := parser.AddCommand(name, shortDesc, longDesc, f)
	if err != nil {
		return nil, err
	}
	registry[name] = registryEntry{module: m, flags: f}
	return cmd, nil
}

// ParseFlags parses os.Args against every registered command, populating
// the active command's flags struct, and returns the remaining positional
// arguments.
func ParseFlags() ([]string, error) {
	return parser.Parse()
}

// ActiveModule returns the module and populated flags struct for whichever
// subcommand the most recent ParseFlags call selected.
func ActiveModule() (name string, scanner Scanner, scanFlags ScanFlags, ok bool) {
	active := parser.Active
	if active == nil {
		return "", nil, nil, false
	}
	entry, found := registry[active.Name]
	if !found {
		return "", nil, nil, false
	}
	if err := entry.flags.Validate(nil); err != nil {
		return "", nil, nil, false
	}
	scanner = entry.module.NewScanner()
	if err := scanner.Init(entry.flags); err != nil {
		return "", nil, nil, false
	}
	return active.Name, scanner, entry.flags, true
}
