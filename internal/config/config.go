// Package config turns the command line and GOFREEZE_* environment
// variables into a Config.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Command selects what gofreeze does after start-up.
type Command string

const (
	CommandTUI     Command = "tui"
	CommandSuspend Command = "suspend"
	CommandResume  Command = "resume"
	CommandThaw    Command = "thaw"
	CommandLedger  Command = "ledger"
	CommandHelp    Command = "help"
)

const defaultPortTimeout = 300 * time.Millisecond

// Usage is printed by the help command and on argument errors.
const Usage = `gofreeze: suspend and resume whole processes

Usage:
  gofreeze [filter...]          open the interactive list, optionally pre-filtered
  gofreeze suspend <pid>...     suspend every thread of each process
  gofreeze resume <pid>...      resume processes suspended earlier
  gofreeze thaw                 resume everything recorded in the ledger
  gofreeze ledger               print the suspension ledger
  gofreeze help                 show this message

Use "--" to search for a word that is also a command, e.g. gofreeze -- thaw

Environment:
  GOFREEZE_LEDGER           ledger file (default: user cache dir)
  GOFREEZE_SCAN_PORTS       1/true/yes to scan listening ports (default on)
  GOFREEZE_PORT_TIMEOUT_MS  per-process port scan timeout (default 300)
  GOFREEZE_CONFIRM          0/false/no to skip confirmation in the list
  GOFREEZE_LOG              write debug logs to this file
  GOFREEZE_LOG_LEVEL        log level (default debug)
`

// Config holds the parsed command line and environment.
type Config struct {
	// Command is the action to run.
	Command Command
	// PIDs are the targets of suspend/resume.
	PIDs []int32
	// Filter pre-fills the search box of the interactive list.
	Filter string

	// LedgerPath overrides the ledger location; empty means the default.
	LedgerPath string
	// ScanPorts enables listening-port collection for process details.
	ScanPorts bool
	// PortTimeout bounds port collection for a single process.
	PortTimeout time.Duration
	// Confirm asks before acting on a process from the list.
	Confirm bool
	// LogPath is the debug log file; empty disables logging.
	LogPath string
	// LogLevel is a zerolog level name.
	LogLevel string
}

// Load parses os.Args and the process environment.
func Load() (*Config, error) {
	cfg, err := ParseArgs(os.Args)
	if err != nil {
		return nil, err
	}
	ApplyEnv(cfg, os.Getenv)
	return cfg, nil
}

// ParseArgs parses a full argument vector, program name first.
func ParseArgs(args []string) (*Config, error) {
	cfg := &Config{Command: CommandTUI}
	if len(args) <= 1 {
		return cfg, nil
	}
	rest := args[1:]

	switch rest[0] {
	case "--":
		cfg.Filter = strings.Join(rest[1:], " ")
		return cfg, nil
	case "help", "-h", "--help":
		cfg.Command = CommandHelp
		return cfg, nil
	case string(CommandThaw), string(CommandLedger):
		if len(rest) > 1 {
			return nil, fmt.Errorf("%s takes no arguments", rest[0])
		}
		cfg.Command = Command(rest[0])
		return cfg, nil
	case string(CommandSuspend), string(CommandResume):
		cfg.Command = Command(rest[0])
		if len(rest) == 1 {
			return nil, fmt.Errorf("%s requires at least one pid", rest[0])
		}
		for _, s := range rest[1:] {
			pid, err := ParsePID(s)
			if err != nil {
				return nil, err
			}
			cfg.PIDs = append(cfg.PIDs, pid)
		}
		return cfg, nil
	}

	cfg.Filter = strings.Join(rest, " ")
	return cfg, nil
}

// ParsePID parses a decimal process id. Zero and negative values are
// rejected because signal-based platforms treat them as process groups.
func ParsePID(s string) (int32, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid pid %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid pid %q: must be greater than 0", s)
	}
	return int32(n), nil
}

// ApplyEnv fills the environment-driven fields of cfg using getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	cfg.LedgerPath = strings.TrimSpace(getenv("GOFREEZE_LEDGER"))
	cfg.ScanPorts = envBool(getenv("GOFREEZE_SCAN_PORTS"), true)
	cfg.PortTimeout = envMillis(getenv("GOFREEZE_PORT_TIMEOUT_MS"), defaultPortTimeout)
	cfg.Confirm = envBool(getenv("GOFREEZE_CONFIRM"), true)
	cfg.LogPath = strings.TrimSpace(getenv("GOFREEZE_LOG"))
	cfg.LogLevel = strings.TrimSpace(getenv("GOFREEZE_LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
}

// envBool treats an unset variable as def, 1/true/yes (any case) as true
// and every other value as false.
func envBool(v string, def bool) bool {
	if v == "" {
		return def
	}
	s := strings.ToLower(strings.TrimSpace(v))
	return s == "1" || s == "true" || s == "yes"
}

// envMillis parses a positive millisecond count, falling back to def.
func envMillis(v string, def time.Duration) time.Duration {
	if v == "" {
		return def
	}
	ms, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
