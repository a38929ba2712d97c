// Package cli holds the version, logging and configuration plumbing shared
// by the objc2dart command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/objc2dart/objc2dart/internal/errors"
	"github.com/objc2dart/objc2dart/internal/frontend"
	"github.com/objc2dart/objc2dart/internal/runtimelib"
)

// Version information
const (
	Version   = "0.3.0"
	BuildDate = "2026-10-01"
)

// CommitSHA is set at link time with -ldflags "-X".
var CommitSHA = "unknown"

// VersionInfo contains version and build information
type VersionInfo struct {
	Version    string `json:"version"`
	BuildDate  string `json:"build_date"`
	CommitSHA  string `json:"commit_sha"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
	Arch       string `json:"arch"`
	RuntimeAPI string `json:"runtime_api"`
}

// GetVersionInfo returns structured version information
func GetVersionInfo() *VersionInfo {
	return &VersionInfo{
		Version:    Version,
		BuildDate:  BuildDate,
		CommitSHA:  CommitSHA,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS,
		Arch:       runtime.GOARCH,
		RuntimeAPI: runtimelib.SupportedRange,
	}
}

// PrintVersion writes version information as text or JSON.
func PrintVersion(w io.Writer, toolName string, jsonOutput bool) error {
	info := GetVersionInfo()

	if jsonOutput {
		data, err := json.MarshalIndent(map[string]interface{}{
			"tool":         toolName,
			"version_info": info,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal version info: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	fmt.Fprintf(w, "%s v%s\n", toolName, info.Version)
	fmt.Fprintf(w, "Build Date: %s\n", info.BuildDate)
	if info.CommitSHA != "unknown" && info.CommitSHA != "" {
		fmt.Fprintf(w, "Commit: %s\n", info.CommitSHA)
	}
	fmt.Fprintf(w, "Go Version: %s\n", info.GoVersion)
	fmt.Fprintf(w, "Platform: %s/%s\n", info.Platform, info.Arch)
	_, err := fmt.Fprintf(w, "Runtime API: %s\n", info.RuntimeAPI)
	return err
}

// Logger writes leveled, timestamped lines. It is safe for concurrent use.
type Logger struct {
	Verbose   bool
	DebugMode bool

	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

// NewLogger creates a logger writing to stderr.
func NewLogger(verbose, debug bool) *Logger {
	return NewLoggerTo(os.Stderr, verbose, debug)
}

// NewLoggerTo creates a logger writing to w.
func NewLoggerTo(w io.Writer, verbose, debug bool) *Logger {
	return &Logger{Verbose: verbose, DebugMode: debug, out: w, now: time.Now}
}

func (l *Logger) log(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "[%s] %s: %s\n", level, l.now().Format("15:04:05"), fmt.Sprintf(format, args...))
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.Verbose || l.DebugMode {
		l.log("INFO", format, args...)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.DebugMode {
		l.log("DEBUG", format, args...)
	}
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log("WARN", format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log("ERROR", format, args...)
}

// Config is the generator configuration. Command-line flags override the
// values loaded from a file.
type Config struct {
	Verbose         bool   `json:"verbose"`
	Debug           bool   `json:"debug"`
	OutputDir       string `json:"output_dir"`
	RuntimePackage  string `json:"runtime_package"`
	RuntimeVersion  string `json:"runtime_version"`
	Jobs            int    `json:"jobs"`
	PassThroughType string `json:"pass_through_type"`
	VaListRecord    string `json:"va_list_record"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		RuntimePackage:  runtimelib.DefaultPackage,
		RuntimeVersion:  runtimelib.APIVersion,
		Jobs:            runtime.GOMAXPROCS(0),
		PassThroughType: frontend.DefaultPassThrough,
		VaListRecord:    frontend.DefaultVarArgList,
	}
}

// LoadConfig loads configuration from file. Fields the file omits keep
// their defaults, and a missing file yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, errors.IO("read", configPath, err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Config(configPath, fmt.Sprintf("failed to parse config file: %v", err))
	}

	return config, nil
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.IO("write", configPath, err)
	}

	return nil
}

// Validate checks the configuration before any unit is translated.
func (c *Config) Validate() error {
	if err := runtimelib.ValidatePackage(c.RuntimePackage); err != nil {
		return err
	}
	if err := runtimelib.CheckCompatible(c.RuntimeVersion); err != nil {
		return err
	}
	if c.Jobs < 1 {
		return errors.Config("jobs", fmt.Sprintf("must be at least 1, got %d", c.Jobs))
	}
	if c.PassThroughType == "" {
		return errors.Config("pass_through_type", "must not be empty")
	}
	if c.VaListRecord == "" {
		return errors.Config("va_list_record", "must not be empty")
	}
	return nil
}

// FrontendOptions returns the marker names the front end recognises.
func (c *Config) FrontendOptions() frontend.Options {
	return frontend.Options{PassThrough: c.PassThroughType, VarArgList: c.VaListRecord}
}
