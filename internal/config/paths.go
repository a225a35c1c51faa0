package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved, absolute locations the application reads from and writes to.
type Paths struct {
	ExecutableDir string
	WorkingDir    string
	DataDir       string
	LogsDir       string
}

// GetPaths resolves the configured data and log directories. Relative paths are tried
// against the working directory first and then against the executable directory, so the
// binary works both from a checkout and from a dist/ folder.
func GetPaths(cfg *Config) (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	// Resolve symlinks to get the actual executable location
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	p := &Paths{
		ExecutableDir: filepath.Dir(exe),
		WorkingDir:    wd,
	}
	p.DataDir = p.resolve(cfg.Data.Dir)
	p.LogsDir = p.resolve(filepath.Dir(cfg.Logging.FilePath))

	return p, nil
}

// resolve returns an absolute path for dir, preferring an existing directory
func (p *Paths) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}

	candidates := []string{
		filepath.Join(p.WorkingDir, dir),
		filepath.Join(p.ExecutableDir, dir),
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}

	return candidates[0]
}

// EnsureLogsDir creates the log directory if it doesn't exist. The data directory is
// never created: a missing data folder is a configuration error.
func (p *Paths) EnsureLogsDir() error {
	if err := os.MkdirAll(p.LogsDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p.LogsDir, err)
	}
	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs path resolution information for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("working", p.WorkingDir),
			slog.String("data", p.DataDir),
			slog.String("logs", p.LogsDir),
		))
}
