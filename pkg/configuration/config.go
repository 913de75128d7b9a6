// Package configuration holds interpreter-wide tunables: default screen
// mode, loop/stack depth caps, cooperative-execution chunk size, and
// logging settings. It reads an INI-style settings file, then lets
// environment variables (optionally loaded from a .env file) override
// individual keys.
package configuration

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds parsed settings, grouped into sections.
type Config struct {
	settings map[string]map[string]string
	filePath string
	mu       sync.RWMutex
}

var (
	globalConfig *Config
	once         sync.Once
)

// Initialize loads the global configuration exactly once: the base
// settings file, an optional settings.local.cfg override, and finally
// a .env overlay (via godotenv) so individual keys can be tweaked without
// touching the settings file at all.
func Initialize(configPath string) error {
	var err error
	once.Do(func() {
		globalConfig, err = loadConfig(configPath)
		if err != nil {
			return
		}
		localConfigPath := "settings.local.cfg"
		if _, statErr := os.Stat(localConfigPath); statErr == nil {
			_ = globalConfig.loadLocalConfig(localConfigPath)
		}
		globalConfig.applyEnvOverlay()
	})
	return err
}

func loadConfig(filePath string) (*Config, error) {
	config := &Config{
		settings: make(map[string]map[string]string),
		filePath: filePath,
	}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		config.createDefaultConfig()
		if err := config.saveToFile(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %v", err)
		}
		return config, nil
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if err := config.readINI(file); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) loadLocalConfig(filePath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()
	return c.readINI(file)
}

// readINI parses `[section]` / `key = value` lines into c.settings.
// Assumes c.mu is held by the caller when called outside loadConfig.
func (c *Config) readINI(file *os.File) error {
	scanner := bufio.NewScanner(file)
	currentSection := ""

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = line[1 : len(line)-1]
			if c.settings[currentSection] == nil {
				c.settings[currentSection] = make(map[string]string)
			}
			continue
		}
		if strings.Contains(line, "=") && currentSection != "" {
			parts := strings.SplitN(line, "=", 2)
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			c.settings[currentSection][key] = value
		}
	}
	return scanner.Err()
}

// applyEnvOverlay loads a .env file if present (silently ignored when
// absent) and then lets any RETROBASIC_<SECTION>_<KEY> environment
// variable override the matching settings key.
func (c *Config) applyEnvOverlay() {
	_ = godotenv.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	for section, keys := range c.settings {
		for key := range keys {
			envName := "RETROBASIC_" + strings.ToUpper(section) + "_" + strings.ToUpper(key)
			if v, ok := os.LookupEnv(envName); ok {
				c.settings[section][key] = v
			}
		}
	}
}

// createDefaultConfig seeds the interpreter defaults.
func (c *Config) createDefaultConfig() {
	c.settings["Interpreter"] = map[string]string{
		"default_screen_mode":   "0",
		"max_gosub_depth":       "100",
		"max_for_loop_depth":    "200",
		"chunk_statement_limit": "5000",
		"yield_statement_count": "2000",
		"term_cols":             "80",
		"term_rows":             "24",
	}
	c.settings["Debug"] = map[string]string{
		"enable_debug_logging": "false",
		"log_level":            "INFO",
		"log_file":             "retrobasic.log",
		"max_log_size_mb":      "10",
		"log_rotation_count":   "3",
		"log_interp":           "false",
		"log_graphics":         "false",
		"log_files":            "false",
		"log_config":           "false",
		"log_general":          "true",
	}
}

func (c *Config) saveToFile() error {
	dir := filepath.Dir(c.filePath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	file, err := os.Create(c.filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	file.WriteString("; retrobasic configuration file\n")
	file.WriteString("; generated automatically - modify with care\n;\n\n")

	sections := []string{"Interpreter", "Debug"}
	for _, section := range sections {
		if settings, exists := c.settings[section]; exists {
			file.WriteString(fmt.Sprintf("[%s]\n", section))
			for key, value := range settings {
				file.WriteString(fmt.Sprintf("%s = %s\n", key, value))
			}
			file.WriteString("\n")
		}
	}
	return nil
}

// GetString returns a string setting, or defaultValue if unset.
func GetString(section, key, defaultValue string) string {
	if globalConfig == nil {
		return defaultValue
	}
	globalConfig.mu.RLock()
	defer globalConfig.mu.RUnlock()

	if sectionMap, exists := globalConfig.settings[section]; exists {
		if value, exists := sectionMap[key]; exists {
			return value
		}
	}
	return defaultValue
}

// GetInt returns an integer setting, or defaultValue if unset/unparsable.
func GetInt(section, key string, defaultValue int) int {
	str := GetString(section, key, "")
	if str == "" {
		return defaultValue
	}
	if value, err := strconv.Atoi(str); err == nil {
		return value
	}
	return defaultValue
}

// GetFloat returns a float setting, or defaultValue if unset/unparsable.
func GetFloat(section, key string, defaultValue float64) float64 {
	str := GetString(section, key, "")
	if str == "" {
		return defaultValue
	}
	if value, err := strconv.ParseFloat(str, 64); err == nil {
		return value
	}
	return defaultValue
}

// GetBool returns a boolean setting, or defaultValue if unset/unparsable.
func GetBool(section, key string, defaultValue bool) bool {
	str := GetString(section, key, "")
	if str == "" {
		return defaultValue
	}
	if value, err := strconv.ParseBool(str); err == nil {
		return value
	}
	return defaultValue
}

// GetDuration returns a duration setting, or defaultValue if unset/unparsable.
func GetDuration(section, key string, defaultValue time.Duration) time.Duration {
	str := GetString(section, key, "")
	if str == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(str); err == nil {
		return value
	}
	return defaultValue
}

// SetString overrides a setting at runtime (not persisted until Save).
func SetString(section, key, value string) {
	if globalConfig == nil {
		return
	}
	globalConfig.mu.Lock()
	defer globalConfig.mu.Unlock()

	if globalConfig.settings[section] == nil {
		globalConfig.settings[section] = make(map[string]string)
	}
	globalConfig.settings[section][key] = value
}

// Save writes the current configuration back to its file.
func Save() error {
	if globalConfig == nil {
		return fmt.Errorf("configuration not initialized")
	}
	globalConfig.mu.RLock()
	defer globalConfig.mu.RUnlock()
	return globalConfig.saveToFile()
}
