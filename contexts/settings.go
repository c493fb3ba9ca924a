package contexts

import (
	"math"
	"os"
	"runtime"
	"strconv"
	"sync"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/fusedb/fusedb/common"
)

const (
	DefaultMaxBlockSize = 10000
	// MaxSettingValue bounds every numeric setting so it converts to int on
	// any platform.
	MaxSettingValue = math.MaxInt32
)

// SettingsValues is the plain, copyable form of Settings as it appears in a
// configuration file.
type SettingsValues struct {
	// MaxThreads bounds the number of parallel lanes a pipeline fans out to.
	// Zero disables fan-out.
	MaxThreads uint64 `yaml:"max_threads"`
	// MaxBlockSize is the maximum number of rows per batch read from a table.
	MaxBlockSize uint64 `yaml:"max_block_size"`
}

func DefaultSettingsValues() SettingsValues {
	return SettingsValues{
		MaxThreads:   uint64(runtime.NumCPU()),
		MaxBlockSize: DefaultMaxBlockSize,
	}
}

// Settings holds the tunables of a session. A Settings may be read from many
// lanes while a SET statement changes it.
type Settings struct {
	mu     sync.RWMutex
	values SettingsValues
}

func NewSettings() *Settings {
	return &Settings{values: DefaultSettingsValues()}
}

// ParseSettings reads YAML settings; absent keys keep their defaults.
func ParseSettings(data []byte) (*Settings, error) {
	values := DefaultSettingsValues()
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrap(common.NewError(common.InvalidSetting, "%v", err), "parse settings")
	}
	if err := values.validate(); err != nil {
		return nil, err
	}
	return &Settings{values: values}, nil
}

func (v SettingsValues) validate() error {
	if v.MaxThreads > MaxSettingValue {
		return common.NewError(common.InvalidSetting, "max_threads %d exceeds %d", v.MaxThreads, MaxSettingValue)
	}
	if v.MaxBlockSize == 0 {
		return common.NewError(common.InvalidSetting, "max_block_size must be positive")
	}
	if v.MaxBlockSize > MaxSettingValue {
		return common.NewError(common.InvalidSetting, "max_block_size %d exceeds %d", v.MaxBlockSize, MaxSettingValue)
	}
	return nil
}

// LoadSettings reads YAML settings from a file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read settings %s", path)
	}
	return ParseSettings(data)
}

func (s *Settings) MaxThreads() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.MaxThreads
}

func (s *Settings) MaxBlockSize() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.MaxBlockSize
}

// Values returns a snapshot of all settings.
func (s *Settings) Values() SettingsValues {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values
}

// Set assigns a setting by its configuration name.
func (s *Settings) Set(name, value string) error {
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return common.NewError(common.InvalidSetting, "value '%s' for %s is not an unsigned integer", value, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	values := s.values
	switch name {
	case "max_threads":
		values.MaxThreads = n
	case "max_block_size":
		values.MaxBlockSize = n
	default:
		return common.NewError(common.InvalidSetting, "unknown setting '%s'", name)
	}
	if err := values.validate(); err != nil {
		return err
	}
	s.values = values
	return nil
}

// Marshal renders the settings as YAML.
func (s *Settings) Marshal() ([]byte, error) {
	return yaml.Marshal(s.Values())
}
