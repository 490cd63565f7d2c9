package tetra

/*------------------------------------------------------------------
 *
 * Purpose:	Receiver configuration.
 *
 * Description:	The frame structure constants are protocol defined but
 *		kept configurable: training sequences, where they sit in a
 *		burst, how many bit errors still count as a match and how
 *		many missed bursts are tolerated once locked.
 *
 *		Everything has a default.  A YAML file only needs the
 *		values it changes:
 *
 *			acquire_threshold: 3
 *			miss_budget: 2
 *			training:
 *			  - name: y
 *			    burst: sync
 *			    offset: 214
 *			    pattern: "11000001100111001110100111000001100111"
 *			    acquire: true
 *
 *		Replacing "training" replaces the whole list.
 *
 *------------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Size of the bit ingest window.
	BufferBits int `yaml:"buffer_bits"`

	// Distance between successive burst starts.
	FrameBits int `yaml:"frame_bits"`

	// Largest Hamming distance between received and expected training
	// bits still accepted as a match.
	AcquireThreshold int `yaml:"acquire_threshold"`

	// Consecutive failed checks tolerated while locked.  One more drops lock.
	MissBudget int `yaml:"miss_budget"`

	// Timeslots without traffic or assignment after which a voice
	// channel is forgotten.  Zero keeps channels until released.
	VoiceChannelTimeout int `yaml:"voice_channel_timeout"`

	Training []TrainingSequence `yaml:"training"`
}

func DefaultConfig() Config {
	return Config{
		BufferBits:          4096,
		FrameBits:           BitsPerSlot,
		AcquireThreshold:    0,
		MissBudget:          1,
		VoiceChannelTimeout: SlotsPerHyperframe,
		Training:            DefaultTrainingSequences(),
	}
}

// ParseConfig reads YAML over the defaults and validates the result.
func ParseConfig(data []byte) (Config, error) {
	var cfg = DefaultConfig()

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

var configSearchLocations = []string{
	"tetra-rx.yaml",
	"$HOME/.config/tetra-rx.yaml",
	"/etc/tetra-rx.yaml",
}

/*------------------------------------------------------------------
 *
 * Function:	LoadConfig
 *
 * Purpose:	Read the configuration file.
 *
 * Inputs:	path	- File name.  Empty means try the usual
 *			  locations and use defaults if none exist.
 *
 * Returns:	The configuration and the file it came from, "" for defaults.
 *
 *------------------------------------------------------------------*/

func LoadConfig(path string) (Config, string, error) {
	var candidates = []string{path}
	if path == "" {
		candidates = nil
		for _, location := range configSearchLocations {
			candidates = append(candidates, filepath.Clean(os.ExpandEnv(location)))
		}
	}

	for _, candidate := range candidates {
		var data, err = os.ReadFile(candidate) //nolint:gosec
		if err != nil {
			if path == "" && errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return Config{}, "", fmt.Errorf("reading config: %w", err)
		}

		var cfg, parseErr = ParseConfig(data)
		if parseErr != nil {
			return Config{}, "", fmt.Errorf("%s: %w", candidate, parseErr)
		}

		return cfg, candidate, nil
	}

	return DefaultConfig(), "", nil
}

func (c *Config) Validate() error {
	if c.FrameBits <= 0 {
		return fmt.Errorf("%w: frame_bits must be positive, got %d", ErrInvalidConfig, c.FrameBits)
	}

	if c.AcquireThreshold < 0 {
		return fmt.Errorf("%w: acquire_threshold must not be negative, got %d", ErrInvalidConfig, c.AcquireThreshold)
	}

	if c.MissBudget < 0 {
		return fmt.Errorf("%w: miss_budget must not be negative, got %d", ErrInvalidConfig, c.MissBudget)
	}

	if c.VoiceChannelTimeout < 0 {
		return fmt.Errorf("%w: voice_channel_timeout must not be negative, got %d", ErrInvalidConfig, c.VoiceChannelTimeout)
	}

	if len(c.Training) == 0 {
		return fmt.Errorf("%w: no training sequences", ErrInvalidConfig)
	}

	var acquire = 0
	var span = 0
	for i := range c.Training {
		var ts = &c.Training[i]

		if _, err := ts.Bits(); err != nil {
			return err
		}

		if ts.Offset < 0 || ts.Span() > c.FrameBits {
			return fmt.Errorf("%w: training sequence %q does not fit in a %d bit frame", ErrInvalidConfig, ts.Name, c.FrameBits)
		}

		if c.AcquireThreshold >= len(ts.Pattern) {
			return fmt.Errorf("%w: acquire_threshold %d would match anything against %q", ErrInvalidConfig, c.AcquireThreshold, ts.Name)
		}

		if ts.Acquire {
			acquire++
		}

		span = max(span, ts.Span())
	}

	if acquire == 0 {
		return fmt.Errorf("%w: no training sequence marked for acquisition", ErrInvalidConfig)
	}

	// Room for a confirmed frame waiting to complete plus the check of the next one.
	if c.BufferBits < 2*c.FrameBits+span {
		return fmt.Errorf("%w: buffer_bits %d too small, need at least %d", ErrInvalidConfig, c.BufferBits, 2*c.FrameBits+span)
	}

	return nil
}
