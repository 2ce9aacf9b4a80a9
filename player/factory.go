package player

import (
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/cuewatch/cue/key"
	"github.com/cuewatch/cue/where"
	"github.com/spf13/viper"
)

// BackendVLC selects the VLC remote-control driver.
const BackendVLC = "vlc"

// Options selects and tunes a driver.
type Options struct {
	Backend        string
	Executable     string
	ExtraArgs      []string
	SocketDir      string
	PollInterval   time.Duration
	CallTimeout    time.Duration
	ConnectTimeout time.Duration
	StartupTimeout time.Duration
	Resolver       string
	VLCHost        string
}

// OptionsFromConfig reads driver options from the loaded configuration.
func OptionsFromConfig() Options {
	return Options{
		Backend:        viper.GetString(key.PlayerBackend),
		Executable:     viper.GetString(key.PlayerExecutable),
		ExtraArgs:      viper.GetStringSlice(key.PlayerExtraArgs),
		SocketDir:      where.Sockets(),
		PollInterval:   time.Duration(viper.GetInt(key.PlayerPollInterval)) * time.Millisecond,
		CallTimeout:    time.Duration(viper.GetInt(key.PlayerCallTimeout)) * time.Millisecond,
		ConnectTimeout: time.Duration(viper.GetInt(key.PlayerConnectTimeout)) * time.Second,
		StartupTimeout: time.Duration(viper.GetInt(key.PlayerStartupTimeout)) * time.Second,
		Resolver:       viper.GetString(key.PlayerResolver),
		VLCHost:        viper.GetString(key.VLCHost),
	}
}

// New builds the driver for opts.Backend. It fails when the backend is
// unknown or its executable cannot be found.
func New(opts Options) (Driver, error) {
	exe, err := Executable(opts)
	if err != nil {
		return nil, err
	}
	resolver := NewResolver(opts.Resolver)

	if strings.EqualFold(opts.Backend, BackendVLC) {
		return NewVLC(VLCOptions{
			Executable:     exe,
			Host:           opts.VLCHost,
			ExtraArgs:      opts.ExtraArgs,
			CallTimeout:    opts.CallTimeout,
			ConnectTimeout: opts.ConnectTimeout,
			Resolver:       resolver,
		}), nil
	}

	flavor, err := ParseFlavor(opts.Backend)
	if err != nil {
		return nil, err
	}
	return NewMPV(MPVOptions{
		Executable:     exe,
		Flavor:         flavor,
		ExtraArgs:      opts.ExtraArgs,
		SocketDir:      opts.SocketDir,
		PollInterval:   opts.PollInterval,
		ConnectTimeout: opts.ConnectTimeout,
		StartupTimeout: opts.StartupTimeout,
		CallTimeout:    opts.CallTimeout,
		Resolver:       resolver,
	}), nil
}

// Executable resolves the binary a backend would run.
func Executable(opts Options) (string, error) {
	if strings.EqualFold(opts.Backend, BackendVLC) && opts.Executable == "" {
		return FindVLC()
	}

	name := opts.Executable
	if name == "" {
		flavor, err := ParseFlavor(opts.Backend)
		if err != nil {
			return "", err
		}
		name = flavor.DefaultExecutable()
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("player executable %q: %w", name, err)
	}
	return path, nil
}
