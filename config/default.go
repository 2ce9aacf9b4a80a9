package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/cuewatch/cue/color"
	"github.com/cuewatch/cue/constant"
	"github.com/cuewatch/cue/key"
	"github.com/cuewatch/cue/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Cue + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON includes the current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.TypeName(),
	})
}

// TypeName returns the name of the field's value type.
func (f *Field) TypeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Parse converts raw CLI values into the field's type.
func (f *Field) Parse(values []string) (any, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("no value given for %s", f.Key)
	}

	switch f.Value.(type) {
	case string:
		return values[0], nil
	case int:
		n, err := strconv.Atoi(values[0])
		if err != nil {
			return nil, fmt.Errorf("invalid integer value: %s", values[0])
		}
		return n, nil
	case bool:
		b, err := strconv.ParseBool(values[0])
		if err != nil {
			return nil, fmt.Errorf("invalid boolean value: %s", values[0])
		}
		return b, nil
	case []string:
		return values, nil
	default:
		return nil, fmt.Errorf("unsupported type for %s", f.Key)
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.PlayerBackend, "mpv", "Player backend.\nAvailable options are: mpv, celluloid, iina, vlc")
	register(key.PlayerExecutable, "", "Player executable.\nEmpty means the backend default (mpv, celluloid, iina-cli, vlc)")
	register(key.PlayerExtraArgs, []string{}, "Extra arguments passed to the player before cue's own flags")
	register(key.PlayerPollInterval, 250, "Milliseconds between playback polls (250 to 500)")
	register(key.PlayerCallTimeout, 2000, "Milliseconds to wait for a single control channel reply (1000 to 2000)")
	register(key.PlayerConnectTimeout, 15, "Seconds to wait for the player control channel to appear")
	register(key.PlayerStartupTimeout, 15, "Seconds allowed for the startup sequence before playback is force-resumed")
	register(key.PlayerResolver, "contains", "How reported files are matched to the playlist.\nAvailable options are: contains, fuzzy")
	register(key.VLCHost, "127.0.0.1", "Host the VLC remote control interface binds to")
	register(key.PlaybackMinWatchSeconds, 5, "Sessions shorter than this many seconds are not recorded as watch events")
	register(key.PlaybackMergeWindowMinute, 5, "Watch events of the same session closer than this many minutes are merged")
	register(key.PlaybackRecapDays, 7, "Days since the last watch after which a recap is suggested")
	register(key.LibraryExtensions, []string{".mkv", ".mp4", ".avi", ".mov", ".webm"}, "File extensions treated as episodes of a series")
	register(key.StoreBackend, "sqlite", "Where watch data is kept.\nAvailable options are: sqlite, json")
	register(key.StatsMostWatchedLimit, 10, "Number of titles shown in the most watched list")
	register(key.StatsHistoryLimit, 50, "Number of entries shown in the watch history")
	register(key.StatsStreakDays, 365, "Days covered by the streak calendar")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, nerd, plain")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
