// Package icon renders status symbols in the variant chosen by the user.
//
// Icons can be displayed as emoji, nerd-font glyphs or plain ASCII.
package icon

import (
	"github.com/cuewatch/cue/key"
	"github.com/spf13/viper"
)

const (
	emoji = "emoji"
	nerd  = "nerd"
	plain = "plain"
)

// AvailableVariants returns all supported icon variants.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain}
}

// Icon identifies a symbol.
type Icon int

const (
	Success Icon = iota + 1
	Fail
	Play
	Resume
	Finished
	Archived
	Recap
)

type iconDef struct {
	emoji string
	nerd  string
	plain string
}

func (d iconDef) get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	default:
		return ""
	}
}

var icons = map[Icon]iconDef{
	Success:  {emoji: "✅", nerd: "", plain: "+"},
	Fail:     {emoji: "❌", nerd: "", plain: "x"},
	Play:     {emoji: "▶️", nerd: "", plain: ">"},
	Resume:   {emoji: "⏯️", nerd: "", plain: "~"},
	Finished: {emoji: "🏁", nerd: "", plain: "*"},
	Archived: {emoji: "📦", nerd: "", plain: "#"},
	Recap:    {emoji: "📼", nerd: "", plain: "?"},
}

// Get returns the rendered string for i. Unknown icons render as empty.
func Get(i Icon) string {
	return icons[i].get()
}
