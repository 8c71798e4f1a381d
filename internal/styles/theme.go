package styles

import "github.com/charmbracelet/lipgloss"

// Theme defines a complete color scheme for the application
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	BgSurface  lipgloss.Color
	BgElevated lipgloss.Color

	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	TextMuted     lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Border lipgloss.Color

	// Focus badges
	FocusBrowse  lipgloss.Color
	FocusCommand lipgloss.Color
	FocusChat    lipgloss.Color
}

var DarkTheme = Theme{
	Primary:   lipgloss.Color("#A5D6A7"), // bamboo
	Secondary: lipgloss.Color("#90CAF9"),
	Accent:    lipgloss.Color("#FFCC80"),

	BgSurface:  lipgloss.Color("#141419"),
	BgElevated: lipgloss.Color("#1E1E2A"),

	TextPrimary:   lipgloss.Color("#F1F5F9"),
	TextSecondary: lipgloss.Color("#94A3B8"),
	TextMuted:     lipgloss.Color("#64748B"),

	Success: lipgloss.Color("#34D399"),
	Warning: lipgloss.Color("#FBBF24"),
	Error:   lipgloss.Color("#EF9A9A"),

	Border: lipgloss.Color("#333333"),

	FocusBrowse:  lipgloss.Color("#FFCC80"),
	FocusCommand: lipgloss.Color("#81D4FA"),
	FocusChat:    lipgloss.Color("#CE93D8"),
}

var LightTheme = Theme{
	Primary:   lipgloss.Color("#2E7D32"),
	Secondary: lipgloss.Color("#1565C0"),
	Accent:    lipgloss.Color("#EF6C00"),

	BgSurface:  lipgloss.Color("#FFFFFF"),
	BgElevated: lipgloss.Color("#F4F4F5"),

	TextPrimary:   lipgloss.Color("#18181B"),
	TextSecondary: lipgloss.Color("#52525B"),
	TextMuted:     lipgloss.Color("#A1A1AA"),

	Success: lipgloss.Color("#10B981"),
	Warning: lipgloss.Color("#F59E0B"),
	Error:   lipgloss.Color("#EF4444"),

	Border: lipgloss.Color("#E4E4E7"),

	FocusBrowse:  lipgloss.Color("#EF6C00"),
	FocusCommand: lipgloss.Color("#0277BD"),
	FocusChat:    lipgloss.Color("#7B1FA2"),
}

// CurrentTheme holds the active theme (set at runtime based on terminal)
var CurrentTheme = DarkTheme

type Adaptive = lipgloss.AdaptiveColor

var (
	FgPrimary = Adaptive{Light: string(LightTheme.Primary), Dark: string(DarkTheme.Primary)}
	FgMuted   = Adaptive{Light: string(LightTheme.TextMuted), Dark: string(DarkTheme.TextMuted)}
	FgText    = Adaptive{Light: string(LightTheme.TextPrimary), Dark: string(DarkTheme.TextPrimary)}
	FgError   = Adaptive{Light: string(LightTheme.Error), Dark: string(DarkTheme.Error)}
	FgSuccess = Adaptive{Light: string(LightTheme.Success), Dark: string(DarkTheme.Success)}
	FgWarning = Adaptive{Light: string(LightTheme.Warning), Dark: string(DarkTheme.Warning)}
	Accent    = Adaptive{Light: string(LightTheme.Accent), Dark: string(DarkTheme.Accent)}
)

// ProviderColorMap colors model providers in the selector.
var ProviderColorMap = map[string]lipgloss.Color{
	"Google":   lipgloss.Color("#A78BFA"),
	"xAI":      lipgloss.Color("#F472B6"),
	"DeepSeek": lipgloss.Color("#22D3EE"),
	"Z.ai":     lipgloss.Color("#34D399"),
	"OpenAI":   lipgloss.Color("#10B981"),
}

// GetProviderColor returns the color for a provider
func GetProviderColor(provider string) lipgloss.Color {
	if c, ok := ProviderColorMap[provider]; ok {
		return c
	}
	return CurrentTheme.Primary
}

// InitTheme sets the current theme based on terminal background
func InitTheme() {
	if lipgloss.HasDarkBackground() {
		CurrentTheme = DarkTheme
	} else {
		CurrentTheme = LightTheme
	}
}
