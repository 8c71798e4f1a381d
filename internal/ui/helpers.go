package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"marionette/internal/anim"
	"marionette/internal/catalog"
	"marionette/internal/controller"
	"marionette/internal/llm"
	"marionette/internal/models"
	"marionette/internal/styles"
)

// CycleFocus moves focus forward (delta 1) or backward (delta -1).
func CycleFocus(f Focus, delta int) Focus {
	const n = 3
	return Focus(((int(f)+delta)%n + n) % n)
}

// StepIdleDelay nudges the idle delay by whole seconds within the allowed range.
func StepIdleDelay(d time.Duration, seconds int) time.Duration {
	return anim.ClampIdleDelay(d + time.Duration(seconds)*time.Second)
}

// VisibleClips returns the first limit clips and how many were left out.
func VisibleClips(clips []models.ClipName, limit int) ([]models.ClipName, int) {
	if len(clips) <= limit {
		return clips, 0
	}
	return clips[:limit], len(clips) - limit
}

// CategoryTabs is the browser's tab row: All, then every non-empty category.
func CategoryTabs(cats catalog.Categories) []models.Category {
	return append([]models.Category{models.CategoryAll}, cats.Active()...)
}

// ClipList joins display names for notices.
func ClipList(clips []models.ClipName) string {
	names := make([]string, len(clips))
	for i, c := range clips {
		names[i] = catalog.DisplayName(c)
	}
	return strings.Join(names, " → ")
}

// OutcomeNotice describes an applied request for the status line. isErr marks
// failures.
func OutcomeNotice(out controller.Outcome) (notice string, isErr bool) {
	if out.Err != nil {
		if errors.Is(out.Err, llm.ErrNoAPIKey) {
			return "no API key configured; only keyword commands work offline", true
		}
		switch out.Source {
		case controller.SourceAssistant:
			return fmt.Sprintf("assistant unavailable: %v", out.Err), true
		default:
			return fmt.Sprintf("model suggestion failed: %v", out.Err), true
		}
	}
	if out.Applied() {
		kind := "playing"
		if len(out.Clips) > 1 {
			kind = "queue"
		}
		return fmt.Sprintf("%s (%s): %s", kind, out.Source, ClipList(out.Clips)), false
	}
	switch out.Source {
	case controller.SourceModel:
		if len(out.Proposals) > 0 {
			return fmt.Sprintf("no clip matches %s", strings.Join(out.Proposals, ", ")), false
		}
		return "no matching animation", false
	default:
		return "", false
	}
}

// QueueProgress renders "step/total" for a running queue.
func QueueProgress(st anim.State) string {
	if st.Phase != anim.PhaseQueue || len(st.Queue) == 0 {
		return ""
	}
	return fmt.Sprintf("%d/%d", st.Index+1, len(st.Queue))
}

func isNewlineShortcut(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "shift+enter", "shift+return", "ctrl+j", "alt+enter":
		return true
	default:
		return false
	}
}

func WrappedLineCount(value string, width int) int {
	if width <= 0 {
		return 1
	}
	lines := strings.Split(value, "\n")
	count := 0
	for _, line := range lines {
		w := runewidth.StringWidth(line)
		if w == 0 {
			count++
			continue
		}
		count += (w-1)/width + 1
	}
	return count
}

// TruncateRunes shortens s to max display cells, ending with an ellipsis.
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return runewidth.Truncate(s, max, "…")
}

func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = -d
	}
	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d mins ago", mins)
	}
	hrs := int(d.Hours())
	if hrs == 1 {
		return "1 hr ago"
	}
	return fmt.Sprintf("%d hrs ago", hrs)
}

func (m *Model) SyncModelViewportScroll() {
	const itemHeight = 1
	const headerHeight = 1

	var currentY int
	var lastProvider string
	for i, mdl := range models.AvailableModels {
		var itemStartY int
		if mdl.Provider != lastProvider {
			if lastProvider != "" {
				currentY++ // spacer
			}
			itemStartY = currentY
			currentY += headerHeight
			lastProvider = mdl.Provider
		} else {
			itemStartY = currentY
		}

		if i == m.SelectedModelIndex {
			if currentY+itemHeight > m.ModelViewport.YOffset+m.ModelViewport.Height {
				m.ModelViewport.SetYOffset(currentY + itemHeight - m.ModelViewport.Height)
			}
			if itemStartY < m.ModelViewport.YOffset {
				m.ModelViewport.SetYOffset(itemStartY)
			}
			break
		}
		currentY += itemHeight
	}
}

func FormatUserMessage(msg models.ChatMessage, width int, now time.Time) string {
	label := styles.UserLabelStyle.Render("YOU")
	when := styles.PanelTitleStyle.Render(RelativeTime(msg.Timestamp, now))
	body := styles.UserMsgStyle.Width(max(width-4, 10)).Render(msg.Text)
	return fmt.Sprintf("%s%s\n%s", label, when, body)
}

func FormatAIMessage(content string) string {
	label := styles.AiLabelStyle.Render("RECEPTION")
	body := styles.AiMsgStyle.Render(content)
	return fmt.Sprintf("%s\n%s", label, body)
}

// FormatActions renders the clips an assistant reply started.
func FormatActions(clips []models.ClipName) string {
	if len(clips) == 0 {
		return ""
	}
	icon := styles.ActionIconStyle.Render("→")
	return styles.ActionStyle.Render(fmt.Sprintf("%s %s", icon, ClipList(clips)))
}
