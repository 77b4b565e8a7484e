// ABOUTME: Badge widgets for quick visual status indication
// ABOUTME: Provides colored inline badges, status lines and the account role badge

package widgets

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/minilibrary/library/internal/client"
	"github.com/minilibrary/library/internal/tui/icons"
	"github.com/minilibrary/library/internal/tui/styles"
)

// StatusLevel represents the severity of a status
type StatusLevel int

const (
	StatusOK StatusLevel = iota
	StatusWarning
	StatusCritical
	StatusInfo
	StatusNeutral
)

// Badge colors
var (
	BadgeOKBg      = lipgloss.Color("#6B8E23")
	BadgeOKFg      = lipgloss.Color("#FFFFFF")
	BadgeWarnBg    = lipgloss.Color("#D2B48C")
	BadgeWarnFg    = lipgloss.Color("#000000")
	BadgeCritBg    = lipgloss.Color("#B3412A")
	BadgeCritFg    = lipgloss.Color("#FFFFFF")
	BadgeInfoBg    = lipgloss.Color("#8B5E3B")
	BadgeInfoFg    = lipgloss.Color("#FFFFFF")
	BadgeNeutralBg = lipgloss.Color("#8B7B6B")
	BadgeNeutralFg = lipgloss.Color("#FFFFFF")
)

func colors(level StatusLevel) (bg, fg lipgloss.Color) {
	switch level {
	case StatusOK:
		return BadgeOKBg, BadgeOKFg
	case StatusWarning:
		return BadgeWarnBg, BadgeWarnFg
	case StatusCritical:
		return BadgeCritBg, BadgeCritFg
	case StatusInfo:
		return BadgeInfoBg, BadgeInfoFg
	default:
		return BadgeNeutralBg, BadgeNeutralFg
	}
}

// Badge renders a colored status badge
func Badge(text string, level StatusLevel) string {
	bg, fg := colors(level)

	style := lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Padding(0, 1).
		Bold(true)

	return style.Render(text)
}

// RoleBadge renders the account role, admins highlighted
func RoleBadge(role client.Role) string {
	if role == client.RoleAdmin {
		return Badge(icons.Admin.String()+" admin", StatusInfo)
	}
	return Badge(icons.User.String()+" user", StatusNeutral)
}

// StatusIcon returns the appropriate icon for a status level
func StatusIcon(level StatusLevel) string {
	bg, _ := colors(level)
	style := lipgloss.NewStyle().Foreground(bg)

	switch level {
	case StatusOK:
		return style.Render(icons.CheckOK.String())
	case StatusWarning:
		return style.Render(icons.Warning.String())
	case StatusCritical:
		return style.Render(icons.Critical.String())
	case StatusInfo:
		return style.Render(icons.Info.String())
	default:
		return style.Render("•")
	}
}

// StatusText returns styled status text with icon
func StatusText(text string, level StatusLevel) string {
	bg, _ := colors(level)
	if level == StatusNeutral {
		bg = styles.Muted
	}
	textStyle := lipgloss.NewStyle().Foreground(bg)
	return fmt.Sprintf("%s %s", StatusIcon(level), textStyle.Render(text))
}
