// ABOUTME: Chooses which top-level screen to show for a session
// ABOUTME: Pure function of the session snapshot and the login/register toggle

package router

import (
	"github.com/minilibrary/library/internal/client"
	"github.com/minilibrary/library/internal/session"
)

// Screen is a top-level TUI screen
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenRegister
	ScreenVerifying
	ScreenAdminDashboard
	ScreenUserDashboard
)

// String returns a short name for logging
func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "login"
	case ScreenRegister:
		return "register"
	case ScreenVerifying:
		return "verifying"
	case ScreenAdminDashboard:
		return "admin-dashboard"
	case ScreenUserDashboard:
		return "user-dashboard"
	default:
		return "unknown"
	}
}

// IsDashboard reports whether s shows the book list
func (s Screen) IsDashboard() bool {
	return s == ScreenAdminDashboard || s == ScreenUserDashboard
}

// Select returns the screen for sess. showLogin picks between the login and
// register forms while anonymous.
func Select(sess session.Session, showLogin bool) Screen {
	switch sess.State() {
	case session.StateAnonymous:
		if showLogin {
			return ScreenLogin
		}
		return ScreenRegister
	case session.StatePendingVerification:
		return ScreenVerifying
	}

	switch sess.User.Role {
	case client.RoleAdmin:
		return ScreenAdminDashboard
	case client.RoleUser:
		return ScreenUserDashboard
	default:
		return ScreenUserDashboard
	}
}
