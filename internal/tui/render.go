package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/oralable/oralable/internal/sensor"
	"github.com/oralable/oralable/internal/subscription"
)

// styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	sectionStyle = lipgloss.NewStyle().Bold(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
	badgeStyle   = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2).Width(32)
	cardSelStyle = cardStyle.BorderStyle(lipgloss.ThickBorder())
	modalStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

const logWindow = 14

func (a *App) View() string {
	var body string
	switch a.view {
	case viewSignIn:
		body = a.renderSignIn()
	case viewTiers:
		body = a.renderTiers()
	case viewProfile:
		body = a.renderProfile()
	case viewSettings:
		body = a.renderSettings()
	case viewLogs:
		body = a.renderLogs()
	case viewDebug:
		body = a.renderDebug()
	default:
		body = a.renderModeSelect()
	}
	if a.modal != modalNone {
		body += "\n\n" + a.renderModal()
	}
	if a.status != "" {
		body += "\n" + faintStyle.Render(a.status)
	}
	return body
}

func (a *App) renderModeSelect() string {
	title := titleStyle.Render("Oralable")
	options := []string{
		"Live sensor - connect to your Oralable PPG",
		"Demo - explore with simulated data",
	}
	out := title + "\n\nHow would you like to use the app?\n\n"
	for i, opt := range options {
		marker := "  "
		if i == a.modeCursor {
			marker = "> "
		}
		out += marker + opt + "\n"
	}
	out += "\n[enter] Choose  [q] Quit"
	return out
}

func (a *App) renderSignIn() string {
	title := titleStyle.Render("Sign In")
	out := title + "\n\n"
	out += "Sign in to keep your wear history and subscription in sync.\n\n"
	out += "Email: " + a.emailInput.View() + "\n\n"
	if a.signingIn {
		out += "Signing in...\n"
	}
	out += "[enter] Sign in  [esc] Back"
	return out
}

func (a *App) renderTiers() string {
	title := titleStyle.Render("Choose Your Plan")
	tiers := subscription.Tiers()
	cards := make([]string, 0, len(tiers))
	for i, tier := range tiers {
		cards = append(cards, a.renderTierCard(tier, i == a.tierCursor))
	}
	out := title + "\n\n"
	out += lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	out += "\n\n[←/→] Select card  [enter] Choose  [esc] Back"
	return out
}

func (a *App) renderTierCard(tier subscription.Tier, selected bool) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render(tier.DisplayName()))
	if tier == a.subState.Tier {
		b.WriteString("  " + badgeStyle.Render("CURRENT"))
	}
	b.WriteString("\n\n")
	for _, f := range tier.Features() {
		b.WriteString("• " + f + "\n")
	}
	b.WriteString("\n")
	if tier == a.subState.Tier {
		b.WriteString(faintStyle.Render("Your current plan"))
	} else {
		b.WriteString("[ Select " + tier.DisplayName() + " ]")
	}
	style := cardStyle
	if selected {
		style = cardSelStyle
	}
	return style.Render(b.String())
}

func (a *App) renderProfile() string {
	title := titleStyle.Render("Profile")

	name := "User"
	email := "Not signed in"
	if a.authState.Authenticated {
		name = a.managers.Auth.DisplayName()
		if a.authState.Email != "" {
			email = a.authState.Email
		}
	}

	out := title + "\n\n"
	out += sectionStyle.Render("Account") + "\n"
	out += fmt.Sprintf("  Name:   %s\n", name)
	out += fmt.Sprintf("  Email:  %s\n", email)
	out += "\n" + sectionStyle.Render("Device") + "\n"
	if a.devState.Connected {
		out += fmt.Sprintf("  Sensor:    %s\n", a.devState.DeviceName)
		out += fmt.Sprintf("  Firmware:  %s\n", a.devState.Data.Firmware)
		out += fmt.Sprintf("  Serial:    %s\n", sensor.FormatUUID(a.devState.Data.UUID))
		out += fmt.Sprintf("  Battery:   %d%%\n", a.devState.Data.Battery)
	} else {
		out += "  No sensor connected\n"
	}
	out += "\n" + sectionStyle.Render("App") + "\n"
	out += fmt.Sprintf("  Version:  %s\n", a.version)
	out += fmt.Sprintf("  Mode:     %s\n", modeLabel(a.mode))
	out += "\n"
	if a.authState.Authenticated {
		out += "[s] Sign out  "
	}
	out += "[esc] Back  [q] Quit"
	return out
}

func (a *App) renderSettings() string {
	title := titleStyle.Render("Settings")
	out := title + "\n\n"

	out += sectionStyle.Render("Account") + "\n"
	if a.authState.Authenticated {
		out += fmt.Sprintf("  Signed in as %s", a.managers.Auth.DisplayName())
		if a.authState.Email != "" {
			out += faintStyle.Render(" (" + a.authState.Email + ")")
		}
		out += "\n"
	} else {
		out += "  Not signed in\n"
	}

	out += "\n" + sectionStyle.Render("Subscription") + "\n"
	out += fmt.Sprintf("  %s plan  [u] Change plan\n", a.subState.Tier.DisplayName())

	out += "\n" + sectionStyle.Render("Connection") + "\n"
	if a.devState.Connected {
		out += fmt.Sprintf("  Connected to %s  Battery %d%%\n", a.devState.DeviceName, a.devState.Data.Battery)
		out += "  [x] Disconnect\n"
	} else {
		label := "Start Scanning"
		if a.devState.Scanning {
			label = "Stop Scanning"
		}
		out += "  Not connected\n"
		out += fmt.Sprintf("  [c] %s\n", label)
	}

	out += "\n" + sectionStyle.Render("Diagnostics") + "\n"
	out += fmt.Sprintf("  %d log lines  [l] View logs  [e] Clear logs\n", len(a.managers.Device.Logs()))

	out += "\n[p] Profile  [g] Debug  [m] Switch mode"
	if a.authState.Authenticated {
		out += "  [o] Sign out"
	}
	out += "  [q] Quit"
	return out
}

func (a *App) renderLogs() string {
	title := titleStyle.Render("Diagnostics Log")
	logs := a.managers.Device.Logs()
	out := title + "\n\n"
	if len(logs) == 0 {
		out += faintStyle.Render("(empty)") + "\n"
	} else {
		start := a.logScroll
		if start > len(logs)-1 {
			start = len(logs) - 1
		}
		end := start + logWindow
		if end > len(logs) {
			end = len(logs)
		}
		for _, entry := range logs[start:end] {
			out += entry.At.In(a.loc).Format(a.dateFmt) + " " + entry.Message + "\n"
		}
		out += faintStyle.Render(fmt.Sprintf("%d-%d of %d", start+1, end, len(logs))) + "\n"
	}
	out += "\n[j/k] Scroll  [c] Clear  [esc] Back"
	return out
}

func (a *App) renderDebug() string {
	title := titleStyle.Render("Debug")
	out := title + "\n\n"
	out += fmt.Sprintf("auth:         %+v\n", a.authState)
	out += fmt.Sprintf("subscription: %+v\n", a.subState)
	out += fmt.Sprintf("device:       %+v\n", a.devState)
	out += fmt.Sprintf("mode:         %q  view: %s  modal: %s\n", string(a.mode), a.view, a.modal)
	out += "\n[esc] Back"
	return out
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalAuthError:
		return modalStyle.Render(titleStyle.Render("Sign-In Failed") + "\n" + a.authState.Err + "\n\n[enter] OK")
	case modalUpgrade:
		return modalStyle.Render(titleStyle.Render("Upgrade") + "\n" + a.upgradeNotice + "\nCheck back after the next app update.\n\n[enter] OK")
	case modalSignOutProfile, modalSignOutSettings:
		return modalStyle.Render(titleStyle.Render("Sign out?") + "\nYour wear history stays on this device.\n\n[y] Sign out  [n] Cancel")
	case modalClearLogs:
		return modalStyle.Render(titleStyle.Render("Clear diagnostics log?") + "\n\n[y] Clear  [n] Cancel")
	default:
		return ""
	}
}

func modeLabel(m Mode) string {
	switch m {
	case ModeLive:
		return "Live sensor"
	case ModeDemo:
		return "Demo"
	default:
		return "Not selected"
	}
}
