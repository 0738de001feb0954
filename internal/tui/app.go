// Package tui is the terminal front end. Screens render manager state
// and forward user actions to manager methods; no domain logic lives
// here.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/oralable/oralable/internal/auth"
	"github.com/oralable/oralable/internal/config"
	"github.com/oralable/oralable/internal/sensor"
	"github.com/oralable/oralable/internal/subscription"
)

// Mode selects the primary screen stack. ModeNone forces the selection
// screen, so the selector effectively has three observable states.
type Mode string

const (
	ModeNone Mode = ""
	ModeLive Mode = "live"
	ModeDemo Mode = "demo"
)

type viewState string

const (
	viewModeSelect viewState = "modeSelect"
	viewSignIn     viewState = "signIn"
	viewSettings   viewState = "settings"
	viewTiers      viewState = "tiers"
	viewProfile    viewState = "profile"
	viewLogs       viewState = "logs"
	viewDebug      viewState = "debug"
)

type modalState string

const (
	modalNone            modalState = ""
	modalAuthError       modalState = "authError"
	modalUpgrade         modalState = "upgrade"
	modalSignOutProfile  modalState = "signOutProfile"
	modalSignOutSettings modalState = "signOutSettings"
	modalClearLogs       modalState = "clearLogs"
)

// Managers collects the state owners the screens observe.
type Managers struct {
	Auth         *auth.Manager
	Subscription *subscription.Manager
	Device       *sensor.Manager
}

// App ties together screens.
type App struct {
	ctx      context.Context
	cfg      config.Config
	managers Managers
	version  string

	// credential provider factory and preference writer; swapped in tests
	credentials func(email string) auth.CredentialProvider
	saveConfig  func(config.Config) error

	view  viewState
	modal modalState
	mode  Mode

	// timestamp rendering per ui config
	loc     *time.Location
	dateFmt string

	// cached snapshots, refreshed by messages
	authState auth.State
	subState  subscription.State
	devState  sensor.State

	deviceCh     <-chan sensor.State
	deviceCancel func()

	emailInput textinput.Model
	signingIn  bool

	modeCursor    int
	tierCursor    int
	logScroll     int
	status        string
	upgradeNotice string
}

// New builds the app. The device subscription is taken here so the
// first published state is never missed.
func New(ctx context.Context, cfg config.Config, m Managers, version string) *App {
	input := textinput.New()
	input.Placeholder = "you@example.com"
	input.CharLimit = 120
	input.Width = 36
	if cfg.Auth.Email != "" {
		input.SetValue(cfg.Auth.Email)
	}

	loc := time.Local
	if tz := cfg.UI.Timezone; tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	dateFmt := cfg.UI.DateFormat
	if dateFmt == "" {
		dateFmt = "02/01 15:04"
	}

	a := &App{
		ctx:      ctx,
		cfg:      cfg,
		managers: m,
		version:  version,
		credentials: func(email string) auth.CredentialProvider {
			return &auth.LocalProvider{Email: email}
		},
		saveConfig: config.Save,
		view:       viewModeSelect,
		loc:        loc,
		dateFmt:    dateFmt,
		emailInput: input,
	}
	if m.Auth != nil {
		a.authState = m.Auth.State()
	}
	if m.Subscription != nil {
		a.subState = m.Subscription.State()
	}
	if m.Device != nil {
		a.devState = m.Device.State()
		a.deviceCh, a.deviceCancel = m.Device.Subscribe(8)
	}
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.waitForDevice(), textinput.Blink)
}

// messages
type deviceMsg sensor.State

type signInDoneMsg struct{}

// waitForDevice bridges the device store subscription into the update
// loop, one message per published snapshot.
func (a *App) waitForDevice() tea.Cmd {
	if a.deviceCh == nil {
		return nil
	}
	ch := a.deviceCh
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return nil
		}
		return deviceMsg(st)
	}
}

// signInCmd runs the provider flow off the update loop and forwards the
// result, success or failure, to the auth manager untouched.
func (a *App) signInCmd(email string) tea.Cmd {
	mgr := a.managers.Auth
	provider := a.credentials(email)
	ctx := a.ctx
	return func() tea.Msg {
		res := provider.RequestCredential(ctx)
		mgr.HandleSignIn(ctx, res)
		return signInDoneMsg{}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		switch a.view {
		case viewModeSelect:
			return a.handleModeSelectKey(m)
		case viewSignIn:
			return a.handleSignInKey(m)
		case viewTiers:
			return a.handleTiersKey(m)
		case viewProfile:
			return a.handleProfileKey(m)
		case viewLogs:
			return a.handleLogsKey(m)
		case viewDebug:
			return a.handleDebugKey(m)
		default:
			return a.handleSettingsKey(m)
		}
	case deviceMsg:
		a.devState = sensor.State(m)
		return a, a.waitForDevice()
	case signInDoneMsg:
		a.signingIn = false
		a.authState = a.managers.Auth.State()
		if a.authState.Err != "" {
			a.modal = modalAuthError
			return a, nil
		}
		if a.authState.Authenticated {
			a.view = viewSettings
			a.status = "Signed in as " + a.managers.Auth.DisplayName()
			a.rememberEmail(a.authState.Email)
		}
	}
	return a, nil
}

// rememberEmail persists the signed-in email so the next launch can
// pre-fill the sign-in screen with it.
func (a *App) rememberEmail(email string) {
	if email == "" || email == a.cfg.Auth.Email {
		return
	}
	a.cfg.Auth.Email = email
	if err := a.saveConfig(a.cfg); err != nil {
		a.status += "  (could not save preferences)"
	}
}

// refreshAuth and refreshSub re-read manager snapshots after a
// synchronous action.
func (a *App) refreshAuth() { a.authState = a.managers.Auth.State() }

func (a *App) refreshSub() { a.subState = a.managers.Subscription.State() }

func (a *App) handleModeSelectKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.modeCursor > 0 {
			a.modeCursor--
		}
	case "down", "j":
		if a.modeCursor < 1 {
			a.modeCursor++
		}
	case "enter":
		if a.modeCursor == 0 {
			a.mode = ModeLive
		} else {
			a.mode = ModeDemo
		}
		a.status = ""
		if a.authState.Authenticated {
			a.view = viewSettings
		} else {
			a.view = viewSignIn
			a.emailInput.Focus()
			return a, textinput.Blink
		}
	}
	return a, nil
}

func (a *App) handleSignInKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc":
		// Back clears the caller's selected mode.
		a.mode = ModeNone
		a.view = viewModeSelect
		a.emailInput.Blur()
		return a, nil
	case "enter":
		if a.signingIn {
			return a, nil
		}
		a.signingIn = true
		a.status = "Signing in..."
		return a, a.signInCmd(strings.TrimSpace(a.emailInput.Value()))
	}
	var cmd tea.Cmd
	a.emailInput, cmd = a.emailInput.Update(m)
	return a, cmd
}

func (a *App) handleTiersKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	tiers := subscription.Tiers()
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.view = viewSettings
	case "left", "up", "h", "k":
		if a.tierCursor > 0 {
			a.tierCursor--
		}
	case "right", "down", "l", "j":
		if a.tierCursor < len(tiers)-1 {
			a.tierCursor++
		}
	case "enter":
		selected := tiers[a.tierCursor]
		if selected == a.subState.Tier {
			// current card has no action
			return a, nil
		}
		switch selected {
		case subscription.TierBasic:
			if err := a.managers.Subscription.ResetToBasic(a.ctx); err != nil {
				a.status = "error: " + err.Error()
				return a, nil
			}
			a.refreshSub()
			a.status = "Switched to " + subscription.TierBasic.DisplayName()
		case subscription.TierPaid:
			err := a.managers.Subscription.Upgrade(a.ctx, selected)
			if err == nil {
				a.refreshSub()
				a.status = "Switched to " + selected.DisplayName()
				return a, nil
			}
			a.upgradeNotice = err.Error()
			a.modal = modalUpgrade
		}
	}
	return a, nil
}

func (a *App) handleProfileKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.view = viewSettings
	case "s":
		if a.authState.Authenticated {
			a.modal = modalSignOutProfile
		}
	}
	return a, nil
}

func (a *App) handleSettingsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "c":
		if !a.devState.Connected {
			a.managers.Device.ToggleScanning(a.ctx)
		}
	case "x":
		if a.devState.Connected {
			a.managers.Device.Disconnect()
		}
	case "u":
		a.tierCursor = 0
		a.view = viewTiers
	case "p":
		a.view = viewProfile
	case "l":
		a.logScroll = 0
		a.view = viewLogs
	case "g":
		a.view = viewDebug
	case "e":
		a.managers.Device.ClearLogs()
		a.status = "Diagnostics log cleared"
	case "m":
		// force mode re-selection
		a.mode = ModeNone
		a.view = viewModeSelect
		a.status = ""
	case "o":
		if a.authState.Authenticated {
			a.modal = modalSignOutSettings
		}
	}
	return a, nil
}

func (a *App) handleLogsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.view = viewSettings
	case "up", "k":
		if a.logScroll > 0 {
			a.logScroll--
		}
	case "down", "j":
		if a.logScroll < len(a.managers.Device.Logs())-1 {
			a.logScroll++
		}
	case "c":
		a.modal = modalClearLogs
	}
	return a, nil
}

func (a *App) handleDebugKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.view = viewSettings
	}
	return a, nil
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalAuthError:
		// single acknowledgement action clears the flag
		switch m.String() {
		case "enter", "esc":
			a.modal = modalNone
			a.managers.Auth.ClearError()
			a.refreshAuth()
		}
	case modalUpgrade:
		switch m.String() {
		case "enter", "esc":
			a.modal = modalNone
		}
	case modalSignOutProfile:
		switch m.String() {
		case "y", "Y", "enter":
			a.modal = modalNone
			a.managers.Auth.SignOut(a.ctx)
			a.refreshAuth()
			a.status = "Signed out"
			// mode deliberately retained on this screen
		case "n", "N", "esc":
			a.modal = modalNone
		}
	case modalSignOutSettings:
		switch m.String() {
		case "y", "Y", "enter":
			a.modal = modalNone
			a.managers.Auth.SignOut(a.ctx)
			a.refreshAuth()
			// stricter post-condition: force mode re-selection
			a.mode = ModeNone
			a.view = viewModeSelect
			a.status = "Signed out"
		case "n", "N", "esc":
			a.modal = modalNone
		}
	case modalClearLogs:
		switch m.String() {
		case "y", "Y", "enter":
			a.modal = modalNone
			a.managers.Device.ClearLogs()
			a.logScroll = 0
			a.status = "Diagnostics log cleared"
		case "n", "N", "esc":
			a.modal = modalNone
		}
	}
	return a, nil
}

// Close releases the device subscription. Called after the program ends.
func (a *App) Close() {
	if a.deviceCancel != nil {
		a.deviceCancel()
	}
}
