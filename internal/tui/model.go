// Package tui is the terminal front end of the booking flow. Each
// screen renders the session's draft; keys become flow events.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yegors/skyglyde/internal/booking"
	"github.com/yegors/skyglyde/internal/catalog"
	"github.com/yegors/skyglyde/internal/groundcontrol"
	"github.com/yegors/skyglyde/internal/receipt"
	"github.com/yegors/skyglyde/internal/session"
	"github.com/yegors/skyglyde/internal/telemetry"
	"github.com/yegors/skyglyde/pkg/logger"
)

// Panel is an overlay on the in-flight dashboard
type Panel int

const (
	PanelNone Panel = iota
	// PanelEmergency shows the Ground Control number and the chat entry.
	PanelEmergency
	// PanelChat routes keystrokes to the question input.
	PanelChat
)

const maxPassengers = 20

// telemetryMsg carries one frame from the subscription it came from,
// so frames of an earlier flight are dropped.
type telemetryMsg struct {
	frames <-chan telemetry.Telemetry
	frame  telemetry.Telemetry
}

// telemetryClosedMsg is sent when the flight's stream ends
type telemetryClosedMsg struct {
	frames <-chan telemetry.Telemetry
}

// groundControlReplyMsg is sent when an asynchronous question returns
type groundControlReplyMsg struct {
	reply groundcontrol.Reply
	err   error
}

// receiptSavedMsg is sent once the receipt PDF has been written
type receiptSavedMsg struct {
	path string
	err  error
}

// Options configure a Model
type Options struct {
	Session       *session.Session
	GroundControl *groundcontrol.Service
	// ReceiptDir receives a PDF receipt per confirmed booking. Empty
	// disables receipts.
	ReceiptDir string
	Keys       *KeyMap
	Theme      *Theme
	Logger     *logger.Logger
}

// Model is the bubbletea model of the booking flow
type Model struct {
	session       *session.Session
	groundControl *groundcontrol.Service
	receiptDir    string
	keys          KeyMap
	styles        styles
	logger        *logger.Logger

	width    int
	snapshot session.Snapshot

	destination textinput.Model
	question    textinput.Model
	cursor      int
	passengers  int
	accepted    bool
	notice      string

	panel    Panel
	chat     []groundcontrol.Message
	awaiting bool

	frames      <-chan telemetry.Telemetry
	unsubscribe func()
	frame       *telemetry.Telemetry
	receipt     string
}

// NewModel creates the TUI for a fresh session
func NewModel(opts Options) Model {
	keys := DefaultKeyMap
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	theme := DefaultTheme
	if opts.Theme != nil {
		theme = *opts.Theme
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	destination := textinput.New()
	destination.Placeholder = "Enter destination..."
	destination.CharLimit = 120
	destination.Focus()

	question := textinput.New()
	question.Placeholder = "Ask Ground Control..."
	question.CharLimit = 500

	return Model{
		session:       opts.Session,
		groundControl: opts.GroundControl,
		receiptDir:    opts.ReceiptDir,
		keys:          keys,
		styles:        newStyles(theme),
		logger:        opts.Logger.Named("tui"),
		width:         80,
		snapshot:      opts.Session.Snapshot(),
		destination:   destination,
		question:      question,
		cursor:        -1,
		passengers:    1,
	}
}

// Init implements tea.Model
func (model Model) Init() tea.Cmd {
	return textinput.Blink
}

// Screen returns the screen being shown
func (model Model) Screen() booking.Screen { return model.snapshot.Screen }

// Notice returns the message shown under the current screen, if any
func (model Model) Notice() string { return model.notice }

// Update implements tea.Model
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		return model, nil

	case tea.KeyMsg:
		if key.Matches(message, model.keys.Quit) {
			model.stopTelemetry()
			return model, tea.Quit
		}
		if key.Matches(message, model.keys.NewTrip) {
			return model.newTrip()
		}
		return model.handleScreenKeys(message)

	case telemetryMsg:
		if message.frames != model.frames {
			return model, nil
		}
		frame := message.frame
		model.frame = &frame
		return model, listenForTelemetry(model.frames)

	case telemetryClosedMsg:
		if message.frames == model.frames {
			model.frames = nil
			model.unsubscribe = nil
		}
		return model, nil

	case groundControlReplyMsg:
		model.awaiting = false
		if message.err != nil {
			model.notice = "Ground Control could not be reached: " + message.err.Error()
			return model, nil
		}
		model.chat = append(model.chat, message.reply.Answer)
		return model, nil

	case receiptSavedMsg:
		if message.err != nil {
			model.logger.Warn("Failed to save receipt", logger.Error(message.err))
			model.notice = "Receipt could not be saved"
			return model, nil
		}
		model.receipt = message.path
		return model, nil
	}

	if model.snapshot.Screen == booking.ScreenHome {
		var cmd tea.Cmd
		model.destination, cmd = model.destination.Update(message)
		return model, cmd
	}
	return model, nil
}

func (model Model) handleScreenKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch model.snapshot.Screen {
	case booking.ScreenHome:
		return model.handleHomeKeys(message)
	case booking.ScreenPassengers:
		return model.handlePassengerKeys(message)
	case booking.ScreenSkyportDeparture:
		return model.handleListKeys(message, len(catalog.Skyports()), func(i int) booking.Event {
			return booking.SubmitSkyport(catalog.Skyports()[i])
		})
	case booking.ScreenGroundTransportTo, booking.ScreenGroundTransportFrom:
		return model.handleListKeys(message, len(catalog.TransportOptions()), func(i int) booking.Event {
			return booking.SubmitTransport(catalog.TransportOptions()[i])
		})
	case booking.ScreenLocationAccess:
		return model.handleAdvanceKeys(message, booking.Grant(true))
	case booking.ScreenSummary:
		return model.handleAdvanceKeys(message, booking.Confirm())
	case booking.ScreenSafetyBriefing:
		if key.Matches(message, model.keys.Toggle) {
			model.accepted = !model.accepted
			model.notice = ""
			return model, nil
		}
		return model.handleAdvanceKeys(message, booking.Accept(model.accepted))
	case booking.ScreenInFlight:
		return model.handleInFlightKeys(message)
	default:
		return model.handleAdvanceKeys(message, booking.Next())
	}
}

// handleAdvanceKeys maps Select to ev and Back to the back event
func (model Model) handleAdvanceKeys(message tea.KeyMsg, ev booking.Event) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Select):
		return model.dispatch(ev)
	case key.Matches(message, model.keys.Back):
		return model.dispatch(booking.Back())
	}
	return model, nil
}

func (model Model) handleHomeKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	suggestions := catalog.SuggestDestinations(model.destination.Value())

	switch {
	case key.Matches(message, model.keys.Up):
		if model.cursor > -1 {
			model.cursor--
		}
		return model, nil
	case key.Matches(message, model.keys.Down):
		if model.cursor < len(suggestions)-1 {
			model.cursor++
		}
		return model, nil
	case key.Matches(message, model.keys.Select):
		destination := model.destination.Value()
		if model.cursor >= 0 && model.cursor < len(suggestions) {
			destination = suggestions[model.cursor].Name
		}
		return model.dispatch(booking.SubmitDestination(destination))
	}

	var cmd tea.Cmd
	model.destination, cmd = model.destination.Update(message)
	model.cursor = -1
	model.notice = ""
	return model, cmd
}

func (model Model) handlePassengerKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Increase):
		if model.passengers < maxPassengers {
			model.passengers++
		}
		return model, nil
	case key.Matches(message, model.keys.Decrease):
		if model.passengers > 1 {
			model.passengers--
		}
		return model, nil
	}
	return model.handleAdvanceKeys(message, booking.SubmitPassengers(model.passengers))
}

// handleListKeys moves the cursor over n entries. Until an entry is
// highlighted, Select submits an empty choice, which the flow refuses.
func (model Model) handleListKeys(message tea.KeyMsg, n int, choose func(int) booking.Event) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
		}
		model.notice = ""
		return model, nil
	case key.Matches(message, model.keys.Down):
		if model.cursor < n-1 {
			model.cursor++
		}
		model.notice = ""
		return model, nil
	}

	ev := booking.Event{Type: booking.EventSubmit}
	if model.cursor >= 0 && model.cursor < n {
		ev = choose(model.cursor)
	}
	return model.handleAdvanceKeys(message, ev)
}

func (model Model) handleInFlightKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if model.panel == PanelChat {
		return model.handleChatKeys(message)
	}

	cabin := model.snapshot.Cabin
	var update session.CabinUpdate
	switch {
	case key.Matches(message, model.keys.Warmer):
		t := cabin.TemperatureC + 1
		update.TemperatureC = &t
	case key.Matches(message, model.keys.Cooler):
		t := cabin.TemperatureC - 1
		update.TemperatureC = &t
	case key.Matches(message, model.keys.Louder):
		v := cabin.VolumePct + 10
		update.VolumePct = &v
	case key.Matches(message, model.keys.Quieter):
		v := cabin.VolumePct - 10
		update.VolumePct = &v
	case key.Matches(message, model.keys.Emergency):
		if model.panel == PanelEmergency {
			model.panel = PanelNone
		} else {
			model.panel = PanelEmergency
		}
		return model, nil
	case key.Matches(message, model.keys.Chat):
		model.panel = PanelChat
		cmd := model.question.Focus()
		return model, cmd
	case key.Matches(message, model.keys.Back):
		model.panel = PanelNone
		return model, nil
	default:
		return model, nil
	}

	settings, err := model.session.UpdateCabin(update)
	if err != nil {
		model.notice = err.Error()
		return model, nil
	}
	model.snapshot.Cabin = settings
	return model, nil
}

func (model Model) handleChatKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Back):
		model.panel = PanelEmergency
		model.question.Blur()
		return model, nil
	case key.Matches(message, model.keys.Select):
		text := model.question.Value()
		if text == "" || model.awaiting || model.groundControl == nil {
			return model, nil
		}
		model.question.Reset()
		model.awaiting = true
		model.chat = append(model.chat, groundcontrol.Message{
			Role:      groundcontrol.RolePassenger,
			Content:   text,
			Timestamp: time.Now().UTC(),
		})
		return model, model.askGroundControl(text)
	}

	var cmd tea.Cmd
	model.question, cmd = model.question.Update(message)
	return model, cmd
}

func (model Model) askGroundControl(question string) tea.Cmd {
	gc := model.groundControl
	fc := groundcontrol.ContextFromSnapshot(model.session.Snapshot(), gc.PhoneNumber(), time.Now())
	return func() tea.Msg {
		reply, err := gc.Ask(context.Background(), fc, question)
		return groundControlReplyMsg{reply: reply, err: err}
	}
}

// dispatch sends ev to the session and reacts to the resulting screen
func (model Model) dispatch(ev booking.Event) (tea.Model, tea.Cmd) {
	previous := model.snapshot.Screen
	snap, fired, err := model.session.Dispatch(context.Background(), ev)
	if err != nil {
		if errors.Is(err, booking.ErrSubmissionFailed) {
			model.notice = "Booking could not be submitted. Press Enter to retry."
		} else {
			model.notice = err.Error()
		}
		model.logger.Warn("Event failed",
			logger.String("screen", string(previous)),
			logger.String("event", string(ev.Type)),
			logger.Error(err))
		return model, nil
	}
	if !fired {
		model.notice = disabledHint(previous)
		return model, nil
	}

	model.snapshot = snap
	model.notice = ""
	return model.enter(previous)
}

// enter prepares per-screen view state after a transition
func (model Model) enter(previous booking.Screen) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	screen := model.snapshot.Screen

	// Lists open with nothing selected
	model.cursor = -1
	switch screen {
	case booking.ScreenHome:
		cmds = append(cmds, model.destination.Focus())
	case booking.ScreenPassengers:
		model.passengers = model.snapshot.Draft.Passengers
	case booking.ScreenSafetyBriefing:
		model.accepted = false
		if previous == booking.ScreenSummary && model.snapshot.Booking != nil && model.receiptDir != "" {
			cmds = append(cmds, saveReceipt(model.snapshot.Booking, model.receiptDir))
		}
	case booking.ScreenInFlight:
		frames, unsubscribe, ok := model.session.SubscribeTelemetry()
		if ok {
			model.frames = frames
			model.unsubscribe = unsubscribe
			cmds = append(cmds, listenForTelemetry(frames))
		}
	}
	if screen != booking.ScreenHome {
		model.destination.Blur()
	}
	return model, tea.Batch(cmds...)
}

func (model Model) newTrip() (tea.Model, tea.Cmd) {
	model.stopTelemetry()
	snap, err := model.session.Reset()
	if err != nil {
		model.notice = err.Error()
		return model, nil
	}
	previous := model.snapshot.Screen
	model.snapshot = snap
	model.notice = ""
	model.panel = PanelNone
	model.chat = nil
	model.frame = nil
	model.receipt = ""
	model.destination.Reset()
	return model.enter(previous)
}

func (model *Model) stopTelemetry() {
	if model.unsubscribe != nil {
		model.unsubscribe()
	}
	model.frames = nil
	model.unsubscribe = nil
}

// listenForTelemetry blocks until the next frame or the end of the stream
func listenForTelemetry(frames <-chan telemetry.Telemetry) tea.Cmd {
	return func() tea.Msg {
		frame, ok := <-frames
		if !ok {
			return telemetryClosedMsg{frames: frames}
		}
		return telemetryMsg{frames: frames, frame: frame}
	}
}

func saveReceipt(b *booking.Booking, dir string) tea.Cmd {
	return func() tea.Msg {
		pdf, filename, err := receipt.Render(b)
		if err != nil {
			return receiptSavedMsg{err: err}
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return receiptSavedMsg{err: fmt.Errorf("failed to create receipt directory: %w", err)}
		}
		path := filepath.Join(dir, filename)
		if err := os.WriteFile(path, pdf, 0o644); err != nil {
			return receiptSavedMsg{err: fmt.Errorf("failed to write receipt: %w", err)}
		}
		return receiptSavedMsg{path: path}
	}
}

func disabledHint(screen booking.Screen) string {
	switch screen {
	case booking.ScreenHome:
		return "Enter a destination to continue"
	case booking.ScreenLocationAccess:
		return "Location access is mandatory to complete your booking"
	case booking.ScreenSafetyBriefing:
		return "Please confirm you have read the safety briefing"
	case booking.ScreenSummary:
		return "Your trip is missing details; go back and complete it"
	default:
		return "Make a selection to continue"
	}
}
