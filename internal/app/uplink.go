package app

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/ocn-sys/ocn/internal/wm"
)

// UplinkState is the phase of the transmission form.
type UplinkState int

const (
	UplinkForm UplinkState = iota
	UplinkSending
	UplinkDone
)

// Uplink field focus positions.
const (
	FieldCallsign = iota
	FieldMessage
	FieldButton
	fieldCount
)

// UplinkDoneMsg ends a simulated transmission.
type UplinkDoneMsg struct {
	Window string
	Seq    uint64
}

// Uplink is the scripted transmission form. Nothing is sent anywhere.
type Uplink struct {
	ID       string
	Callsign textinput.Model
	Message  textinput.Model
	Focus    int
	State    UplinkState
	PacketID string

	seq uint64
}

func newUplink(id string) *Uplink {
	call := textinput.New()
	call.Prompt = ""
	call.Placeholder = "CALLSIGN"
	call.CharLimit = 32
	msg := textinput.New()
	msg.Prompt = ""
	msg.Placeholder = "MESSAGE"
	msg.CharLimit = 256
	return &Uplink{ID: id, Callsign: call, Message: msg}
}

// editing reports whether one of the text fields has focus.
func (u *Uplink) editing() bool {
	return u.State == UplinkForm && (u.Callsign.Focused() || u.Message.Focused())
}

// FocusField moves keyboard focus to field i.
func (u *Uplink) FocusField(i int) tea.Cmd {
	u.Focus = ((i % fieldCount) + fieldCount) % fieldCount
	u.Callsign.Blur()
	u.Message.Blur()
	if u.State != UplinkForm {
		return nil
	}
	switch u.Focus {
	case FieldCallsign:
		return u.Callsign.Focus()
	case FieldMessage:
		return u.Message.Focus()
	}
	return nil
}

// NextField cycles focus through the form.
func (u *Uplink) NextField(dir int) tea.Cmd {
	return u.FocusField(u.Focus + dir)
}

func (u *Uplink) blur() {
	u.Callsign.Blur()
	u.Message.Blur()
}

// Update feeds msg to the focused field.
func (u *Uplink) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case u.Callsign.Focused():
		u.Callsign, cmd = u.Callsign.Update(msg)
	case u.Message.Focused():
		u.Message, cmd = u.Message.Update(msg)
	}
	return cmd
}

// Transmit disables the form and schedules the transcript.
func (d *Desktop) Transmit(windowID string) tea.Cmd {
	u := d.Uplinks[windowID]
	if u == nil || u.State != UplinkForm {
		return nil
	}
	u.State = UplinkSending
	u.blur()
	u.seq++
	d.LogInfo("uplink: encrypting payload")
	return d.schedule(d.Config.Timing.UplinkDelay(), UplinkDoneMsg{Window: windowID, Seq: u.seq})
}

func (d *Desktop) completeUplink(msg UplinkDoneMsg) {
	u := d.Uplinks[msg.Window]
	if u == nil || u.State != UplinkSending || msg.Seq != u.seq {
		return
	}
	u.State = UplinkDone
	u.PacketID = newPacketID()
	d.LogInfo("uplink: transmission complete, packet %s", u.PacketID)
}

// ResetUplink restores the empty form.
func (d *Desktop) ResetUplink(windowID string) tea.Cmd {
	u := d.Uplinks[windowID]
	if u == nil {
		return nil
	}
	u.seq++
	u.State = UplinkForm
	u.PacketID = ""
	u.Callsign.SetValue("")
	u.Message.SetValue("")
	return u.FocusField(FieldCallsign)
}

// ActivateUplink presses the button of the form in its current phase.
func (d *Desktop) ActivateUplink(windowID string) tea.Cmd {
	u := d.Uplinks[windowID]
	if u == nil {
		return nil
	}
	switch u.State {
	case UplinkForm:
		return d.Transmit(windowID)
	case UplinkDone:
		return d.ResetUplink(windowID)
	}
	return nil
}

// newPacketID returns nine upper-case characters.
func newPacketID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(id[:9])
}

var uplinkTranscript = []string{
	"> INITIATING_SECURE_HANDSHAKE...",
	"> ENCRYPTING_PAYLOAD: AES-256...",
	"> ESTABLISHING_TEMPORAL_BRIDGE...",
	"> ROUTING_THRU_OCN_NODE_12...",
}

// Row offsets inside the uplink window interior.
const (
	rowCallsignLabel = iota
	rowCallsign
	rowMessageLabel
	rowMessage
	rowGap
	rowButton
)

func (u *Uplink) buttonRow() int {
	if u.State == UplinkDone {
		return len(uplinkTranscript) + 3
	}
	return rowButton
}

// clickUplink handles a pointer press inside an uplink window.
func (d *Desktop) clickUplink(w *wm.Window, u *Uplink, x, y int) tea.Cmd {
	row := y - (w.Pos.Y + TopMargin + 1)
	if x <= w.Pos.X || x >= w.Pos.X+w.Size.W-1 {
		return nil
	}
	switch {
	case row == u.buttonRow():
		return d.ActivateUplink(u.ID)
	case u.State == UplinkForm && (row == rowCallsign || row == rowCallsignLabel):
		return u.FocusField(FieldCallsign)
	case u.State == UplinkForm && (row == rowMessage || row == rowMessageLabel):
		return u.FocusField(FieldMessage)
	}
	u.blur()
	return nil
}

func (d *Desktop) uplinkLines(w *wm.Window, u *Uplink, focused bool) []string {
	innerW, innerH := max(w.Size.W-2, 0), max(w.Size.H-2, 0)
	var rows []string

	button := func(label string, active, disabled bool) string {
		text := fit(centered("[ "+label+" ]", innerW), innerW)
		switch {
		case disabled:
			return dimStyle().Faint(true).Render(text)
		case active:
			return selectedStyle().Render(text)
		}
		return accentStyle().Render(text)
	}

	switch u.State {
	case UplinkForm, UplinkSending:
		u.Callsign.SetWidth(max(innerW-2, 1))
		u.Message.SetWidth(max(innerW-2, 1))
		rows = append(rows,
			dimStyle().Render(fit("> CALLSIGN", innerW)),
			"  "+fit(u.Callsign.View(), innerW-2),
			dimStyle().Render(fit("> MESSAGE", innerW)),
			"  "+fit(u.Message.View(), innerW-2),
			"",
		)
		if u.State == UplinkSending {
			rows = append(rows, button("ENCRYPTING...", false, true))
		} else {
			rows = append(rows, button("TRANSMIT", focused && u.Focus == FieldButton, false))
		}
	case UplinkDone:
		rows = append(rows, "")
		for _, l := range uplinkTranscript {
			rows = append(rows, dimStyle().Render(fit(l, innerW)))
		}
		rows = append(rows,
			accentStyle().Render(fit("> STATUS: TRANSMISSION_COMPLETE", innerW)),
			dimStyle().Render(fit("> PACKET_ID: "+u.PacketID, innerW)),
		)
		rows = append(rows, button("RESET_CHANNEL", focused, false))
	}

	for len(rows) < innerH {
		rows = append(rows, "")
	}
	rows = rows[:innerH]
	for i, r := range rows {
		rows[i] = fit(r, innerW)
	}
	return rows
}

func centered(s string, w int) string {
	pad := (w - len([]rune(s))) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
