package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/yegors/skyglyde/internal/booking"
	"github.com/yegors/skyglyde/internal/catalog"
	"github.com/yegors/skyglyde/internal/groundcontrol"
	"github.com/yegors/skyglyde/internal/telemetry"
)

type step struct {
	title, detail string
}

var howItWorksSteps = []step{
	{"Ground Transport", "Travel to nearest Skyport by car or public transport"},
	{"Secure Boarding", "Board your Sky-Glyde at the Skyport facility"},
	{"Supervised Flight", "Trained pilot monitors your flight from Ground Control"},
	{"Arrival & Ground Transport", "Land at destination Skyport and complete journey"},
}

var safetyBenefits = []string{
	"Precise landing at Skyport",
	"Monitored by trained pilot",
	"Safe flight planning",
	"Emergency response, if needed",
}

var briefingItems = []step{
	{"Supervised by Ground Control", "A trained pilot monitors your flight at all times from our operations center"},
	{"Emergency Systems Active", "Multiple safety systems including automatic landing and collision avoidance"},
	{"Communication Available", "Direct contact with Ground Control throughout your journey"},
	{"Weather Monitoring", "Real-time weather assessment ensures safe flying conditions"},
}

// View implements tea.Model
func (model Model) View() string {
	var b strings.Builder
	b.WriteString(model.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(model.renderScreen())
	if model.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(model.styles.warning.Render(model.notice))
	}
	b.WriteString("\n\n")
	b.WriteString(model.renderHelp())
	return b.String()
}

func (model Model) renderHeader() string {
	return model.styles.brand.Render("Sky-Glyde") + "  " +
		model.styles.tagline.Render("Certified Autonomous Flight")
}

func (model Model) renderScreen() string {
	switch model.snapshot.Screen {
	case booking.ScreenHome:
		return model.renderHome()
	case booking.ScreenHowItWorks:
		return model.renderSteps("How Sky-Glyde Works", "Safe, supervised urban air mobility", howItWorksSteps)
	case booking.ScreenLocationAccess:
		return model.renderLocationAccess()
	case booking.ScreenPassengers:
		return model.renderPassengers()
	case booking.ScreenMultipleVehicles:
		return model.renderMultipleVehicles()
	case booking.ScreenSkyportDeparture:
		return model.renderSkyports()
	case booking.ScreenGroundTransportTo:
		return model.renderTransport("Ground Transport to Skyport", "How would you like to reach the departure skyport?")
	case booking.ScreenGroundTransportFrom:
		return model.renderTransport("Ground Transport from Skyport", "How would you like to reach your final destination?")
	case booking.ScreenSummary:
		return model.renderSummary()
	case booking.ScreenSafetyBriefing:
		return model.renderSafetyBriefing()
	case booking.ScreenInFlight:
		return model.renderInFlight()
	}
	return ""
}

func (model Model) renderHome() string {
	s := model.styles
	lines := []string{
		s.title.Render("Where would you like to go?"),
		s.faint.Render("Choose your destination for safe, supervised autonomous flight"),
		"",
		model.destination.View(),
		"",
	}

	suggestions := catalog.SuggestDestinations(model.destination.Value())
	if model.destination.Value() == "" {
		lines = append(lines, s.faint.Render("Popular Destinations"))
	}
	for i, dest := range suggestions {
		row := fmt.Sprintf("%-20s %8s  %s", dest.Name, dest.Distance, dest.Time)
		lines = append(lines, model.listRow(row, i == model.cursor))
	}
	return strings.Join(lines, "\n")
}

func (model Model) renderSteps(title, subtitle string, steps []step) string {
	s := model.styles
	lines := []string{s.title.Render(title), s.faint.Render(subtitle), ""}
	for i, st := range steps {
		lines = append(lines,
			s.text.Render(fmt.Sprintf("%d. %s", i+1, st.title)),
			s.faint.Render("   "+st.detail))
	}
	return strings.Join(lines, "\n")
}

func (model Model) renderLocationAccess() string {
	s := model.styles
	lines := []string{
		s.title.Render("Safety Location Access"),
		s.warning.Render("Required for Booking"),
		"",
		s.text.Render("Safety benefits:"),
	}
	for _, benefit := range safetyBenefits {
		lines = append(lines, s.success.Render("  ✓ ")+s.text.Render(benefit))
	}
	lines = append(lines, "",
		s.faint.Render("Ground Control uses your precise location for safe flight operation"))
	return strings.Join(lines, "\n")
}

func (model Model) renderPassengers() string {
	s := model.styles
	label := "1 Passenger"
	if model.passengers > 1 {
		label = fmt.Sprintf("%d Passengers", model.passengers)
	}
	lines := []string{
		s.title.Render("Number of Passengers"),
		s.faint.Render("Maximum 2 passengers per Sky-Glyde"),
		"",
		s.panel.Render("‹ " + s.value.Render(label) + " ›"),
	}
	if model.passengers >= booking.MultiVehicleThreshold {
		lines = append(lines, "", s.warning.Render("3+ Passengers need more than one Sky-Glyde"))
	}
	return strings.Join(lines, "\n")
}

func (model Model) renderMultipleVehicles() string {
	s := model.styles
	n := model.snapshot.Draft.Passengers
	lines := []string{
		s.title.Render("Multiple Sky-Glydes Needed"),
		s.text.Render(fmt.Sprintf("Only 2 passengers per Sky-Glyde taxi. For %d passengers, you'll need to book multiple vehicles.", n)),
		"",
		s.text.Render("Your options:"),
		s.text.Render(fmt.Sprintf("  • Book multiple Sky-Glydes (recommended for groups): %d vehicles", model.snapshot.Vehicles)),
		s.text.Render("  • Choose a Glyde ground option that accommodates more passengers"),
	}
	return strings.Join(lines, "\n")
}

func (model Model) renderSkyports() string {
	s := model.styles
	lines := []string{s.title.Render("Choose Departure Skyport")}
	for i, port := range catalog.Skyports() {
		row := fmt.Sprintf("%-26s %-12s %s", port.Name, port.Walk, port.Features)
		lines = append(lines, model.listRow(row, i == model.cursor))
	}
	return strings.Join(lines, "\n")
}

func (model Model) renderTransport(title, description string) string {
	s := model.styles
	lines := []string{s.title.Render(title), s.faint.Render(description), ""}
	for i, option := range catalog.TransportOptions() {
		row := fmt.Sprintf("%-18s %s • %s", option.Name, option.Time, option.Cost)
		lines = append(lines, model.listRow(row, i == model.cursor))
	}
	return strings.Join(lines, "\n")
}

func (model Model) renderSummary() string {
	s := model.styles
	d := model.snapshot.Draft
	field := func(label, value string) string {
		return s.faint.Render(fmt.Sprintf("%-22s", label)) + s.text.Render(value)
	}

	journey := []string{
		field("Destination", d.Destination),
		field("Passengers", fmt.Sprintf("%d (%s)", d.Passengers, vehiclesLabel(model.snapshot.Vehicles))),
		field("Ground Transport To", transportName(d.GroundTransportTo)),
		field("Departure Skyport", skyportName(d.SkyportDeparture)),
		field("Arrival Skyport", skyportName(d.SkyportArrival)),
		field("Ground Transport From", transportName(d.GroundTransportFrom)),
	}
	total := s.text.Render("ESTIMATED TOTAL ") +
		s.value.Render(fmt.Sprintf("€%d", model.snapshot.TotalEUR)) +
		"\n" + s.faint.Render("Includes all transport segments")

	return s.title.Render("Trip Summary") + "\n" +
		s.panel.Render(strings.Join(journey, "\n")) + "\n" +
		s.panel.Render(total)
}

func (model Model) renderSafetyBriefing() string {
	s := model.styles
	lines := []string{s.title.Render("Safety Briefing"), s.faint.Render("Please review before your flight"), ""}
	for _, item := range briefingItems {
		lines = append(lines, s.text.Render("• "+item.title), s.faint.Render("  "+item.detail))
	}

	box := "[ ]"
	if model.accepted {
		box = s.success.Render("[x]")
	}
	lines = append(lines, "",
		box+" "+s.text.Render("I have read and understood the safety briefing and agree to follow all safety instructions during my flight"))
	if model.receipt != "" {
		lines = append(lines, "", s.faint.Render("Receipt saved to "+model.receipt))
	}
	return strings.Join(lines, "\n")
}

func (model Model) renderInFlight() string {
	s := model.styles

	frame := model.frame
	if frame == nil {
		frame = model.snapshot.Telemetry
	}

	supervisor := s.success.Render("● ") + s.text.Render("Flight Supervisor  ") +
		s.faint.Render("Maria Rodriguez • Ground Control • Monitoring Live")

	var telemetryPanel string
	if frame != nil {
		telemetryPanel = renderTelemetry(s, *frame)
	} else {
		telemetryPanel = s.faint.Render("Waiting for telemetry...")
	}

	cabin := model.snapshot.Cabin
	cabinPanel := s.text.Render("Personalize Your Cabin") + "\n" +
		fmt.Sprintf("%s %s  %s", s.faint.Render("Temperature"), s.value.Render(fmt.Sprintf("%d°C", cabin.TemperatureC)),
			s.faint.Render(fmt.Sprintf("(%d°C-%d°C)", telemetry.MinCabinTemperatureC, telemetry.MaxCabinTemperatureC))) + "\n" +
		fmt.Sprintf("%s %s", s.faint.Render("Volume     "), s.value.Render(fmt.Sprintf("%d%%", cabin.VolumePct)))

	sections := []string{
		supervisor,
		s.panel.Render(telemetryPanel),
		s.panel.Render(cabinPanel),
	}
	switch model.panel {
	case PanelEmergency:
		sections = append(sections, model.renderEmergency())
	case PanelChat:
		sections = append(sections, model.renderChat())
	}
	sections = append(sections, s.success.Render("All Systems Normal"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderTelemetry(s styles, frame telemetry.Telemetry) string {
	altitude, battery, airspeed := frame.Display()
	return s.text.Render("Live Telemetry") + "\n" +
		fmt.Sprintf("%s %s   %s %s   %s %s",
			s.faint.Render("Altitude"), s.value.Render(fmt.Sprintf("%dm", altitude)),
			s.faint.Render("Battery"), s.value.Render(fmt.Sprintf("%d%%", battery)),
			s.faint.Render("Airspeed"), s.value.Render(fmt.Sprintf("%d km/h", airspeed))) + "\n" +
		fmt.Sprintf("%s %s   %s %s",
			s.faint.Render("Arrival"), s.value.Render(frame.ArrivalTime),
			s.faint.Render("Current Phase:"), s.text.Render(frame.FlightPhase))
}

func (model Model) renderEmergency() string {
	s := model.styles
	phone := ""
	if model.groundControl != nil {
		phone = model.groundControl.PhoneNumber()
	}
	body := s.danger.Render("Emergency Protocol & Connect") + "\n" +
		s.text.Render("Ground Control ") + s.value.Render(phone) + "\n" +
		s.success.Render("Immediate Response Available") + "\n" +
		s.faint.Render("Sky-Glyde has multiple safety protocols to ensure a safe landing.") + "\n" +
		s.help.Render("c chat with Ground Control • e close")
	return s.panel.Render(body)
}

func (model Model) renderChat() string {
	s := model.styles
	lines := []string{s.text.Render("Ground Control")}
	for _, msg := range model.chat {
		who := s.faint.Render("You: ")
		if msg.Role == groundcontrol.RoleGroundControl {
			who = s.brand.Render("Ground Control: ")
		}
		lines = append(lines, who+s.text.Render(msg.Content))
	}
	if model.awaiting {
		lines = append(lines, s.faint.Render("Ground Control is typing..."))
	}
	lines = append(lines, model.question.View())
	return s.panel.Render(strings.Join(lines, "\n"))
}

func (model Model) listRow(row string, selected bool) string {
	if selected {
		return model.styles.selected.Render("› " + row)
	}
	return model.styles.text.Render("  " + row)
}

func (model Model) renderHelp() string {
	k := model.keys
	var bindings []key.Binding
	switch model.snapshot.Screen {
	case booking.ScreenHome:
		bindings = []key.Binding{k.Up, k.Down, k.Select}
	case booking.ScreenPassengers:
		bindings = []key.Binding{k.Increase, k.Decrease, k.Select, k.Back}
	case booking.ScreenSkyportDeparture, booking.ScreenGroundTransportTo, booking.ScreenGroundTransportFrom:
		bindings = []key.Binding{k.Up, k.Down, k.Select, k.Back}
	case booking.ScreenSafetyBriefing:
		bindings = []key.Binding{k.Toggle, k.Select}
	case booking.ScreenInFlight:
		if model.panel == PanelChat {
			bindings = []key.Binding{k.Select, k.Back}
		} else {
			bindings = []key.Binding{k.Warmer, k.Cooler, k.Louder, k.Quieter, k.Emergency, k.Chat}
		}
	default:
		bindings = []key.Binding{k.Select, k.Back}
	}
	bindings = append(bindings, k.NewTrip, k.Quit)

	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return model.styles.help.Render(strings.Join(parts, " • "))
}

func vehiclesLabel(n int) string {
	if n == 1 {
		return "1 vehicle"
	}
	return fmt.Sprintf("%d vehicles", n)
}

func skyportName(s *catalog.Skyport) string {
	if s == nil {
		return "-"
	}
	return s.Name
}

func transportName(t *catalog.TransportOption) string {
	if t == nil {
		return "-"
	}
	return t.Name
}
