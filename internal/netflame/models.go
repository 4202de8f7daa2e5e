package netflame

import "fmt"

// PublicState normalizes the vendor-specific internal state codes into a
// stable set of states suitable for UIs, automations and APIs. Values are
// numeric for easy serialization.
type PublicState int

const (
	StatePowerOff PublicState = iota
	StatePreheat
	StateHeating
	StatePoweredOn
	StatePoweringOff
	StateWaitingProgramLoad
	StateAlarmed
	StateInvalid
)

// String returns the public state name
func (s PublicState) String() string {
	switch s {
	case StatePowerOff:
		return "power_off"
	case StatePreheat:
		return "preheat"
	case StateHeating:
		return "heating"
	case StatePoweredOn:
		return "powered_on"
	case StatePoweringOff:
		return "powering_off"
	case StateWaitingProgramLoad:
		return "waiting_program_load"
	case StateAlarmed:
		return "alarmed"
	default:
		return "invalid"
	}
}

// State is the detailed state reported by the controller: the raw firmware
// integer, a human-readable label and the normalized public state.
type State struct {
	Raw         int         `json:"raw"`
	Description string      `json:"description"`
	Public      PublicState `json:"public"`
}

// Alarm is the current alarm status. Code is the firmware alarm code
// (e.g. "A001", or "N" for none).
type Alarm struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Active reports whether the alarm code designates an actual alarm
func (a Alarm) Active() bool {
	return a.Code != "" && a.Code != "N"
}

// Mode is the operational mode configuration. Commonly 0 is power mode and
// 1 is ambient-temperature mode, but the raw code is firmware-specific.
type Mode struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
}

// Clock is the stove internal clock, derived from the epoch seconds the
// firmware reports in int_rx.
type Clock struct {
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	HHMM   string `json:"hhmm"` // display form, e.g. "14:07"
}

// Data is a snapshot of stove telemetry built from OpGetData.
type Data struct {
	On                  bool    `json:"on"`
	Mode                Mode    `json:"mode"`
	FunctionalMode      Mode    `json:"functional_mode"`
	State               State   `json:"state"`
	PowerSetpoint       int     `json:"power_setpoint"`
	TemperatureSetpoint float64 `json:"temperature_setpoint"`
	Temperature         float64 `json:"temperature"`
}

// alarmDescriptions maps firmware alarm codes to human-readable text.
// A099 (out of fuel) is the one owners see most.
var alarmDescriptions = map[string]string{
	"N":    "no active alarms",
	"A000": "stove shut down with an alarm",
	"A001": "air inlet depression low",
	"A002": "air inlet depression high",
	"A003": "exhaust gas temperature low",
	"A004": "exhaust gas temperature high",
	"A005": "NTC probe temperature low",
	"A006": "NTC probe temperature high",
	"A009": "ambient temperature low",
	"A010": "ambient temperature high",
	"A011": "CPU temperature low",
	"A012": "CPU temperature high",
	"A013": "motor current low",
	"A014": "motor current high",
	"A015": "air inlet depression low",
	"A016": "exhaust gas temperature critical",
	"A017": "NTC probe temperature critical",
	"A018": "smoke fan failure",
	"A019": "fan at maximum capacity",
	"A020": "probe failure",
	"A099": "stove out of fuel",
}

// alarmFromCode maps a firmware alarm code into an Alarm model
func alarmFromCode(code string) Alarm {
	if desc, ok := alarmDescriptions[code]; ok {
		return Alarm{Code: code, Description: desc}
	}
	return Alarm{Code: code, Description: "unknown alarm"}
}

// stateFromRaw maps the raw firmware state integer into a State with a
// label and a normalized public state.
func stateFromRaw(raw int) State {
	switch raw {
	case -1:
		return State{Raw: raw, Description: "error reading state", Public: StateInvalid}
	case 0:
		return State{Raw: raw, Description: "off", Public: StatePowerOff}
	case 1, 2, 3, 4, 10:
		return State{Raw: raw, Description: "preheating", Public: StatePreheat}
	case 5, 6:
		return State{Raw: raw, Description: "starting combustion", Public: StateHeating}
	case 7:
		return State{Raw: raw, Description: "running", Public: StatePoweredOn}
	case 8, 11, -3:
		return State{Raw: raw, Description: "shutting down", Public: StatePoweringOff}
	case -20:
		return State{Raw: raw, Description: "waiting for program load", Public: StateWaitingProgramLoad}
	case -4:
		return State{Raw: raw, Description: "stove in alarm", Public: StateAlarmed}
	default:
		return State{Raw: raw, Description: fmt.Sprintf("unknown state %d", raw), Public: StateInvalid}
	}
}

// modeFromRaw maps the raw operational mode code into a Mode model
func modeFromRaw(raw int) Mode {
	switch raw {
	case 0:
		return Mode{Code: raw, Description: "power mode"}
	case 1:
		return Mode{Code: raw, Description: "ambient temperature mode"}
	case -1:
		return Mode{Code: raw, Description: "error reading mode"}
	default:
		return Mode{Code: raw, Description: "emergency mode"}
	}
}
