package netflame

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/afernandezluc/netflame/internal/stove"
)

// Device is a typed facade over the low-level stove client for NetFlame
// style controllers. Each method sends one operation and maps the raw
// key=value payload into a model.
type Device struct {
	client *stove.Client
}

// NewDevice wraps an existing stove client
func NewDevice(client *stove.Client) *Device {
	return &Device{client: client}
}

// Connect builds a client for the device at baseURL and wraps it
func Connect(baseURL string, opts ...stove.Option) (*Device, error) {
	client, err := stove.NewClient(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Device{client: client}, nil
}

// Client exposes the underlying stove client, e.g. for raw operations
func (d *Device) Client() *stove.Client {
	return d.client
}

// Hour reads the stove internal clock. The firmware reports a Unix epoch
// timestamp (UTC) in the int_rx field.
func (d *Device) Hour(ctx context.Context) (Clock, error) {
	resp, err := d.client.SendOperation(ctx, OpGetHour)
	if err != nil {
		return Clock{}, err
	}

	raw := resp.Param(paramIntRx, "")
	if raw == "" {
		return Clock{}, stove.NewOperationError(0,
			fmt.Sprintf("int_rx not present in response: %q", resp.Raw))
	}
	epoch, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Clock{}, stove.NewProtocolError(
			fmt.Sprintf("int_rx is not an epoch timestamp: %q", raw), err)
	}

	t := time.Unix(epoch, 0).UTC()
	return Clock{Hour: t.Hour(), Minute: t.Minute(), HHMM: t.Format("15:04")}, nil
}

// SetClockNow sets the device clock to the current UTC time and reads it
// back, mirroring the behavior of the vendor web UI.
func (d *Device) SetClockNow(ctx context.Context) (Clock, error) {
	epoch := strconv.FormatInt(time.Now().UTC().Unix(), 10)
	if _, err := d.client.SendOperationParams(ctx, OpSetHour, map[string]string{paramIntRx: epoch}); err != nil {
		return Clock{}, err
	}
	// The web UI reads the hour back regardless of the write reply.
	return d.Hour(ctx)
}

// Language reads the configured device language code (firmware-specific)
func (d *Device) Language(ctx context.Context) (int, error) {
	resp, err := d.client.SendOperation(ctx, OpGetLanguage)
	if err != nil {
		return 0, err
	}
	return resp.IntParam(paramLanguage, 0), nil
}

// Alarms reads the current alarm state
func (d *Device) Alarms(ctx context.Context) (Alarm, error) {
	resp, err := d.client.SendOperation(ctx, OpGetAlarms)
	if err != nil {
		return Alarm{}, err
	}
	return alarmFromCode(resp.Param(paramAlarms, "N")), nil
}

// StoveType reads the stove model identifier (firmware-specific)
func (d *Device) StoveType(ctx context.Context) (int, error) {
	resp, err := d.client.SendOperation(ctx, OpGetStoveType)
	if err != nil {
		return 0, err
	}
	return resp.IntParam(paramStoveType, 0), nil
}

// HeaterType reads the heater/water system identifier (firmware-specific)
func (d *Device) HeaterType(ctx context.Context) (int, error) {
	resp, err := d.client.SendOperation(ctx, OpGetHeaterType)
	if err != nil {
		return 0, err
	}
	return resp.IntParam(paramHeaterType, 0), nil
}

// OperativeMode reads the configured operation mode (power vs ambient
// temperature)
func (d *Device) OperativeMode(ctx context.Context) (Mode, error) {
	resp, err := d.client.SendOperation(ctx, OpGetOperativeMode)
	if err != nil {
		return Mode{}, err
	}
	return modeFromRaw(resp.IntParam(paramMode, -1)), nil
}

// Data reads the main telemetry/state snapshot: power on/off, modes,
// setpoints, current temperature and internal state.
func (d *Device) Data(ctx context.Context) (Data, error) {
	resp, err := d.client.SendOperation(ctx, OpGetData)
	if err != nil {
		return Data{}, err
	}

	mode := resp.IntParam(paramMode, -1)

	var functional Mode
	switch mode {
	case 1:
		// In ambient-temperature mode the firmware reports a secondary
		// functional mode.
		funcMode := resp.IntParam(paramFuncMode, -1)
		switch funcMode {
		case 1:
			functional = Mode{Code: funcMode, Description: "ambient temperature mode"}
		case -1:
			functional = Mode{Code: funcMode, Description: "error reading mode"}
		default:
			functional = Mode{Code: funcMode, Description: "power mode"}
		}
	case -1:
		functional = Mode{Code: -1, Description: "error reading mode"}
	default:
		functional = Mode{Code: 0, Description: "power mode"}
	}

	return Data{
		On:                  resp.Param(paramOnOff, "0") == "1",
		Mode:                modeFromRaw(mode),
		FunctionalMode:      functional,
		State:               stateFromRaw(resp.IntParam(paramState, -1)),
		PowerSetpoint:       resp.IntParam(paramPowerSet, 0),
		TemperatureSetpoint: resp.FloatParam(paramTempSetpoint, 0),
		Temperature:         resp.FloatParam(paramTemperature, 0),
	}, nil
}
