package netflame

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/afernandezluc/netflame/internal/stove"
)

// newFakeController starts an httptest server that answers CGI operations
// from the given table, keyed by idOperacion.
func newFakeController(t *testing.T, replies map[int]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		op, err := strconv.Atoi(r.PostFormValue("idOperacion"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		body, ok := replies[op]
		if !ok {
			_, _ = w.Write([]byte("error=1\n"))
			return
		}
		_, _ = w.Write([]byte(body))
	}))
}

func newTestDevice(t *testing.T, server *httptest.Server) *Device {
	t.Helper()
	dev, err := Connect(server.URL, stove.WithRetries(0))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	return dev
}

func TestDevice_Hour(t *testing.T) {
	// 2026-01-07 14:07:00 UTC
	epoch := time.Date(2026, 1, 7, 14, 7, 0, 0, time.UTC).Unix()
	server := newFakeController(t, map[int]string{
		OpGetHour: "error=0\nint_rx=" + strconv.FormatInt(epoch, 10) + "\n",
	})
	defer server.Close()

	clock, err := newTestDevice(t, server).Hour(context.Background())
	if err != nil {
		t.Fatalf("Hour() error = %v", err)
	}
	if clock.Hour != 14 || clock.Minute != 7 {
		t.Errorf("Hour() = %02d:%02d, want 14:07", clock.Hour, clock.Minute)
	}
	if clock.HHMM != "14:07" {
		t.Errorf("HHMM = %q, want 14:07", clock.HHMM)
	}
}

func TestDevice_Hour_MissingIntRx(t *testing.T) {
	server := newFakeController(t, map[int]string{
		OpGetHour: "error=0\n",
	})
	defer server.Close()

	_, err := newTestDevice(t, server).Hour(context.Background())
	if err == nil {
		t.Fatal("Hour() should fail when int_rx is missing")
	}
	if !stove.IsOperation(err) {
		t.Errorf("error kind = %v, want operation", err)
	}
}

func TestDevice_SetClockNow(t *testing.T) {
	var gotIntRx string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		switch r.PostFormValue("idOperacion") {
		case strconv.Itoa(OpSetHour):
			gotIntRx = r.PostFormValue("int_rx")
			_, _ = w.Write([]byte("error=0\n"))
		case strconv.Itoa(OpGetHour):
			_, _ = w.Write([]byte("error=0\nint_rx=" + gotIntRx + "\n"))
		default:
			_, _ = w.Write([]byte("error=1\n"))
		}
	}))
	defer server.Close()

	before := time.Now().UTC()
	clock, err := newTestDevice(t, server).SetClockNow(context.Background())
	if err != nil {
		t.Fatalf("SetClockNow() error = %v", err)
	}

	if gotIntRx == "" {
		t.Fatal("set operation did not carry int_rx")
	}
	epoch, err := strconv.ParseInt(gotIntRx, 10, 64)
	if err != nil {
		t.Fatalf("int_rx = %q, not an epoch", gotIntRx)
	}
	if delta := epoch - before.Unix(); delta < 0 || delta > 5 {
		t.Errorf("int_rx epoch %d not close to now (%d)", epoch, before.Unix())
	}
	if clock.HHMM == "" {
		t.Error("SetClockNow() should read the clock back")
	}
}

func TestDevice_Data(t *testing.T) {
	server := newFakeController(t, map[int]string{
		OpGetData: "error=0\non_off=1\nmodo_operacion=1\nmodo_func=1\n" +
			"consigna_potencia=6\nconsigna_temperatura=22.5\ntemperatura=21\nestado=7\n",
	})
	defer server.Close()

	data, err := newTestDevice(t, server).Data(context.Background())
	if err != nil {
		t.Fatalf("Data() error = %v", err)
	}

	if !data.On {
		t.Error("On = false, want true")
	}
	if data.Mode.Code != 1 {
		t.Errorf("Mode.Code = %d, want 1", data.Mode.Code)
	}
	if data.FunctionalMode.Code != 1 {
		t.Errorf("FunctionalMode.Code = %d, want 1", data.FunctionalMode.Code)
	}
	if data.PowerSetpoint != 6 {
		t.Errorf("PowerSetpoint = %d, want 6", data.PowerSetpoint)
	}
	if data.TemperatureSetpoint != 22.5 {
		t.Errorf("TemperatureSetpoint = %v, want 22.5", data.TemperatureSetpoint)
	}
	if data.Temperature != 21 {
		t.Errorf("Temperature = %v, want 21", data.Temperature)
	}
	if data.State.Public != StatePoweredOn {
		t.Errorf("State.Public = %v, want %v", data.State.Public, StatePoweredOn)
	}
}

func TestDevice_Data_MissingFieldsUseDefaults(t *testing.T) {
	server := newFakeController(t, map[int]string{
		OpGetData: "error=0\n",
	})
	defer server.Close()

	data, err := newTestDevice(t, server).Data(context.Background())
	if err != nil {
		t.Fatalf("Data() error = %v", err)
	}

	if data.On {
		t.Error("On = true, want false")
	}
	if data.Mode.Code != -1 {
		t.Errorf("Mode.Code = %d, want -1", data.Mode.Code)
	}
	if data.State.Public != StateInvalid {
		t.Errorf("State.Public = %v, want %v", data.State.Public, StateInvalid)
	}
}

func TestDevice_Alarms(t *testing.T) {
	server := newFakeController(t, map[int]string{
		OpGetAlarms: "error=0\nget_alarmas=A099\n",
	})
	defer server.Close()

	alarm, err := newTestDevice(t, server).Alarms(context.Background())
	if err != nil {
		t.Fatalf("Alarms() error = %v", err)
	}
	if alarm.Code != "A099" {
		t.Errorf("Code = %q, want A099", alarm.Code)
	}
	if !alarm.Active() {
		t.Error("Active() = false, want true")
	}
}

func TestDevice_Alarms_DefaultsToNone(t *testing.T) {
	server := newFakeController(t, map[int]string{
		OpGetAlarms: "error=0\n",
	})
	defer server.Close()

	alarm, err := newTestDevice(t, server).Alarms(context.Background())
	if err != nil {
		t.Fatalf("Alarms() error = %v", err)
	}
	if alarm.Code != "N" || alarm.Active() {
		t.Errorf("alarm = %+v, want inactive N", alarm)
	}
}

func TestDevice_SimpleReads(t *testing.T) {
	server := newFakeController(t, map[int]string{
		OpGetLanguage:      "error=0\nidioma=2\n",
		OpGetStoveType:     "error=0\ntipoestufa=4\n",
		OpGetHeaterType:    "error=0\ntipo_agua=1\n",
		OpGetOperativeMode: "error=0\nmodo_operacion=0\n",
	})
	defer server.Close()

	dev := newTestDevice(t, server)
	ctx := context.Background()

	if lang, err := dev.Language(ctx); err != nil || lang != 2 {
		t.Errorf("Language() = %d, %v, want 2, nil", lang, err)
	}
	if st, err := dev.StoveType(ctx); err != nil || st != 4 {
		t.Errorf("StoveType() = %d, %v, want 4, nil", st, err)
	}
	if ht, err := dev.HeaterType(ctx); err != nil || ht != 1 {
		t.Errorf("HeaterType() = %d, %v, want 1, nil", ht, err)
	}
	mode, err := dev.OperativeMode(ctx)
	if err != nil || mode.Code != 0 {
		t.Errorf("OperativeMode() = %+v, %v, want code 0", mode, err)
	}
}

func TestDevice_OperationErrorPropagates(t *testing.T) {
	server := newFakeController(t, map[int]string{
		OpGetData: "error=5\n",
	})
	defer server.Close()

	_, err := newTestDevice(t, server).Data(context.Background())
	if err == nil {
		t.Fatal("Data() should fail")
	}
	code, ok := stove.OperationCode(err)
	if !ok || code != 5 {
		t.Errorf("OperationCode() = %d, %v, want 5, true", code, ok)
	}
}
