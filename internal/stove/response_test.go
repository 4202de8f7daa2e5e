package stove

import (
	"reflect"
	"testing"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantErr    bool
		wantOK     bool
		wantCode   *int
		wantParams map[string]string
		wantLines  []string
	}{
		{
			name:     "successful round trip",
			raw:      "idOperacion=1094\nerror=0\ntemp=21\n",
			wantOK:   true,
			wantCode: nil,
			wantParams: map[string]string{
				"idOperacion": "1094",
				"error":       "0",
				"temp":        "21",
			},
			wantLines: []string{"idOperacion=1094", "error=0", "temp=21"},
		},
		{
			name:     "device error code",
			raw:      "error=5\n",
			wantOK:   false,
			wantCode: intPtr(5),
			wantParams: map[string]string{
				"error": "5",
			},
			wantLines: []string{"error=5"},
		},
		{
			name:   "unparseable lines are tolerated",
			raw:    "READY\ntemp=21\n###\nestado=7\n",
			wantOK: true,
			wantParams: map[string]string{
				"temp":   "21",
				"estado": "7",
			},
			wantLines: []string{"READY", "temp=21", "###", "estado=7"},
		},
		{
			name:    "empty body",
			raw:     "",
			wantErr: true,
		},
		{
			name:    "no parseable line",
			raw:     "firmware booting\nplease wait\n",
			wantErr: true,
		},
		{
			name:   "duplicate keys last wins",
			raw:    "temp=19\ntemp=21\n",
			wantOK: true,
			wantParams: map[string]string{
				"temp": "21",
			},
		},
		{
			name:   "crlf terminators",
			raw:    "idOperacion=1002\r\nerror=0\r\n",
			wantOK: true,
			wantParams: map[string]string{
				"idOperacion": "1002",
				"error":       "0",
			},
		},
		{
			name:   "whitespace around key and value is trimmed",
			raw:    "  temp = 21 \nerror=0\n",
			wantOK: true,
			wantParams: map[string]string{
				"temp":  "21",
				"error": "0",
			},
		},
		{
			name:     "standalone integer line as error code",
			raw:      "temp=21\n5\n",
			wantOK:   false,
			wantCode: intPtr(5),
		},
		{
			name:     "standalone negative integer line",
			raw:      "temp=21\n-4\n",
			wantOK:   false,
			wantCode: intPtr(-4),
		},
		{
			name:   "non-numeric error key keeps searching",
			raw:    "error=N\ncodigo=3\n",
			wantOK: false,
			// "error" holds a non-numeric value, "codigo" wins
			wantCode: intPtr(3),
		},
		{
			name:   "alternate result key",
			raw:    "resultado=0\nidioma=2\n",
			wantOK: true,
		},
		{
			name:   "empty value is kept",
			raw:    "get_alarmas=\nerror=0\n",
			wantOK: true,
			wantParams: map[string]string{
				"get_alarmas": "",
				"error":       "0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := parseResponse(1094, tt.raw, nil)

			if (err != nil) != tt.wantErr {
				t.Fatalf("parseResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !IsProtocol(err) {
					t.Errorf("error kind = %v, want protocol", err)
				}
				return
			}

			if resp.OperationID != 1094 {
				t.Errorf("OperationID = %d, want 1094", resp.OperationID)
			}
			if resp.StatusOK != tt.wantOK {
				t.Errorf("StatusOK = %v, want %v", resp.StatusOK, tt.wantOK)
			}
			if tt.wantCode == nil && resp.ErrorCode != nil {
				t.Errorf("ErrorCode = %d, want nil", *resp.ErrorCode)
			}
			if tt.wantCode != nil {
				if resp.ErrorCode == nil {
					t.Fatalf("ErrorCode = nil, want %d", *tt.wantCode)
				}
				if *resp.ErrorCode != *tt.wantCode {
					t.Errorf("ErrorCode = %d, want %d", *resp.ErrorCode, *tt.wantCode)
				}
			}
			if tt.wantParams != nil && !reflect.DeepEqual(resp.Params, tt.wantParams) {
				t.Errorf("Params = %v, want %v", resp.Params, tt.wantParams)
			}
			if tt.wantLines != nil && !reflect.DeepEqual(resp.Lines, tt.wantLines) {
				t.Errorf("Lines = %v, want %v", resp.Lines, tt.wantLines)
			}
			if resp.Raw != tt.raw {
				t.Errorf("Raw = %q, want %q", resp.Raw, tt.raw)
			}
			if resp.StatusOK && resp.ErrorCode != nil {
				t.Error("StatusOK implies ErrorCode is absent")
			}
		})
	}
}

func TestParseResponse_Idempotent(t *testing.T) {
	raw := "idOperacion=1002\nerror=0\nestado=7\ntemperatura=21.5\n"

	first, err := parseResponse(1002, raw, nil)
	if err != nil {
		t.Fatalf("first parse failed: %v", err)
	}
	second, err := parseResponse(1002, raw, nil)
	if err != nil {
		t.Fatalf("second parse failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("parsing is not idempotent: %+v != %+v", first, second)
	}
}

func TestParseResponse_CustomErrorKeys(t *testing.T) {
	// With a custom key list the default keys are ignored entirely.
	raw := "error=5\nestado_op=3\n"

	resp, err := parseResponse(1100, raw, []string{"estado_op"})
	if err != nil {
		t.Fatalf("parseResponse() error = %v", err)
	}
	if resp.StatusOK {
		t.Error("StatusOK = true, want false")
	}
	if resp.ErrorCode == nil || *resp.ErrorCode != 3 {
		t.Errorf("ErrorCode = %v, want 3", resp.ErrorCode)
	}
}

func TestResponseParamHelpers(t *testing.T) {
	resp, err := parseResponse(1002, "error=0\nconsigna_potencia=6\ntemperatura=21.5\non_off=1\n", nil)
	if err != nil {
		t.Fatalf("parseResponse() error = %v", err)
	}

	if got := resp.Param("on_off", "0"); got != "1" {
		t.Errorf("Param(on_off) = %q, want 1", got)
	}
	if got := resp.Param("missing", "fallback"); got != "fallback" {
		t.Errorf("Param(missing) = %q, want fallback", got)
	}
	if got := resp.IntParam("consigna_potencia", 0); got != 6 {
		t.Errorf("IntParam(consigna_potencia) = %d, want 6", got)
	}
	if got := resp.IntParam("temperatura", -1); got != -1 {
		t.Errorf("IntParam(temperatura) = %d, want -1 (not an int)", got)
	}
	if got := resp.FloatParam("temperatura", 0); got != 21.5 {
		t.Errorf("FloatParam(temperatura) = %v, want 21.5", got)
	}
}

func intPtr(n int) *int { return &n }
