package netflame

// Operation codes (idOperacion) understood by NetFlame-style stove
// firmware. The numeric IDs instruct the controller to return or modify
// internal state.
const (
	// Read operations
	OpGetData          = 1002 // main telemetry/state snapshot
	OpGetOperativeMode = 1071 // power vs ambient-temperature mode
	OpGetAlarms        = 1079 // current alarm code
	OpGetLanguage      = 1090 // configured UI language
	OpGetHour          = 1094 // internal clock, epoch seconds in int_rx
	OpGetStoveType     = 1100 // stove model identifier
	OpGetHeaterType    = 1102 // heater/water system identifier

	// Write operations
	OpSetHour = 1095 // set clock, epoch seconds sent as int_rx
)

// Well-known response parameter keys used by the firmware
const (
	paramIntRx        = "int_rx"
	paramLanguage     = "idioma"
	paramAlarms       = "get_alarmas"
	paramStoveType    = "tipoestufa"
	paramHeaterType   = "tipo_agua"
	paramMode         = "modo_operacion"
	paramFuncMode     = "modo_func"
	paramOnOff        = "on_off"
	paramPowerSet     = "consigna_potencia"
	paramTempSetpoint = "consigna_temperatura"
	paramTemperature  = "temperatura"
	paramState        = "estado"
)
