package entities

import (
	"fmt"
	"time"
)

// SensorRecord guarda as medições ambientais em deci-unidades (valor * 10, truncado).
type SensorRecord struct {
	DateTime         time.Time `json:"dateTime" bson:"dateTime"`
	TempInDeciC      int64     `json:"tempIn" bson:"tempIn"`
	TempOutDeciC     int64     `json:"tempOut" bson:"tempOut"`
	RainOut          bool      `json:"rainOut" bson:"rainOut"`
	WindSpeedDeciMs  int64     `json:"windSpeedMs" bson:"windSpeedMs"`
	HumidityDeciPerc int64     `json:"humOutPerc" bson:"humOutPerc"`
}

func (r SensorRecord) String() string {
	return fmt.Sprintf("{dateTime: %s, tempIn: %d, tempOut: %d, rainOut: %t, windSpeedMs: %d, humOutPerc: %d}",
		r.DateTime.Format(time.RFC3339), r.TempInDeciC, r.TempOutDeciC, r.RainOut, r.WindSpeedDeciMs, r.HumidityDeciPerc)
}

// CommandRecord is the thermostat feedback extracted from an uplink.
type CommandRecord struct {
	DateTime       time.Time `json:"dateTime" bson:"dateTime"`
	ThermostatMode int64     `json:"thermostat" bson:"thermostat"`
}

func (r CommandRecord) String() string {
	return fmt.Sprintf("{dateTime: %s, thermostat: %d}", r.DateTime.Format(time.RFC3339), r.ThermostatMode)
}
