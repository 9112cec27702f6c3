package domain

import "time"

// WeatherCondition is a coarse classification of a WMO weather code.
type WeatherCondition string

const (
	ConditionClear  WeatherCondition = "clear"
	ConditionCloudy WeatherCondition = "cloudy"
	ConditionRain   WeatherCondition = "rain"
)

// Weather is the current weather at a start point.
type Weather struct {
	Location     GeoPoint         `json:"location"`
	TemperatureC float64          `json:"temperature_c"`
	WindSpeedKmh float64          `json:"wind_speed_kmh"`
	WeatherCode  int              `json:"weather_code"`
	Condition    WeatherCondition `json:"condition"`
	ObservedAt   time.Time        `json:"observed_at"`
}

// ClassifyWeatherCode maps a WMO code to a condition.
func ClassifyWeatherCode(code int) WeatherCondition {
	switch {
	case code <= 1:
		return ConditionClear
	case code <= 3:
		return ConditionCloudy
	default:
		return ConditionRain
	}
}

// Place is a geocoding search hit.
type Place struct {
	Name     string   `json:"name"`
	Location GeoPoint `json:"location"`
}
