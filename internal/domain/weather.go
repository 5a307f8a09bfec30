package domain

// CurrentWeather is the Open-Meteo current-conditions block shaped for display.
type CurrentWeather struct {
	TemperatureC    float64 `json:"temperature_c"`
	FeelsLikeC      float64 `json:"feels_like_c"`
	Humidity        float64 `json:"humidity_percent"`
	PrecipitationMm float64 `json:"precipitation_mm"`
	WindSpeedKmh    float64 `json:"wind_speed_kmh"`
	WindGustsKmh    float64 `json:"wind_gusts_kmh"`
	PressureHpa     float64 `json:"pressure_hpa"`
	CloudCover      float64 `json:"cloud_cover_percent"`
	WeatherCode     int     `json:"weather_code"`
	Condition       string  `json:"condition"`
}

// AirQuality is the Open-Meteo current air quality block.
type AirQuality struct {
	PM25    float64 `json:"pm2_5"`
	PM10    float64 `json:"pm10"`
	UVIndex float64 `json:"uv_index"`
	// EuropeanAQI is the European air quality index (0-20 good, >100 extremely poor).
	EuropeanAQI float64 `json:"european_aqi"`
}

// weatherConditions maps WMO weather interpretation codes to display text.
// Snow codes are kept even though they never occur in Davao; the table is the
// full WMO set.
var weatherConditions = map[int]string{
	0:  "Clear Sky",
	1:  "Mainly Clear",
	2:  "Partly Cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Rime Fog",
	51: "Light Drizzle",
	53: "Moderate Drizzle",
	55: "Dense Drizzle",
	56: "Light Freezing Drizzle",
	57: "Dense Freezing Drizzle",
	61: "Slight Rain",
	63: "Moderate Rain",
	65: "Heavy Rain",
	66: "Light Freezing Rain",
	67: "Heavy Freezing Rain",
	71: "Slight Snow",
	73: "Moderate Snow",
	75: "Heavy Snow",
	77: "Snow Grains",
	80: "Slight Rain Showers",
	81: "Moderate Rain Showers",
	82: "Violent Rain Showers",
	85: "Slight Snow Showers",
	86: "Heavy Snow Showers",
	95: "Thunderstorm",
	96: "Thunderstorm with Slight Hail",
	99: "Thunderstorm with Heavy Hail",
}

// ConditionForCode returns the display text for a WMO weather code, or
// "Unknown" for codes outside the interpretation table.
func ConditionForCode(code int) string {
	if c, ok := weatherConditions[code]; ok {
		return c
	}
	return "Unknown"
}
