package weather

// OpenWeatherMap current-weather response shapes.
// https://openweathermap.org/current

type Description struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type Main struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  float64 `json:"pressure"`
	Humidity  float64 `json:"humidity"`
}

type Wind struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
}

type ApiResponse struct {
	Weather  []Description `json:"weather"`
	Main     Main          `json:"main"`
	Wind     Wind          `json:"wind"`
	CityName string        `json:"name"`
	Cod      int           `json:"cod"`
}

// Report is the trimmed-down shape the app renders on the home screen.
type Report struct {
	Temperature int     `json:"temperature"`
	TempMin     int     `json:"temp_min"`
	TempMax     int     `json:"temp_max"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	CityName    string  `json:"city_name"`
}

func reportFromResponse(resp *ApiResponse) *Report {
	report := &Report{
		Temperature: int(resp.Main.Temp),
		TempMin:     int(resp.Main.TempMin),
		TempMax:     int(resp.Main.TempMax),
		Humidity:    int(resp.Main.Humidity),
		WindSpeed:   resp.Wind.Speed,
		CityName:    resp.CityName,
	}
	if len(resp.Weather) > 0 {
		report.Description = resp.Weather[0].Description
		report.Icon = resp.Weather[0].Icon
	}
	return report
}
