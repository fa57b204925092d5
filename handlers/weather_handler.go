package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"fitQuestAPI/internal/weather"

	log "github.com/sirupsen/logrus"
)

// WeatherHandler serves outdoor workout conditions for the home screen.
type WeatherHandler struct {
	api *weather.Api
}

func NewWeatherHandler(api *weather.Api) *WeatherHandler {
	return &WeatherHandler{api: api}
}

func (h *WeatherHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	latRaw := r.URL.Query().Get("lat")
	lonRaw := r.URL.Query().Get("lon")
	city := r.URL.Query().Get("city")

	var report *weather.Report
	var err error
	switch {
	case latRaw != "" && lonRaw != "":
		var lat, lon float64
		lat, err = strconv.ParseFloat(latRaw, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid lat")
			return
		}
		lon, err = strconv.ParseFloat(lonRaw, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid lon")
			return
		}
		report, err = h.api.CurrentByCoordinates(ctx, lat, lon)
	case city != "":
		report, err = h.api.CurrentByCity(ctx, city)
	default:
		respondWithError(w, http.StatusBadRequest, "either city or lat/lon is required")
		return
	}

	if err != nil {
		log.Printf("Weather Handler: %v", err)
		respondWithError(w, http.StatusBadGateway, "Failed to fetch weather")
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}
