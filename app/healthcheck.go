package main

import "net/http"

type systemInfo struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	status := struct {
		Status     string     `json:"status"`
		SystemInfo systemInfo `json:"system_info"`
	}{
		Status:     "available",
		SystemInfo: systemInfo{Environment: app.config.Environment, Version: app.config.Version},
	}

	if err := app.writeJSON(w, http.StatusOK, status, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
