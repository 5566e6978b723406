package server

import (
	"encoding/json"
	"net/http"
)

// Version is injected by the build system
var Version = "unknown"

type VersionResponse struct {
	Version string `json:"version"`
}

func VersionHandler(w http.ResponseWriter, r *http.Request) {
	version := VersionResponse{
		Version: Version,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(version)
}
