package api

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

type JSON map[string]any

func RegisterRoutes(r *mux.Router, db *sql.DB) {
	h := &Handler{db: db}

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	// Dataset endpoints
	r.HandleFunc("/datasets", h.ListDatasets).Methods(http.MethodGet)
	r.HandleFunc("/datasets/create", h.PostCreateDataset).Methods(http.MethodPost)

	// Bootstrap endpoints
	r.HandleFunc("/bootstrap", h.PostBootstrap).Methods(http.MethodPost)
	r.HandleFunc("/runs", h.ListRuns).Methods(http.MethodGet)
}

type Handler struct {
	db *sql.DB
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
