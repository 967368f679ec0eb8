package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mvaldes/fleetcore-go/internal/adapters/ws"
	"github.com/mvaldes/fleetcore-go/internal/application/automation"
	"github.com/mvaldes/fleetcore-go/internal/domain/task"
)

// newControlServer exposes the daemon's control surface: task start/stop,
// status queries and the websocket event feed.
func newControlServer(manager *automation.Manager, hub *ws.Hub, address string) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version})
	})

	mux.HandleFunc("/ships/start", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "POST required")
			return
		}
		ship := r.URL.Query().Get("ship")
		kind := task.Kind(strings.ToUpper(r.URL.Query().Get("kind")))
		destination := r.URL.Query().Get("destination")
		contractID := r.URL.Query().Get("contract")
		if ship == "" || !task.ValidKind(kind) {
			writeError(w, http.StatusBadRequest, "ship and a valid kind are required")
			return
		}
		taskID, err := manager.StartShipAutomation(r.Context(), ship, kind, destination, contractID)
		if err != nil {
			var already *automation.AlreadyAutomatingError
			if errors.As(err, &already) {
				writeError(w, http.StatusConflict, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"task_id": taskID})
	})

	mux.HandleFunc("/ships/stop", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "POST required")
			return
		}
		ship := r.URL.Query().Get("ship")
		if err := manager.StopShip(r.Context(), ship); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"ship": ship, "status": "stopped"})
	})

	mux.HandleFunc("/ships/status", func(w http.ResponseWriter, r *http.Request) {
		ship := r.URL.Query().Get("ship")
		status, ok := manager.ShipStatusFor(ship)
		if !ok {
			writeError(w, http.StatusNotFound, "no automation for ship "+ship)
			return
		}
		writeJSON(w, http.StatusOK, status)
	})

	mux.HandleFunc("/contracts/start", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "POST required")
			return
		}
		contractID := r.URL.Query().Get("contract")
		if contractID == "" {
			writeError(w, http.StatusBadRequest, "contract is required")
			return
		}
		taskIDs, err := manager.StartContractAutomation(r.Context(), contractID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"contract": contractID, "tasks": taskIDs})
	})

	mux.HandleFunc("/contracts/stop", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "POST required")
			return
		}
		contractID := r.URL.Query().Get("contract")
		if err := manager.StopContract(r.Context(), contractID); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"contract": contractID, "status": "stopped"})
	})

	mux.HandleFunc("/contracts/status", func(w http.ResponseWriter, r *http.Request) {
		contractID := r.URL.Query().Get("contract")
		status, ok := manager.ContractStatusFor(contractID)
		if !ok {
			writeError(w, http.StatusNotFound, "no automation for contract "+contractID)
			return
		}
		writeJSON(w, http.StatusOK, status)
	})

	return &http.Server{Addr: address, Handler: mux}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
