// Package handlers holds small HTTP handlers shared by the transports.
package handlers

import "net/http"

// StatusHandler answers every request with 200 and the current status text.
func StatusHandler(status func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)

		if _, err := w.Write([]byte(status())); err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
}
