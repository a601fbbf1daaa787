package pkg

import (
	"encoding/json"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
)

var ContentType = struct {
	Text string
	JSON string
	HTML string
}{
	Text: "text/plain; charset=utf-8",
	JSON: "application/json",
	HTML: "text/html; charset=utf-8",
}

func WriteResponse(w http.ResponseWriter, contentType, message string, statusCode int) {
	WriteResponseBytes(w, contentType, []byte(message), statusCode)
}

func WriteResponseBytes(w http.ResponseWriter, contentType string, message []byte, statusCode int) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	w.WriteHeader(statusCode)

	if _, err := w.Write(message); err != nil {
		log.Errorf("failed to write response [%s]: %s", message, err)
	}
}

func WriteTextResponseOK(w http.ResponseWriter, message string) {
	WriteResponse(w, ContentType.Text, message, http.StatusOK)
}

// WriteJSONResponse marshals v and writes it with the given status code.
// Marshal errors are returned before anything is written to w.
func WriteJSONResponse(w http.ResponseWriter, v any, statusCode int) error {
	respJson, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json response: %w", err)
	}
	WriteResponseBytes(w, ContentType.JSON, respJson, statusCode)
	return nil
}
