package response

import (
	"encoding/json"
	"net/http"

	"github.com/rallydesk/rallydesk/internal/apperror"
)

type Envelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, status bool, message, code string, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	envelope := Envelope{
		Status:  status,
		Message: message,
		Code:    code,
		Data:    data,
	}

	json.NewEncoder(w).Encode(envelope)
}

func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	WriteJSON(w, statusCode, true, message, "", data)
}

// FromError maps an application error onto the wire: its catalog code picks
// the HTTP status, its message becomes the envelope message.
func FromError(w http.ResponseWriter, err error) {
	WriteJSON(w, apperror.HTTPStatus(err), false, errMessage(err), string(apperror.Code(err)), nil)
}

func BadRequest(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusBadRequest, false, message, string(apperror.CodeInvalidArgument), nil)
}

func errMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
