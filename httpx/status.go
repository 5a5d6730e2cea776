package httpx

import (
	"fmt"
	"net/http"
)

const (
	StatusOK                  = http.StatusOK                  // Successful request
	StatusCreated             = http.StatusCreated             // Resource created
	StatusNoContent           = http.StatusNoContent           // Successful with no body
	StatusMovedPermanently    = http.StatusMovedPermanently    // Resource moved
	StatusFound               = http.StatusFound               // Temporary redirect
	StatusBadRequest          = http.StatusBadRequest          // Validation or malformed input
	StatusUnauthorized        = http.StatusUnauthorized        // Missing or invalid authentication
	StatusForbidden           = http.StatusForbidden           // Authenticated but lacks permission
	StatusNotFound            = http.StatusNotFound            // Resource not found
	StatusConflict            = http.StatusConflict            // Uniqueness or version conflict
	StatusUnprocessableEntity = http.StatusUnprocessableEntity // Semantically invalid input
	StatusTooManyRequests     = http.StatusTooManyRequests     // Rate limiting or quotas
	StatusInternalError       = http.StatusInternalServerError // Unexpected server error
	StatusServiceUnavailable  = http.StatusServiceUnavailable  // Dependency failure or maintenance
)

// Class groups a status code into the range used for callback routing.
type Class int

const (
	ClassUnclassified Class = iota
	ClassSuccess
	ClassRedirect
	ClassClientError
	ClassServerError
)

// Classify maps a status code onto its Class. Codes outside 200-599 are
// ClassUnclassified.
func Classify(code int) Class {
	switch {
	case code >= 200 && code <= 299:
		return ClassSuccess
	case code >= 300 && code <= 399:
		return ClassRedirect
	case code >= 400 && code <= 499:
		return ClassClientError
	case code >= 500 && code <= 599:
		return ClassServerError
	default:
		return ClassUnclassified
	}
}

var classNames = map[Class]string{
	ClassUnclassified: "unclassified",
	ClassSuccess:      "successful",
	ClassRedirect:     "redirect",
	ClassClientError:  "client error",
	ClassServerError:  "server error",
}

func (c Class) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return fmt.Sprintf("class(%d)", int(c))
}

// Status messages handed to callbacks, one per class.
const (
	MessageSuccess     = "SUCCESS: successfully requested."
	MessageRedirect    = "ERROR: Redirected."
	MessageClientError = "ERROR: Client was NOT able to perform the request."
	MessageServerError = "ERROR: Server didn't respond to your request."
)

var statusMessages = map[Class]string{
	ClassSuccess:     MessageSuccess,
	ClassRedirect:    MessageRedirect,
	ClassClientError: MessageClientError,
	ClassServerError: MessageServerError,
}

// Message returns the callback status message for the class, or "" for
// ClassUnclassified.
func (c Class) Message() string { return statusMessages[c] }

var debugSentences = map[Class]string{
	ClassUnclassified: "Status is outside the classified ranges.",
	ClassSuccess:      "Request was successful.",
	ClassRedirect:     "Request was redirected.",
	ClassClientError:  "Client error.",
	ClassServerError:  "Server error.",
}

// DebugText describes a status code for the debug trace, for example
// "DEBUG: 404 Not Found. Client error.".
func DebugText(code int) string {
	reason := http.StatusText(code)
	if reason == "" {
		reason = "Unknown Status"
	}
	return fmt.Sprintf("DEBUG: %d %s. %s", code, reason, debugSentences[Classify(code)])
}
