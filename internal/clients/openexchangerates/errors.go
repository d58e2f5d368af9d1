package openexchangerates

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

var ErrUnexpectedStatus = errors.New("unexpected http status")

// RequestError is returned for every failed round trip: transport failures carry
// StatusCode 0, rejected requests carry the status and whatever the service said.
type RequestError struct {
	Op          string
	URL         string
	StatusCode  int
	Body        string
	Message     string
	Description string
	Err         error
}

func (e *RequestError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("openexchangerates %s: http %d: %s: %s", e.Op, e.StatusCode, e.Message, e.Description)
	case e.StatusCode != 0:
		return fmt.Sprintf("openexchangerates %s: http %d: %s", e.Op, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("openexchangerates %s: %v", e.Op, e.Err)
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// errorEnvelope is the body the service sends with 4xx/5xx responses.
type errorEnvelope struct {
	Error       bool   `json:"error"`
	Status      int    `json:"status"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

func isErrorEnvelope(body []byte) bool {
	var env errorEnvelope
	return json.Unmarshal(body, &env) == nil && env.Error
}

func newStatusError(op, rawURL string, status int, body []byte) *RequestError {
	e := &RequestError{
		Op:         op,
		URL:        rawURL,
		StatusCode: status,
		Body:       string(body),
		Err:        fmt.Errorf("%w %d", ErrUnexpectedStatus, status),
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error {
		e.Message = env.Message
		e.Description = env.Description
	}
	return e
}

func newTransportError(op, rawURL string, err error) *RequestError {
	var ue *url.Error
	if errors.As(err, &ue) {
		err = &url.Error{Op: ue.Op, URL: redactURL(ue.URL), Err: ue.Err}
	}
	return &RequestError{Op: op, URL: rawURL, Err: err}
}

// redactURL hides the app_id so errors can be logged safely.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}
	q := u.Query()
	if q.Has(appIDParam) {
		q.Set(appIDParam, "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
