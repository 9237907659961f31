package animeapi

const DefaultFailureMessage = "API request failed"

// RequestFailedError is returned for every failed call: transport errors,
// undecodable bodies and envelopes with success=false alike. Error returns
// the text a view should show.
type RequestFailedError struct {
	Endpoint string
	Message  string
	Err      error
}

func (err *RequestFailedError) Error() string {
	if err.Message == "" {
		return DefaultFailureMessage
	}
	return err.Message
}

func (err *RequestFailedError) Unwrap() error {
	return err.Err
}
