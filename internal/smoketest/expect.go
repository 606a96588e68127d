package smoketest

import (
	"fmt"
	"net/http"

	"gestctl/internal/gestagent"
)

// Expectation returns nil when a response is acceptable.
type Expectation func(resp *gestagent.Response) error

// ExpectStatus requires an exact status code.
func ExpectStatus(code int) Expectation {
	return func(resp *gestagent.Response) error {
		if resp.StatusCode != code {
			return fmt.Errorf("HTTP %d", resp.StatusCode)
		}
		return nil
	}
}

// ExpectSuccess requires HTTP 200 and success:true. The service's error
// text, when present, becomes the failure message.
func ExpectSuccess() Expectation {
	return func(resp *gestagent.Response) error {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("HTTP %d", resp.StatusCode)
		}

		var env gestagent.Envelope
		if err := gestagent.DecodeBody(resp, &env); err != nil {
			return err
		}

		if !env.Success {
			return fmt.Errorf("%s", env.ErrorOr("Unknown error"))
		}

		return nil
	}
}

// ExpectRejected requires HTTP 400 with a non-empty error field: the
// service refused a malformed request.
func ExpectRejected() Expectation {
	return func(resp *gestagent.Response) error {
		if resp.StatusCode != http.StatusBadRequest {
			return fmt.Errorf("expected HTTP 400, got HTTP %d", resp.StatusCode)
		}

		var env gestagent.Envelope
		if err := gestagent.DecodeBody(resp, &env); err != nil {
			return err
		}

		if !env.HasError() {
			return fmt.Errorf("error response missing error message")
		}

		return nil
	}
}

// ExpectStructuredFailure requires HTTP 200 with success:false and a
// non-empty error field: a well-formed request the service could not honour.
func ExpectStructuredFailure() Expectation {
	return func(resp *gestagent.Response) error {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status code HTTP %d", resp.StatusCode)
		}

		var env gestagent.Envelope
		if err := gestagent.DecodeBody(resp, &env); err != nil {
			return err
		}

		if env.Success || !env.HasError() {
			return fmt.Errorf("expected success:false with an error message")
		}

		return nil
	}
}

// All requires every expectation, reporting the first failure.
func All(expectations ...Expectation) Expectation {
	return func(resp *gestagent.Response) error {
		for _, e := range expectations {
			if err := e(resp); err != nil {
				return err
			}
		}
		return nil
	}
}
