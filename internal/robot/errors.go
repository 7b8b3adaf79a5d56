package robot

import "errors"

var (
	// ErrPortalUnavailable means the portal did not load within the retry budget
	ErrPortalUnavailable = errors.New("sicar portal did not load")

	// ErrStateSelection means every state strategy failed outright
	ErrStateSelection = errors.New("state selection failed")

	// ErrStateUnconfirmed means a state strategy acted but no signal confirmed it
	ErrStateUnconfirmed = errors.New("state selection could not be confirmed")

	// ErrMunicipalitySelection means every municipality strategy failed outright
	ErrMunicipalitySelection = errors.New("municipality selection failed")

	// ErrMunicipalityUnconfirmed means a municipality strategy acted but no
	// signal confirmed it
	ErrMunicipalityUnconfirmed = errors.New("municipality selection could not be confirmed")

	// ErrPropertyNotFound means no property was located at the coordinate
	ErrPropertyNotFound = errors.New("no property found at coordinate")

	// ErrNoPropertyDetails means a result appeared but its panel could not be parsed
	ErrNoPropertyDetails = errors.New("property details could not be extracted")
)

// SelectionError maps a locator outcome to the matching typed error, keeping
// the failed/inconclusive distinction diagnosable.
func SelectionError(outcome Outcome, failed, unconfirmed error) error {
	switch outcome {
	case OutcomeSucceeded:
		return nil
	case OutcomeInconclusive:
		return unconfirmed
	default:
		return failed
	}
}
