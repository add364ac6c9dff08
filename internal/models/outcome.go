package models

// Status classifies the result of a single geocode request.
type Status string

const (
	// StatusMatched means the service returned a scored candidate.
	StatusMatched Status = "matched"
	// StatusNotFound means the service answered but found no candidate.
	StatusNotFound Status = "not_found"
	// StatusBadRequest means the request was malformed and the service could not route it.
	StatusBadRequest Status = "bad_request"
	// StatusError means the request failed for an unanticipated reason.
	StatusError Status = "error"
)

// Candidate holds the match returned by the geocoding service, carried through verbatim.
type Candidate struct {
	X                   float64 // X coordinate of the match.
	Y                   float64 // Y coordinate of the match.
	Score               float64 // Score is the match confidence reported by the service.
	Locator             string  // Locator is the address locator that produced the match.
	MatchAddress        string  // MatchAddress is the address the locator matched against.
	InputAddress        string  // InputAddress is the address as the service received it.
	StandardizedAddress string  // StandardizedAddress is the service's standardized form.
	AddressGrid         string  // AddressGrid is the address grid the match falls in.
}

// Outcome is the recorded result for one input row. Exactly one of Candidate
// or Message is populated: Candidate on StatusMatched, Message otherwise.
type Outcome struct {
	ID        string     // ID is the input row's identifier.
	Status    Status     // Status classifies how the request ended.
	Candidate *Candidate // Candidate is the match, nil unless Status is StatusMatched.
	Message   string     // Message is the failure diagnostic, empty on StatusMatched.
}
