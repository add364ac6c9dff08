package models

// Row represents a single address to geocode with an opaque caller identifier.
type Row struct {
	ID     string // ID is the caller's identifier for this address, carried through to the output.
	Street string // Street is the raw street portion of the address.
	Zone   string // Zone is the raw city name or ZIP code.
}
