package dto

// RosterRowError reports why one spreadsheet row was rejected.
type RosterRowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// RosterImportReport summarizes a roster import run.
type RosterImportReport struct {
	Created int              `json:"created"`
	Updated int              `json:"updated"`
	Errors  []RosterRowError `json:"errors"`
}
