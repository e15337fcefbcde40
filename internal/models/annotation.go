package models

// Explanation pairs an accepted medical term with its plain-language gloss.
type Explanation struct {
	Term        string `json:"term"`
	Explanation string `json:"explanation"`
}

// Candidate is a contiguous noun/adjective run found in tagged text.
// Position is the index of the run's first token.
type Candidate struct {
	Term     string `json:"term"`
	Position int    `json:"position"`
}
