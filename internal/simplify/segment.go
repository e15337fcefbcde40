package simplify

import (
	"strings"

	"github.com/hyperjump/predictimed/internal/models"
)

type segState int

const (
	outsideRun segState = iota
	insideRun
)

// Segment returns the maximal runs of noun and adjective tokens, in order.
func Segment(tokens []Token) []models.Candidate {
	var (
		out   []models.Candidate
		state = outsideRun
		run   []string
		start int
	)
	emit := func() {
		out = append(out, models.Candidate{Term: strings.Join(run, " "), Position: start})
		run = nil
	}
	for i, tok := range tokens {
		inRun := tok.Class != ClassOther
		switch state {
		case outsideRun:
			if inRun {
				state = insideRun
				start = i
				run = append(run, tok.Text)
			}
		case insideRun:
			if inRun {
				run = append(run, tok.Text)
			} else {
				emit()
				state = outsideRun
			}
		}
	}
	if state == insideRun {
		emit()
	}
	return out
}
