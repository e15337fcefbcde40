package lexicon

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// wordnetFiles maps a part of speech to the suffix of its index./data. files.
var wordnetFiles = map[string]string{
	Noun:      "noun",
	Verb:      "verb",
	Adjective: "adj",
	Adverb:    "adv",
}

// defaultLexnames is the lexicographer file list shipped with WordNet 3.0,
// used when the dictionary directory has no lexnames file.
var defaultLexnames = []string{
	"adj.all", "adj.pert", "adv.all", "noun.Tops", "noun.act", "noun.animal",
	"noun.artifact", "noun.attribute", "noun.body", "noun.cognition",
	"noun.communication", "noun.event", "noun.feeling", "noun.food",
	"noun.group", "noun.location", "noun.motive", "noun.object", "noun.person",
	"noun.phenomenon", "noun.plant", "noun.possession", "noun.process",
	"noun.quantity", "noun.relation", "noun.shape", "noun.state",
	"noun.substance", "noun.time", "verb.body", "verb.change",
	"verb.cognition", "verb.communication", "verb.competition",
	"verb.consumption", "verb.contact", "verb.creation", "verb.emotion",
	"verb.motion", "verb.perception", "verb.possession", "verb.social",
	"verb.stative", "verb.weather", "adj.ppl",
}

// importBatchSize is the number of senses indexed per bleve batch.
const importBatchSize = 5000

type synset struct {
	lexname    string
	definition string
}

// ImportStats summarizes a WordNet import.
type ImportStats struct {
	Synsets    int
	Senses     int
	Exceptions int
}

// ImportWordNet reads the WordNet database files (index.* and data.* for each
// part of speech, plus lexnames and the *.exc exception lists when present)
// from dictDir into l.
func ImportWordNet(ctx context.Context, l *BleveLexicon, dictDir string) (*ImportStats, error) {
	lexnames, err := readLexnames(filepath.Join(dictDir, "lexnames"))
	if err != nil {
		return nil, err
	}

	stats := &ImportStats{}
	batch := make([]Sense, 0, importBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := l.AddSenses(ctx, batch); err != nil {
			return err
		}
		stats.Senses += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, pos := range lookupOrder {
		suffix := wordnetFiles[pos]
		synsets, err := readDataFile(filepath.Join(dictDir, "data."+suffix), lexnames)
		if err != nil {
			return nil, err
		}
		stats.Synsets += len(synsets)

		err = readIndexFile(filepath.Join(dictDir, "index."+suffix), func(lemma string, offsets []string) error {
			for rank, off := range offsets {
				ss, ok := synsets[off]
				if !ok {
					return fmt.Errorf("index.%s: %s refers to unknown synset %s", suffix, lemma, off)
				}
				batch = append(batch, Sense{
					Lemma:      lemma,
					POS:        pos,
					Rank:       rank,
					Offset:     off,
					Lexname:    ss.lexname,
					Definition: ss.definition,
				})
				if len(batch) >= importBatchSize {
					if err := flush(); err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		exc, err := readExceptionFile(filepath.Join(dictDir, suffix+".exc"))
		if err != nil {
			return nil, err
		}
		if err := l.AddExceptions(ctx, pos, exc); err != nil {
			return nil, err
		}
		stats.Exceptions += len(exc)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return stats, nil
}

// readExceptionFile parses a *.exc file. A line is
//
//	inflected_form base_form [base_form...]
//
// A missing file yields no exceptions.
func readExceptionFile(path string) (map[string][]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open wordnet exceptions: %w", err)
	}
	defer f.Close()

	out := make(map[string][]string)
	err = eachLine(f, func(n int, line string) error {
		fields := strings.Fields(strings.ToLower(line))
		if len(fields) < 2 {
			return fmt.Errorf("%s:%d: exception without base form", filepath.Base(path), n)
		}
		out[fields[0]] = append(out[fields[0]], fields[1:]...)
		return nil
	})
	return out, err
}

func readLexnames(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return defaultLexnames, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("lexnames: bad file number %q", fields[0])
		}
		for len(names) <= n {
			names = append(names, "")
		}
		names[n] = fields[1]
	}
	return names, sc.Err()
}

// readDataFile parses a data.* file into synsets keyed by offset. A line is
//
//	offset lex_filenum ss_type w_cnt word lex_id [word lex_id...] p_cnt ... | gloss
//
// and lines starting with a space are the license header.
func readDataFile(path string, lexnames []string) (map[string]synset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wordnet data: %w", err)
	}
	defer f.Close()

	out := make(map[string]synset)
	err = eachLine(f, func(n int, line string) error {
		head, gloss, _ := strings.Cut(line, "|")
		fields := strings.Fields(head)
		if len(fields) < 4 {
			return fmt.Errorf("%s:%d: short synset line", filepath.Base(path), n)
		}
		num, err := strconv.Atoi(fields[1])
		if err != nil || num < 0 || num >= len(lexnames) {
			return fmt.Errorf("%s:%d: bad lexicographer file %q", filepath.Base(path), n, fields[1])
		}
		out[fields[0]] = synset{lexname: lexnames[num], definition: definition(gloss)}
		return nil
	})
	return out, err
}

// readIndexFile calls fn for every lemma of an index.* file with its synset
// offsets in sense-rank order. A line is
//
//	lemma pos synset_cnt p_cnt [ptr_symbol...] sense_cnt tagsense_cnt synset_offset...
func readIndexFile(path string, fn func(lemma string, offsets []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open wordnet index: %w", err)
	}
	defer f.Close()

	return eachLine(f, func(n int, line string) error {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return fmt.Errorf("%s:%d: short index line", filepath.Base(path), n)
		}
		synsetCnt, err1 := strconv.Atoi(fields[2])
		ptrCnt, err2 := strconv.Atoi(fields[3])
		if err1 != nil || err2 != nil {
			return fmt.Errorf("%s:%d: bad counts", filepath.Base(path), n)
		}
		start := 4 + ptrCnt + 2
		if len(fields) < start+synsetCnt {
			return fmt.Errorf("%s:%d: expected %d offsets", filepath.Base(path), n, synsetCnt)
		}
		return fn(strings.ToLower(fields[0]), fields[start:start+synsetCnt])
	})
}

func eachLine(r io.Reader, fn func(n int, line string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, " ") {
			continue
		}
		if err := fn(n, line); err != nil {
			return err
		}
	}
	return sc.Err()
}

// definition drops the quoted usage examples from a gloss.
func definition(gloss string) string {
	var parts []string
	for _, p := range strings.Split(strings.TrimSpace(gloss), "; ") {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, `"`) {
			continue
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, "; ")
}
