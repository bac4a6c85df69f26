package history

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Load reads a journal file and returns its rounds in section order.
func Load(path string) ([]Round, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses journal sections from r.
func Decode(r io.Reader) ([]Round, error) {
	rounds, _, err := decodeSections(r)
	return rounds, err
}

func decodeSections(r io.Reader) ([]Round, []int, error) {
	var sections map[string]Round
	if _, err := toml.NewDecoder(r).Decode(&sections); err != nil {
		return nil, nil, fmt.Errorf("history: decode: %w", err)
	}

	keys := make([]int, 0, len(sections))
	for k := range sections {
		n, err := strconv.Atoi(k)
		if err != nil {
			return nil, nil, fmt.Errorf("history: section %q is not numeric", k)
		}
		keys = append(keys, n)
	}
	slices.Sort(keys)

	rounds := make([]Round, 0, len(keys))
	for _, k := range keys {
		rounds = append(rounds, sections[strconv.Itoa(k)])
	}
	return rounds, keys, nil
}

type journalTail struct {
	lastSection int
	nextRoom    uint64
}

// scanJournal reports where an existing journal ends. A missing file is empty.
func scanJournal(path string) (journalTail, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return journalTail{}, nil
	}
	if err != nil {
		return journalTail{}, err
	}
	defer f.Close()

	rounds, keys, err := decodeSections(f)
	if err != nil {
		return journalTail{}, fmt.Errorf("%s: %w", path, err)
	}
	var tail journalTail
	if len(keys) > 0 {
		tail.lastSection = keys[len(keys)-1]
	}
	for _, r := range rounds {
		tail.nextRoom = max(tail.nextRoom, r.Room+1)
	}
	return tail, nil
}
