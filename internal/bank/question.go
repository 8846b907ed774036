package bank

import (
	"errors"
	"strconv"
)

// ErrNoQuestions is returned by Load when every section was skipped or
// filtered down to nothing.
var ErrNoQuestions = errors.New("no questions available")

// excludedMarker marks questions that refer to an embedded figure
// ("この図", "この標識", ...) and cannot be shown as plain text.
const excludedMarker = "この"

// Question is a single true/false statement from the bank.
type Question struct {
	ID          string
	Text        string
	Answer      bool
	Explanation string
	Section     int
}

// Tier is a group of sections stored under one directory.
type Tier struct {
	Name          string `yaml:"name"`
	Dir           string `yaml:"dir"`
	Sections      []int  `yaml:"sections"`
	IDPrefix      string `yaml:"id_prefix"`
	SectionOffset int    `yaml:"section_offset"`
}

// QuestionID builds the pool-wide id for a local id in section.
func (t Tier) QuestionID(section int, localID string) string {
	return t.IDPrefix + strconv.Itoa(section) + "-" + localID
}

// Mode describes one quiz configuration.
type Mode struct {
	Key           string   `yaml:"key"`
	Name          string   `yaml:"name"`
	QuestionCount int      `yaml:"question_count"`
	PassRate      int      `yaml:"pass_rate"`
	Tiers         []string `yaml:"tiers"`
}

const (
	TierFirst  = "first"
	TierSecond = "second"

	ModeProvisional = "provisional"
	ModeFull        = "full"
)

var (
	FirstTier = Tier{
		Name:     TierFirst,
		Dir:      "1st-step-sections",
		Sections: sectionRange(1, 14),
	}
	SecondTier = Tier{
		Name:          TierSecond,
		Dir:           "2nd-step-sections",
		Sections:      sectionRange(1, 14),
		IDPrefix:      "2nd-",
		SectionOffset: 100,
	}

	Provisional = Mode{
		Key:           ModeProvisional,
		Name:          "仮免許効果測定",
		QuestionCount: 50,
		PassRate:      90,
		Tiers:         []string{TierFirst},
	}
	Full = Mode{
		Key:           ModeFull,
		Name:          "本免許効果測定",
		QuestionCount: 90,
		PassRate:      90,
		Tiers:         []string{TierFirst, TierSecond},
	}
)

func sectionRange(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}
