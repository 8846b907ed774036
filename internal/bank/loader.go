package bank

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/width"

	"github.com/abhisek/marubatsu/internal/source"
)

// maxConcurrentSections bounds how many sections are fetched at once.
const maxConcurrentSections = 8

// Loader turns per-section question/answer resources into a question pool.
type Loader struct {
	fetcher  source.Fetcher
	manifest Manifest
	logger   *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithManifest overrides the built-in tier layout.
func WithManifest(m Manifest) LoaderOption {
	return func(l *Loader) { l.manifest = m }
}

// WithLogger sets the logger used for skipped sections.
func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a Loader reading through f.
func NewLoader(f source.Fetcher, opts ...LoaderOption) *Loader {
	l := &Loader{
		fetcher:  f,
		manifest: DefaultManifest(),
		logger:   zap.NewNop(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Manifest returns the tier layout the loader uses.
func (l *Loader) Manifest() Manifest {
	return l.manifest
}

type sectionJob struct {
	tier    Tier
	section int
}

// Load reads every section of every tier the mode uses. Sections that
// fail to fetch or parse are logged and skipped. The pool keeps tier,
// section and file order, with duplicate ids dropped after their first
// occurrence.
func (l *Loader) Load(ctx context.Context, mode Mode) ([]Question, error) {
	var jobs []sectionJob
	for _, name := range mode.Tiers {
		tier, ok := l.manifest.Tier(name)
		if !ok {
			l.logger.Warn("unknown tier in mode",
				zap.String("mode", mode.Key),
				zap.String("tier", name))
			continue
		}
		for _, s := range tier.Sections {
			jobs = append(jobs, sectionJob{tier: tier, section: s})
		}
	}

	results := make([][]Question, len(jobs))

	var g errgroup.Group
	g.SetLimit(maxConcurrentSections)
	for i, job := range jobs {
		g.Go(func() error {
			qs, err := l.loadSection(ctx, job.tier, job.section)
			if err != nil {
				l.logger.Warn("section skipped",
					zap.String("tier", job.tier.Name),
					zap.Int("section", job.section),
					zap.Error(err))
				return nil
			}
			results[i] = qs
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var pool []Question
	for _, qs := range results {
		for _, q := range qs {
			if seen[q.ID] {
				continue
			}
			seen[q.ID] = true
			pool = append(pool, q)
		}
	}

	l.logger.Info("question pool loaded",
		zap.String("mode", mode.Key),
		zap.Int("sections", len(jobs)),
		zap.Int("questions", len(pool)))

	if len(pool) == 0 {
		return nil, ErrNoQuestions
	}
	return pool, nil
}

// loadSection fetches the question and answer resources of one section
// together and joins them.
func (l *Loader) loadSection(ctx context.Context, tier Tier, section int) ([]Question, error) {
	dir := path.Join(tier.Dir, strconv.Itoa(section))

	var qData, aData []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		qData, err = l.fetcher.Fetch(gctx, path.Join(dir, "questions.csv"))
		return err
	})
	g.Go(func() error {
		var err error
		aData, err = l.fetcher.Fetch(gctx, path.Join(dir, "answers.csv"))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	qRows, err := parseTable(qData)
	if err != nil {
		return nil, fmt.Errorf("questions.csv: %w", err)
	}
	aRows, err := parseTable(aData)
	if err != nil {
		return nil, fmt.Errorf("answers.csv: %w", err)
	}

	return joinSection(tier, section, qRows, aRows), nil
}

type answerRow struct {
	answer  bool
	explain string
}

// joinSection pairs question rows with answer rows by local id. Questions
// without a usable answer row are dropped, as are empty or figure-based
// statements.
func joinSection(tier Tier, section int, qRows, aRows []map[string]string) []Question {
	answers := make(map[string]answerRow, len(aRows))
	for _, row := range aRows {
		id := NormalizeLocalID(row["id"])
		if id == "" {
			continue
		}
		v, ok := parseAnswer(row["answer"])
		if !ok {
			continue
		}
		if _, dup := answers[id]; dup {
			continue
		}
		answers[id] = answerRow{answer: v, explain: strings.TrimSpace(row["explain"])}
	}

	out := make([]Question, 0, len(qRows))
	for _, row := range qRows {
		text := strings.TrimSpace(row["question"])
		if text == "" || strings.Contains(text, excludedMarker) {
			continue
		}
		id := NormalizeLocalID(row["id"])
		a, ok := answers[id]
		if !ok {
			continue
		}
		out = append(out, Question{
			ID:          tier.QuestionID(section, id),
			Text:        text,
			Answer:      a.answer,
			Explanation: a.explain,
			Section:     section + tier.SectionOffset,
		})
	}
	return out
}

// NormalizeLocalID trims a local id and folds full-width digits and
// letters to ASCII, so "１２" and "12" join.
func NormalizeLocalID(id string) string {
	return width.Narrow.String(strings.TrimSpace(id))
}

func parseAnswer(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}
