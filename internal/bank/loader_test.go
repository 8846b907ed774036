package bank

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/marubatsu/internal/source"
)

func file(s string) *fstest.MapFile { return &fstest.MapFile{Data: []byte(s)} }

func testBank() fstest.MapFS {
	return fstest.MapFS{
		"1st-step-sections/1/questions.csv": file("id,question\n" +
			"1,車は左側通行である\n" +
			"2,この標識は駐車禁止を示す\n" +
			"3,黄色の灯火では必ず停止する\n" +
			"4,答えのない問題\n" +
			"１０,全角の番号\n" +
			"5,\n"),
		"1st-step-sections/1/answers.csv": file("id,answer,explain\n" +
			"1,true,\n" +
			"2,false,\n" +
			"3, FALSE ,安全に停止できない場合は進める\n" +
			"10,True\n" +
			"5,true,\n"),
		"1st-step-sections/2/questions.csv": file("id,question\n1,歩行者優先\n1,重複した問題\n"),
		"1st-step-sections/2/answers.csv":   file("id,answer,explain\n1,true,\n"),
		// section 3 has no answers file
		"1st-step-sections/3/questions.csv": file("id,question\n1,見つからない\n"),
		"2nd-step-sections/1/questions.csv": file("id,question\n1,高速道路の最低速度は50km/h\n2,不明な答え\n"),
		"2nd-step-sections/1/answers.csv":   file("id,answer,explain\n1,true,\n2,maybe,\n"),
	}
}

func testManifest() Manifest {
	first := FirstTier
	first.Sections = []int{1, 2, 3}
	second := SecondTier
	second.Sections = []int{1}
	return Manifest{
		Tiers: []Tier{first, second},
		Modes: []Mode{Provisional, Full},
	}
}

func ids(qs []Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func TestLoadProvisional(t *testing.T) {
	l := NewLoader(source.NewDirFetcher(testBank()), WithManifest(testManifest()))

	pool, err := l.Load(context.Background(), Provisional)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := strings.Join(ids(pool), ",")
	want := "1-1,1-3,1-10,2-1"
	if got != want {
		t.Fatalf("ids = %s, want %s", got, want)
	}

	byID := make(map[string]Question)
	for _, q := range pool {
		byID[q.ID] = q
	}
	if q := byID["1-3"]; q.Answer || q.Explanation != "安全に停止できない場合は進める" {
		t.Errorf("1-3 = %+v, want false answer with explanation", q)
	}
	if q := byID["1-10"]; !q.Answer || q.Text != "全角の番号" {
		t.Errorf("1-10 = %+v, want full-width id joined", q)
	}
	if q := byID["2-1"]; q.Text != "歩行者優先" {
		t.Errorf("2-1 text = %q, want first occurrence", q.Text)
	}
}

func TestLoadFullIncludesSecondTier(t *testing.T) {
	l := NewLoader(source.NewDirFetcher(testBank()), WithManifest(testManifest()))

	pool, err := l.Load(context.Background(), Full)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	last := pool[len(pool)-1]
	if last.ID != "2nd-1-1" || last.Section != 101 {
		t.Errorf("last = %+v, want 2nd-1-1 in section 101", last)
	}
	if len(pool) != 5 {
		t.Errorf("len(pool) = %d, want 5", len(pool))
	}
}

func TestLoadPoolInvariants(t *testing.T) {
	l := NewLoader(source.NewDirFetcher(testBank()), WithManifest(testManifest()))

	pool, err := l.Load(context.Background(), Full)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	seen := make(map[string]bool)
	for _, q := range pool {
		if seen[q.ID] {
			t.Errorf("duplicate id %s", q.ID)
		}
		seen[q.ID] = true
		if strings.Contains(q.Text, "この") {
			t.Errorf("question %s contains excluded marker: %q", q.ID, q.Text)
		}
		if q.Text == "" {
			t.Errorf("question %s has empty text", q.ID)
		}
	}
	for _, id := range []string{"1-4", "1-5", "1-2", "2nd-1-2", "3-1"} {
		if seen[id] {
			t.Errorf("question %s should have been dropped", id)
		}
	}
}

func TestLoadLogsSkippedSection(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	l := NewLoader(source.NewDirFetcher(testBank()),
		WithManifest(testManifest()),
		WithLogger(zap.New(core)))

	if _, err := l.Load(context.Background(), Provisional); err != nil {
		t.Fatalf("Load: %v", err)
	}

	skipped := logs.FilterMessage("section skipped").All()
	if len(skipped) != 1 {
		t.Fatalf("skipped sections logged = %d, want 1", len(skipped))
	}
	if got := skipped[0].ContextMap()["section"]; got != int64(3) {
		t.Errorf("skipped section = %v, want 3", got)
	}
}

func TestLoadEmptyPool(t *testing.T) {
	l := NewLoader(source.NewDirFetcher(fstest.MapFS{}))

	_, err := l.Load(context.Background(), Provisional)
	if !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("err = %v, want ErrNoQuestions", err)
	}
}

func TestLoadUnknownTier(t *testing.T) {
	l := NewLoader(source.NewDirFetcher(testBank()), WithManifest(testManifest()))
	mode := Mode{Key: "custom", QuestionCount: 10, PassRate: 80, Tiers: []string{"third"}}

	_, err := l.Load(context.Background(), mode)
	if !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("err = %v, want ErrNoQuestions", err)
	}
}

func TestNormalizeLocalID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"12", "12"},
		{" 12 ", "12"},
		{"１２", "12"},
		{"　３　", "3"},
		{"Ａ1", "A1"},
	}
	for _, tt := range tests {
		if got := NormalizeLocalID(tt.in); got != tt.want {
			t.Errorf("NormalizeLocalID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
