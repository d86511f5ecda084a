package service

import (
	"context"
	"sync"

	"github.com/vkadam-18/LVDI-2D/internal/model"
)

func industryTable() *model.Table {
	return &model.Table{
		Name:    "industry",
		Columns: []string{"Dimension Type", "Dimension Value", "2023 Avg Rate Jun", "2024 Avg Rate Jun", "2024 Timekeeper Count Jun"},
		Rows: [][]string{
			{"Industry", "Technology", "900", "1000", "10"},
			{"Industry", "Health Care", "800", "850.5", "20"},
			{"Industry", "Financial Services", "950", "1100", "30"},
		},
	}
}

func practiceRoleTable() *model.Table {
	return &model.Table{
		Name:    "practice_area_x_role",
		Columns: []string{"Dimension1 Type", "Dimension1 Value", "Dimension2 Type", "Dimension2 Value", "2023 Timekeeper Count Jun"},
		Rows: [][]string{
			{"Practice Area", "Corporate", "Role", "Partner", "10"},
			{"Practice Area", "Corporate", "Role", "Associate", "20"},
			{"Practice Area", "Litigation", "Role", "Partner", "30"},
			{"Practice Area", "Litigation", "Role", "Associate", "40"},
		},
	}
}

func testTableSet(version string) *model.TableSet {
	set := model.NewTableSet(version)
	set.Add(industryTable())
	set.Add(practiceRoleTable())
	return set
}

type fakeSource struct {
	mu    sync.Mutex
	loads int
	err   error
}

func (f *fakeSource) LoadTables(_ context.Context, version string) (*model.TableSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	return testTableSet(version), nil
}

type fakeModel struct {
	mu       sync.Mutex
	response string
	chunks   []string
	err      error
	disabled bool
	calls    int
	prompts  []string

	embedding []float32
}

func (f *fakeModel) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeModel) GenerateStream(ctx context.Context, prompt string, callback func(thinking, content string) error) (string, error) {
	for _, c := range f.chunks {
		if err := callback("", c); err != nil {
			return "", err
		}
	}
	return f.Generate(ctx, prompt)
}

func (f *fakeModel) IsEnabled() bool { return !f.disabled }

func (f *fakeModel) Embed(context.Context, string) ([]float32, error) {
	return f.embedding, nil
}

func (f *fakeModel) EmbeddingsEnabled() bool { return f.embedding != nil }

func (f *fakeModel) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeStore struct {
	mu       sync.Mutex
	logs     []*model.QueryLog
	cached   *model.Intent
	feedback map[string]bool
}

func (f *fakeStore) LogQuery(_ context.Context, entry *model.QueryLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, entry)
	return nil
}

func (f *fakeStore) FindSimilarIntent(context.Context, []float32, float64, string) (*model.Intent, error) {
	return f.cached, nil
}

func (f *fakeStore) LogFeedback(_ context.Context, askID string, helpful bool, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.feedback == nil {
		f.feedback = make(map[string]bool)
	}
	f.feedback[askID] = helpful
	return nil
}

func (f *fakeStore) logCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.logs)
}
