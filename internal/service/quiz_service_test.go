package service_test

import (
	"errors"
	"sort"
	"sync"
	"testing"

	"mentorprog_backend/internal/model"
	"mentorprog_backend/internal/service"
	"mentorprog_backend/internal/util"
)

type memTopics struct {
	topics map[string]map[string]*model.Topic // subjectID → topicID → topic
}

func (m *memTopics) FindForSubject(subjectID, topicID string) (*model.Topic, error) {
	byTopic, ok := m.topics[subjectID]
	if !ok {
		return nil, util.ErrSubjectNotFound
	}
	topic, ok := byTopic[topicID]
	if !ok {
		return nil, util.ErrTopicNotFound
	}
	return topic, nil
}

type memLedger struct {
	mu       sync.Mutex
	nextID   uint
	attempts []model.QuizAttempt
}

func (m *memLedger) FindByUserAndQuiz(userID, quizID string) (*model.QuizAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findLocked(userID, quizID), nil
}

func (m *memLedger) findLocked(userID, quizID string) *model.QuizAttempt {
	for i := range m.attempts {
		if m.attempts[i].UserID == userID && m.attempts[i].QuizID == quizID {
			a := m.attempts[i]
			return &a
		}
	}
	return nil
}

func (m *memLedger) InsertIfAbsent(attempt *model.QuizAttempt) (*model.QuizAttempt, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing := m.findLocked(attempt.UserID, attempt.QuizID); existing != nil {
		return existing, false, nil
	}
	m.nextID++
	attempt.ID = m.nextID
	m.attempts = append(m.attempts, *attempt)
	return attempt, true, nil
}

func (m *memLedger) ListByUser(userID string) ([]model.QuizAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.QuizAttempt
	for _, a := range m.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (m *memLedger) ListByScope(subjectID, topicID, subtopicID string) ([]model.QuizAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.QuizAttempt
	for _, a := range m.attempts {
		if a.SubjectID != subjectID || a.TopicID != topicID {
			continue
		}
		if subtopicID != "" && (a.SubtopicID == nil || *a.SubtopicID != subtopicID) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func variablesTopic() *model.Topic {
	topic := &model.Topic{
		SubjectID: "S1",
		Title:     "Introducción",
		Subtopics: []model.Subtopic{
			{
				ID:       "st-vars",
				Title:    "Variables",
				ShowQuiz: true,
				Questions: []model.Question{
					{
						ID:     "Q1",
						Prompt: "¿Qué es una variable?",
						Options: []model.Option{
							{Text: "A", IsCorrect: true},
							{Text: "B"},
							{Text: "C"},
						},
					},
					{
						ID:     "Q2",
						Prompt: "¿Dónde se declara?",
						Options: []model.Option{
							{Text: "A"},
							{Text: "B"},
							{Text: "C", IsCorrect: true},
						},
					},
				},
			},
		},
	}
	topic.ID = "T1"
	return topic
}

func newTestQuizService() (*service.QuizService, *memLedger) {
	ledger := &memLedger{}
	topics := &memTopics{topics: map[string]map[string]*model.Topic{
		"S1": {"T1": variablesTopic()},
	}}
	return service.NewQuizService(topics, ledger), ledger
}

func studentClaims(id uint, name, email string) *util.Claims {
	return &util.Claims{UserID: id, Name: name, Email: email, Role: model.Student}
}

func TestGrade(t *testing.T) {
	questions := []model.Question{
		{ID: "q1", Options: []model.Option{{Text: "A", IsCorrect: true}, {Text: "B"}, {Text: "C"}}},
		{ID: "q2", Options: []model.Option{{Text: "A"}, {Text: "B", IsCorrect: true}}},
		{ID: "q3", Options: []model.Option{{Text: "A"}, {Text: "B"}}}, // 没有正确选项
	}

	tests := []struct {
		name        string
		answers     map[string]int
		wantCorrect int
		wantPct     int
	}{
		{"all answered one right", map[string]int{"q1": 0, "q2": 0, "q3": 1}, 1, 33},
		{"two right rounds up", map[string]int{"q1": 0, "q2": 1}, 2, 67},
		{"unanswered never correct", map[string]int{}, 0, 0},
		{"no correct option never passes", map[string]int{"q3": 0}, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := service.Grade(questions, tc.answers)
			if got.CorrectCount != tc.wantCorrect {
				t.Fatalf("correct = %d, want %d", got.CorrectCount, tc.wantCorrect)
			}
			if got.Total != 3 {
				t.Fatalf("total = %d, want 3", got.Total)
			}
			if got.Percentage != tc.wantPct {
				t.Fatalf("percentage = %d, want %d", got.Percentage, tc.wantPct)
			}
			if len(got.Detail) != 3 {
				t.Fatalf("detail length = %d, want 3", len(got.Detail))
			}
		})
	}
}

func TestGradeEmptyQuiz(t *testing.T) {
	got := service.Grade(nil, map[string]int{"q1": 0})
	if got.Total != 0 || got.CorrectCount != 0 || got.Percentage != 0 {
		t.Fatalf("empty quiz should grade 0/0/0, got %+v", got)
	}
}

func TestGradeQuestionWithoutOptions(t *testing.T) {
	questions := []model.Question{{ID: "q1"}}
	got := service.Grade(questions, map[string]int{"q1": 0})
	if got.CorrectCount != 0 || got.Percentage != 0 {
		t.Fatalf("optionless question must count incorrect, got %+v", got)
	}
	if got.Detail[0].CorrectIndex != -1 {
		t.Fatalf("correct index should be -1, got %d", got.Detail[0].CorrectIndex)
	}
}

func TestResolveSubtopic(t *testing.T) {
	topic := &model.Topic{
		Subtopics: []model.Subtopic{
			{ID: "alpha", Title: "Primero"},
			{ID: "beta", Title: "Segundo"},
			{ID: "gamma", Title: "Tercero"},
		},
	}
	topic.ID = "T1"

	// 合成 id 按索引命中，即使索引处的子主题有自己的 id
	st, idx, ok := service.ResolveSubtopic(topic, "T1_subtema_1", "")
	if !ok || idx != 1 || st.ID != "beta" {
		t.Fatalf("synthetic ref should resolve index 1, got idx=%d ok=%v", idx, ok)
	}

	// 子主题自有 id
	st, idx, ok = service.ResolveSubtopic(topic, "gamma", "")
	if !ok || idx != 2 || st.ID != "gamma" {
		t.Fatalf("id ref should resolve index 2, got idx=%d ok=%v", idx, ok)
	}

	// 标题兜底，精确匹配
	st, idx, ok = service.ResolveSubtopic(topic, "unknown-ref", "Segundo")
	if !ok || idx != 1 {
		t.Fatalf("title hint should resolve index 1, got idx=%d ok=%v", idx, ok)
	}
	if _, _, ok = service.ResolveSubtopic(topic, "unknown-ref", "segundo"); ok {
		t.Fatal("title matching must be case-sensitive")
	}

	// 越界索引不算命中
	if _, _, ok = service.ResolveSubtopic(topic, "T1_subtema_9", ""); ok {
		t.Fatal("out-of-range synthetic index must not resolve")
	}

	if _, _, ok = service.ResolveSubtopic(topic, "nope", ""); ok {
		t.Fatal("unknown ref without hint must not resolve")
	}
}

func TestSubmitGradesAndRecords(t *testing.T) {
	svc, ledger := newTestQuizService()

	result, err := svc.Submit(service.SubmitRequest{
		SubjectID: "S1",
		TopicID:   "T1",
		QuizID:    "st-vars",
		Answers:   map[string]int{"Q1": 0, "Q2": 1},
		User:      studentClaims(7, "Ana", "ana@example.com"),
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.CorrectCount != 1 || result.Total != 2 || result.Percentage != 50 {
		t.Fatalf("expected 1/2 (50%%), got %+v", result)
	}
	if result.AttemptID == 0 {
		t.Fatal("expected attempt id assigned")
	}

	stored, _ := ledger.FindByUserAndQuiz("7", "st-vars")
	if stored == nil {
		t.Fatal("attempt not recorded")
	}
	if stored.SubtopicTitle != "Variables" || stored.UserName != "Ana" || stored.UserEmail != "ana@example.com" {
		t.Fatalf("denormalized fields wrong: %+v", stored)
	}
	if stored.SubtopicID == nil || *stored.SubtopicID != "st-vars" {
		t.Fatalf("subtopic id not denormalized: %+v", stored.SubtopicID)
	}
}

func TestSubmitDuplicateReturnsPrior(t *testing.T) {
	svc, _ := newTestQuizService()
	user := studentClaims(7, "Ana", "ana@example.com")

	first, err := svc.Submit(service.SubmitRequest{
		SubjectID: "S1", TopicID: "T1", QuizID: "st-vars",
		Answers: map[string]int{"Q1": 0, "Q2": 1}, User: user,
	})
	if err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	// 第二次提交带着满分答案也要被拒，回显第一次的成绩
	_, err = svc.Submit(service.SubmitRequest{
		SubjectID: "S1", TopicID: "T1", QuizID: "st-vars",
		Answers: map[string]int{"Q1": 0, "Q2": 2}, User: user,
	})
	var already *util.AlreadySubmittedError
	if !errors.As(err, &already) {
		t.Fatalf("expected AlreadySubmittedError, got %v", err)
	}
	if already.Existing.Percentage != first.Percentage {
		t.Fatalf("prior percentage = %d, want %d", already.Existing.Percentage, first.Percentage)
	}

	// 另一个用户不受影响
	other, err := svc.Submit(service.SubmitRequest{
		SubjectID: "S1", TopicID: "T1", QuizID: "st-vars",
		Answers: map[string]int{"Q1": 0, "Q2": 2}, User: studentClaims(8, "Beto", "beto@example.com"),
	})
	if err != nil {
		t.Fatalf("second user submit failed: %v", err)
	}
	if other.Percentage != 100 {
		t.Fatalf("second user percentage = %d, want 100", other.Percentage)
	}
}

func TestSubmitValidation(t *testing.T) {
	svc, _ := newTestQuizService()
	user := studentClaims(7, "Ana", "ana@example.com")

	if _, err := svc.Submit(service.SubmitRequest{
		SubjectID: "S1", TopicID: "T1", QuizID: "st-vars", User: user,
	}); !errors.Is(err, util.ErrAnswersRequired) {
		t.Fatalf("expected ErrAnswersRequired, got %v", err)
	}

	if _, err := svc.Submit(service.SubmitRequest{
		TopicID: "T1", QuizID: "st-vars", Answers: map[string]int{}, User: user,
	}); !errors.Is(err, util.ErrScopeRequired) {
		t.Fatalf("expected ErrScopeRequired, got %v", err)
	}

	if _, err := svc.Submit(service.SubmitRequest{
		SubjectID: "S1", TopicID: "T1", QuizID: "st-vars", Answers: map[string]int{},
	}); !errors.Is(err, util.ErrNoUsableIdentity) {
		t.Fatalf("expected ErrNoUsableIdentity for missing user, got %v", err)
	}

	if _, err := svc.Submit(service.SubmitRequest{
		SubjectID: "S1", TopicID: "T1", QuizID: "st-vars", Answers: map[string]int{},
		User: &util.Claims{},
	}); !errors.Is(err, util.ErrNoUsableIdentity) {
		t.Fatalf("expected ErrNoUsableIdentity for empty claims, got %v", err)
	}
}

func TestSubmitNotFound(t *testing.T) {
	svc, _ := newTestQuizService()
	user := studentClaims(7, "Ana", "ana@example.com")

	if _, err := svc.Submit(service.SubmitRequest{
		SubjectID: "S9", TopicID: "T1", QuizID: "st-vars",
		Answers: map[string]int{}, User: user,
	}); !errors.Is(err, util.ErrSubjectNotFound) {
		t.Fatalf("expected ErrSubjectNotFound, got %v", err)
	}

	if _, err := svc.Submit(service.SubmitRequest{
		SubjectID: "S1", TopicID: "T9", QuizID: "st-vars",
		Answers: map[string]int{}, User: user,
	}); !errors.Is(err, util.ErrTopicNotFound) {
		t.Fatalf("expected ErrTopicNotFound, got %v", err)
	}

	if _, err := svc.Submit(service.SubmitRequest{
		SubjectID: "S1", TopicID: "T1", QuizID: "no-such-quiz",
		Answers: map[string]int{}, User: user,
	}); !errors.Is(err, util.ErrSubtopicNotFound) {
		t.Fatalf("expected ErrSubtopicNotFound, got %v", err)
	}
}

func TestConcurrentSubmitSingleAttempt(t *testing.T) {
	svc, ledger := newTestQuizService()
	user := studentClaims(7, "Ana", "ana@example.com")

	answers := []map[string]int{
		{"Q1": 0, "Q2": 1}, // 50%
		{"Q1": 0, "Q2": 2}, // 100%
	}

	var wg sync.WaitGroup
	results := make([]*service.SubmissionResult, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Submit(service.SubmitRequest{
				SubjectID: "S1", TopicID: "T1", QuizID: "st-vars",
				Answers: answers[i], User: user,
			})
		}(i)
	}
	wg.Wait()

	stored, _ := ledger.ListByUser("7")
	if len(stored) != 1 {
		t.Fatalf("expected exactly one stored attempt, got %d", len(stored))
	}

	winners, losers := 0, 0
	for i := 0; i < 2; i++ {
		if errs[i] == nil {
			winners++
			if results[i].Percentage != stored[0].Percentage {
				t.Fatalf("winner percentage %d != stored %d", results[i].Percentage, stored[0].Percentage)
			}
			continue
		}
		var already *util.AlreadySubmittedError
		if !errors.As(errs[i], &already) {
			t.Fatalf("loser should get AlreadySubmittedError, got %v", errs[i])
		}
		// 输家看到的是赢家写进台账的分数，不是自己那份答案的分数
		if already.Existing.Percentage != stored[0].Percentage {
			t.Fatalf("loser sees %d, stored %d", already.Existing.Percentage, stored[0].Percentage)
		}
		losers++
	}
	if winners != 1 || losers != 1 {
		t.Fatalf("expected one winner and one loser, got %d/%d", winners, losers)
	}
}

func TestListQuizzesSanitizesAnswerKey(t *testing.T) {
	svc, _ := newTestQuizService()

	quizzes, err := svc.ListQuizzes("S1", "T1", "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(quizzes) != 1 {
		t.Fatalf("expected 1 quiz, got %d", len(quizzes))
	}
	q := quizzes[0]
	if q.ID != "st-vars" || q.Title != "Quiz: Variables" {
		t.Fatalf("unexpected quiz view: %+v", q)
	}
	if len(q.Questions) != 2 || len(q.Questions[0].Options) != 3 {
		t.Fatalf("question tree not projected: %+v", q.Questions)
	}

	// 标题过滤精确匹配
	filtered, err := svc.ListQuizzes("S1", "T1", "Variables")
	if err != nil || len(filtered) != 1 {
		t.Fatalf("title filter should match, got %d err=%v", len(filtered), err)
	}
	none, err := svc.ListQuizzes("S1", "T1", "variables")
	if err != nil || len(none) != 0 {
		t.Fatalf("title filter is case-sensitive, got %d err=%v", len(none), err)
	}
}

func TestListQuizzesSyntheticIDFallback(t *testing.T) {
	ledger := &memLedger{}
	topic := &model.Topic{
		SubjectID: "S1",
		Subtopics: []model.Subtopic{
			{Title: "Notas", ShowInfo: true},
			{Title: "Sin id", ShowQuiz: true, Questions: []model.Question{
				{ID: "q1", Options: []model.Option{{Text: "A", IsCorrect: true}}},
			}},
		},
	}
	topic.ID = "T1"
	topics := &memTopics{topics: map[string]map[string]*model.Topic{"S1": {"T1": topic}}}
	svc := service.NewQuizService(topics, ledger)

	quizzes, err := svc.ListQuizzes("S1", "T1", "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(quizzes) != 1 {
		t.Fatalf("only quiz-bearing subtopics are quizzes, got %d", len(quizzes))
	}
	if quizzes[0].ID != "T1_subtema_1" {
		t.Fatalf("expected synthetic id T1_subtema_1, got %s", quizzes[0].ID)
	}
}
