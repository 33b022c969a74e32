package service

import (
	"math"
	"time"

	"mentorprog_backend/internal/model"
	"mentorprog_backend/internal/util"
)

// AttemptSummary 台账记录的展示投影（学生进度页和讲师结果表共用）
type AttemptSummary struct {
	ID             uint      `json:"id"`
	SubjectID      string    `json:"subjectId"`
	TopicID        string    `json:"topicId"`
	SubtopicID     *string   `json:"subtopicId"`
	SubtopicTitle  string    `json:"subtopicTitle"`
	QuizID         string    `json:"quizId"`
	UserID         string    `json:"userId"`
	UserName       string    `json:"userName"`
	UserEmail      string    `json:"userEmail"`
	CorrectCount   int       `json:"correctCount"`
	TotalQuestions int       `json:"totalQuestions"`
	Percentage     int       `json:"percentage"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

// ScopeResults 讲师端结果表：某 (materia, tema[, subtema]) 范围内的全部尝试
type ScopeResults struct {
	Attempts          []AttemptSummary `json:"attempts"`
	AveragePercentage int              `json:"averagePercentage"`
}

// ProgressService 只读投影，不判卷也不写任何东西
type ProgressService struct {
	Attempts AttemptLedger
}

func NewProgressService(attempts AttemptLedger) *ProgressService {
	return &ProgressService{Attempts: attempts}
}

func summarize(attempts []model.QuizAttempt) []AttemptSummary {
	out := make([]AttemptSummary, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, AttemptSummary{
			ID:             a.ID,
			SubjectID:      a.SubjectID,
			TopicID:        a.TopicID,
			SubtopicID:     a.SubtopicID,
			SubtopicTitle:  a.SubtopicTitle,
			QuizID:         a.QuizID,
			UserID:         a.UserID,
			UserName:       a.UserName,
			UserEmail:      a.UserEmail,
			CorrectCount:   a.CorrectCount,
			TotalQuestions: a.TotalQuestions,
			Percentage:     a.Percentage,
			SubmittedAt:    a.SubmittedAt,
		})
	}
	return out
}

// ForUser 学生自己的答题历史，最近的在前
func (s *ProgressService) ForUser(user *util.Claims) ([]AttemptSummary, error) {
	userKey := ""
	if user != nil {
		userKey = user.LedgerKey()
	}
	if userKey == "" {
		return nil, util.ErrNoUsableIdentity
	}

	attempts, err := s.Attempts.ListByUser(userKey)
	if err != nil {
		return nil, err
	}
	return summarize(attempts), nil
}

// ForScope 讲师结果表。平均分是已过滤集合里 percentage 的算术平均，
// 空集合为 0（不能除零）。
func (s *ProgressService) ForScope(subjectID, topicID, subtopicID string) (*ScopeResults, error) {
	attempts, err := s.Attempts.ListByScope(subjectID, topicID, subtopicID)
	if err != nil {
		return nil, err
	}

	sum := 0
	for _, a := range attempts {
		sum += a.Percentage
	}
	avg := 0
	if len(attempts) > 0 {
		avg = int(math.Round(float64(sum) / float64(len(attempts))))
	}

	return &ScopeResults{
		Attempts:          summarize(attempts),
		AveragePercentage: avg,
	}, nil
}
