package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"mentorprog_backend/internal/model"
	"mentorprog_backend/internal/util"
	"mentorprog_backend/pkg/logger"
	"mentorprog_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// TopicReader 测验内容的只读入口（带缓存的内容服务实现它）
type TopicReader interface {
	FindForSubject(subjectID, topicID string) (*model.Topic, error)
}

// AttemptLedger 尝试台账的读写操作
type AttemptLedger interface {
	FindByUserAndQuiz(userID, quizID string) (*model.QuizAttempt, error)
	InsertIfAbsent(attempt *model.QuizAttempt) (*model.QuizAttempt, bool, error)
	ListByUser(userID string) ([]model.QuizAttempt, error)
	ListByScope(subjectID, topicID, subtopicID string) ([]model.QuizAttempt, error)
}

type QuizService struct {
	Topics   TopicReader
	Attempts AttemptLedger
}

func NewQuizService(topics TopicReader, attempts AttemptLedger) *QuizService {
	return &QuizService{Topics: topics, Attempts: attempts}
}

// quizRefSeparator 合成 quiz id 的分隔串：{temaId}_subtema_{索引}。
// 线上已经发出去的引用用的就是它，不能改。
const quizRefSeparator = "_subtema_"

// SyntheticQuizID 按子主题在数组中的位置生成 quiz 引用
func SyntheticQuizID(topicID string, index int) string {
	return fmt.Sprintf("%s%s%d", topicID, quizRefSeparator, index)
}

// ResolveSubtopic 把 quiz 引用解析成主题里的某个子主题。
// 依次尝试：合成 id 的索引 → 子主题自己的 id → 标题精确匹配，
// 先命中者胜。返回子主题及其数组下标。
func ResolveSubtopic(topic *model.Topic, quizID, titleHint string) (*model.Subtopic, int, bool) {
	subtopics := topic.Subtopics

	if parts := strings.Split(quizID, quizRefSeparator); len(parts) == 2 {
		if idx, err := strconv.Atoi(parts[1]); err == nil && idx >= 0 && idx < len(subtopics) {
			return &subtopics[idx], idx, true
		}
	}

	for i := range subtopics {
		if subtopics[i].ID != "" && subtopics[i].ID == quizID {
			return &subtopics[i], i, true
		}
	}

	if titleHint != "" {
		for i := range subtopics {
			if subtopics[i].Title == titleHint {
				return &subtopics[i], i, true
			}
		}
	}

	return nil, -1, false
}

// QuestionVerdict 单题判定结果，留作审计展示，不影响总分计算
type QuestionVerdict struct {
	QuestionID    string `json:"questionId"`
	SelectedIndex *int   `json:"selectedIndex"`
	CorrectIndex  int    `json:"correctIndex"`
	Correct       bool   `json:"correct"`
}

type GradeResult struct {
	CorrectCount int               `json:"correctCount"`
	Total        int               `json:"total"`
	Percentage   int               `json:"percentage"`
	Detail       []QuestionVerdict `json:"detail"`
}

// Grade 纯函数判卷。答案键是题目 id 的字符串形式（传输层在边界统一转好）。
// 正确答案取选项列表里第一个 IsCorrect 的下标；没有正确选项的题
// 永远判错（记一条日志，不抛错）。未作答的题判错。
func Grade(questions []model.Question, answers map[string]int) GradeResult {
	result := GradeResult{
		Total:  len(questions),
		Detail: make([]QuestionVerdict, 0, len(questions)),
	}

	for _, q := range questions {
		correctIdx := -1
		for i, opt := range q.Options {
			if opt.IsCorrect {
				correctIdx = i
				break
			}
		}
		if correctIdx == -1 {
			logger.Log.Warn("question has no correct option configured",
				zap.String("questionId", q.ID))
		}

		verdict := QuestionVerdict{
			QuestionID:   q.ID,
			CorrectIndex: correctIdx,
		}
		if selected, ok := answers[q.ID]; ok {
			sel := selected
			verdict.SelectedIndex = &sel
			verdict.Correct = correctIdx != -1 && selected == correctIdx
		}
		if verdict.Correct {
			result.CorrectCount++
		}
		result.Detail = append(result.Detail, verdict)
	}

	if result.Total > 0 {
		result.Percentage = int(math.Round(float64(result.CorrectCount) / float64(result.Total) * 100))
	}
	return result
}

type SubmitRequest struct {
	SubjectID     string
	TopicID       string
	QuizID        string
	SubtopicTitle string
	Answers       map[string]int
	User          *util.Claims
}

type SubmissionResult struct {
	AttemptID    uint              `json:"attemptId"`
	CorrectCount int               `json:"correctCount"`
	Total        int               `json:"total"`
	Percentage   int               `json:"percentage"`
	Detail       []QuestionVerdict `json:"detail"`
}

// Submit 提交流程：校验 → 解析用户键 → 查重 → 定位答案键 → 判卷 → 落账。
// 查重放在判卷之前：注定被拒的请求不值得做解析和判卷，
// 同一个用户也永远不会看到同一个 quiz 的两个不同分数。
// 重复提交（包括输掉并发竞争）返回 *util.AlreadySubmittedError，
// 里面带着已存的那次成绩。
func (s *QuizService) Submit(req SubmitRequest) (*SubmissionResult, error) {
	if req.Answers == nil {
		return nil, util.ErrAnswersRequired
	}
	if req.SubjectID == "" || req.TopicID == "" {
		return nil, util.ErrScopeRequired
	}

	userKey := ""
	if req.User != nil {
		userKey = req.User.LedgerKey()
	}
	if userKey == "" {
		return nil, util.ErrNoUsableIdentity
	}

	if prior, err := s.Attempts.FindByUserAndQuiz(userKey, req.QuizID); err != nil {
		return nil, err
	} else if prior != nil {
		monitoring.QuizSubmissions.WithLabelValues("duplicate").Inc()
		return nil, &util.AlreadySubmittedError{Existing: prior}
	}

	topic, err := s.Topics.FindForSubject(req.SubjectID, req.TopicID)
	if err != nil {
		return nil, err
	}

	subtopic, idx, ok := ResolveSubtopic(topic, req.QuizID, req.SubtopicTitle)
	if !ok {
		monitoring.QuizSubmissions.WithLabelValues("not_found").Inc()
		return nil, util.ErrSubtopicNotFound
	}

	grade := Grade(subtopic.Questions, req.Answers)

	var subtopicID *string
	if subtopic.ID != "" {
		id := subtopic.ID
		subtopicID = &id
	}
	title := subtopic.Title
	if title == "" {
		title = req.SubtopicTitle
	}

	attempt := &model.QuizAttempt{
		SubjectID:      req.SubjectID,
		TopicID:        req.TopicID,
		SubtopicID:     subtopicID,
		SubtopicTitle:  title,
		QuizID:         req.QuizID,
		UserID:         userKey,
		UserName:       req.User.Name,
		UserEmail:      req.User.Email,
		CorrectCount:   grade.CorrectCount,
		TotalQuestions: grade.Total,
		Percentage:     grade.Percentage,
		SubmittedAt:    time.Now(),
	}

	stored, inserted, err := s.Attempts.InsertIfAbsent(attempt)
	if err != nil {
		return nil, err
	}
	if !inserted {
		// 输掉了并发竞争：回显赢家已存的成绩，而不是这边刚算出来的
		logger.Log.Info("concurrent quiz submission lost race",
			zap.String("userId", userKey), zap.String("quizId", req.QuizID))
		monitoring.QuizSubmissions.WithLabelValues("duplicate").Inc()
		return nil, &util.AlreadySubmittedError{Existing: stored}
	}

	logger.Log.Debug("quiz attempt recorded",
		zap.String("userId", userKey),
		zap.String("quizId", req.QuizID),
		zap.Int("subtopicIndex", idx),
		zap.Int("percentage", grade.Percentage))
	monitoring.QuizSubmissions.WithLabelValues("graded").Inc()

	return &SubmissionResult{
		AttemptID:    stored.ID,
		CorrectCount: grade.CorrectCount,
		Total:        grade.Total,
		Percentage:   grade.Percentage,
		Detail:       grade.Detail,
	}, nil
}

// QuizOptionView / QuizQuestionView 发给答题客户端的题目视图，
// 永远不携带 isCorrect。
type QuizOptionView struct {
	Text string `json:"text"`
}

type QuizQuestionView struct {
	ID      string           `json:"id"`
	Prompt  string           `json:"prompt"`
	Options []QuizOptionView `json:"options"`
}

type QuizView struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	SubjectID     string             `json:"subjectId"`
	TopicID       string             `json:"topicId"`
	SubtopicTitle string             `json:"subtopicTitle"`
	Questions     []QuizQuestionView `json:"questions"`
}

// ListQuizzes 把主题里带测验的子主题投影成"虚拟 quiz"列表。
// quiz 不是独立实体：没有自有 id 的子主题用合成 id 兜底。
// titleFilter 非空时只返回标题精确匹配的那个。
func (s *QuizService) ListQuizzes(subjectID, topicID, titleFilter string) ([]QuizView, error) {
	topic, err := s.Topics.FindForSubject(subjectID, topicID)
	if err != nil {
		return nil, err
	}

	quizzes := make([]QuizView, 0)
	for i := range topic.Subtopics {
		st := &topic.Subtopics[i]
		if !st.HasQuiz() {
			continue
		}
		if titleFilter != "" && st.Title != titleFilter {
			continue
		}

		id := st.ID
		if id == "" {
			id = SyntheticQuizID(topicID, i)
		}
		title := "Quiz del subtema"
		if st.Title != "" {
			title = "Quiz: " + st.Title
		}

		questions := make([]QuizQuestionView, 0, len(st.Questions))
		for _, q := range st.Questions {
			opts := make([]QuizOptionView, 0, len(q.Options))
			for _, o := range q.Options {
				opts = append(opts, QuizOptionView{Text: o.Text})
			}
			questions = append(questions, QuizQuestionView{ID: q.ID, Prompt: q.Prompt, Options: opts})
		}

		quizzes = append(quizzes, QuizView{
			ID:            id,
			Title:         title,
			SubjectID:     subjectID,
			TopicID:       topicID,
			SubtopicTitle: st.Title,
			Questions:     questions,
		})
	}
	return quizzes, nil
}
