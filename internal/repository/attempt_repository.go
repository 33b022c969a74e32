package repository

import (
	"errors"
	"sort"

	"mentorprog_backend/internal/model"

	"gorm.io/gorm"
)

// AttemptRepository 测验尝试台账：只追加，单条创建，没有更新和删除路径。
type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

// FindByUserAndQuiz 只用 user_id 单字段条件查询，在内存里扫 quizId。
// 找不到返回 (nil, nil)。
func (r *AttemptRepository) FindByUserAndQuiz(userID, quizID string) (*model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	if err := r.DB.Where("user_id = ?", userID).Find(&attempts).Error; err != nil {
		return nil, err
	}
	for i := range attempts {
		if attempts[i].QuizID == quizID {
			return &attempts[i], nil
		}
	}
	return nil, nil
}

// InsertIfAbsent 单次尝试约束的执行点。先读后写只是快路径；
// 两个并发提交都通过了读检查时，(user_id, quiz_id) 唯一索引让
// 第二个 INSERT 失败，这里把它降级成"已存在"，读回赢家的记录。
func (r *AttemptRepository) InsertIfAbsent(attempt *model.QuizAttempt) (*model.QuizAttempt, bool, error) {
	existing, err := r.FindByUserAndQuiz(attempt.UserID, attempt.QuizID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	if err := r.DB.Create(attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			winner, ferr := r.FindByUserAndQuiz(attempt.UserID, attempt.QuizID)
			if ferr != nil {
				return nil, false, ferr
			}
			if winner != nil {
				return winner, false, nil
			}
		}
		return nil, false, err
	}
	return attempt, true, nil
}

func (r *AttemptRepository) ListByUser(userID string) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("user_id = ?", userID).Order("submitted_at desc").Find(&attempts).Error
	return attempts, err
}

// ListByScope 按 subject_id 单字段查询，tema/subtema 在内存里过滤，
// 结果按提交时间倒序。
func (r *AttemptRepository) ListByScope(subjectID, topicID, subtopicID string) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	if err := r.DB.Where("subject_id = ?", subjectID).Find(&attempts).Error; err != nil {
		return nil, err
	}

	filtered := make([]model.QuizAttempt, 0, len(attempts))
	for _, a := range attempts {
		if a.TopicID != topicID {
			continue
		}
		if subtopicID != "" && (a.SubtopicID == nil || *a.SubtopicID != subtopicID) {
			continue
		}
		filtered = append(filtered, a)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].SubmittedAt.After(filtered[j].SubmittedAt)
	})
	return filtered, nil
}
