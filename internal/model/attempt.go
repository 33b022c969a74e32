package model

import "time"

// QuizAttempt 测验尝试台账记录，写入后不可变，正常流程中永不更新、永不删除。
// (user_id, quiz_id) 上的复合唯一索引是"每人每个quiz只能做一次"的最终仲裁：
// 两个并发提交最多只有一个 INSERT 能成功。
// swagger:model QuizAttempt
type QuizAttempt struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	SubjectID string `gorm:"size:64;index;not null" json:"subjectId"`
	TopicID   string `gorm:"size:36;not null" json:"topicId"`
	// SubtopicID 可空：旧内容里的子主题可能没有自己的 id
	SubtopicID    *string `gorm:"size:64" json:"subtopicId"`
	SubtopicTitle string  `gorm:"size:255" json:"subtopicTitle"`
	QuizID        string  `gorm:"size:128;not null;uniqueIndex:idx_attempt_user_quiz,priority:2" json:"quizId"`
	UserID        string  `gorm:"size:128;not null;index;uniqueIndex:idx_attempt_user_quiz,priority:1" json:"userId"`
	// 展示字段写入时冗余一份，讲师结果表不用回查用户表
	UserName       string    `gorm:"size:100" json:"userName"`
	UserEmail      string    `gorm:"size:100" json:"userEmail"`
	CorrectCount   int       `gorm:"not null" json:"correctCount"`
	TotalQuestions int       `gorm:"not null" json:"totalQuestions"`
	Percentage     int       `gorm:"not null" json:"percentage"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
