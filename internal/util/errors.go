package util

import (
	"errors"
	"fmt"

	"mentorprog_backend/internal/model"
)

var (
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoUsableIdentity   = errors.New("no usable identity in token")
	ErrAnswersRequired    = errors.New("answers es obligatorio y debe ser objeto")
	ErrScopeRequired      = errors.New("materiaId y temaId son obligatorios")
	ErrSubjectExists      = errors.New("subject id already in use")
	ErrSubjectNotFound    = errors.New("materia not found")
	ErrTopicNotFound      = errors.New("tema not found")
	ErrSubtopicNotFound   = errors.New("subtema not found")
)

// AlreadySubmittedError 重复提交不是失败：它携带已存在的尝试记录，
// 控制器把它翻译成 409 并回显之前的成绩。
type AlreadySubmittedError struct {
	Existing *model.QuizAttempt
}

func (e *AlreadySubmittedError) Error() string {
	return fmt.Sprintf("quiz %s already attempted by user %s", e.Existing.QuizID, e.Existing.UserID)
}
