package repository

import (
	"errors"

	"mentorprog_backend/internal/model"
	"mentorprog_backend/internal/util"

	"gorm.io/gorm"
)

type TopicRepository struct {
	DB *gorm.DB
}

func NewTopicRepository(db *gorm.DB) *TopicRepository {
	return &TopicRepository{DB: db}
}

func (r *TopicRepository) Create(topic *model.Topic) error {
	return r.DB.Create(topic).Error
}

// FindForSubject 先确认 materia 存在再找 tema，调用方才能区分
// "materia 不存在" 和 "tema 不存在" 两种 404。
func (r *TopicRepository) FindForSubject(subjectID, topicID string) (*model.Topic, error) {
	var count int64
	if err := r.DB.Model(&model.Subject{}).Where("id = ?", subjectID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, util.ErrSubjectNotFound
	}

	var topic model.Topic
	err := r.DB.Where("id = ? AND subject_id = ?", topicID, subjectID).First(&topic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTopicNotFound
		}
		return nil, err
	}
	return &topic, nil
}

func (r *TopicRepository) ListBySubject(subjectID string) ([]model.Topic, error) {
	var topics []model.Topic
	err := r.DB.Where("subject_id = ?", subjectID).Order("sort_order asc, created_at asc").Find(&topics).Error
	return topics, err
}

// Save 主题文档整体写回（子主题树是一个 JSON 列）
func (r *TopicRepository) Save(topic *model.Topic) error {
	return r.DB.Save(topic).Error
}

func (r *TopicRepository) Delete(subjectID, topicID string) error {
	res := r.DB.Where("id = ? AND subject_id = ?", topicID, subjectID).Delete(&model.Topic{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrTopicNotFound
	}
	return nil
}
