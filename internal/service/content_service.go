package service

import (
	"context"
	"encoding/json"
	"time"

	"mentorprog_backend/internal/model"
	"mentorprog_backend/internal/repository"
	"mentorprog_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ContentService 课程内容（materias / temas）的读写入口。
// 主题文档带 Redis 缓存：判卷路径每次提交都要读整个文档。
type ContentService struct {
	Subjects *repository.SubjectRepository
	Topics   *repository.TopicRepository
	Redis    *redis.Client
	TopicTTL time.Duration
}

func NewContentService(subjects *repository.SubjectRepository, topics *repository.TopicRepository, rdb *redis.Client, topicTTL time.Duration) *ContentService {
	return &ContentService{
		Subjects: subjects,
		Topics:   topics,
		Redis:    rdb,
		TopicTTL: topicTTL,
	}
}

func topicCacheKey(subjectID, topicID string) string {
	return "topic:" + subjectID + ":" + topicID
}

// FindForSubject 实现 TopicReader。缓存命中直接反序列化，
// 未命中走库并写回缓存；缓存故障只记日志，不影响请求。
func (s *ContentService) FindForSubject(subjectID, topicID string) (*model.Topic, error) {
	ctx := context.Background()
	key := topicCacheKey(subjectID, topicID)

	if s.Redis != nil {
		if val, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var topic model.Topic
			if err := json.Unmarshal([]byte(val), &topic); err == nil {
				return &topic, nil
			}
		}
	}

	topic, err := s.Topics.FindForSubject(subjectID, topicID)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(topic); err == nil {
			if err := s.Redis.Set(ctx, key, data, s.TopicTTL).Err(); err != nil {
				logger.Log.Debug("topic cache write failed", zap.Error(err))
			}
		}
	}
	return topic, nil
}

func (s *ContentService) invalidateTopic(subjectID, topicID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(context.Background(), topicCacheKey(subjectID, topicID)).Err(); err != nil {
		logger.Log.Debug("topic cache invalidation failed", zap.Error(err))
	}
}

func (s *ContentService) CreateSubject(subject *model.Subject) error {
	return s.Subjects.Create(subject)
}

func (s *ContentService) GetSubject(id string) (*model.Subject, error) {
	return s.Subjects.FindByID(id)
}

func (s *ContentService) ListSubjects() ([]model.Subject, error) {
	return s.Subjects.List()
}

func (s *ContentService) UpdateSubject(id string, name, program, description *string) (*model.Subject, error) {
	subject, err := s.Subjects.FindByID(id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		subject.Name = *name
	}
	if program != nil {
		subject.Program = *program
	}
	if description != nil {
		subject.Description = *description
	}
	if err := s.Subjects.Update(subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *ContentService) DeleteSubject(id string) error {
	return s.Subjects.Delete(id)
}

// CreateTopic 子主题没有 id 的补一个，后续 quiz 引用才有稳定落点
func (s *ContentService) CreateTopic(subjectID string, topic *model.Topic) error {
	if _, err := s.Subjects.FindByID(subjectID); err != nil {
		return err
	}
	topic.SubjectID = subjectID
	for i := range topic.Subtopics {
		if topic.Subtopics[i].ID == "" {
			topic.Subtopics[i].ID = model.GenerateUUID()
		}
	}
	return s.Topics.Create(topic)
}

func (s *ContentService) ListTopics(subjectID string) ([]model.Topic, error) {
	if _, err := s.Subjects.FindByID(subjectID); err != nil {
		return nil, err
	}
	return s.Topics.ListBySubject(subjectID)
}

// UpdateTopic 主题文档整体替换（子主题树随文档一起写回），然后废缓存
func (s *ContentService) UpdateTopic(subjectID, topicID string, title, description *string, order *int, subtopics []model.Subtopic) (*model.Topic, error) {
	topic, err := s.Topics.FindForSubject(subjectID, topicID)
	if err != nil {
		return nil, err
	}
	if title != nil {
		topic.Title = *title
	}
	if description != nil {
		topic.Description = *description
	}
	if order != nil {
		topic.Order = *order
	}
	if subtopics != nil {
		for i := range subtopics {
			if subtopics[i].ID == "" {
				subtopics[i].ID = model.GenerateUUID()
			}
		}
		topic.Subtopics = subtopics
	}
	if err := s.Topics.Save(topic); err != nil {
		return nil, err
	}
	s.invalidateTopic(subjectID, topicID)
	return topic, nil
}

func (s *ContentService) DeleteTopic(subjectID, topicID string) error {
	if err := s.Topics.Delete(subjectID, topicID); err != nil {
		return err
	}
	s.invalidateTopic(subjectID, topicID)
	return nil
}
