package model

// Option 题目的一个选项。IsCorrect 只在服务端使用，发给答题客户端前必须剥离。
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect,omitempty"`
}

// Question 子主题测验中的一道单选题
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
}

// Subtopic 子主题，内嵌在 Topic 文档里（不单独建表）。
// ShowQuiz 为 true 且带题目时，这个子主题就是一个"quiz"。
type Subtopic struct {
	ID        string     `json:"id,omitempty"`
	Title     string     `json:"title"`
	ShowInfo  bool       `json:"showInfo"`
	ShowQuiz  bool       `json:"showQuiz"`
	Questions []Question `json:"questions,omitempty"`
}

// HasQuiz 子主题是否携带可作答的测验
func (st *Subtopic) HasQuiz() bool {
	return st.ShowQuiz && len(st.Questions) > 0
}

// Topic 主题（tema），属于一个 Subject。子主题列表整体存成 JSON 列，
// 读写都是整个文档，测验内容就藏在这个树里。
// swagger:model Topic
type Topic struct {
	UUIDBase
	SubjectID   string     `gorm:"size:64;index;not null" json:"subjectId"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Order       int        `gorm:"column:sort_order;default:0" json:"order"`
	Subtopics   []Subtopic `gorm:"type:json;serializer:json" json:"subtopics"`
}

func (Topic) TableName() string {
	return "topics"
}
