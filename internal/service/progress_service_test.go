package service_test

import (
	"errors"
	"testing"
	"time"

	"mentorprog_backend/internal/model"
	"mentorprog_backend/internal/service"
	"mentorprog_backend/internal/util"
)

func seedAttempt(ledger *memLedger, userID, quizID string, pct int, subtopicID string, at time.Time) {
	a := &model.QuizAttempt{
		SubjectID:   "S1",
		TopicID:     "T1",
		QuizID:      quizID,
		UserID:      userID,
		Percentage:  pct,
		SubmittedAt: at,
	}
	if subtopicID != "" {
		a.SubtopicID = &subtopicID
	}
	if _, inserted, _ := ledger.InsertIfAbsent(a); !inserted {
		panic("test seed collided")
	}
}

func TestForUserOrdersMostRecentFirst(t *testing.T) {
	ledger := &memLedger{}
	base := time.Now()
	seedAttempt(ledger, "7", "quiz-a", 50, "st-a", base.Add(-2*time.Hour))
	seedAttempt(ledger, "7", "quiz-b", 80, "st-b", base)
	seedAttempt(ledger, "8", "quiz-a", 100, "st-a", base.Add(-time.Hour))

	svc := service.NewProgressService(ledger)
	history, err := svc.ForUser(studentClaims(7, "Ana", "ana@example.com"))
	if err != nil {
		t.Fatalf("ForUser failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 attempts for user 7, got %d", len(history))
	}
	if history[0].QuizID != "quiz-b" || history[1].QuizID != "quiz-a" {
		t.Fatalf("history not most-recent-first: %s, %s", history[0].QuizID, history[1].QuizID)
	}
}

func TestForUserIdentityFallback(t *testing.T) {
	ledger := &memLedger{}
	seedAttempt(ledger, "legacy-uid", "quiz-a", 40, "", time.Now())

	svc := service.NewProgressService(ledger)

	// 旧令牌没有数字 id，按 uid 查
	history, err := svc.ForUser(&util.Claims{UID: "legacy-uid"})
	if err != nil || len(history) != 1 {
		t.Fatalf("uid fallback failed: %d err=%v", len(history), err)
	}
	if history[0].SubtopicID != nil {
		t.Fatalf("nil subtopic id must survive projection, got %v", *history[0].SubtopicID)
	}

	if _, err := svc.ForUser(nil); !errors.Is(err, util.ErrNoUsableIdentity) {
		t.Fatalf("nil claims should fail identity, got %v", err)
	}
	if _, err := svc.ForUser(&util.Claims{}); !errors.Is(err, util.ErrNoUsableIdentity) {
		t.Fatalf("empty claims should fail identity, got %v", err)
	}
}

func TestForScopeAverage(t *testing.T) {
	ledger := &memLedger{}
	base := time.Now()
	seedAttempt(ledger, "7", "quiz-a", 50, "st-a", base.Add(-time.Minute))
	seedAttempt(ledger, "8", "quiz-a", 100, "st-a", base)
	seedAttempt(ledger, "9", "quiz-b", 0, "st-b", base.Add(-2*time.Minute))

	svc := service.NewProgressService(ledger)

	results, err := svc.ForScope("S1", "T1", "")
	if err != nil {
		t.Fatalf("ForScope failed: %v", err)
	}
	if len(results.Attempts) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(results.Attempts))
	}
	// (50+100+0)/3 = 50
	if results.AveragePercentage != 50 {
		t.Fatalf("average = %d, want 50", results.AveragePercentage)
	}
	if results.Attempts[0].UserID != "8" {
		t.Fatalf("scope results not most-recent-first, got user %s first", results.Attempts[0].UserID)
	}

	// 按子主题过滤，平均数只算过滤后的集合
	filtered, err := svc.ForScope("S1", "T1", "st-a")
	if err != nil {
		t.Fatalf("filtered ForScope failed: %v", err)
	}
	if len(filtered.Attempts) != 2 || filtered.AveragePercentage != 75 {
		t.Fatalf("subtopic filter: got %d attempts avg %d, want 2 avg 75", len(filtered.Attempts), filtered.AveragePercentage)
	}
}

func TestForScopeAverageRounding(t *testing.T) {
	ledger := &memLedger{}
	base := time.Now()
	seedAttempt(ledger, "7", "quiz-a", 33, "", base)
	seedAttempt(ledger, "8", "quiz-a", 33, "", base)
	seedAttempt(ledger, "9", "quiz-a", 34, "", base)

	svc := service.NewProgressService(ledger)
	results, err := svc.ForScope("S1", "T1", "")
	if err != nil {
		t.Fatalf("ForScope failed: %v", err)
	}
	// 100/3 = 33.33 → 33
	if results.AveragePercentage != 33 {
		t.Fatalf("average = %d, want 33", results.AveragePercentage)
	}
}

func TestForScopeEmpty(t *testing.T) {
	svc := service.NewProgressService(&memLedger{})
	results, err := svc.ForScope("S1", "T-empty", "")
	if err != nil {
		t.Fatalf("ForScope failed: %v", err)
	}
	if results.AveragePercentage != 0 || len(results.Attempts) != 0 {
		t.Fatalf("empty scope should be 0 attempts avg 0, got %+v", results)
	}
}
